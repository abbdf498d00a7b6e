// Package backup pushes local records to the backup server and restores
// them from it.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/logging"
)

// Endpoint paths relative to the base URL.
const (
	PathTimesheetBackup  = "/cosmos/backup"
	PathBillingBackup    = "/cosmos/billingdata/backup"
	PathSettingsBackup   = "/cosmos/usersettings/backup"
	PathTimesheetRestore = "/cosmos/restore/"
	PathBillingRestore   = "/cosmos/billingdata/restore/"
	PathSettingsRestore  = "/cosmos/usersettings/restore/"
)

// Status classes reported by the server.
var (
	ErrUnauthorized = tserrors.ErrUnauthorized
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrServer       = errors.New("server error")
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// Unwrap maps the status code onto one of the sentinel errors.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode >= 500:
		return ErrServer
	case e.StatusCode >= 400:
		return ErrBadRequest
	}
	return nil
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client talks JSON to the backup server with retry on 429 and 5xx.
type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	maxRetries int
	retryDelay []time.Duration
}

// NewClient creates a client for baseURL authenticating with token.
func NewClient(baseURL, token string, timeout time.Duration, maxRetries int) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		maxRetries: maxRetries,
		retryDelay: []time.Duration{
			0,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// SetRetryDelays replaces the wait before each attempt. Attempts past the
// end of the list reuse the last delay.
func (c *Client) SetRetryDelays(delays []time.Duration) {
	c.retryDelay = delays
}

func (c *Client) delay(attempt int) time.Duration {
	if len(c.retryDelay) == 0 {
		return 0
	}
	if attempt < len(c.retryDelay) {
		return c.retryDelay[attempt]
	}
	return c.retryDelay[len(c.retryDelay)-1]
}

// Post sends body as JSON to path.
func (c *Client) Post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	_, err = c.do(ctx, http.MethodPost, path, data)
	return err
}

// Get fetches path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	log := logging.FromContext(ctx)
	url := c.baseURL + path
	start := time.Now()

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attempts = attempt + 1
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay(attempt)):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "timesheet/1.0")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", tserrors.ErrNetworkUnavailable, err)
			log.Debugw("request failed", logging.KeyOperation, method+" "+path,
				logging.KeyAttempt, attempts, logging.KeyError, err)
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return nil, fmt.Errorf("read response: %w", readErr)
			}
			log.Debugw("request done", logging.KeyOperation, method+" "+path,
				logging.KeyStatus, resp.StatusCode, logging.KeyAttempt, attempts,
				logging.KeyDuration, time.Since(start).Milliseconds())
			return data, nil
		}

		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: string(data)}
		if !httpErr.retryable() {
			return nil, httpErr
		}
		lastErr = httpErr
		log.Debugw("retryable response", logging.KeyOperation, method+" "+path,
			logging.KeyStatus, resp.StatusCode, logging.KeyAttempt, attempts)
	}

	rerr := tserrors.NewRecoverableError(fmt.Sprintf("%s %s failed", method, path), lastErr, c.maxRetries)
	rerr.RetryCount = attempts - 1
	rerr.CanRetry = false
	return nil, rerr
}
