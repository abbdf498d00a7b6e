// Package server is the backup server: six JSON endpoints over a sqlite
// store, authenticated with bearer tokens.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/model"
)

// APIPrefix is where the backup endpoints are mounted.
const APIPrefix = "/api"

const maxBodyBytes = 32 << 20

type ctxKey int

const employeeKey ctxKey = iota

// Server serves backup and restore requests.
type Server struct {
	store  *Store
	secret []byte
	mux    *http.ServeMux
}

// New creates a server over store verifying tokens with secret.
func New(store *Store, secret []byte) *Server {
	s := &Server{store: store, secret: secret, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.Handle("POST "+APIPrefix+"/cosmos/backup", s.auth(s.handleTimesheetBackup))
	s.mux.Handle("POST "+APIPrefix+"/cosmos/billingdata/backup", s.auth(s.handleBillingBackup))
	s.mux.Handle("POST "+APIPrefix+"/cosmos/usersettings/backup", s.auth(s.handleSettingsBackup))

	s.mux.Handle("GET "+APIPrefix+"/cosmos/restore/{employee}", s.auth(s.restore(s.store.Timesheets)))
	s.mux.Handle("GET "+APIPrefix+"/cosmos/billingdata/restore/{employee}", s.auth(s.restore(s.store.Billing)))
	s.mux.Handle("GET "+APIPrefix+"/cosmos/usersettings/restore/{employee}", s.auth(s.restore(s.store.Settings)))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := logging.WithRequestID(r.Context(), logging.GenerateRequestID())
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(sw, r.WithContext(ctx))
	logging.FromContext(ctx).Infow("request",
		logging.KeyOperation, r.Method+" "+r.URL.Path,
		logging.KeyStatus, sw.status,
		logging.KeyDuration, time.Since(start).Milliseconds())
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) auth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		employee, err := ParseToken(token, s.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), employeeKey, employee)
		next(w, r.WithContext(ctx))
	})
}

func employeeFrom(ctx context.Context) string {
	e, _ := ctx.Value(employeeKey).(string)
	return e
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBatch(w http.ResponseWriter, r *http.Request) ([]json.RawMessage, bool) {
	var batch []json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&batch); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		} else {
			writeError(w, http.StatusBadRequest, "body must be a JSON array")
		}
		return nil, false
	}
	return batch, true
}

type timesheetHeader struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	EntryDate  string `json:"entryDate"`
}

func (s *Server) handleTimesheetBackup(w http.ResponseWriter, r *http.Request) {
	employee := employeeFrom(r.Context())
	batch, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	records := make([]Record, 0, len(batch))
	dates := make([]string, 0, len(batch))
	for _, raw := range batch {
		var h timesheetHeader
		if err := json.Unmarshal(raw, &h); err != nil || h.ID == "" {
			writeError(w, http.StatusBadRequest, "every timesheet needs an id")
			return
		}
		if h.EmployeeID != "" && h.EmployeeID != employee {
			writeError(w, http.StatusForbidden, "timesheet belongs to another employee")
			return
		}
		date := h.EntryDate
		if len(date) > 10 {
			date = date[:10]
		}
		records = append(records, Record{ID: h.ID, Data: raw})
		dates = append(dates, date)
	}

	if err := s.store.PutTimesheets(r.Context(), employee, records, dates); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(records)})
}

func (s *Server) handleBillingBackup(w http.ResponseWriter, r *http.Request) {
	employee := employeeFrom(r.Context())
	batch, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	records := make([]Record, 0, len(batch))
	for _, raw := range batch {
		var h struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &h); err != nil || h.ID == "" {
			writeError(w, http.StatusBadRequest, "every billing record needs an id")
			return
		}
		records = append(records, Record{ID: h.ID, Data: raw})
	}

	if err := s.store.PutBilling(r.Context(), employee, records); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(records)})
}

func (s *Server) handleSettingsBackup(w http.ResponseWriter, r *http.Request) {
	employee := employeeFrom(r.Context())
	batch, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	records := make([]Record, 0, len(batch))
	for _, raw := range batch {
		var h struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &h); err != nil || !model.IsKnownSetting(h.Type) {
			writeError(w, http.StatusBadRequest, "unknown setting type")
			return
		}
		records = append(records, Record{ID: h.Type, Data: raw})
	}

	if err := s.store.PutSettings(r.Context(), employee, records); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(records)})
}

func (s *Server) restore(list func(context.Context, string) ([]json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employee := r.PathValue("employee")
		if employee != employeeFrom(r.Context()) {
			writeError(w, http.StatusForbidden, "cannot restore another employee's data")
			return
		}
		records, err := list(r.Context(), employee)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Errorw("request failed",
		logging.KeyOperation, r.Method+" "+r.URL.Path, logging.KeyError, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("backup server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info("backup server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
