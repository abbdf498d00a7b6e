package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/server"
	"github.com/manav03panchal/timesheet/internal/validate"
)

// tokenResult is the JSON form of an issued token.
type tokenResult struct {
	Employee  string `json:"employee"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// serveCmd runs the backup server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync backup server",
	Long: `Run the HTTP backup server that sync push and sync restore talk to.

Records are kept per employee in a SQLite database (server.dsn, default in
the data directory). Clients authenticate with bearer tokens signed with
server.token_secret; issue one with 'timesheet serve token EMPLOYEE'.

Examples:
  TIMESHEET_SERVER_SECRET=change-me timesheet serve
  timesheet serve token jdoe`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveTokenCmd = &cobra.Command{
	Use:   "token EMPLOYEE",
	Short: "Issue an access token for an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runServeToken,
}

func init() {
	serveCmd.AddCommand(serveTokenCmd)
	rootCmd.AddCommand(serveCmd)
}

func serverSecret() ([]byte, error) {
	secret := strings.TrimSpace(ctx.Config.Server.TokenSecret)
	if secret == "" {
		return nil, tserrors.NewUserErrorWithField("server.token_secret", "", "token secret is not configured",
			"Set server.token_secret in the config file or TIMESHEET_SERVER_SECRET")
	}
	return []byte(secret), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	secret, err := serverSecret()
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	c, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := ctx.Config.ServerDSN()
	store, err := server.OpenStore(c, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	logging.Info("backup store opened", "dsn", dsn)
	return server.New(store, secret).ListenAndServe(c, ctx.Config.Server.Addr)
}

func runServeToken(cmd *cobra.Command, args []string) error {
	secret, err := serverSecret()
	if err != nil {
		return err
	}
	employee := strings.TrimSpace(args[0])
	if err := validate.Employee(employee); err != nil {
		return err
	}
	issued := ctx.Clock.Now()
	ttl := ctx.Config.Server.TokenTTL

	token, err := server.IssueToken(employee, secret, ttl, issued)
	if err != nil {
		return tserrors.NewUserErrorWithField("employee", employee, err.Error(), "")
	}
	res := tokenResult{Employee: employee, Token: token}
	if ttl > 0 {
		res.ExpiresAt = issued.Add(ttl).UTC().Format("2006-01-02T15:04:05Z")
	}
	return ctx.Renderer.Result(token, res)
}
