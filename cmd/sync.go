package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/keyring"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/tui"
	"github.com/manav03panchal/timesheet/internal/validate"
)

// Sync command flags.
var (
	loginFlagToken string
	restoreFlagYes bool
)

// pushResult is the JSON form of a push.
type pushResult struct {
	Timesheets int `json:"timesheets"`
	Billing    int `json:"billing"`
	Settings   int `json:"settings"`
	Total      int `json:"total"`
}

// restoreResult is the JSON form of a restore.
type restoreResult struct {
	Timesheets int    `json:"timesheets"`
	Billing    int    `json:"billing"`
	Settings   int    `json:"settings"`
	Running    string `json:"running,omitempty"`
}

// syncCmd represents the sync command.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Back up to and restore from the sync server",
	Long: `Back up local records to the sync server and restore them.

The server URL and employee id come from the sync section of the config
file. The access token is kept in the OS keyring; store it with
'timesheet sync login'.

Examples:
  timesheet sync login
  timesheet sync push
  timesheet sync restore`,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send unsynced records to the server",
	Args:  cobra.NoArgs,
	RunE:  runSyncPush,
}

var syncRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore records from the server",
	Long: `Pull the server copy of your entries, billing managers and settings.

Entries already present locally are kept. Settings are replaced by the
server copy. A running entry from the server becomes the running timer.`,
	Args: cobra.NoArgs,
	RunE: runSyncRestore,
}

var syncLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the sync access token in the OS keyring",
	Long: `Store the access token issued by the sync server in the OS keyring.

Without --token the token is read from stdin, hidden when stdin is a
terminal.

Examples:
  timesheet sync login
  timesheet serve token jdoe | timesheet sync login`,
	Args: cobra.NoArgs,
	RunE: runSyncLogin,
}

var syncLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the sync access token from the OS keyring",
	Args:  cobra.NoArgs,
	RunE:  runSyncLogout,
}

func init() {
	syncLoginCmd.Flags().StringVar(&loginFlagToken, "token", "", "Access token")
	syncRestoreCmd.Flags().BoolVarP(&restoreFlagYes, "yes", "y", false, "Do not ask for confirmation")

	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncRestoreCmd)
	syncCmd.AddCommand(syncLoginCmd)
	syncCmd.AddCommand(syncLogoutCmd)
	rootCmd.AddCommand(syncCmd)
}

// syncContext bounds a sync command by the configured timeout for each
// attempt plus retries.
func syncContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	s := ctx.Config.Sync
	if s.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.Timeout*time.Duration(1+max(0, s.MaxRetries)))
}

func runSyncPush(cmd *cobra.Command, args []string) error {
	client, err := ctx.SyncClient()
	if err != nil {
		return err
	}
	if err := openStore(); err != nil {
		return err
	}

	c, cancel := syncContext(cmd)
	defer cancel()

	res, err := ctx.Pusher(client).Push(c)
	if err != nil {
		return err
	}
	logging.Info("sync push finished", logging.KeyCount, res.Total())
	return ctx.Renderer.Result(fmt.Sprintf("Pushed %s, %s and %s",
		plural(res.Timesheets, "entry"), plural(res.Billing, "billing manager"), plural(res.Settings, "setting")),
		pushResult{Timesheets: res.Timesheets, Billing: res.Billing, Settings: res.Settings, Total: res.Total()})
}

func runSyncRestore(cmd *cobra.Command, args []string) error {
	client, err := ctx.SyncClient()
	if err != nil {
		return err
	}
	if err := openStore(); err != nil {
		return err
	}

	if !restoreFlagYes && isInteractive() && !ctx.IsJSON() {
		ok, err := tui.Confirm("Restore from the server? Local settings will be replaced.")
		if err != nil {
			return err
		}
		if !ok {
			return ctx.Renderer.Message(output.LevelInfo, "Cancelled")
		}
	}

	c, cancel := syncContext(cmd)
	defer cancel()

	res, err := ctx.Restorer(client).Restore(c)
	if err != nil {
		return err
	}
	out := restoreResult{Timesheets: res.Timesheets, Billing: res.Billing, Settings: res.Settings}
	summary := fmt.Sprintf("Restored %s, %s and %s",
		plural(res.Timesheets, "entry"), plural(res.Billing, "billing manager"), plural(res.Settings, "setting"))
	if res.Running != nil {
		out.Running = res.Running.ID()
		summary += "; timer running on " + res.Running.ShortID()
	}
	return ctx.Renderer.Result(summary, out)
}

// readToken reads a token from stdin, without echo on a terminal.
func readToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Token: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(string(b)), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runSyncLogin(cmd *cobra.Command, args []string) error {
	employee := ctx.Employee()
	if employee == "" {
		return tserrors.ErrSyncNotConfigured
	}
	if err := validate.Employee(employee); err != nil {
		return err
	}
	token := strings.TrimSpace(loginFlagToken)
	if token == "" {
		var err error
		if token, err = readToken(); err != nil {
			return err
		}
	}
	if token == "" {
		return tserrors.NewUserError("no token given", "Pass --token or pipe the token on stdin")
	}
	if err := keyring.SetToken(employee, token); err != nil {
		return err
	}
	return ctx.Renderer.Message(output.LevelSuccess, "Token stored for "+employee)
}

func runSyncLogout(cmd *cobra.Command, args []string) error {
	employee := ctx.Employee()
	if employee == "" {
		return tserrors.ErrSyncNotConfigured
	}
	if err := keyring.DeleteToken(employee); err != nil {
		return err
	}
	return ctx.Renderer.Message(output.LevelSuccess, "Token removed for "+employee)
}
