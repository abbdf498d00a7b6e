package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/storage"
	"github.com/manav03panchal/timesheet/internal/tui"
)

// Db command flags.
var (
	dbBackupFlagDir string
	dbLoadFlagYes   bool
)

// dbCmd groups local store maintenance.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Check, back up and compact the local store",
	Long: `Maintain the local record store.

Examples:
  timesheet db check
  timesheet db backup
  timesheet db load ~/.local/share/timesheet/backups/timesheet-20260309-140000.bak
  timesheet db compact`,
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Read every record and report problems",
	Args:  cobra.NoArgs,
	RunE:  runDBCheck,
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a full backup file of the local store",
	Args:  cobra.NoArgs,
	RunE:  runDBBackup,
}

var dbLoadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Load a backup file into the local store",
	Args:  cobra.ExactArgs(1),
	RunE:  runDBLoad,
}

var dbCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Reclaim space from the value log",
	Args:  cobra.NoArgs,
	RunE:  runDBCompact,
}

func init() {
	dbBackupCmd.Flags().StringVar(&dbBackupFlagDir, "dir", "", "Backup directory (default next to the store)")
	dbLoadCmd.Flags().BoolVarP(&dbLoadFlagYes, "yes", "y", false, "Do not ask for confirmation")

	dbCmd.AddCommand(dbCheckCmd)
	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbLoadCmd)
	dbCmd.AddCommand(dbCompactCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	report := storage.CheckIntegrity(ctx.DB, ctx.Clock.Now())

	var b strings.Builder
	if report.Healthy {
		fmt.Fprintf(&b, "Store is healthy: %d records", report.Keys)
	} else {
		fmt.Fprintf(&b, "Store has %d problem(s) in %d records", report.Errors, report.Keys)
	}
	prefixes := make([]string, 0, len(report.ByPrefix))
	for p := range report.ByPrefix {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		fmt.Fprintf(&b, "\n  %-10s %d", p, report.ByPrefix[p])
	}
	fmt.Fprintf(&b, "\n  %-10s %d", "unsynced", report.Unsynced)
	for _, p := range report.Problems {
		fmt.Fprintf(&b, "\n  ! %s", p)
	}
	if err := ctx.Renderer.Result(b.String(), report); err != nil {
		return err
	}
	if !report.Healthy {
		return tserrors.NewUserError("store check failed",
			"Restore with 'timesheet db load' from a backup or 'timesheet sync restore'")
	}
	return nil
}

func runDBBackup(cmd *cobra.Command, args []string) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	dir := dbBackupFlagDir
	if dir == "" {
		path := ctx.DB.Path()
		if path == "" {
			return tserrors.NewUserError("the store is in memory", "Pass --dir to choose where to write the backup")
		}
		dir = filepath.Join(filepath.Dir(path), "backups")
	}
	path, err := storage.Backup(ctx.DB, dir, ctx.Clock.Now())
	if err != nil {
		return err
	}
	return ctx.Renderer.Result("Backup written to "+path, map[string]string{"path": path})
}

func runDBLoad(cmd *cobra.Command, args []string) error {
	if !dbLoadFlagYes && isInteractive() && !ctx.IsJSON() {
		ok, err := tui.Confirm("Load " + args[0] + "? Records in the backup overwrite local ones.")
		if err != nil {
			return err
		}
		if !ok {
			return ctx.Renderer.Message(output.LevelInfo, "Cancelled")
		}
	}
	if err := openStore(); err != nil {
		return err
	}
	if err := storage.Load(ctx.DB, args[0]); err != nil {
		return err
	}
	if _, err := ctx.Timer.Reconcile(); err != nil {
		return err
	}
	return ctx.Renderer.Message(output.LevelSuccess, "Loaded "+args[0])
}

func runDBCompact(cmd *cobra.Command, args []string) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	n, err := storage.Compact(ctx.DB)
	if err != nil {
		return err
	}
	return ctx.Renderer.Result(fmt.Sprintf("Compacted %s", plural(n, "value log file")),
		map[string]int{"rewritten": n})
}
