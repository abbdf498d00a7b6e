package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/timesheet/internal/billing"
	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/storage"
	"github.com/manav03panchal/timesheet/internal/validate"
)

// Billing command flags.
var (
	billingFlagArchived bool
	billingFlagClient   string
	billingFlagProject  string
	billingFlagTask     string
	billingFlagType     string
	billingFlagUndo     bool
)

// billingCmd represents the billing command.
var billingCmd = &cobra.Command{
	Use:     "billing [TERM]",
	Aliases: []string{"b", "bill"},
	Short:   "Manage billing types for project and task codes",
	Long: `List billing managers, which mark a client's project and task code pair
as Billable or Non-Billable. TERM filters by client, project or task code.

Examples:
  timesheet billing
  timesheet billing acme --archived
  timesheet billing add --client Acme --project PRJ-1 --task DEV
  timesheet billing goal`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBillingList,
}

var billingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a billing manager",
	Long: `Add a billing manager for a project and task code pair.

Examples:
  timesheet billing add --client Acme --project PRJ-1 --task DEV
  timesheet billing add --client Acme --project PRJ-1 --task ADMIN --type Non-Billable`,
	Args: cobra.NoArgs,
	RunE: runBillingAdd,
}

var billingEditCmd = &cobra.Command{
	Use:   "edit REF",
	Short: "Edit a billing manager",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillingEdit,
}

var billingArchiveCmd = &cobra.Command{
	Use:   "archive REF",
	Short: "Archive a billing manager",
	Long: `Archive a billing manager so it no longer shows in listings. Use
--undo to restore it.`,
	Args: cobra.ExactArgs(1),
	RunE: runBillingArchive,
}

var billingGoalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Show billable hours against the annual goal",
	Long: `Compare this year's billable hours with the annual goal from the
billableGoal setting (default 1500 hours), monthly and year to date.

Examples:
  timesheet billing goal
  timesheet settings set billableGoal 1600`,
	Args: cobra.NoArgs,
	RunE: runBillingGoal,
}

func init() {
	billingCmd.Flags().BoolVar(&billingFlagArchived, "archived", false, "Include archived managers")

	for _, c := range []*cobra.Command{billingAddCmd, billingEditCmd} {
		c.Flags().StringVarP(&billingFlagClient, "client", "c", "", "Client name")
		c.Flags().StringVarP(&billingFlagProject, "project", "p", "", "Project code")
		c.Flags().StringVarP(&billingFlagTask, "task", "t", "", "Task code")
		c.Flags().StringVar(&billingFlagType, "type", model.BillingTypeBillable, "Billable or Non-Billable")
		c.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(
			[]string{model.BillingTypeBillable, model.BillingTypeNonBillable}, cobra.ShellCompDirectiveNoFileComp))
	}
	billingArchiveCmd.Flags().BoolVar(&billingFlagUndo, "undo", false, "Unarchive instead")

	billingCmd.AddCommand(billingAddCmd)
	billingCmd.AddCommand(billingEditCmd)
	billingCmd.AddCommand(billingArchiveCmd)
	billingCmd.AddCommand(billingGoalCmd)
	rootCmd.AddCommand(billingCmd)
}

// billingType normalizes a --type value.
func billingType(t string) (string, error) {
	t = strings.TrimSpace(t)
	for _, valid := range []string{model.BillingTypeBillable, model.BillingTypeNonBillable} {
		if strings.EqualFold(t, valid) {
			return valid, nil
		}
	}
	return "", tserrors.NewValidationError("type", t, "must be Billable or Non-Billable", tserrors.ErrInvalidBillingType)
}

func validateBilling(b *model.BillingManager) error {
	if err := validate.Client(b.Client); err != nil {
		return err
	}
	if err := validate.Code("project", b.ProjectCode); err != nil {
		return err
	}
	return validate.Code("task", b.TaskCode)
}

func resolveBilling(ref string) (*model.BillingManager, error) {
	b, err := ctx.Billing.Resolve(ref)
	if err == nil {
		return b, nil
	}
	if storage.IsErrKeyNotFound(err) {
		return nil, fmt.Errorf("%s: %w", ref, tserrors.ErrBillingNotFound)
	}
	var amb *storage.AmbiguousMatchError
	if errors.As(err, &amb) {
		return nil, tserrors.NewUserError(amb.Error(), "Use more characters of the id")
	}
	return nil, err
}

func runBillingList(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	var term string
	if len(args) > 0 {
		term = args[0]
	}
	managers, err := ctx.Billing.Search(term, billingFlagArchived)
	if err != nil {
		return err
	}
	return ctx.Renderer.BillingManagers(managers)
}

func runBillingAdd(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	bt, err := billingType(billingFlagType)
	if err != nil {
		return err
	}

	b := &model.BillingManager{
		Client:      validate.Line(billingFlagClient),
		ProjectCode: validate.Line(billingFlagProject),
		TaskCode:    validate.Line(billingFlagTask),
		BillingType: bt,
	}
	if err := validateBilling(b); err != nil {
		return err
	}
	if err := ctx.Billing.Create(b); err != nil {
		return err
	}
	return ctx.Renderer.BillingManagers([]*model.BillingManager{b})
}

func runBillingEdit(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	b, err := resolveBilling(args[0])
	if err != nil {
		return err
	}

	if v := stringFlag(cmd, "client"); v != nil {
		b.Client = validate.Line(*v)
	}
	if v := stringFlag(cmd, "project"); v != nil {
		b.ProjectCode = validate.Line(*v)
	}
	if v := stringFlag(cmd, "task"); v != nil {
		b.TaskCode = validate.Line(*v)
	}
	if v := stringFlag(cmd, "type"); v != nil {
		if b.BillingType, err = billingType(*v); err != nil {
			return err
		}
	}
	if err := validateBilling(b); err != nil {
		return err
	}
	if err := ctx.Billing.Update(b); err != nil {
		return err
	}
	return ctx.Renderer.BillingManagers([]*model.BillingManager{b})
}

func runBillingArchive(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	b, err := resolveBilling(args[0])
	if err != nil {
		return err
	}
	b.Archived = !billingFlagUndo
	if err := ctx.Billing.Update(b); err != nil {
		return err
	}
	return ctx.Renderer.BillingManagers([]*model.BillingManager{b})
}

func runBillingGoal(cmd *cobra.Command, args []string) error {
	if err := openStore(); err != nil {
		return err
	}
	asOf := now()
	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())

	entries, err := ctx.Sheet.Range(yearStart, asOf)
	if err != nil {
		return err
	}
	managers, err := ctx.Billing.List()
	if err != nil {
		return err
	}
	goal := ctx.Settings.Float(model.SettingBillableGoal, 0)
	return ctx.Renderer.Goal(billing.GoalProgress(entries, managers, goal, asOf))
}
