package backup

import (
	"context"
	"strings"

	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/storage"
	"github.com/manav03panchal/timesheet/internal/timer"
)

// RestoreResult counts what a restore brought back.
type RestoreResult struct {
	Timesheets int // entries added; ids already present are skipped
	Billing    int
	Settings   int
	Running    *model.TimeEntry
}

// Restorer pulls the server copy of an employee's records into the local store.
type Restorer struct {
	client   *Client
	entries  *storage.EntryRepo
	billing  *storage.BillingRepo
	settings *storage.SettingRepo
	timer    *timer.Service
	employee string
}

// NewRestorer creates a restorer for employee.
func NewRestorer(client *Client, entries *storage.EntryRepo, billing *storage.BillingRepo,
	settings *storage.SettingRepo, timers *timer.Service, employee string) *Restorer {
	return &Restorer{
		client:   client,
		entries:  entries,
		billing:  billing,
		settings: settings,
		timer:    timers,
		employee: employee,
	}
}

func withPrefix(prefix, key string) string {
	if strings.HasPrefix(key, prefix+":") {
		return key
	}
	return model.GenerateKey(prefix, key)
}

// Restore fetches all three collections, then reconciles the running timer
// so a restored running entry gets a pointer.
func (r *Restorer) Restore(ctx context.Context) (*RestoreResult, error) {
	res := &RestoreResult{}
	log := logging.FromContext(ctx)

	var sheets []Timesheet
	if err := r.client.Get(ctx, PathTimesheetRestore+r.employee, &sheets); err != nil {
		return nil, err
	}
	var billing []*model.BillingManager
	if err := r.client.Get(ctx, PathBillingRestore+r.employee, &billing); err != nil {
		return nil, err
	}
	var settings []*model.Setting
	if err := r.client.Get(ctx, PathSettingsRestore+r.employee, &settings); err != nil {
		return nil, err
	}

	entries := make([]*model.TimeEntry, 0, len(sheets))
	for _, s := range sheets {
		if s.TimeEntry == nil || s.Key == "" {
			continue
		}
		s.Key = withPrefix(model.PrefixEntry, s.Key)
		s.Synced = true
		entries = append(entries, s.TimeEntry)
	}
	n, err := r.entries.BulkAdd(entries)
	if err != nil {
		return nil, err
	}
	res.Timesheets = n

	kept := billing[:0]
	for _, b := range billing {
		if b == nil || b.Key == "" {
			continue
		}
		b.Key = withPrefix(model.PrefixBilling, b.Key)
		b.Synced = true
		kept = append(kept, b)
	}
	if res.Billing, err = r.billing.BulkAdd(kept); err != nil {
		return nil, err
	}

	valid := settings[:0]
	for _, s := range settings {
		if s == nil || !model.IsKnownSetting(s.Type) {
			continue
		}
		s.Synced = true
		valid = append(valid, s)
	}
	if err := r.settings.Replace(valid); err != nil {
		return nil, err
	}
	res.Settings = len(valid)

	rec, err := r.timer.Reconcile()
	if err != nil {
		return nil, err
	}
	res.Running = rec.Running

	log.Infow("restored records", logging.KeyEmployee, r.employee,
		logging.KeyCount, res.Timesheets+res.Billing+res.Settings)
	return res, nil
}
