package backup

import (
	"context"
	"errors"
	"fmt"

	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/storage"
)

// DefaultBatchSize caps the records sent per collection per push.
const DefaultBatchSize = 1000

// Timesheet is an entry as sent to the server, stamped with its owner.
type Timesheet struct {
	*model.TimeEntry
	EmployeeID string `json:"employeeId"`
}

// PushResult counts the records accepted per collection.
type PushResult struct {
	Timesheets int
	Billing    int
	Settings   int
}

// Total returns the number of records pushed.
func (r PushResult) Total() int {
	return r.Timesheets + r.Billing + r.Settings
}

// Pusher sends unsynced records and marks them synced on success.
type Pusher struct {
	client    *Client
	entries   *storage.EntryRepo
	billing   *storage.BillingRepo
	settings  *storage.SettingRepo
	employee  string
	batchSize int
}

// NewPusher creates a pusher for employee.
func NewPusher(client *Client, entries *storage.EntryRepo, billing *storage.BillingRepo,
	settings *storage.SettingRepo, employee string, batchSize int) *Pusher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pusher{
		client:    client,
		entries:   entries,
		billing:   billing,
		settings:  settings,
		employee:  employee,
		batchSize: batchSize,
	}
}

// Push sends every collection. A failing collection does not stop the
// others; their errors are joined.
func (p *Pusher) Push(ctx context.Context) (PushResult, error) {
	var res PushResult
	var errs []error

	n, err := pushCollection(ctx, p.client, PathTimesheetBackup, p.entries.Collection, p.batchSize,
		func(items []*model.TimeEntry) any {
			out := make([]Timesheet, len(items))
			for i, e := range items {
				c := *e
				c.Synced = true
				out[i] = Timesheet{TimeEntry: &c, EmployeeID: p.employee}
			}
			return out
		})
	res.Timesheets = n
	if err != nil {
		errs = append(errs, fmt.Errorf("timesheets: %w", err))
	}

	n, err = pushCollection(ctx, p.client, PathBillingBackup, p.billing.Collection, p.batchSize,
		func(items []*model.BillingManager) any {
			out := make([]model.BillingManager, len(items))
			for i, b := range items {
				out[i] = *b
				out[i].Synced = true
			}
			return out
		})
	res.Billing = n
	if err != nil {
		errs = append(errs, fmt.Errorf("billing: %w", err))
	}

	n, err = pushCollection(ctx, p.client, PathSettingsBackup, p.settings.Collection, p.batchSize,
		func(items []*model.Setting) any {
			out := make([]model.Setting, len(items))
			for i, s := range items {
				out[i] = *s
				out[i].Synced = true
			}
			return out
		})
	res.Settings = n
	if err != nil {
		errs = append(errs, fmt.Errorf("settings: %w", err))
	}

	if res.Total() > 0 {
		logging.FromContext(ctx).Infow("pushed records",
			logging.KeyCount, res.Total(), logging.KeyEmployee, p.employee)
	}
	return res, errors.Join(errs...)
}

func pushCollection[T model.Syncable](ctx context.Context, client *Client, path string,
	coll *storage.Collection[T], limit int, payload func([]T) any) (int, error) {
	items, err := coll.ListUnsynced(limit)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := client.Post(ctx, path, payload(items)); err != nil {
		return 0, err
	}
	keys := make([]string, len(items))
	for i, v := range items {
		keys[i] = v.GetKey()
	}
	if err := coll.MarkSynced(keys); err != nil {
		return 0, err
	}
	return len(items), nil
}
