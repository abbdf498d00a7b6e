package scheduler

import (
	"context"
	"errors"

	"github.com/manav03panchal/timesheet/internal/backup"
	"github.com/manav03panchal/timesheet/internal/clock"
	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/storage"
	"github.com/manav03panchal/timesheet/internal/timer"
)

// ReconcileTask refreshes the running entry and clears a stale pointer.
func ReconcileTask(clk clock.Clock) Task {
	return Task{
		Name: "reconcile",
		Run: func(ctx context.Context, db *storage.DB) error {
			svc := timer.NewService(storage.NewEntryRepo(db), storage.NewTimerRepo(db), clk)
			res, err := svc.Reconcile()
			if err != nil {
				return err
			}
			if res.Running != nil {
				logging.FromContext(ctx).Debugw("running entry",
					logging.KeyEntry, res.Running.ID(), "elapsed", res.Elapsed)
			}
			return nil
		},
	}
}

// ClientFunc builds a sync client for one tick.
type ClientFunc func() (*backup.Client, error)

// PushTask pushes unsynced records for employee. Missing credentials skip
// the push quietly.
func PushTask(newClient ClientFunc, employee string, batchSize int) Task {
	return Task{
		Name: "push",
		Run: func(ctx context.Context, db *storage.DB) error {
			client, err := newClient()
			if err != nil {
				if errors.Is(err, tserrors.ErrNotLoggedIn) || errors.Is(err, tserrors.ErrSyncNotConfigured) {
					logging.FromContext(ctx).Debugw("push skipped", logging.KeyError, err)
					return nil
				}
				return err
			}
			pusher := backup.NewPusher(client, storage.NewEntryRepo(db), storage.NewBillingRepo(db),
				storage.NewSettingRepo(db), employee, batchSize)
			_, err = pusher.Push(ctx)
			return err
		},
	}
}
