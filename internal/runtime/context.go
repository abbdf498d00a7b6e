// Package runtime wires configuration, logging, the record store and the
// services shared by every command.
package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/timesheet/internal/backup"
	"github.com/manav03panchal/timesheet/internal/clock"
	"github.com/manav03panchal/timesheet/internal/config"
	"github.com/manav03panchal/timesheet/internal/dayboundary"
	tserrors "github.com/manav03panchal/timesheet/internal/errors"
	"github.com/manav03panchal/timesheet/internal/keyring"
	"github.com/manav03panchal/timesheet/internal/logging"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/output"
	"github.com/manav03panchal/timesheet/internal/scheduler"
	"github.com/manav03panchal/timesheet/internal/storage"
	"github.com/manav03panchal/timesheet/internal/timer"
	"github.com/manav03panchal/timesheet/internal/timesheet"
	"github.com/manav03panchal/timesheet/internal/validate"
)

// Context holds the application runtime context. The store and services
// are nil until Open is called.
type Context struct {
	Config    *config.Config
	Formatter *output.Formatter
	Renderer  output.Renderer
	Clock     clock.Clock
	Debug     bool

	DB *storage.DB

	// Repositories
	Entries    *storage.EntryRepo
	Billing    *storage.BillingRepo
	Settings   *storage.SettingRepo
	Timers     *storage.TimerRepo
	DayMarkers *storage.DayMarkerRepo
	Expiring   *storage.ExpiringRepo

	// Services
	Timer *timer.Service
	Sheet *timesheet.Service
	Days  *dayboundary.Detector

	// Location is the zone entry dates are projected in.
	Location *time.Location
}

// Options configures the runtime context.
type Options struct {
	ConfigPath string
	Format     output.Format
	ColorMode  output.ColorMode
	Debug      bool

	// InMemory replaces the configured database with an in-memory store.
	InMemory bool
	// Clock overrides the wall clock.
	Clock clock.Clock
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New loads configuration and sets up logging and output. It does not
// touch the record store.
func New(opts Options) (*Context, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.InMemory {
		cfg.Database.Path = ":memory:"
	}

	if err := logging.Init(LogConfig(cfg, opts.Debug)); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	formatter := output.NewFormatter()
	if opts.Format != "" {
		formatter.Format = opts.Format
	}
	if opts.ColorMode != "" {
		formatter.ColorMode = opts.ColorMode
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	return &Context{
		Config:    cfg,
		Formatter: formatter,
		Renderer:  output.New(formatter),
		Clock:     clk,
		Debug:     opts.Debug,
	}, nil
}

// LogConfig derives the logger configuration. --debug wins over the
// configured level.
func LogConfig(cfg *config.Config, debug bool) logging.Config {
	lc := logging.DefaultConfig()
	if cfg.Log.Level != "" {
		lc.Level = cfg.Log.Level
	}
	if debug {
		lc.Level = "debug"
	}
	lc.JSON = cfg.Log.JSON
	lc.File = cfg.Log.File
	if cfg.Log.MaxSizeMB > 0 {
		lc.MaxSizeMB = cfg.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups > 0 {
		lc.MaxBackups = cfg.Log.MaxBackups
	}
	if cfg.Log.MaxAgeDays > 0 {
		lc.MaxAgeDays = cfg.Log.MaxAgeDays
	}
	lc.Compress = !cfg.Log.NoCompress
	return lc
}

// StoreOptions returns the record store options from configuration.
func (c *Context) StoreOptions() storage.Options {
	path := c.Config.Database.Path
	if path == "" {
		path = storage.DefaultPath()
	}
	return storage.Options{
		Path:        path,
		InMemory:    path == ":memory:",
		BusyTimeout: c.Config.Database.BusyTimeout,
	}
}

// Opener returns a function that opens the record store, for the
// scheduler which holds it only during a tick.
func (c *Context) Opener() scheduler.Opener {
	opts := c.StoreOptions()
	return func() (*storage.DB, error) {
		return storage.Open(opts)
	}
}

// Open opens the record store and builds the repositories and services.
// Calling it twice is a no-op.
func (c *Context) Open() error {
	if c.DB != nil {
		return nil
	}
	opts := c.StoreOptions()
	db, err := storage.Open(opts)
	if err != nil {
		return err
	}
	if !opts.InMemory {
		if w := storage.LowDiskWarning(opts.Path); w != "" {
			logging.Warn(w, "path", opts.Path)
		}
	}
	c.attach(db)
	return nil
}

func (c *Context) attach(db *storage.DB) {
	c.DB = db
	c.Entries = storage.NewEntryRepo(db)
	c.Billing = storage.NewBillingRepo(db)
	c.Settings = storage.NewSettingRepo(db)
	c.Timers = storage.NewTimerRepo(db)
	c.DayMarkers = storage.NewDayMarkerRepo(db)
	c.Expiring = storage.NewExpiringRepo(db, c.Clock.Now)

	c.Days = dayboundary.New(c.DayMarkers, c.Clock, c.Config.Timezone)
	c.Location = c.Days.Location(c.TimezoneName())
	c.Timer = timer.NewService(c.Entries, c.Timers, c.Clock)
	c.Sheet = timesheet.NewService(c.Entries, c.Settings, c.Expiring, c.Timer, c.Clock, c.Location)
}

// TimezoneName returns the stored timezone setting, else the configured
// zone. Empty means the system zone.
func (c *Context) TimezoneName() string {
	if c.Settings != nil {
		if tz := strings.TrimSpace(c.Settings.String(model.SettingTimezone, "")); tz != "" {
			return tz
		}
	}
	return c.Config.Timezone
}

// DecimalMark returns the decimal mark setting, "." by default.
func (c *Context) DecimalMark() string {
	if c.Settings == nil {
		return "."
	}
	return c.Settings.String(model.SettingDecimalMark, ".")
}

// Employee returns the configured employee id.
func (c *Context) Employee() string {
	return strings.TrimSpace(c.Config.Sync.Employee)
}

// SyncClient builds a backup client from configuration and the keyring
// token.
func (c *Context) SyncClient() (*backup.Client, error) {
	s := c.Config.Sync
	if s.Disabled || s.URL == "" || c.Employee() == "" {
		return nil, tserrors.ErrSyncNotConfigured
	}
	if err := validate.SyncURL(s.URL); err != nil {
		return nil, err
	}
	if err := validate.Employee(c.Employee()); err != nil {
		return nil, err
	}
	token, err := keyring.Token(c.Employee())
	if err != nil {
		return nil, err
	}
	return backup.NewClient(s.URL, token, s.Timeout, s.MaxRetries), nil
}

// Pusher builds a pusher over the open store.
func (c *Context) Pusher(client *backup.Client) *backup.Pusher {
	return backup.NewPusher(client, c.Entries, c.Billing, c.Settings, c.Employee(), c.Config.Sync.BatchSize)
}

// Restorer builds a restorer over the open store.
func (c *Context) Restorer(client *backup.Client) *backup.Restorer {
	return backup.NewRestorer(client, c.Entries, c.Billing, c.Settings, c.Timer, c.Employee())
}

// Scheduler builds the periodic reconcile and push scheduler.
func (c *Context) Scheduler() *scheduler.Scheduler {
	tasks := []scheduler.Task{scheduler.ReconcileTask(c.Clock)}
	if !c.Config.Sync.Disabled {
		tasks = append(tasks, scheduler.PushTask(c.SyncClient, c.Employee(), c.Config.Sync.BatchSize))
	}
	s := scheduler.NewScheduler(c.Opener(), c.Config.Sync.Interval, tasks...)
	s.SetSleepThreshold(c.Config.Scheduler.SleepThreshold)
	return s
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// Close closes the record store if it is open.
func (c *Context) Close() error {
	if c.DB == nil {
		return nil
	}
	err := c.DB.Close()
	c.DB = nil
	return err
}
