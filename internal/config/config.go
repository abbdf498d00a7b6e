// Package config loads timesheet configuration from a YAML file and
// TIMESHEET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
)

// AppName names the config, data and state directories.
const AppName = "timesheet"

// Config is the full configuration. Every field has a default so an empty
// or missing file is valid.
type Config struct {
	// Timezone is the IANA zone used for day boundaries when no timezone
	// setting is stored. Empty means the system zone.
	Timezone string `yaml:"timezone" env:"TIMESHEET_TIMEZONE"`

	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Sync      SyncConfig      `yaml:"sync"`
	Server    ServerConfig    `yaml:"server"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DatabaseConfig locates the local record store.
type DatabaseConfig struct {
	// Path is the badger directory. Empty means the XDG data directory,
	// ":memory:" an in-memory store.
	Path string `yaml:"path" env:"TIMESHEET_DB"`

	// BusyTimeout is how long to wait for another process holding the store.
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"TIMESHEET_DB_BUSY_TIMEOUT" env-default:"2s"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level      string `yaml:"level" env:"TIMESHEET_LOG_LEVEL" env-default:"warn"`
	JSON       bool   `yaml:"json" env:"TIMESHEET_LOG_JSON"`
	File       string `yaml:"file" env:"TIMESHEET_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"10"`
	MaxBackups int    `yaml:"max_backups" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"28"`
	NoCompress bool   `yaml:"no_compress" env:"TIMESHEET_LOG_NO_COMPRESS"`
}

// SyncConfig configures the backup client.
type SyncConfig struct {
	Disabled   bool          `yaml:"disabled" env:"TIMESHEET_SYNC_DISABLED"`
	URL        string        `yaml:"url" env:"TIMESHEET_SYNC_URL" env-default:"http://localhost:7045/api"`
	Employee   string        `yaml:"employee" env:"TIMESHEET_EMPLOYEE"`
	Interval   time.Duration `yaml:"interval" env:"TIMESHEET_SYNC_INTERVAL" env-default:"5m"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMESHEET_SYNC_TIMEOUT" env-default:"30s"`
	MaxRetries int           `yaml:"max_retries" env:"TIMESHEET_SYNC_MAX_RETRIES" env-default:"3"`
	BatchSize  int           `yaml:"batch_size" env-default:"1000"`
}

// ServerConfig configures the backup server.
type ServerConfig struct {
	Addr        string        `yaml:"addr" env:"TIMESHEET_SERVER_ADDR" env-default:":7045"`
	DSN         string        `yaml:"dsn" env:"TIMESHEET_SERVER_DSN"`
	TokenSecret string        `yaml:"token_secret" env:"TIMESHEET_SERVER_SECRET"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"TIMESHEET_SERVER_TOKEN_TTL" env-default:"720h"`
}

// DaemonConfig holds daemon process settings.
type DaemonConfig struct {
	// StartupWait is how long `daemon start --detach` waits before checking
	// the child is alive.
	StartupWait time.Duration `yaml:"startup_wait" env:"TIMESHEET_DAEMON_STARTUP_WAIT" env-default:"500ms"`

	// KillTimeout is the grace period before a stop escalates to SIGKILL.
	KillTimeout time.Duration `yaml:"kill_timeout" env:"TIMESHEET_DAEMON_KILL_TIMEOUT" env-default:"5s"`
}

// SchedulerConfig tunes the periodic tick.
type SchedulerConfig struct {
	// SleepThreshold is the gap between ticks treated as a system sleep.
	// The first tick after such a gap is skipped.
	SleepThreshold time.Duration `yaml:"sleep_threshold" env:"TIMESHEET_SLEEP_THRESHOLD" env-default:"1h"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Default returns the configuration with only defaults and the environment
// applied.
func Default() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file at path, or the default path when empty.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default()
		}
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if info.Size() == 0 {
		return Default()
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &cfg, nil
}

// Location resolves Timezone. Empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// DataDir returns the application data directory.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns the directory for PID and state files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultLogFile is the daemon log file location.
func DefaultLogFile() string {
	return filepath.Join(StateDir(), "timesheet.log")
}

// ServerDSN returns the configured sqlite DSN or a file in the data
// directory.
func (c *Config) ServerDSN() string {
	if c.Server.DSN != "" {
		return c.Server.DSN
	}
	return filepath.Join(DataDir(), "backup.db")
}
