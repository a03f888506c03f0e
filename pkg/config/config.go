// Package config provides configuration management for R4sync.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via
// gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Environment Variables
//
// Use R4SYNC_ prefix with underscores for nesting:
//
//	R4SYNC_DATABASE_HOST=localhost
//	R4SYNC_SOURCE_HOST=r4-server
//	R4SYNC_LOG_LEVEL=info
package config

import (
	"runtime"
)

// Config represents the complete R4sync configuration.
type Config struct {
	// Source contains connection settings for the legacy R4 SQL Server.
	Source SourceConfig `mapstructure:"source" yaml:"source"`

	// Database contains PostgreSQL connection settings for the
	// destination store.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Import contains settings shared by entity and charting imports.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for read-only
	// operations (parity checks). Imports are always single-threaded.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// SourceConfig contains connection parameters for the legacy R4
// practice-management database (SQL Server).
type SourceConfig struct {
	// Host is the SQL Server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the SQL Server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the SQL Server login.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the SQL Server password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the R4 database name.
	Database string `mapstructure:"database" yaml:"database"`

	// Tag identifies this legacy source in destination rows, e.g. "r4".
	// All natural keys are scoped by it, so it must stay stable for the
	// lifetime of a migration.
	Tag string `mapstructure:"tag" yaml:"tag"`

	// LockRetries is the number of attempts for a read that failed with
	// a transient "scan interrupted by data movement" condition.
	LockRetries int `mapstructure:"lock_retries" yaml:"lock_retries"`

	// LockRetryDelayMs is the backoff delay between lock retries in
	// milliseconds.
	LockRetryDelayMs int `mapstructure:"lock_retry_delay_ms" yaml:"lock_retry_delay_ms"`
}

// DatabaseConfig contains PostgreSQL connection parameters for the
// destination store.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// ImportConfig contains settings shared by entity and charting imports.
type ImportConfig struct {
	// BatchSize is the number of source rows read and committed per
	// destination transaction.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// ProgressEvery emits a progress/checkpoint log event after this
	// many processed rows. Zero disables progress events.
	ProgressEvery int `mapstructure:"progress_every" yaml:"progress_every"`

	// ActorID is the identifier recorded in audit fields of every row
	// the migration creates or updates. Supplied by the host
	// application or operator.
	ActorID string `mapstructure:"actor_id" yaml:"actor_id"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Source: SourceConfig{
			Host:             "localhost",
			Port:             1433,
			User:             "sa",
			Database:         "R4",
			Tag:              "r4",
			LockRetries:      5,
			LockRetryDelayMs: 500,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "r4sync",
			SSLMode:  "disable",
		},
		Import: ImportConfig{
			BatchSize:     5_000,
			ProgressEvery: 1_000,
			ActorID:       "r4sync",
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}
	return res
}
