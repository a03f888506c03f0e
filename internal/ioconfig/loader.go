// Package ioconfig loads configuration from config.yaml and the
// environment. This is an impure package that handles file system and
// environment operations; the resulting values are applied to a
// Config only through its Option functions.
package ioconfig

import (
	"fmt"
	"strings"

	"github.com/chairside/r4sync/pkg/config"
	"github.com/spf13/viper"
)

// Load reads config.yaml and R4SYNC_* environment variables and
// returns the Option slice to apply over the defaults. Precedence
// stays with the caller: flags are applied after these options.
func Load(configPath string) ([]config.Option, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Precedence: flags > env vars > config file > defaults.
	v.SetEnvPrefix("R4SYNC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults are registered before reading so AutomaticEnv knows
	// every key to check.
	defaults := config.New()
	v.SetDefault("source.host", defaults.Source.Host)
	v.SetDefault("source.port", defaults.Source.Port)
	v.SetDefault("source.user", defaults.Source.User)
	v.SetDefault("source.password", defaults.Source.Password)
	v.SetDefault("source.database", defaults.Source.Database)
	v.SetDefault("source.tag", defaults.Source.Tag)
	v.SetDefault("source.lock_retries", defaults.Source.LockRetries)
	v.SetDefault("source.lock_retry_delay_ms", defaults.Source.LockRetryDelayMs)
	v.SetDefault("database.host", defaults.Database.Host)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.user", defaults.Database.User)
	v.SetDefault("database.password", defaults.Database.Password)
	v.SetDefault("database.database", defaults.Database.Database)
	v.SetDefault("database.ssl_mode", defaults.Database.SSLMode)
	v.SetDefault("import.batch_size", defaults.Import.BatchSize)
	v.SetDefault("import.progress_every", defaults.Import.ProgressEvery)
	v.SetDefault("import.actor_id", defaults.Import.ActorID)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.destination", defaults.Log.Destination)
	v.SetDefault("jobs_number", defaults.JobsNumber)

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg.ToOptions(), nil
}
