package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptSourceHost sets the legacy SQL Server hostname or IP address.
func OptSourceHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Host", s) {
			c.Source.Host = s
		}
	}
}

// OptSourcePort sets the legacy SQL Server port number.
func OptSourcePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Source Port", i) {
			c.Source.Port = i
		}
	}
}

// OptSourceUser sets the legacy SQL Server login.
func OptSourceUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source User", s) {
			c.Source.User = s
		}
	}
}

// OptSourcePassword sets the legacy SQL Server password.
func OptSourcePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Password", s) {
			c.Source.Password = s
		}
	}
}

// OptSourceDatabase sets the R4 database name.
func OptSourceDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Database", s) {
			c.Source.Database = s
		}
	}
}

// OptSourceTag sets the legacy source tag recorded in natural keys.
func OptSourceTag(s string) Option {
	s = strings.TrimSpace(strings.ToLower(s))
	return func(c *Config) {
		if isValidString("Source Tag", s) {
			c.Source.Tag = s
		}
	}
}

// OptSourceLockRetries sets the number of attempts for reads that hit
// a transient data-movement condition on the source.
func OptSourceLockRetries(i int) Option {
	return func(c *Config) {
		if isValidInt("Source Lock Retries", i) {
			c.Source.LockRetries = i
		}
	}
}

// OptSourceLockRetryDelayMs sets the backoff delay between lock
// retries in milliseconds.
func OptSourceLockRetryDelayMs(i int) Option {
	return func(c *Config) {
		if isValidInt("Source Lock Retry Delay", i) {
			c.Source.LockRetryDelayMs = i
		}
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptImportBatchSize sets the number of source rows read and committed
// per destination transaction.
func OptImportBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Import.BatchSize = i
		}
	}
}

// OptImportProgressEvery sets the progress event interval in rows.
func OptImportProgressEvery(i int) Option {
	return func(c *Config) {
		if isValidInt("Progress Every", i) {
			c.Import.ProgressEvery = i
		}
	}
}

// OptImportActorID sets the actor identifier recorded in audit fields.
func OptImportActorID(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Actor ID", s) {
			c.Import.ActorID = s
		}
	}
}

// OptLogFormat sets the log output format ('json' or 'text').
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(strings.ToLower(s))
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogLevel sets the logging level.
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(strings.ToLower(s))
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogDestination sets where logs are written.
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(strings.ToLower(s))
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for read-only
// operations.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config and log files.
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Dir", s) {
			c.HomeDir = s
		}
	}
}
