// Package ior4 implements the Extractor interface over the legacy R4
// practice-management database. This is an impure I/O package that
// issues windowed streaming queries against SQL Server.
//
// Reads are dirty (the live practice keeps writing), so every query
// runs under a retry policy for the transient "scan interrupted by
// data movement" condition. Schema differences between R4
// installations are handled by probing candidate column names, never
// by hardcoding one variant.
package ior4

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/chairside/r4sync/pkg/config"
	"github.com/chairside/r4sync/pkg/r4sync"

	// SQL Server driver for the production source.
	_ "github.com/microsoft/go-mssqldb"
)

const defaultPageSize = 2000

// extractor implements r4sync.Extractor.
type extractor struct {
	db       *sql.DB
	tag      string
	d        dialect
	probe    *columnProbe
	retry    retryPolicy
	pageSize int
	ownedDB  bool
}

// Option adjusts extractor construction.
type Option func(*extractor)

// WithPageSize overrides the keyset page size.
func WithPageSize(n int) Option {
	return func(e *extractor) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithSQLiteDialect switches query generation to the SQLite flavor.
// Used with NewWithDB for fixture databases in tests.
func WithSQLiteDialect() Option {
	return func(e *extractor) {
		e.d = sqliteDialect{}
	}
}

// New connects to the R4 SQL Server described by cfg and returns an
// Extractor.
func New(ctx context.Context, cfg *config.SourceConfig) (r4sync.Extractor, error) {
	query := url.Values{}
	query.Add("database", cfg.Database)
	query.Add("app name", "r4sync")

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}

	db, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, ConnectionError(cfg.Host, cfg.Port, cfg.Database, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, ConnectionError(cfg.Host, cfg.Port, cfg.Database, err)
	}

	e := &extractor{
		db:      db,
		tag:     cfg.Tag,
		d:       mssqlDialect{},
		probe:   newColumnProbe(db),
		ownedDB: true,
		retry: newRetryPolicy(
			cfg.LockRetries,
			time.Duration(cfg.LockRetryDelayMs)*time.Millisecond,
		),
		pageSize: defaultPageSize,
	}
	return e, nil
}

// NewWithDB wraps an existing database handle. The caller keeps
// ownership of the handle. Used by tests with a SQLite fixture and by
// hosts that manage their own source connection.
func NewWithDB(db *sql.DB, tag string, retries int, delay time.Duration, opts ...Option) r4sync.Extractor {
	e := &extractor{
		db:       db,
		tag:      tag,
		d:        mssqlDialect{},
		probe:    newColumnProbe(db),
		retry:    newRetryPolicy(retries, delay),
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the source connection when the extractor owns it.
func (e *extractor) Close() error {
	if e.ownedDB {
		return e.db.Close()
	}
	return nil
}

// queryPage executes one page query under the retry policy and hands
// the rows to scan. scan must consume all rows; the helper closes
// them.
func (e *extractor) queryPage(
	ctx context.Context,
	what, q string,
	args []any,
	scan func(*sql.Rows) error,
) error {
	// Queries name their parameters @p1..@pN in argument order. Pass
	// them as named arguments so both the SQL Server driver and the
	// SQLite fixture driver resolve them.
	named := make([]any, len(args))
	for i, a := range args {
		named[i] = sql.Named(fmt.Sprintf("p%d", i+1), a)
	}
	return e.retry.run(ctx, what, func() error {
		rows, err := e.db.QueryContext(ctx, q, named...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if err := scan(rows); err != nil {
			return err
		}
		return rows.Err()
	})
}
