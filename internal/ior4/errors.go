package ior4

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// ConnectionError creates an error for a failed legacy source
// connection attempt.
func ConnectionError(host string, port int, database string, err error) error {
	msg := `Cannot connect to the legacy R4 database

<em>Host:</em> %s:%d
<em>Database:</em> %s

<em>How to fix:</em>
  1. Check the SQL Server instance is running and reachable
  2. Verify credentials in config.yaml or R4SYNC_SOURCE_* env vars
  3. Check the practice firewall allows port %d`

	vars := []any{host, port, database, port}

	return &gn.Error{
		Code: errcode.SourceConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to connect to source %s:%d/%s: %w", host, port, database, err),
	}
}

// QueryError creates an error for a failed source query.
func QueryError(what string, err error) error {
	msg := `Cannot read from the legacy R4 database

<em>Query:</em> %s`

	vars := []any{what}

	return &gn.Error{
		Code: errcode.SourceQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("source query %s failed: %w", what, err),
	}
}

// ScanError creates an error for a row that could not be decoded.
func ScanError(what string, err error) error {
	msg := `Cannot decode a row from the legacy R4 database

<em>Query:</em> %s`

	vars := []any{what}

	return &gn.Error{
		Code: errcode.SourceScanError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("source scan %s failed: %w", what, err),
	}
}

// RetryExhaustedError creates an error for a transient read failure
// that survived every retry attempt.
func RetryExhaustedError(what string, attempts int, err error) error {
	msg := `Legacy source read kept failing after retries

<em>Query:</em> %s
<em>Attempts:</em> %d

<em>How to fix:</em>
  1. Re-run when the practice is quieter; dirty reads race live writes
  2. Raise source.lock_retries or source.lock_retry_delay_ms`

	vars := []any{what, attempts}

	return &gn.Error{
		Code: errcode.SourceRetryExhaustedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("source read %s failed after %d attempts: %w", what, attempts, err),
	}
}

// ColumnProbeError creates an error for a required source column that
// exists under none of its known names.
func ColumnProbeError(table, logical string, candidates []string) error {
	msg := `Cannot locate a required column in the legacy R4 schema

<em>Table:</em> %s
<em>Field:</em> %s
<em>Tried:</em> %v

<em>How to fix:</em>
  1. This R4 installation uses an unknown schema variant
  2. Inspect the table and report the actual column name`

	vars := []any{table, logical, candidates}

	return &gn.Error{
		Code: errcode.SourceColumnProbeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"no column for %s.%s among %v", table, logical, candidates),
	}
}
