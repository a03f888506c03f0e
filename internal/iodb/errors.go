package iodb

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// ConnectionError creates an error for a failed destination
// connection attempt.
func ConnectionError(
	host string, port int, database, user string, err error,
) error {
	msg := `Cannot connect to the destination database

<em>Host:</em> %s:%d
<em>Database:</em> %s
<em>User:</em> %s

<em>How to fix:</em>
  1. Check PostgreSQL is running and reachable
  2. Verify credentials in config.yaml or R4SYNC_DATABASE_* env vars
  3. Check ssl_mode matches the server requirements`

	vars := []any{host, port, database, user}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to connect to %s:%d/%s: %w", host, port, database, err),
	}
}

// NotConnectedError creates an error for operations attempted without
// a database connection.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableCheckError creates an error for a failed table-existence
// check.
func TableCheckError(tableName string, err error) error {
	msg := `Cannot check table existence

<em>Table:</em> %s`

	vars := []any{tableName}

	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to check table %s: %w", tableName, err),
	}
}

// QueryTablesError creates an error for a failed table listing.
func QueryTablesError(err error) error {
	msg := "Cannot query tables in the public schema"

	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to query tables: %w", err),
	}
}

// ScanTableError creates an error for a failed table-name scan.
func ScanTableError(err error) error {
	msg := "Cannot scan table name"

	return &gn.Error{
		Code: errcode.DBScanTableError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to scan table name: %w", err),
	}
}

// DropTableError creates an error for a failed table drop.
func DropTableError(table string, err error) error {
	msg := `Cannot drop table

<em>Table:</em> %s`

	vars := []any{table}

	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to drop table %s: %w", table, err),
	}
}
