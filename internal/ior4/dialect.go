package ior4

import (
	"fmt"
	"strings"
)

// dialect abstracts the two SQL flavors the extractor runs against:
// SQL Server in production and SQLite in tests. Only placeholder
// style and row limiting differ for the queries we issue.
type dialect interface {
	// Placeholder returns the parameter marker for 1-based position i.
	Placeholder(i int) string

	// Limit rewrites a SELECT statement to return at most n rows.
	Limit(sel string, n int) string
}

// mssqlDialect targets the production R4 SQL Server.
type mssqlDialect struct{}

func (mssqlDialect) Placeholder(i int) string {
	return fmt.Sprintf("@p%d", i)
}

func (mssqlDialect) Limit(sel string, n int) string {
	// SQL Server has no LIMIT clause; TOP goes right after SELECT.
	return strings.Replace(sel, "SELECT ", fmt.Sprintf("SELECT TOP (%d) ", n), 1)
}

// sqliteDialect targets the SQLite fixture database used in tests.
type sqliteDialect struct{}

func (sqliteDialect) Placeholder(i int) string {
	return fmt.Sprintf("@p%d", i)
}

func (sqliteDialect) Limit(sel string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", sel, n)
}
