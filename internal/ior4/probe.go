package ior4

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// columnProbe discovers which candidate column names exist for a
// logical field. R4 schemas vary between practice installations, so
// nothing here is hardcoded: the first existing candidate wins and
// the answer is cached per (table, logical field).
//
// The probe issues `SELECT <col> FROM <table> WHERE 1=0`, which is
// valid on every dialect we target and returns no rows.
type columnProbe struct {
	db    *sql.DB
	cache map[string]string
}

func newColumnProbe(db *sql.DB) *columnProbe {
	return &columnProbe{
		db:    db,
		cache: make(map[string]string),
	}
}

// Resolve returns the first candidate column that exists on the
// table, or ok=false when none do. The candidate order is
// significant: callers list the most specific join key first, e.g. a
// dedicated reference id before a generic transaction id.
func (p *columnProbe) Resolve(
	ctx context.Context,
	table, logical string,
	candidates []string,
) (string, bool) {
	key := table + "." + logical
	if col, ok := p.cache[key]; ok {
		return col, col != ""
	}

	for _, col := range candidates {
		if p.exists(ctx, table, col) {
			p.cache[key] = col
			slog.Debug("Resolved source column",
				"table", table,
				"field", logical,
				"column", col,
			)
			return col, true
		}
	}

	// Negative result is cached too; probing is not free.
	p.cache[key] = ""
	return "", false
}

func (p *columnProbe) exists(ctx context.Context, table, col string) bool {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE 1=0", col, table)
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return false
	}
	rows.Close()
	return true
}
