package iocanon

import (
	"context"
	"errors"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/schema"
	"gorm.io/gorm"
)

// Reader provides the read side of the canonical store used by parity
// checks and drop reports.
type Reader interface {
	// Latest returns the most recent canonical record for a patient
	// and domain inside a window: max recorded_at, ties broken by
	// unique key. Nil when the patient has no rows.
	Latest(ctx context.Context, source string, domain r4.Domain, patientCode int, w r4.Window) (*schema.CanonicalChartingRecord, error)

	// Count returns the number of canonical rows for a patient and
	// domain inside a window.
	Count(ctx context.Context, source string, domain r4.Domain, patientCode int, w r4.Window) (int, error)
}

type gormReader struct {
	db *gorm.DB
}

// NewGormReader returns a Reader over the destination database.
func NewGormReader(db *gorm.DB) Reader {
	return &gormReader{db: db}
}

func (r *gormReader) scoped(
	ctx context.Context, source string, domain r4.Domain, patientCode int, w r4.Window,
) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&schema.CanonicalChartingRecord{}).
		Where("source = ? AND domain = ? AND patient_code = ?",
			source, string(domain), patientCode)
	if !w.From.IsZero() {
		q = q.Where("recorded_at >= ?", w.From)
	}
	if !w.To.IsZero() {
		q = q.Where("recorded_at < ?", w.To)
	}
	return q
}

func (r *gormReader) Latest(
	ctx context.Context, source string, domain r4.Domain, patientCode int, w r4.Window,
) (*schema.CanonicalChartingRecord, error) {
	var rec schema.CanonicalChartingRecord
	err := r.scoped(ctx, source, domain, patientCode, w).
		Order("recorded_at DESC, unique_key DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, UpsertError("latest", err)
	}
	return &rec, nil
}

func (r *gormReader) Count(
	ctx context.Context, source string, domain r4.Domain, patientCode int, w r4.Window,
) (int, error) {
	var n int64
	err := r.scoped(ctx, source, domain, patientCode, w).Count(&n).Error
	if err != nil {
		return 0, UpsertError("count", err)
	}
	return int(n), nil
}
