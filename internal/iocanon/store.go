package iocanon

import (
	"context"
	"errors"

	"github.com/chairside/r4sync/pkg/schema"
	"gorm.io/gorm"
)

// CanonStore persists canonical charting records keyed by unique_key.
type CanonStore interface {
	// FindByKey returns the record for a unique key, or nil when
	// absent.
	FindByKey(ctx context.Context, uniqueKey string) (*schema.CanonicalChartingRecord, error)

	Create(ctx context.Context, rec *schema.CanonicalChartingRecord) error
	Update(ctx context.Context, rec *schema.CanonicalChartingRecord) error
}

type gormCanonStore struct {
	db *gorm.DB
}

// NewGormCanonStore returns a CanonStore over the destination
// database.
func NewGormCanonStore(db *gorm.DB) CanonStore {
	return &gormCanonStore{db: db}
}

func (s *gormCanonStore) FindByKey(
	ctx context.Context, uniqueKey string,
) (*schema.CanonicalChartingRecord, error) {
	var rec schema.CanonicalChartingRecord
	err := s.db.WithContext(ctx).
		Where("unique_key = ?", uniqueKey).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, UpsertError("find", err)
	}
	return &rec, nil
}

func (s *gormCanonStore) Create(
	ctx context.Context, rec *schema.CanonicalChartingRecord,
) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return UpsertError("create", err)
	}
	return nil
}

func (s *gormCanonStore) Update(
	ctx context.Context, rec *schema.CanonicalChartingRecord,
) error {
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return UpsertError("update", err)
	}
	return nil
}
