package ioimport

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store persists one snapshot entity type keyed by (source, legacy
// id). The interface lives on the consumer side so importer logic runs
// against an in-memory fake in tests.
type Store[M any] interface {
	// Find returns the row for a natural key, or nil when absent.
	Find(ctx context.Context, source, legacyID string) (*M, error)

	// Create inserts a new row. A natural-key collision is a
	// constraint violation and fatal for the run.
	Create(ctx context.Context, rec *M) error

	// Update saves an existing row in place.
	Update(ctx context.Context, rec *M) error
}

type gormStore[M any] struct {
	db *gorm.DB
}

// NewGormStore returns a Store over the destination database for any
// snapshot model carrying source and legacy_id columns.
func NewGormStore[M any](db *gorm.DB) Store[M] {
	return &gormStore[M]{db: db}
}

func (s *gormStore[M]) Find(ctx context.Context, source, legacyID string) (*M, error) {
	var m M
	err := s.db.WithContext(ctx).
		Where("source = ? AND legacy_id = ?", source, legacyID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ReadError(legacyID, err)
	}
	return &m, nil
}

func (s *gormStore[M]) Create(ctx context.Context, rec *M) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return UpsertError("create", err)
	}
	return nil
}

func (s *gormStore[M]) Update(ctx context.Context, rec *M) error {
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return UpsertError("update", err)
	}
	return nil
}
