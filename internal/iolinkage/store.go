package iolinkage

import (
	"context"
	"errors"

	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
	"gorm.io/gorm"
)

// IssueStore persists linkage issues keyed by
// (source, entity_type, legacy_id).
type IssueStore interface {
	// FindByKey returns the issue for a key, or nil when absent.
	FindByKey(ctx context.Context, source, entityType, legacyID string) (*schema.LinkageIssue, error)

	Create(ctx context.Context, issue *schema.LinkageIssue) error
	Update(ctx context.Context, issue *schema.LinkageIssue) error

	// Summarize returns counts grouped by (reason_code, status) per
	// (source, entity_type), in deterministic order.
	Summarize(ctx context.Context) ([]r4sync.IssueSummaryRow, error)

	// List returns issues with a status, in key order. An empty
	// status lists everything.
	List(ctx context.Context, status string) ([]schema.LinkageIssue, error)
}

type gormIssueStore struct {
	db *gorm.DB
}

// NewGormIssueStore returns an IssueStore over the destination
// database.
func NewGormIssueStore(db *gorm.DB) IssueStore {
	return &gormIssueStore{db: db}
}

func (s *gormIssueStore) FindByKey(
	ctx context.Context, source, entityType, legacyID string,
) (*schema.LinkageIssue, error) {
	var issue schema.LinkageIssue
	err := s.db.WithContext(ctx).
		Where("source = ? AND entity_type = ? AND legacy_id = ?",
			source, entityType, legacyID).
		First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, UpsertError("find", err)
	}
	return &issue, nil
}

func (s *gormIssueStore) Create(ctx context.Context, issue *schema.LinkageIssue) error {
	if err := s.db.WithContext(ctx).Create(issue).Error; err != nil {
		return UpsertError("create", err)
	}
	return nil
}

func (s *gormIssueStore) Update(ctx context.Context, issue *schema.LinkageIssue) error {
	if err := s.db.WithContext(ctx).Save(issue).Error; err != nil {
		return UpsertError("update", err)
	}
	return nil
}

func (s *gormIssueStore) List(
	ctx context.Context, status string,
) ([]schema.LinkageIssue, error) {
	q := s.db.WithContext(ctx).Model(&schema.LinkageIssue{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var issues []schema.LinkageIssue
	err := q.Order("source, entity_type, legacy_id").Find(&issues).Error
	if err != nil {
		return nil, UpsertError("list", err)
	}
	return issues, nil
}

func (s *gormIssueStore) Summarize(ctx context.Context) ([]r4sync.IssueSummaryRow, error) {
	var rows []r4sync.IssueSummaryRow
	err := s.db.WithContext(ctx).
		Model(&schema.LinkageIssue{}).
		Select("source, entity_type, reason_code, status, count(*) as count").
		Group("source, entity_type, reason_code, status").
		Order("source, entity_type, reason_code, status").
		Scan(&rows).Error
	if err != nil {
		return nil, SummaryError(err)
	}
	return rows, nil
}
