// Package iolinkage implements the LinkageQueue: the durable backlog
// of unresolved references produced by imports and charting runs.
// Imports create and refresh issues; only operators move an issue out
// of open.
package iolinkage

import (
	"context"
	"time"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
	"gorm.io/datatypes"
)

type queue struct {
	source string
	actor  string
	store  IssueStore
}

// NewQueue creates a LinkageQueue over an issue store.
func NewQueue(source, actor string, store IssueStore) r4sync.LinkageQueue {
	return &queue{source: source, actor: actor, store: store}
}

// Record upserts an issue. Reason codes are normalized through the
// legacy alias table before storage, so historic and current runs use
// one vocabulary. Re-ingestion refreshes reason, patient code and
// details; the status of a resolved or ignored issue is never reset.
func (q *queue) Record(ctx context.Context, issue r4sync.Issue) error {
	reason := string(r4.CanonicalReason(string(issue.Reason)))

	existing, err := q.store.FindByKey(
		ctx, q.source, string(issue.EntityType), issue.LegacyID)
	if err != nil {
		return err
	}

	if existing == nil {
		rec := schema.LinkageIssue{
			Source:      q.source,
			EntityType:  string(issue.EntityType),
			LegacyID:    issue.LegacyID,
			ReasonCode:  reason,
			Status:      schema.IssueOpen,
			PatientCode: issue.PatientCode,
			Details:     datatypes.JSONMap(issue.Details),
		}
		rec.StampCreate(q.actor, time.Now().UTC())
		return q.store.Create(ctx, &rec)
	}

	existing.ReasonCode = reason
	existing.PatientCode = issue.PatientCode
	existing.Details = datatypes.JSONMap(issue.Details)
	existing.StampUpdate(q.actor, time.Now().UTC())
	return q.store.Update(ctx, existing)
}

// Resolve marks an open issue resolved.
func (q *queue) Resolve(ctx context.Context, entityType r4.EntityType, legacyID string) error {
	return q.transition(ctx, entityType, legacyID, schema.IssueResolved)
}

// Ignore marks an open issue ignored.
func (q *queue) Ignore(ctx context.Context, entityType r4.EntityType, legacyID string) error {
	return q.transition(ctx, entityType, legacyID, schema.IssueIgnored)
}

func (q *queue) transition(
	ctx context.Context, entityType r4.EntityType, legacyID, status string,
) error {
	existing, err := q.store.FindByKey(ctx, q.source, string(entityType), legacyID)
	if err != nil {
		return err
	}
	if existing == nil {
		return StatusError(string(entityType), legacyID, "", status)
	}
	if existing.Status != schema.IssueOpen {
		return StatusError(string(entityType), legacyID, existing.Status, status)
	}
	existing.Status = status
	existing.StampUpdate(q.actor, time.Now().UTC())
	return q.store.Update(ctx, existing)
}

// Summary returns issue counts grouped by (reason code, status) per
// (source, entity type).
func (q *queue) Summary(ctx context.Context) ([]r4sync.IssueSummaryRow, error) {
	return q.store.Summarize(ctx)
}
