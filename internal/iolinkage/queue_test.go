package iolinkage_test

import (
	"context"
	"sort"
	"testing"

	"github.com/chairside/r4sync/internal/iolinkage"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memIssueStore is an in-memory IssueStore keyed by
// (source, entity_type, legacy_id).
type memIssueStore struct {
	issues map[[3]string]*schema.LinkageIssue
}

func newMemIssueStore() *memIssueStore {
	return &memIssueStore{issues: make(map[[3]string]*schema.LinkageIssue)}
}

func (s *memIssueStore) key(i *schema.LinkageIssue) [3]string {
	return [3]string{i.Source, i.EntityType, i.LegacyID}
}

func (s *memIssueStore) FindByKey(
	_ context.Context, source, entityType, legacyID string,
) (*schema.LinkageIssue, error) {
	issue, ok := s.issues[[3]string{source, entityType, legacyID}]
	if !ok {
		return nil, nil
	}
	cp := *issue
	return &cp, nil
}

func (s *memIssueStore) Create(_ context.Context, issue *schema.LinkageIssue) error {
	cp := *issue
	s.issues[s.key(issue)] = &cp
	return nil
}

func (s *memIssueStore) Update(_ context.Context, issue *schema.LinkageIssue) error {
	cp := *issue
	s.issues[s.key(issue)] = &cp
	return nil
}

func (s *memIssueStore) List(
	_ context.Context, status string,
) ([]schema.LinkageIssue, error) {
	var res []schema.LinkageIssue
	for _, issue := range s.issues {
		if status == "" || issue.Status == status {
			res = append(res, *issue)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.EntityType != b.EntityType {
			return a.EntityType < b.EntityType
		}
		return a.LegacyID < b.LegacyID
	})
	return res, nil
}

func (s *memIssueStore) Summarize(
	ctx context.Context,
) ([]r4sync.IssueSummaryRow, error) {
	counts := make(map[r4sync.IssueSummaryRow]int)
	for _, issue := range s.issues {
		counts[r4sync.IssueSummaryRow{
			Source:     issue.Source,
			EntityType: issue.EntityType,
			ReasonCode: issue.ReasonCode,
			Status:     issue.Status,
		}]++
	}
	var rows []r4sync.IssueSummaryRow
	for k, n := range counts {
		k.Count = n
		rows = append(rows, k)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.EntityType != b.EntityType {
			return a.EntityType < b.EntityType
		}
		if a.ReasonCode != b.ReasonCode {
			return a.ReasonCode < b.ReasonCode
		}
		return a.Status < b.Status
	})
	return rows, nil
}

func TestQueueRecordCreatesOpenIssue(t *testing.T) {
	ctx := context.Background()
	store := newMemIssueStore()
	q := iolinkage.NewQueue("r4", "migrator", store)

	err := q.Record(ctx, r4sync.Issue{
		EntityType:  r4.EntityAppointment,
		LegacyID:    "555",
		Reason:      r4.ReasonMissingPatientMapping,
		PatientCode: 9999,
		Details:     map[string]any{"appointment_id": 555},
	})
	require.NoError(t, err)

	issue, err := store.FindByKey(ctx, "r4", "appointment", "555")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, schema.IssueOpen, issue.Status)
	assert.Equal(t, "missing_patient_mapping", issue.ReasonCode)
	assert.Equal(t, 9999, issue.PatientCode)
	assert.Equal(t, "migrator", issue.CreatedBy)
}

// Legacy reason spellings collapse into the canonical vocabulary, so
// summaries over old and new runs group together.
func TestQueueRecordNormalizesReason(t *testing.T) {
	ctx := context.Background()
	store := newMemIssueStore()
	q := iolinkage.NewQueue("r4", "migrator", store)

	err := q.Record(ctx, r4sync.Issue{
		EntityType: r4.EntityTreatment,
		LegacyID:   "77",
		Reason:     r4.Reason("unmapped_patient"),
	})
	require.NoError(t, err)

	issue, err := store.FindByKey(ctx, "r4", "treatment", "77")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, "missing_patient_mapping", issue.ReasonCode)
}

// Re-ingestion refreshes the issue's facts but never duplicates the
// row or resets an operator decision.
func TestQueueRecordRefreshesWithoutReset(t *testing.T) {
	ctx := context.Background()
	store := newMemIssueStore()
	q := iolinkage.NewQueue("r4", "migrator", store)

	issue := r4sync.Issue{
		EntityType:  r4.EntityAppointment,
		LegacyID:    "555",
		Reason:      r4.ReasonMissingPatientMapping,
		PatientCode: 9999,
	}
	require.NoError(t, q.Record(ctx, issue))
	require.NoError(t, q.Record(ctx, issue))

	open, err := store.List(ctx, schema.IssueOpen)
	require.NoError(t, err)
	assert.Len(t, open, 1, "re-ingestion upserts, never duplicates")

	require.NoError(t, q.Ignore(ctx, r4.EntityAppointment, "555"))

	issue.PatientCode = 8888
	require.NoError(t, q.Record(ctx, issue))

	stored, err := store.FindByKey(ctx, "r4", "appointment", "555")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, schema.IssueIgnored, stored.Status,
		"operator status survives re-ingestion")
	assert.Equal(t, 8888, stored.PatientCode, "facts are refreshed")
}

func TestQueueResolveAndIgnore(t *testing.T) {
	ctx := context.Background()
	store := newMemIssueStore()
	q := iolinkage.NewQueue("r4", "ops", store)

	for _, id := range []string{"1", "2"} {
		require.NoError(t, q.Record(ctx, r4sync.Issue{
			EntityType: r4.EntityAppointment,
			LegacyID:   id,
			Reason:     r4.ReasonMissingPatientMapping,
		}))
	}

	require.NoError(t, q.Resolve(ctx, r4.EntityAppointment, "1"))
	require.NoError(t, q.Ignore(ctx, r4.EntityAppointment, "2"))

	one, _ := store.FindByKey(ctx, "r4", "appointment", "1")
	two, _ := store.FindByKey(ctx, "r4", "appointment", "2")
	assert.Equal(t, schema.IssueResolved, one.Status)
	assert.Equal(t, schema.IssueIgnored, two.Status)
	assert.Equal(t, "ops", one.UpdatedBy)
}

// Transitions are only valid from open; anything else is an operator
// error, not a silent overwrite.
func TestQueueTransitionErrors(t *testing.T) {
	ctx := context.Background()
	store := newMemIssueStore()
	q := iolinkage.NewQueue("r4", "ops", store)

	err := q.Resolve(ctx, r4.EntityAppointment, "absent")
	assert.Error(t, err, "unknown issue")

	require.NoError(t, q.Record(ctx, r4sync.Issue{
		EntityType: r4.EntityAppointment,
		LegacyID:   "1",
		Reason:     r4.ReasonMissingPatientMapping,
	}))
	require.NoError(t, q.Resolve(ctx, r4.EntityAppointment, "1"))

	assert.Error(t, q.Resolve(ctx, r4.EntityAppointment, "1"),
		"already resolved")
	assert.Error(t, q.Ignore(ctx, r4.EntityAppointment, "1"),
		"resolved issues cannot be ignored")
}

func TestQueueSummary(t *testing.T) {
	ctx := context.Background()
	store := newMemIssueStore()
	q := iolinkage.NewQueue("r4", "migrator", store)

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, q.Record(ctx, r4sync.Issue{
			EntityType: r4.EntityAppointment,
			LegacyID:   id,
			Reason:     r4.ReasonMissingPatientMapping,
		}))
	}
	require.NoError(t, q.Resolve(ctx, r4.EntityAppointment, "3"))

	rows, err := q.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, r4sync.IssueSummaryRow{
		Source:     "r4",
		EntityType: "appointment",
		ReasonCode: "missing_patient_mapping",
		Status:     schema.IssueOpen,
		Count:      2,
	}, rows[0])
	assert.Equal(t, 1, rows[1].Count)
	assert.Equal(t, schema.IssueResolved, rows[1].Status)
}
