package ioparity_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/chairside/r4sync/internal/iocanon"
	"github.com/chairside/r4sync/internal/ioparity"
	"github.com/chairside/r4sync/internal/iotesting"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// memReader is an in-memory destination side for parity checks.
type memReader struct {
	recs []schema.CanonicalChartingRecord
}

func (r *memReader) matches(
	rec schema.CanonicalChartingRecord,
	source string, domain r4.Domain, patientCode int, w r4.Window,
) bool {
	if rec.Source != source ||
		rec.Domain != string(domain) ||
		rec.PatientCode != patientCode {
		return false
	}
	if !w.From.IsZero() && rec.RecordedAt.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !rec.RecordedAt.Before(w.To) {
		return false
	}
	return true
}

func (r *memReader) Latest(
	_ context.Context, source string, domain r4.Domain, patientCode int, w r4.Window,
) (*schema.CanonicalChartingRecord, error) {
	var best *schema.CanonicalChartingRecord
	for i := range r.recs {
		rec := &r.recs[i]
		if !r.matches(*rec, source, domain, patientCode, w) {
			continue
		}
		switch {
		case best == nil,
			rec.RecordedAt.After(best.RecordedAt),
			rec.RecordedAt.Equal(best.RecordedAt) && rec.UniqueKey > best.UniqueKey:
			best = rec
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *memReader) Count(
	_ context.Context, source string, domain r4.Domain, patientCode int, w r4.Window,
) (int, error) {
	var n int
	for _, rec := range r.recs {
		if r.matches(rec, source, domain, patientCode, w) {
			n++
		}
	}
	return n, nil
}

func seedProbe(t *testing.T, db *sql.DB, transID, refID, code, depthMB int, at time.Time) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO PerioProbes
			(TransID, RefID, PatientCode, ExamDate, ToothNumber,
			 DepthMB, DepthB, DepthDB, DepthML, DepthL, DepthDL,
			 Bleeding, Mobility)
		VALUES (?, ?, ?, ?, 16, ?, 2, 3, 4, 3, 5, 1, 0)`,
		transID, refID, code, at, depthMB)
	require.NoError(t, err)
}

// canonRecords builds destination records by running the source rows
// through the same key and payload derivations the normalizer uses, so
// a faithful migration produces matching digests.
func canonRecords(
	t *testing.T, ext r4sync.Extractor, domain r4.Domain,
) []schema.CanonicalChartingRecord {
	t.Helper()
	var recs []schema.CanonicalChartingRecord
	err := ext.StreamCharting(context.Background(), domain, r4.Window{},
		func(c r4.ChartingCandidate) error {
			payload := iocanon.PayloadFor(c)
			recs = append(recs, schema.CanonicalChartingRecord{
				UniqueKey:   iocanon.UniqueKey("r4", c),
				Domain:      string(c.Domain),
				Source:      "r4",
				PatientCode: c.PatientCode,
				RecordedAt:  r4.NormalizeTime(c.RecordedAt),
				Tooth:       c.Tooth,
				Payload:     datatypes.JSONMap(payload),
				ContentHash: iocanon.ContentHash(payload),
			})
			return nil
		})
	require.NoError(t, err)
	return recs
}

func TestParityNoData(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	checker := ioparity.New("r4",
		iotesting.NewExtractor(t, db), &memReader{}, 2)

	report, err := checker.CheckCohort(context.Background(),
		[]int{1001}, []r4.Domain{r4.DomainPerioProbe}, r4.Window{})
	require.NoError(t, err)

	assert.Equal(t, r4sync.ParityNoData, report.Status)
	require.Len(t, report.Patients, 1)
	assert.Equal(t, r4sync.ParityNoData, report.Patients[0].Status)
	assert.Nil(t, report.FirstFailure)
	assert.NotEmpty(t, report.ReportID)
}

func TestParityPass(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedProbe(t, db, 1, 501, 1001, 3,
		time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	seedProbe(t, db, 2, 502, 1001, 4,
		time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC))
	ext := iotesting.NewExtractor(t, db)
	dest := &memReader{recs: canonRecords(t, ext, r4.DomainPerioProbe)}

	checker := ioparity.New("r4", ext, dest, 2)
	report, err := checker.CheckCohort(context.Background(),
		[]int{1001}, []r4.Domain{r4.DomainPerioProbe}, r4.Window{})
	require.NoError(t, err)

	assert.Equal(t, r4sync.ParityPass, report.Status)
	p := report.Patients[0]
	assert.Equal(t, r4sync.ParityPass, p.Status)
	assert.True(t, p.LatestMatch)
	assert.True(t, p.LatestDigestMatch)
	assert.Equal(t, p.SourceKey, p.DestKey)
	assert.Equal(t, p.SourceDigest, p.DestDigest)
}

// Both sides must elect the same "latest" row: the later exam wins
// regardless of insertion order.
func TestParityElectsLatest(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedProbe(t, db, 1, 501, 1001, 3,
		time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC))
	seedProbe(t, db, 2, 502, 1001, 4,
		time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	ext := iotesting.NewExtractor(t, db)
	dest := &memReader{recs: canonRecords(t, ext, r4.DomainPerioProbe)}

	checker := ioparity.New("r4", ext, dest, 1)
	report, err := checker.CheckCohort(context.Background(),
		[]int{1001}, []r4.Domain{r4.DomainPerioProbe}, r4.Window{})
	require.NoError(t, err)

	want := iocanon.UniqueKey("r4", r4.ChartingCandidate{
		Domain: r4.DomainPerioProbe, RefID: 501,
	})
	assert.Equal(t, want, report.Patients[0].SourceKey)
	assert.Equal(t, r4sync.ParityPass, report.Status)
}

func TestParityFailOnDigestMismatch(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedProbe(t, db, 1, 501, 1001, 3,
		time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	ext := iotesting.NewExtractor(t, db)

	recs := canonRecords(t, ext, r4.DomainPerioProbe)
	recs[0].Payload["depth_mb"] = int64(6) // destination drifted

	checker := ioparity.New("r4", ext, &memReader{recs: recs}, 2)
	report, err := checker.CheckCohort(context.Background(),
		[]int{1001}, []r4.Domain{r4.DomainPerioProbe}, r4.Window{})
	require.NoError(t, err)

	assert.Equal(t, r4sync.ParityFail, report.Status)
	p := report.Patients[0]
	assert.True(t, p.LatestMatch, "keys still agree")
	assert.False(t, p.LatestDigestMatch)
	require.NotNil(t, report.FirstFailure)
	assert.Equal(t, 1001, report.FirstFailure.PatientCode)
}

func TestParityFailOnMissingDestination(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedProbe(t, db, 1, 501, 1001, 3,
		time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	ext := iotesting.NewExtractor(t, db)

	checker := ioparity.New("r4", ext, &memReader{}, 2)
	report, err := checker.CheckCohort(context.Background(),
		[]int{1001}, []r4.Domain{r4.DomainPerioProbe}, r4.Window{})
	require.NoError(t, err)

	assert.Equal(t, r4sync.ParityFail, report.Status)
	p := report.Patients[0]
	assert.False(t, p.LatestMatch)
	assert.NotEmpty(t, p.SourceKey)
	assert.Empty(t, p.DestKey)
}

// A cohort mixing matching patients and patients without data passes;
// no_data is not a failure.
func TestParityAggregate(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedProbe(t, db, 1, 501, 1001, 3,
		time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	ext := iotesting.NewExtractor(t, db)
	dest := &memReader{recs: canonRecords(t, ext, r4.DomainPerioProbe)}

	checker := ioparity.New("r4", ext, dest, 4)
	report, err := checker.CheckCohort(context.Background(),
		[]int{1001, 2002}, []r4.Domain{r4.DomainPerioProbe}, r4.Window{})
	require.NoError(t, err)

	assert.Equal(t, r4sync.ParityPass, report.Status)
	require.Len(t, report.Patients, 2)
	assert.Equal(t, r4sync.ParityPass, report.Patients[0].Status)
	assert.Equal(t, r4sync.ParityNoData, report.Patients[1].Status)
}

// Result order is cohort order then domain order, independent of the
// concurrent execution schedule.
func TestParityDeterministicOrder(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	for i, code := range []int{1001, 1002, 1003} {
		seedProbe(t, db, i+1, 500+i, code, 3,
			time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	}
	ext := iotesting.NewExtractor(t, db)
	dest := &memReader{recs: canonRecords(t, ext, r4.DomainPerioProbe)}

	checker := ioparity.New("r4", ext, dest, 8)
	domains := []r4.Domain{r4.DomainPerioProbe, r4.DomainBPEScore}
	report, err := checker.CheckCohort(context.Background(),
		[]int{1003, 1001}, domains, r4.Window{})
	require.NoError(t, err)

	require.Len(t, report.Patients, 4)
	assert.Equal(t, 1003, report.Patients[0].PatientCode)
	assert.Equal(t, "perio_probe", report.Patients[0].Domain)
	assert.Equal(t, "bpe_score", report.Patients[1].Domain)
	assert.Equal(t, 1001, report.Patients[2].PatientCode)
	assert.Equal(t, []string{"perio_probe", "bpe_score"}, report.Domains)
}

// Windowing excludes newer rows from both sides symmetrically, so a
// historical check passes even after the source moved on.
func TestParityWindowed(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedProbe(t, db, 1, 501, 1001, 3,
		time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	ext := iotesting.NewExtractor(t, db)
	dest := &memReader{recs: canonRecords(t, ext, r4.DomainPerioProbe)}

	// Source gains a row after the migration snapshot.
	seedProbe(t, db, 2, 502, 1001, 4,
		time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC))

	w := r4.Window{To: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}
	checker := ioparity.New("r4", ext, dest, 1)
	report, err := checker.CheckCohort(context.Background(),
		[]int{1001}, []r4.Domain{r4.DomainPerioProbe}, w)
	require.NoError(t, err)
	assert.Equal(t, r4sync.ParityPass, report.Status)

	report, err = checker.CheckCohort(context.Background(),
		[]int{1001}, []r4.Domain{r4.DomainPerioProbe}, r4.Window{})
	require.NoError(t, err)
	assert.Equal(t, r4sync.ParityFail, report.Status,
		"unwindowed check sees the drift")
}
