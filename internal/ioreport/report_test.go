package ioreport_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/chairside/r4sync/internal/ioreport"
	"github.com/chairside/r4sync/internal/iotesting"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countReader stubs the destination with a fixed canonical count.
type countReader struct {
	count int
}

func (r *countReader) Latest(
	context.Context, string, r4.Domain, int, r4.Window,
) (*schema.CanonicalChartingRecord, error) {
	return nil, nil
}

func (r *countReader) Count(
	context.Context, string, r4.Domain, int, r4.Window,
) (int, error) {
	return r.count, nil
}

func seedFinding(
	t *testing.T, db *sql.DB,
	transID, refID, code, tooth, codeID int, desc string,
) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO CompletedTreatments
			(TransID, RefID, PatientCode, CompletedDate, ToothNumber,
			 Surface, CodeID, Description, PlanNumber, ItemNumber, Fee)
		VALUES (?, ?, ?, ?, ?, 'O', ?, ?, 1, 1, 50)`,
		transID, refID, code,
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		tooth, codeID, desc)
	require.NoError(t, err)
}

func TestDropReport(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedFinding(t, db, 1, 901, 1001, 26, 411, "Periapical radiograph")
	seedFinding(t, db, 2, 902, 1001, 27, 412, "Amalgam filling MOD")
	seedFinding(t, db, 3, 903, 1001, 0, 413, "Consultation")
	// Another patient's rows never enter this report.
	seedFinding(t, db, 4, 904, 2002, 11, 414, "Examination")

	rep := ioreport.New("r4",
		iotesting.NewExtractor(t, db), &countReader{count: 1})
	report, err := rep.Report(context.Background(),
		1001, r4.DomainCompletedFinding, r4.Window{})
	require.NoError(t, err)

	assert.Equal(t, "r4", report.Source)
	assert.Equal(t, 1001, report.PatientCode)
	assert.Equal(t, "completed_finding", report.Domain)
	assert.Equal(t, 3, report.SourceCount)
	assert.Equal(t, 1, report.DestCount)

	d := report.Drops
	assert.Equal(t, 3, d.Candidates)
	assert.Equal(t, 1, d.Included)
	assert.Equal(t, 1, d.Reasons[string(r4.ReasonRestorative)])
	assert.Equal(t, 1, d.Reasons[string(r4.ReasonMissingTooth)])

	// Every source row is accounted for: the delta between the stores
	// decomposes exactly into the drop reasons.
	assert.Equal(t, d.Candidates, d.Included+d.Dropped())
	assert.Equal(t, report.SourceCount-report.DestCount, d.Dropped())
}

func TestDropReportWindowed(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedFinding(t, db, 1, 901, 1001, 26, 411, "Periapical radiograph")
	_, err := db.Exec(
		`UPDATE CompletedTreatments SET CompletedDate = ? WHERE TransID = 1`,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	rep := ioreport.New("r4",
		iotesting.NewExtractor(t, db), &countReader{})
	w := r4.Window{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	report, err := rep.Report(context.Background(),
		1001, r4.DomainCompletedFinding, w)
	require.NoError(t, err)

	assert.Equal(t, 0, report.SourceCount,
		"windowing happens at the source, not in the pipeline")
	assert.Equal(t, 0, report.Drops.Candidates)
}

func TestDropReportNoData(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	rep := ioreport.New("r4",
		iotesting.NewExtractor(t, db), &countReader{})

	report, err := rep.Report(context.Background(),
		1001, r4.DomainCompletedFinding, r4.Window{})
	require.NoError(t, err)
	assert.Zero(t, report.SourceCount)
	assert.Zero(t, report.Drops.Candidates)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.NotEmpty(t, report.ReportID)
}

func TestDropReportUnknownDomain(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	rep := ioreport.New("r4",
		iotesting.NewExtractor(t, db), &countReader{})

	_, err := rep.Report(context.Background(),
		1001, r4.Domain("xrays"), r4.Window{})
	assert.Error(t, err)
}
