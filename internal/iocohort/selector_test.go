package iocohort_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/chairside/r4sync/internal/iocohort"
	"github.com/chairside/r4sync/internal/iotesting"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCharting(t *testing.T, db *sql.DB) {
	t.Helper()
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Perio data for 1001 and 1003, notes for 1001 and 1002.
	for i, code := range []int{1001, 1003} {
		_, err := db.Exec(`
			INSERT INTO PerioProbes
				(TransID, RefID, PatientCode, ExamDate, ToothNumber,
				 DepthMB, DepthB, DepthDB, DepthML, DepthL, DepthDL,
				 Bleeding, Mobility)
			VALUES (?, ?, ?, ?, 16, 3, 2, 3, 4, 3, 5, 0, 0)`,
			i+1, 500+i, code, at)
		require.NoError(t, err)
	}
	for i, code := range []int{1001, 1002} {
		_, err := db.Exec(`
			INSERT INTO PatientNotes (NoteID, PatientCode, NoteDate, NoteText)
			VALUES (?, ?, ?, 'note')`,
			i+1, code, at)
		require.NoError(t, err)
	}
}

func TestSelectCohortUnion(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedCharting(t, db)
	sel := iocohort.New(iotesting.NewExtractor(t, db))

	codes, err := sel.SelectCohort(context.Background(),
		[]r4.Domain{r4.DomainPerioProbe, r4.DomainPatientNote},
		r4.Window{}, r4sync.CohortUnion, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1001, 1002, 1003}, codes, "sorted union")
}

func TestSelectCohortIntersection(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedCharting(t, db)
	sel := iocohort.New(iotesting.NewExtractor(t, db))

	codes, err := sel.SelectCohort(context.Background(),
		[]r4.Domain{r4.DomainPerioProbe, r4.DomainPatientNote},
		r4.Window{}, r4sync.CohortIntersection, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1001}, codes,
		"only patients with data in every domain")
}

// The limit truncates after sorting, so repeated runs sample the same
// patients.
func TestSelectCohortLimit(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedCharting(t, db)
	sel := iocohort.New(iotesting.NewExtractor(t, db))

	codes, err := sel.SelectCohort(context.Background(),
		[]r4.Domain{r4.DomainPerioProbe, r4.DomainPatientNote},
		r4.Window{}, r4sync.CohortUnion, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1001, 1002}, codes)
}

// An empty domain list means every charting domain.
func TestSelectCohortDefaultDomains(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedCharting(t, db)
	sel := iocohort.New(iotesting.NewExtractor(t, db))

	codes, err := sel.SelectCohort(context.Background(),
		nil, r4.Window{}, r4sync.CohortUnion, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1001, 1002, 1003}, codes)

	codes, err = sel.SelectCohort(context.Background(),
		nil, r4.Window{}, r4sync.CohortIntersection, 0)
	require.NoError(t, err)
	assert.Empty(t, codes,
		"nobody has data in all five domains")
}

func TestSelectCohortWindowed(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	seedCharting(t, db)
	sel := iocohort.New(iotesting.NewExtractor(t, db))

	w := r4.Window{From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	codes, err := sel.SelectCohort(context.Background(),
		[]r4.Domain{r4.DomainPerioProbe}, w, r4sync.CohortUnion, 0)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

// A patient with many rows in one domain still appears once.
func TestSelectCohortDistinct(t *testing.T) {
	db := iotesting.NewSourceDB(t)
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := db.Exec(`
			INSERT INTO PatientNotes (NoteID, PatientCode, NoteDate, NoteText)
			VALUES (?, 1001, ?, 'note')`, i+1, at)
		require.NoError(t, err)
	}
	sel := iocohort.New(iotesting.NewExtractor(t, db))

	codes, err := sel.SelectCohort(context.Background(),
		[]r4.Domain{r4.DomainPatientNote},
		r4.Window{}, r4sync.CohortUnion, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1001}, codes)
}
