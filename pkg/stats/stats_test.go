package stats_test

import (
	"testing"

	"github.com/chairside/r4sync/pkg/stats"
	"github.com/stretchr/testify/assert"
)

func TestAccumulator(t *testing.T) {
	acc := stats.NewAccumulator("appointment")

	acc.Created()
	acc.Created()
	acc.Updated()
	acc.Skipped()
	acc.Unmapped()
	acc.PatientConflict()
	acc.Row("1")
	acc.Row("2")
	acc.Row("3")
	acc.Row("4")

	s := acc.Finalize()
	assert.Equal(t, "appointment", s.Entity)
	assert.Equal(t, 2, s.Created)
	assert.Equal(t, 1, s.Updated)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Unmapped)
	assert.Equal(t, 1, s.PatientConflicts)
	assert.Equal(t, 4, s.Processed)
	assert.Equal(t, "4", s.LastKey)
}

func TestPipelineSummary(t *testing.T) {
	var p stats.PipelineSummary
	p.Add(stats.ImportSummary{Entity: "patient", Created: 10, Processed: 10})
	p.Add(stats.ImportSummary{Entity: "appointment", Created: 3, Skipped: 7, Processed: 10})

	totals := p.Totals()
	assert.Equal(t, "all", totals.Entity)
	assert.Equal(t, 13, totals.Created)
	assert.Equal(t, 7, totals.Skipped)
	assert.Equal(t, 20, totals.Processed)
	assert.Len(t, p.Runs, 2)
}

func TestDropAccumulator(t *testing.T) {
	drops := stats.NewDropAccumulator()

	drops.Include()
	drops.Include()
	drops.Include()
	drops.Drop("missing_tooth")
	drops.Drop("missing_tooth")
	drops.Drop("duplicate_key")
	drops.Unlinked()

	s := drops.Finalize()
	assert.Equal(t, 6, s.Candidates)
	assert.Equal(t, 3, s.Included)
	assert.Equal(t, 3, s.Dropped())
	assert.Equal(t, 1, s.Unlinked, "unlinked is not a drop reason")
	assert.Equal(t, 2, s.Reasons["missing_tooth"])
	assert.Equal(t, 1, s.Reasons["duplicate_key"])
}

// Every candidate is either included or dropped under exactly one
// reason; the buckets always reconcile.
func TestDropCompleteness(t *testing.T) {
	drops := stats.NewDropAccumulator()

	reasons := []string{
		"out_of_window", "missing_patient_code", "missing_tooth",
		"missing_code_id", "restorative_excluded", "duplicate_key",
	}
	for i, r := range reasons {
		for j := 0; j <= i; j++ {
			drops.Drop(r)
		}
	}
	for i := 0; i < 5; i++ {
		drops.Include()
	}

	s := drops.Finalize()
	assert.Equal(t, s.Candidates, s.Dropped()+s.Included)
	assert.ElementsMatch(t, reasons, s.ReasonList())
}

func TestDropSummaryReasonListSorted(t *testing.T) {
	drops := stats.NewDropAccumulator()
	drops.Drop("zeta")
	drops.Drop("alpha")
	drops.Drop("mid")

	assert.Equal(t, []string{"alpha", "mid", "zeta"},
		drops.Finalize().ReasonList())
}
