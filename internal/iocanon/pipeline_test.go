package iocanon_test

import (
	"testing"
	"time"

	"github.com/chairside/r4sync/internal/iocanon"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findingCandidate() r4.ChartingCandidate {
	return r4.ChartingCandidate{
		Domain:      r4.DomainCompletedFinding,
		RefID:       900,
		PatientCode: 1001,
		RecordedAt:  time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC),
		Tooth:       26,
		Surface:     "MOD",
		CodeID:      411,
		Description: "Periapical radiograph",
		PlanNumber:  2,
		ItemNumber:  1,
	}
}

func TestPipelineIncludesValidCandidate(t *testing.T) {
	pipe, err := iocanon.NewPipeline(
		"r4", r4.DomainCompletedFinding, r4.Window{})
	require.NoError(t, err)

	key, reason, included := pipe.Evaluate(findingCandidate())
	assert.True(t, included)
	assert.Empty(t, string(reason))
	assert.Equal(t, iocanon.UniqueKey("r4", findingCandidate()), key)
}

func TestPipelineUnknownDomain(t *testing.T) {
	_, err := iocanon.NewPipeline("r4", r4.Domain("xrays"), r4.Window{})
	assert.Error(t, err)
}

// The rule order is fixed: a candidate matching several rules reports
// the earliest one, so drop reports stay comparable across runs.
func TestPipelineRuleOrder(t *testing.T) {
	w := r4.Window{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		msg    string
		mut    func(*r4.ChartingCandidate)
		reason r4.Reason
	}{
		{
			msg: "out of window wins over everything",
			mut: func(c *r4.ChartingCandidate) {
				c.RecordedAt = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
				c.PatientCode = 0
				c.Tooth = 0
			},
			reason: r4.ReasonOutOfWindow,
		},
		{
			msg: "missing patient code before missing tooth",
			mut: func(c *r4.ChartingCandidate) {
				c.PatientCode = 0
				c.Tooth = 0
			},
			reason: r4.ReasonMissingPatientCode,
		},
		{
			msg: "missing tooth before missing code id",
			mut: func(c *r4.ChartingCandidate) {
				c.Tooth = 0
				c.CodeID = 0
			},
			reason: r4.ReasonMissingTooth,
		},
		{
			msg: "missing code id before restorative exclusion",
			mut: func(c *r4.ChartingCandidate) {
				c.CodeID = 0
				c.Description = "Amalgam filling MOD"
			},
			reason: r4.ReasonMissingCodeID,
		},
		{
			msg: "restorative findings live in the treatment import",
			mut: func(c *r4.ChartingCandidate) {
				c.Description = "Amalgam filling MOD"
			},
			reason: r4.ReasonRestorative,
		},
	}

	for _, v := range tests {
		pipe, err := iocanon.NewPipeline(
			"r4", r4.DomainCompletedFinding, w)
		require.NoError(t, err, v.msg)

		c := findingCandidate()
		v.mut(&c)
		_, reason, included := pipe.Evaluate(c)
		assert.False(t, included, v.msg)
		assert.Equal(t, v.reason, reason, v.msg)
	}
}

// Windows constrain charting by date only; patient-code bounds apply
// to entity imports, not to the drop pipeline.
func TestPipelineWindowIsDateOnly(t *testing.T) {
	w := r4.Window{FromCode: 5000, ToCode: 6000}
	pipe, err := iocanon.NewPipeline(
		"r4", r4.DomainCompletedFinding, w)
	require.NoError(t, err)

	_, _, included := pipe.Evaluate(findingCandidate())
	assert.True(t, included, "code bounds never drop charting rows")
}

// Root fillings classify as endodontic, so they survive the
// restorative exclusion even though "filling" appears in the text.
func TestPipelineEndodonticNotExcluded(t *testing.T) {
	pipe, err := iocanon.NewPipeline(
		"r4", r4.DomainCompletedFinding, r4.Window{})
	require.NoError(t, err)

	c := findingCandidate()
	c.Description = "Root filling LR6"
	_, _, included := pipe.Evaluate(c)
	assert.True(t, included)
}

// BPE scores and patient notes are not tooth-anchored; a zero tooth
// must not drop them.
func TestPipelineToothRequirementPerDomain(t *testing.T) {
	for _, domain := range []r4.Domain{
		r4.DomainBPEScore, r4.DomainPatientNote,
	} {
		pipe, err := iocanon.NewPipeline("r4", domain, r4.Window{})
		require.NoError(t, err)

		_, _, included := pipe.Evaluate(r4.ChartingCandidate{
			Domain:      domain,
			RefID:       10,
			PatientCode: 1001,
			RecordedAt:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.True(t, included, string(domain))
	}

	for _, domain := range []r4.Domain{
		r4.DomainPerioProbe, r4.DomainBPEFurcation,
	} {
		pipe, err := iocanon.NewPipeline("r4", domain, r4.Window{})
		require.NoError(t, err)

		_, reason, included := pipe.Evaluate(r4.ChartingCandidate{
			Domain:      domain,
			RefID:       10,
			PatientCode: 1001,
			RecordedAt:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.False(t, included, string(domain))
		assert.Equal(t, r4.ReasonMissingTooth, reason, string(domain))
	}
}

// The duplicate-key memory is per pipeline: the first occurrence wins,
// repeats within the batch drop.
func TestPipelineDuplicateKeyWithinBatch(t *testing.T) {
	pipe, err := iocanon.NewPipeline(
		"r4", r4.DomainPerioProbe, r4.Window{})
	require.NoError(t, err)

	c := r4.ChartingCandidate{
		Domain:      r4.DomainPerioProbe,
		RefID:       501,
		PatientCode: 1001,
		RecordedAt:  time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		Tooth:       16,
	}

	k1, _, included := pipe.Evaluate(c)
	require.True(t, included)

	k2, reason, included := pipe.Evaluate(c)
	assert.False(t, included)
	assert.Equal(t, r4.ReasonDuplicateKey, reason)
	assert.Equal(t, k1, k2)

	// A fresh pipeline forgets the batch.
	pipe2, err := iocanon.NewPipeline(
		"r4", r4.DomainPerioProbe, r4.Window{})
	require.NoError(t, err)
	_, _, included = pipe2.Evaluate(c)
	assert.True(t, included)
}

// Dropped candidates do not claim their key: a row rejected by an
// earlier rule must not shadow a later valid row with the same key.
func TestPipelineDropsDoNotClaimKeys(t *testing.T) {
	w := r4.Window{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	pipe, err := iocanon.NewPipeline(
		"r4", r4.DomainCompletedFinding, w)
	require.NoError(t, err)

	early := findingCandidate()
	early.RecordedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	_, reason, included := pipe.Evaluate(early)
	require.False(t, included)
	require.Equal(t, r4.ReasonOutOfWindow, reason)

	_, _, included = pipe.Evaluate(findingCandidate())
	assert.True(t, included)
}
