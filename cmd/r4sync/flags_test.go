package main

import (
	"testing"
	"time"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFlags(t *testing.T) {
	wf := windowFlags{
		fromCode: 1000,
		toCode:   2000,
		fromDate: "2024-01-01",
		toDate:   "2024-07-01",
	}

	w, err := wf.window()
	require.NoError(t, err)
	assert.Equal(t, 1000, w.FromCode)
	assert.Equal(t, 2000, w.ToCode)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), w.To)

	w, err = (&windowFlags{}).window()
	require.NoError(t, err)
	assert.True(t, w.From.IsZero())
	assert.Zero(t, w.FromCode)
}

func TestWindowFlagsBadDates(t *testing.T) {
	_, err := (&windowFlags{fromDate: "01/02/2024"}).window()
	assert.ErrorContains(t, err, "from-date")

	_, err = (&windowFlags{toDate: "2024-13-01"}).window()
	assert.ErrorContains(t, err, "to-date")
}

func TestParseDomains(t *testing.T) {
	ds, err := parseDomains("")
	require.NoError(t, err)
	assert.Equal(t, r4.Domains(), ds, "empty means every domain")

	ds, err = parseDomains("perio_probe, bpe_score")
	require.NoError(t, err)
	assert.Equal(t, []r4.Domain{r4.DomainPerioProbe, r4.DomainBPEScore}, ds)

	_, err = parseDomains("perio_probe,xrays")
	assert.ErrorContains(t, err, "xrays")
}

func TestParseEntities(t *testing.T) {
	es, err := parseEntities("")
	require.NoError(t, err)
	assert.Equal(t, r4.EntityTypes(), es, "empty means every entity")

	// Selection preserves dependency order regardless of input order.
	es, err = parseEntities("appointment,patient")
	require.NoError(t, err)
	assert.Equal(t,
		[]r4.EntityType{r4.EntityPatient, r4.EntityAppointment}, es)

	_, err = parseEntities("invoices")
	assert.ErrorContains(t, err, "invoices")
}

func TestParseCodes(t *testing.T) {
	codes, err := parseCodes("1001, 1003,1002")
	require.NoError(t, err)
	assert.Equal(t, []int{1001, 1003, 1002}, codes)

	_, err = parseCodes("1001,abc")
	assert.Error(t, err)

	_, err = parseCodes("0")
	assert.Error(t, err, "codes are positive")
}

func TestParseCohortMode(t *testing.T) {
	m, err := parseCohortMode("union")
	require.NoError(t, err)
	assert.Equal(t, r4sync.CohortUnion, m)

	m, err = parseCohortMode("intersection")
	require.NoError(t, err)
	assert.Equal(t, r4sync.CohortIntersection, m)

	_, err = parseCohortMode("sample")
	assert.Error(t, err)
}
