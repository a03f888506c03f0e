// Package stats provides per-run accumulators for import and
// charting pipelines. Accumulators are process-local mutable state
// threaded explicitly through a run; Finalize produces an immutable
// summary. No package-level state, so parallel tests stay safe.
package stats

import (
	"maps"
	"sort"
)

// Accumulator gathers counters during a single importer run.
// Not safe for concurrent use; each run owns its accumulator.
type Accumulator struct {
	entity           string
	created          int
	updated          int
	skipped          int
	unmapped         int
	patientConflicts int
	processed        int
	lastKey          string
}

// NewAccumulator creates an accumulator for one entity run.
func NewAccumulator(entity string) *Accumulator {
	return &Accumulator{entity: entity}
}

// Created increments the created counter.
func (a *Accumulator) Created() { a.created++ }

// Updated increments the updated counter.
func (a *Accumulator) Updated() { a.updated++ }

// Skipped increments the skipped counter.
func (a *Accumulator) Skipped() { a.skipped++ }

// Unmapped increments the unmapped patient-reference counter.
func (a *Accumulator) Unmapped() { a.unmapped++ }

// PatientConflict increments the conflicting-link counter.
func (a *Accumulator) PatientConflict() { a.patientConflicts++ }

// Row records one processed source row and its natural key.
func (a *Accumulator) Row(naturalKey string) {
	a.processed++
	a.lastKey = naturalKey
}

// Processed returns the number of rows seen so far.
func (a *Accumulator) Processed() int { return a.processed }

// LastKey returns the natural key of the most recent row.
func (a *Accumulator) LastKey() string { return a.lastKey }

// Finalize produces an immutable summary of the run.
func (a *Accumulator) Finalize() ImportSummary {
	return ImportSummary{
		Entity:           a.entity,
		Created:          a.created,
		Updated:          a.updated,
		Skipped:          a.skipped,
		Unmapped:         a.unmapped,
		PatientConflicts: a.patientConflicts,
		Processed:        a.processed,
		LastKey:          a.lastKey,
	}
}

// ImportSummary is the immutable result of one importer run.
type ImportSummary struct {
	Entity           string `json:"entity"`
	Created          int    `json:"created"`
	Updated          int    `json:"updated"`
	Skipped          int    `json:"skipped"`
	Unmapped         int    `json:"unmapped"`
	PatientConflicts int    `json:"patient_conflicts"`
	Processed        int    `json:"processed"`
	LastKey          string `json:"last_key,omitempty"`
}

// PipelineSummary composes several importer summaries. Composition is
// the caller's job; importers only ever return their own summary.
type PipelineSummary struct {
	Runs []ImportSummary `json:"runs"`
}

// Add appends a run summary.
func (p *PipelineSummary) Add(s ImportSummary) {
	p.Runs = append(p.Runs, s)
}

// Totals sums counters across all runs.
func (p *PipelineSummary) Totals() ImportSummary {
	var t ImportSummary
	t.Entity = "all"
	for _, s := range p.Runs {
		t.Created += s.Created
		t.Updated += s.Updated
		t.Skipped += s.Skipped
		t.Unmapped += s.Unmapped
		t.PatientConflicts += s.PatientConflicts
		t.Processed += s.Processed
	}
	return t
}

// DropAccumulator gathers drop-reason counters during a charting run.
// Not safe for concurrent use.
type DropAccumulator struct {
	reasons    map[string]int
	included   int
	unlinked   int
	candidates int
}

// NewDropAccumulator creates an empty drop accumulator.
func NewDropAccumulator() *DropAccumulator {
	return &DropAccumulator{reasons: make(map[string]int)}
}

// Drop records a dropped candidate under a reason code.
func (d *DropAccumulator) Drop(reason string) {
	d.candidates++
	d.reasons[reason]++
}

// Include records a candidate that passed the whole pipeline.
func (d *DropAccumulator) Include() {
	d.candidates++
	d.included++
}

// Unlinked records an included candidate whose patient code had no
// mapping. Unlinked rows are imported with a null patient link; they
// are a distinct bucket, not a drop reason.
func (d *DropAccumulator) Unlinked() { d.unlinked++ }

// Finalize produces an immutable summary. The invariant
// sum(reasons) + included == candidates holds for every run.
func (d *DropAccumulator) Finalize() DropSummary {
	return DropSummary{
		Reasons:    maps.Clone(d.reasons),
		Included:   d.included,
		Unlinked:   d.unlinked,
		Candidates: d.candidates,
	}
}

// DropSummary is the immutable result of one charting run's filter
// pipeline.
type DropSummary struct {
	Reasons    map[string]int `json:"reasons"`
	Included   int            `json:"included"`
	Unlinked   int            `json:"unlinked"`
	Candidates int            `json:"candidates"`
}

// Dropped returns the total of all drop reasons.
func (d DropSummary) Dropped() int {
	var n int
	for _, v := range d.Reasons {
		n += v
	}
	return n
}

// ReasonList returns reason codes sorted alphabetically, for
// deterministic report output.
func (d DropSummary) ReasonList() []string {
	res := make([]string, 0, len(d.Reasons))
	for k := range d.Reasons {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
