// Package iocanon implements the CanonicalChartingNormalizer: many
// charting source shapes funneled into one canonical record shape with
// deterministic keys, content-hash dedup and drop-reason accounting.
package iocanon

import (
	"fmt"
	"strconv"

	"github.com/chairside/r4sync/pkg/r4"
)

// adapter describes how one charting domain maps onto the canonical
// shape. Domains are a strategy table, not a type hierarchy; adding a
// domain means adding a row here and a spec in the extractor.
type adapter struct {
	// requireTooth marks domains where a record without a tooth
	// anchor is meaningless (perio probing, furcations).
	requireTooth bool

	// requireCode marks domains where a classification code id is
	// required (completed findings).
	requireCode bool

	// excludeRestorative drops candidates whose description
	// classifies as restorative work; those live in the dedicated
	// treatment import, not in charting.
	excludeRestorative bool
}

var adapters = map[r4.Domain]adapter{
	r4.DomainPerioProbe:   {requireTooth: true},
	r4.DomainBPEScore:     {},
	r4.DomainBPEFurcation: {requireTooth: true},
	r4.DomainPatientNote:  {},
	r4.DomainCompletedFinding: {
		requireTooth:       true,
		requireCode:        true,
		excludeRestorative: true,
	},
}

// adapterFor returns the adapter for a domain.
func adapterFor(domain r4.Domain) (adapter, error) {
	a, ok := adapters[domain]
	if !ok {
		return adapter{}, AdapterError(string(domain),
			fmt.Errorf("unknown charting domain %q", domain))
	}
	return a, nil
}

// UniqueKey derives the deterministic canonical key for a candidate.
// A dedicated reference id is the preferred source-native identity;
// without one the key falls back to the composite of the fields that
// identify a finding. Both derivations are pure functions of the
// candidate, so re-extraction reproduces the same key.
func UniqueKey(source string, c r4.ChartingCandidate) string {
	if c.RefID > 0 {
		return r4.DeterministicID("charting",
			string(c.Domain), source, "ref", strconv.FormatInt(c.RefID, 10))
	}
	return r4.DeterministicID("charting",
		string(c.Domain), source,
		strconv.Itoa(c.PatientCode),
		r4.NormalizeTime(c.RecordedAt).Format("2006-01-02T15:04:05.000Z"),
		strconv.Itoa(c.Tooth),
		c.Surface,
		strconv.Itoa(c.PlanNumber),
		strconv.Itoa(c.ItemNumber),
	)
}

// PayloadFor builds the normalized canonical payload for a candidate:
// the domain measurements plus the describing fields that are not
// first-class columns.
func PayloadFor(c r4.ChartingCandidate) map[string]any {
	p := make(map[string]any, len(c.Payload)+3)
	for k, v := range c.Payload {
		p[k] = normalizePayloadValue(v)
	}
	if c.Description != "" {
		p["description"] = c.Description
	}
	if c.PlanNumber > 0 {
		p["plan_number"] = c.PlanNumber
	}
	if c.ItemNumber > 0 {
		p["item_number"] = c.ItemNumber
	}
	return p
}
