package iocanon

import (
	"github.com/chairside/r4sync/pkg/r4"
)

// Pipeline is the per-candidate filter chain for one normalizer run.
// Rules fire in a fixed order and the first match wins; the order is
// part of the contract because drop reports are compared across runs.
type Pipeline struct {
	source string
	domain r4.Domain
	a      adapter
	w      r4.Window
	seen   map[string]struct{}
}

// NewPipeline creates a pipeline for one domain and window. The
// duplicate-key memory is per pipeline, i.e. per batch.
func NewPipeline(source string, domain r4.Domain, w r4.Window) (*Pipeline, error) {
	a, err := adapterFor(domain)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		source: source,
		domain: domain,
		a:      a,
		w:      w,
		seen:   make(map[string]struct{}),
	}, nil
}

// Evaluate runs the filter chain over one candidate. It returns the
// candidate's unique key and, when the candidate is dropped, the
// first matching drop reason.
func (p *Pipeline) Evaluate(c r4.ChartingCandidate) (key string, reason r4.Reason, included bool) {
	key = UniqueKey(p.source, c)

	switch {
	case !p.w.ContainsTime(c.RecordedAt):
		return key, r4.ReasonOutOfWindow, false
	case c.PatientCode <= 0:
		return key, r4.ReasonMissingPatientCode, false
	case p.a.requireTooth && c.Tooth <= 0:
		return key, r4.ReasonMissingTooth, false
	case p.a.requireCode && c.CodeID <= 0:
		return key, r4.ReasonMissingCodeID, false
	case p.a.excludeRestorative &&
		r4.ClassifyTreatment(c.Description) == r4.ClassRestorative:
		return key, r4.ReasonRestorative, false
	}

	if _, dup := p.seen[key]; dup {
		return key, r4.ReasonDuplicateKey, false
	}
	p.seen[key] = struct{}{}
	return key, "", true
}
