// Package ioparity implements the ParityEngine: a sampling spot-check
// of "latest state" per patient and domain between the legacy source
// and the destination. It is not a full diff; it reads both stores
// independently and compares latest keys and digests.
package ioparity

import (
	"context"
	"time"

	"github.com/chairside/r4sync/internal/iocanon"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type checker struct {
	source string
	ext    r4sync.Extractor
	dest   iocanon.Reader
	jobs   int
}

// New creates a ParityChecker. jobs bounds the concurrent per-patient
// checks; both sides are read-only so fan-out is safe.
func New(source string, ext r4sync.Extractor, dest iocanon.Reader, jobs int) r4sync.ParityChecker {
	if jobs < 1 {
		jobs = 1
	}
	return &checker{source: source, ext: ext, dest: dest, jobs: jobs}
}

// CheckCohort runs the parity check for every (patient, domain) pair
// of a cohort. Result order is deterministic: cohort order, then
// domain order.
func (c *checker) CheckCohort(
	ctx context.Context, codes []int, domains []r4.Domain, w r4.Window,
) (r4sync.ParityReport, error) {
	results := make([]r4sync.PatientParity, len(codes)*len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)
	for i, code := range codes {
		for j, domain := range domains {
			idx, code, domain := i*len(domains)+j, code, domain
			g.Go(func() error {
				p, err := c.checkOne(gctx, code, domain, w)
				if err != nil {
					return err
				}
				results[idx] = p
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return r4sync.ParityReport{}, err
	}

	report := r4sync.ParityReport{
		ReportID:    uuid.NewString(),
		Source:      c.source,
		GeneratedAt: time.Now().UTC(),
		Patients:    results,
	}
	for _, d := range domains {
		report.Domains = append(report.Domains, string(d))
	}
	report.Status = aggregate(results)
	for i := range results {
		if results[i].Status == r4sync.ParityFail {
			report.FirstFailure = &results[i]
			break
		}
	}
	return report, nil
}

// checkOne compares latest state for one (patient, domain) pair. A
// patient with zero in-window source rows is no_data, which is
// distinct from a mismatch.
func (c *checker) checkOne(
	ctx context.Context, code int, domain r4.Domain, w r4.Window,
) (r4sync.PatientParity, error) {
	p := r4sync.PatientParity{
		PatientCode: code,
		Domain:      string(domain),
	}

	srcKey, srcDigest, n, err := c.sourceLatest(ctx, code, domain, w)
	if err != nil {
		return p, SourceError(code, string(domain), err)
	}
	if n == 0 {
		p.Status = r4sync.ParityNoData
		return p, nil
	}
	p.SourceKey = srcKey
	p.SourceDigest = srcDigest

	rec, err := c.dest.Latest(ctx, c.source, domain, code, w)
	if err != nil {
		return p, DestinationError(code, string(domain), err)
	}
	if rec != nil {
		p.DestKey = rec.UniqueKey
		p.DestDigest = iocanon.ContentHash(rec.Payload)
	}

	p.LatestMatch = rec != nil && p.SourceKey == p.DestKey
	p.LatestDigestMatch = p.LatestMatch && p.SourceDigest == p.DestDigest
	if p.LatestMatch && p.LatestDigestMatch {
		p.Status = r4sync.ParityPass
	} else {
		p.Status = r4sync.ParityFail
	}
	return p, nil
}

// sourceLatest streams the in-window source rows for one patient and
// keeps the most recent one: max recorded_at, ties broken by the
// derived unique key so both stores elect the same winner.
func (c *checker) sourceLatest(
	ctx context.Context, code int, domain r4.Domain, w r4.Window,
) (key, digest string, n int, err error) {
	var (
		latest    r4.ChartingCandidate
		latestKey string
		found     bool
	)

	err = c.ext.StreamCharting(ctx, domain, w.SinglePatient(code),
		func(cand r4.ChartingCandidate) error {
			n++
			k := iocanon.UniqueKey(c.source, cand)
			at := r4.NormalizeTime(cand.RecordedAt)
			switch {
			case !found,
				at.After(r4.NormalizeTime(latest.RecordedAt)),
				at.Equal(r4.NormalizeTime(latest.RecordedAt)) && k > latestKey:
				latest = cand
				latestKey = k
				found = true
			}
			return nil
		})
	if err != nil {
		return "", "", 0, err
	}
	if !found {
		return "", "", 0, nil
	}
	return latestKey, iocanon.ContentHash(iocanon.PayloadFor(latest)), n, nil
}

// aggregate folds per-patient results into the cohort status: pass
// when every patient with data matches, no_data when nothing had data,
// fail otherwise.
func aggregate(results []r4sync.PatientParity) string {
	anyData := false
	for _, p := range results {
		switch p.Status {
		case r4sync.ParityFail:
			return r4sync.ParityFail
		case r4sync.ParityPass:
			anyData = true
		}
	}
	if !anyData {
		return r4sync.ParityNoData
	}
	return r4sync.ParityPass
}
