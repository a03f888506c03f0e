// Package ioreport implements the DropReportGenerator. A drop report
// explains the count delta between source and destination for one
// patient and domain by re-running the charting filter pipeline in
// reporting-only mode.
package ioreport

import (
	"context"
	"time"

	"github.com/chairside/r4sync/internal/iocanon"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/stats"
	"github.com/google/uuid"
)

type reporter struct {
	source string
	ext    r4sync.Extractor
	dest   iocanon.Reader
}

// New creates a DropReporter.
func New(source string, ext r4sync.Extractor, dest iocanon.Reader) r4sync.DropReporter {
	return &reporter{source: source, ext: ext, dest: dest}
}

// Report re-runs the filter pipeline for one patient and window and
// pairs its drop counters with independent raw counts from both
// stores. Nothing is written.
func (r *reporter) Report(
	ctx context.Context, patientCode int, domain r4.Domain, w r4.Window,
) (r4sync.DropReport, error) {
	scoped := w.SinglePatient(patientCode)

	pipe, err := iocanon.NewPipeline(r.source, domain, scoped)
	if err != nil {
		return r4sync.DropReport{}, err
	}

	drops := stats.NewDropAccumulator()
	err = r.ext.StreamCharting(ctx, domain, scoped,
		func(c r4.ChartingCandidate) error {
			if _, reason, included := pipe.Evaluate(c); !included {
				// Reason values reaching storage may be malformed in
				// old data; normalize and keep counting.
				drops.Drop(string(r4.CanonicalReason(string(reason))))
			} else {
				drops.Include()
			}
			return nil
		})
	if err != nil {
		return r4sync.DropReport{}, SourceError(patientCode, string(domain), err)
	}

	sourceCount, err := r.ext.CountCharting(ctx, domain, scoped)
	if err != nil {
		return r4sync.DropReport{}, CountError("source", patientCode, string(domain), err)
	}
	destCount, err := r.dest.Count(ctx, r.source, domain, patientCode, w)
	if err != nil {
		return r4sync.DropReport{}, CountError("destination", patientCode, string(domain), err)
	}

	return r4sync.DropReport{
		ReportID:    uuid.NewString(),
		Source:      r.source,
		PatientCode: patientCode,
		Domain:      string(domain),
		GeneratedAt: time.Now().UTC(),
		SourceCount: sourceCount,
		DestCount:   destCount,
		Drops:       drops.Finalize(),
	}, nil
}
