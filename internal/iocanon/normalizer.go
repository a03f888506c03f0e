package iocanon

import (
	"context"
	"log/slog"
	"time"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
	"github.com/chairside/r4sync/pkg/stats"
	"gorm.io/datatypes"
)

type normalizer struct {
	source   string
	actor    string
	ext      r4sync.Extractor
	store    CanonStore
	resolver r4sync.Resolver
	queue    r4sync.LinkageQueue
	progress r4sync.ProgressFunc
	every    int
}

// New creates a Normalizer. resolver and queue may be nil in
// reporting-only setups; unresolved patients then simply stay
// unlinked.
func New(
	source, actor string,
	ext r4sync.Extractor,
	store CanonStore,
	resolver r4sync.Resolver,
	queue r4sync.LinkageQueue,
	opts ...Option,
) r4sync.Normalizer {
	n := &normalizer{
		source:   source,
		actor:    actor,
		ext:      ext,
		store:    store,
		resolver: resolver,
		queue:    queue,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Option adjusts normalizer construction.
type Option func(*normalizer)

// WithProgress emits a checkpoint to fn every n processed candidates.
func WithProgress(fn r4sync.ProgressFunc, n int) Option {
	return func(nz *normalizer) {
		nz.progress = fn
		nz.every = n
	}
}

// Run streams one charting domain through the filter pipeline and
// upserts the surviving candidates. With dryRun the pipeline and all
// accounting execute fully but nothing is written.
func (n *normalizer) Run(
	ctx context.Context, domain r4.Domain, w r4.Window, dryRun bool,
) (r4sync.ChartingSummary, error) {
	pipe, err := NewPipeline(n.source, domain, w)
	if err != nil {
		return r4sync.ChartingSummary{}, err
	}

	acc := stats.NewAccumulator(string(domain))
	drops := stats.NewDropAccumulator()
	start := time.Now()

	err = n.ext.StreamCharting(ctx, domain, w, func(c r4.ChartingCandidate) error {
		key, reason, included := pipe.Evaluate(c)
		if !included {
			drops.Drop(string(reason))
			if reason == r4.ReasonDuplicateKey {
				// First occurrence won; the duplicate is skipped,
				// not an error.
				acc.Skipped()
			}
			acc.Row(key)
			n.checkpoint(domain, acc, start)
			return nil
		}
		drops.Include()

		if err := n.upsert(ctx, key, c, acc, drops, dryRun); err != nil {
			return err
		}
		acc.Row(key)
		n.checkpoint(domain, acc, start)
		return nil
	})
	if err != nil {
		return r4sync.ChartingSummary{}, err
	}

	summary := r4sync.ChartingSummary{
		Domain: string(domain),
		Import: acc.Finalize(),
		Drops:  drops.Finalize(),
	}
	slog.Info("Charting run finished",
		"event", "charting_done",
		"domain", string(domain),
		"dry_run", dryRun,
		"candidates", summary.Drops.Candidates,
		"included", summary.Drops.Included,
		"dropped", summary.Drops.Dropped(),
		"unlinked", summary.Drops.Unlinked,
		"created", summary.Import.Created,
		"updated", summary.Import.Updated,
		"skipped", summary.Import.Skipped,
	)
	return summary, nil
}

func (n *normalizer) upsert(
	ctx context.Context,
	key string,
	c r4.ChartingCandidate,
	acc *stats.Accumulator,
	drops *stats.DropAccumulator,
	dryRun bool,
) error {
	payload := PayloadFor(c)
	hash := ContentHash(payload)

	patientID, linked, err := n.resolvePatient(ctx, key, c)
	if err != nil {
		return err
	}
	if !linked {
		drops.Unlinked()
		acc.Unmapped()
	}

	if dryRun {
		return nil
	}

	existing, err := n.store.FindByKey(ctx, key)
	if err != nil {
		return err
	}

	if existing == nil {
		rec := schema.CanonicalChartingRecord{
			UniqueKey:   key,
			Domain:      string(c.Domain),
			Source:      n.source,
			PatientID:   patientID,
			PatientCode: c.PatientCode,
			RecordedAt:  r4.NormalizeTime(c.RecordedAt),
			Tooth:       c.Tooth,
			Surface:     c.Surface,
			CodeID:      c.CodeID,
			Payload:     datatypes.JSONMap(payload),
			ContentHash: hash,
		}
		rec.StampCreate(n.actor, time.Now().UTC())
		if err := n.store.Create(ctx, &rec); err != nil {
			return err
		}
		acc.Created()
		return nil
	}

	changed := existing.ContentHash != hash
	if changed {
		existing.RecordedAt = r4.NormalizeTime(c.RecordedAt)
		existing.Tooth = c.Tooth
		existing.Surface = c.Surface
		existing.CodeID = c.CodeID
		existing.Payload = datatypes.JSONMap(payload)
		existing.ContentHash = hash
	}

	// Null-link backfill follows the importer rules: a stored link is
	// never overwritten, a missing one is filled when resolvable.
	if existing.PatientID == nil && patientID != nil {
		existing.PatientID = patientID
		changed = true
	}

	if !changed {
		acc.Skipped()
		return nil
	}
	existing.StampUpdate(n.actor, time.Now().UTC())
	if err := n.store.Update(ctx, existing); err != nil {
		return err
	}
	acc.Updated()
	return nil
}

func (n *normalizer) checkpoint(
	domain r4.Domain, acc *stats.Accumulator, start time.Time,
) {
	if n.every <= 0 || n.progress == nil || acc.Processed()%n.every != 0 {
		return
	}
	elapsed := time.Since(start).Seconds()
	var perSec float64
	if elapsed > 0 {
		perSec = float64(acc.Processed()) / elapsed
	}
	n.progress(r4sync.Progress{
		Entity:    string(domain),
		Processed: acc.Processed(),
		LastKey:   acc.LastKey(),
		PerSecond: perSec,
	})
}

// resolvePatient maps the candidate's legacy patient code. A miss is
// not a drop: the record imports unlinked and the miss is queued for
// remediation.
func (n *normalizer) resolvePatient(
	ctx context.Context, key string, c r4.ChartingCandidate,
) (*string, bool, error) {
	if n.resolver == nil || c.PatientCode <= 0 {
		return nil, false, nil
	}
	id, ok, err := n.resolver.Resolve(ctx, c.PatientCode)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return &id, true, nil
	}
	if n.queue != nil {
		err = n.queue.Record(ctx, r4sync.Issue{
			EntityType:  r4.EntityCharting,
			LegacyID:    key,
			Reason:      r4.ReasonMissingPatientMapping,
			PatientCode: c.PatientCode,
			Details:     map[string]any{"domain": string(c.Domain)},
		})
		if err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}
