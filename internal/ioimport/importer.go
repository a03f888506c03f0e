// Package ioimport implements the entity importers. Each importer
// streams one legacy entity type through a shared diff-or-skip loop:
// insert on first sight of a natural key, field-diff update when
// anything changed, skip otherwise. That rule is the idempotence
// contract; re-running over unchanged source data writes nothing.
package ioimport

import (
	"context"
	"log/slog"
	"time"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/stats"
)

type sourceRow interface {
	LegacyID() string
}

// auditable is satisfied by every snapshot model through the embedded
// schema.Audit.
type auditable interface {
	StampCreate(actor string, now time.Time)
	StampUpdate(actor string, now time.Time)
}

// Deps carries the collaborators shared by all importers.
type Deps struct {
	Source   string
	Actor    string
	Ext      r4sync.Extractor
	Resolver r4sync.Resolver
	Queue    r4sync.LinkageQueue

	// Progress, when set, receives a checkpoint every Every rows.
	Progress r4sync.ProgressFunc
	Every    int

	// DryRun runs the full diff and accounting without writing.
	DryRun bool
}

// importer is the generic diff-or-skip loop. The per-entity
// constructors fill in the stream, conversion and diff closures.
type importer[R sourceRow, M any] struct {
	deps   Deps
	entity r4.EntityType
	store  Store[M]

	stream  func(ctx context.Context, w r4.Window, yield func(R) error) error
	convert func(R) M
	apply   func(existing, incoming *M) bool

	// Patient linkage hooks; all nil for entities stored without a
	// canonical patient link.
	patientCode func(R) int
	link        func(*M) *string
	setLink     func(*M, string)

	// onRow runs after the upsert for side effects, e.g. the patient
	// importer maintaining automatic mappings.
	onRow func(ctx context.Context, row R) error
}

func (im *importer[R, M]) Entity() r4.EntityType {
	return im.entity
}

func (im *importer[R, M]) Run(
	ctx context.Context, w r4.Window,
) (stats.ImportSummary, error) {
	acc := stats.NewAccumulator(string(im.entity))
	start := time.Now()

	err := im.stream(ctx, w, func(row R) error {
		if err := im.one(ctx, row, acc); err != nil {
			return err
		}
		if im.onRow != nil {
			if err := im.onRow(ctx, row); err != nil {
				return err
			}
		}
		acc.Row(row.LegacyID())
		im.checkpoint(acc, start)
		return nil
	})
	if err != nil {
		return acc.Finalize(), err
	}

	s := acc.Finalize()
	slog.Info("Import finished",
		"event", "import_done",
		"entity", s.Entity,
		"processed", s.Processed,
		"created", s.Created,
		"updated", s.Updated,
		"skipped", s.Skipped,
		"unmapped", s.Unmapped,
		"patient_conflicts", s.PatientConflicts,
	)
	return s, nil
}

func (im *importer[R, M]) one(
	ctx context.Context, row R, acc *stats.Accumulator,
) error {
	existing, err := im.store.Find(ctx, im.deps.Source, row.LegacyID())
	if err != nil {
		return err
	}

	incoming := im.convert(row)

	if existing == nil {
		if im.patientCode != nil {
			if err := im.linkNew(ctx, row, &incoming, acc); err != nil {
				return err
			}
		}
		if a, ok := any(&incoming).(auditable); ok {
			a.StampCreate(im.deps.Actor, time.Now().UTC())
		}
		if !im.deps.DryRun {
			if err := im.store.Create(ctx, &incoming); err != nil {
				return err
			}
		}
		acc.Created()
		return nil
	}

	changed := im.apply(existing, &incoming)
	if im.patientCode != nil {
		relinked, err := im.linkExisting(ctx, row, existing, acc)
		if err != nil {
			return err
		}
		changed = changed || relinked
	}

	if !changed {
		acc.Skipped()
		return nil
	}
	if a, ok := any(existing).(auditable); ok {
		a.StampUpdate(im.deps.Actor, time.Now().UTC())
	}
	if !im.deps.DryRun {
		if err := im.store.Update(ctx, existing); err != nil {
			return err
		}
	}
	acc.Updated()
	return nil
}

// linkNew resolves the patient reference for a fresh row. An
// unresolved reference is never fatal: the row is stored with a null
// link and the miss goes to the linkage queue.
func (im *importer[R, M]) linkNew(
	ctx context.Context, row R, incoming *M, acc *stats.Accumulator,
) error {
	code := im.patientCode(row)
	id, ok, err := im.resolve(ctx, code)
	if err != nil {
		return err
	}
	if ok {
		im.setLink(incoming, id)
		return nil
	}
	acc.Unmapped()
	return im.recordMiss(ctx, row, code)
}

// linkExisting backfills a null link and protects a non-null one.
// A fresh resolution that disagrees with the stored link never wins;
// the conflict is counted and logged.
func (im *importer[R, M]) linkExisting(
	ctx context.Context, row R, existing *M, acc *stats.Accumulator,
) (bool, error) {
	code := im.patientCode(row)
	current := im.link(existing)

	id, ok, err := im.resolve(ctx, code)
	if err != nil {
		return false, err
	}

	if current == nil {
		if ok {
			im.setLink(existing, id)
			return true, nil
		}
		acc.Unmapped()
		return false, im.recordMiss(ctx, row, code)
	}

	if ok && id != *current {
		acc.PatientConflict()
		slog.Warn("Patient link conflict, keeping existing link",
			"event", "patient_conflict",
			"entity", string(im.entity),
			"legacy_id", row.LegacyID(),
			"patient_code", code,
			"existing_patient_id", *current,
			"resolved_patient_id", id,
		)
	}
	return false, nil
}

func (im *importer[R, M]) resolve(ctx context.Context, code int) (string, bool, error) {
	if code <= 0 || im.deps.Resolver == nil {
		return "", false, nil
	}
	return im.deps.Resolver.Resolve(ctx, code)
}

func (im *importer[R, M]) recordMiss(ctx context.Context, row R, code int) error {
	if im.deps.Queue == nil {
		return nil
	}
	reason := r4.ReasonMissingPatientMapping
	if code <= 0 {
		reason = r4.ReasonMissingPatientCode
	}
	return im.deps.Queue.Record(ctx, r4sync.Issue{
		EntityType:  im.entity,
		LegacyID:    row.LegacyID(),
		Reason:      reason,
		PatientCode: code,
	})
}

func (im *importer[R, M]) checkpoint(acc *stats.Accumulator, start time.Time) {
	every := im.deps.Every
	if every <= 0 || acc.Processed()%every != 0 {
		return
	}
	elapsed := time.Since(start).Seconds()
	var perSec float64
	if elapsed > 0 {
		perSec = float64(acc.Processed()) / elapsed
	}

	slog.Info("Import checkpoint",
		"event", "checkpoint",
		"entity", string(im.entity),
		"processed", acc.Processed(),
		"last_key", acc.LastKey(),
		"throughput", perSec,
	)
	if im.deps.Progress != nil {
		im.deps.Progress(r4sync.Progress{
			Entity:    string(im.entity),
			Processed: acc.Processed(),
			LastKey:   acc.LastKey(),
			PerSecond: perSec,
		})
	}
}
