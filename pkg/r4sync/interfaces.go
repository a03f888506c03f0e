// Package r4sync defines the contracts between the migration
// pipeline's components. Implementations live in internal/io*
// packages; everything here is pure interface and value types, so
// hosts can wire the core with functional parameters only, with no
// CLI dependency.
package r4sync

import (
	"context"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/stats"
)

// Version and Build are set by build flags.
var (
	Version = "dev"
	Build   = "unknown"
)

// Extractor streams records from the legacy R4 database in ascending
// natural-key order, bounded by a window. Each Stream call produces a
// finite, non-restartable sequence; resumption means calling again
// with a later lower bound. The yield function aborts the stream by
// returning an error.
type Extractor interface {
	// Close releases the source connection.
	Close() error

	StreamPatients(ctx context.Context, w r4.Window, yield func(r4.PatientRow) error) error
	StreamAppointments(ctx context.Context, w r4.Window, yield func(r4.AppointmentRow) error) error
	StreamUsers(ctx context.Context, yield func(r4.UserRow) error) error
	StreamTreatments(ctx context.Context, w r4.Window, yield func(r4.TreatmentRow) error) error
	StreamTreatmentPlans(ctx context.Context, w r4.Window, yield func(r4.TreatmentPlanRow) error) error
	StreamTreatmentPlanItems(ctx context.Context, w r4.Window, yield func(r4.TreatmentPlanItemRow) error) error
	StreamTreatmentReviews(ctx context.Context, w r4.Window, yield func(r4.TreatmentReviewRow) error) error
	StreamTreatmentTransactions(ctx context.Context, w r4.Window, yield func(r4.TreatmentTransactionRow) error) error

	// StreamCharting streams raw candidates for one charting domain.
	StreamCharting(ctx context.Context, domain r4.Domain, w r4.Window, yield func(r4.ChartingCandidate) error) error

	// CountCharting returns the number of raw source rows for a
	// domain inside a window, for drop reports and parity.
	CountCharting(ctx context.Context, domain r4.Domain, w r4.Window) (int, error)

	// PatientCodes returns the distinct legacy patient codes with
	// in-window rows for a domain, in ascending order.
	PatientCodes(ctx context.Context, domain r4.Domain, w r4.Window) ([]int, error)
}

// Resolver resolves a legacy patient code to a canonical patient id.
// Manual overrides always win over automatic mappings.
type Resolver interface {
	// Resolve returns the canonical patient id for a code, or
	// ok=false when the code is unresolved. Never errors on a plain
	// miss.
	Resolve(ctx context.Context, code int) (id string, ok bool, err error)

	// EnsureMapping resolves a code, triggering a scoped
	// single-patient import when the code is unknown, then
	// re-checking. ok=false means the code stays unresolved even
	// after the scoped import.
	EnsureMapping(ctx context.Context, code int) (id string, ok bool, err error)
}

// Progress describes a checkpoint during a long-running import.
type Progress struct {
	Entity    string  `json:"entity"`
	Processed int     `json:"processed"`
	LastKey   string  `json:"last_key"`
	PerSecond float64 `json:"throughput"`
}

// ProgressFunc receives periodic progress checkpoints. Implementations
// must not block; the stream is not interrupted on their behalf.
type ProgressFunc func(Progress)

// Importer performs an idempotent diff-or-skip import of one legacy
// entity type.
type Importer interface {
	// Entity names the legacy entity type this importer handles.
	Entity() r4.EntityType

	// Run imports every in-window source record and returns an
	// immutable summary. Re-running on unchanged source data yields
	// created=0, updated=0.
	Run(ctx context.Context, w r4.Window) (stats.ImportSummary, error)
}

// Normalizer merges charting domains into canonical records with
// content-hash dedup and drop-reason accounting.
type Normalizer interface {
	// Run normalizes and upserts one domain for a window. With
	// dryRun, the filter pipeline executes fully but nothing is
	// written.
	Run(ctx context.Context, domain r4.Domain, w r4.Window, dryRun bool) (ChartingSummary, error)
}

// LinkageQueue is the durable backlog of unresolved references.
type LinkageQueue interface {
	// Record upserts an issue keyed by (source, entity type, legacy
	// id). Re-ingestion refreshes the reason, patient code and
	// details but never resets a non-open status.
	Record(ctx context.Context, issue Issue) error

	// Resolve marks an open issue resolved. Administrative action.
	Resolve(ctx context.Context, entityType r4.EntityType, legacyID string) error

	// Ignore marks an open issue ignored. Administrative action.
	Ignore(ctx context.Context, entityType r4.EntityType, legacyID string) error

	// Summary returns counts grouped by (reason code, status) per
	// (source, entity type).
	Summary(ctx context.Context) ([]IssueSummaryRow, error)
}

// ParityChecker spot-checks "latest state" between source and
// destination per patient and domain.
type ParityChecker interface {
	CheckCohort(ctx context.Context, codes []int, domains []r4.Domain, w r4.Window) (ParityReport, error)
}

// DropReporter explains count deltas between source and destination
// for one patient and domain through the normalizer's drop pipeline.
type DropReporter interface {
	Report(ctx context.Context, patientCode int, domain r4.Domain, w r4.Window) (DropReport, error)
}

// CohortSelector picks a deterministic, size-bounded, sorted list of
// legacy patient codes with in-window data.
type CohortSelector interface {
	SelectCohort(ctx context.Context, domains []r4.Domain, w r4.Window, mode CohortMode, limit int) ([]int, error)
}

// SchemaManager manages the destination schema through GORM
// AutoMigrate. Idempotent - safe to run multiple times.
type SchemaManager interface {
	// Create creates the destination support schema from scratch.
	Create(ctx context.Context) error

	// Migrate updates the schema to the latest version.
	Migrate(ctx context.Context) error
}
