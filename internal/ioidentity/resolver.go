// Package ioidentity implements the IdentityResolver. Manual
// operator-curated mappings always win over automatic ones; every
// manual hit is logged distinctly for the audit trail.
package ioidentity

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
)

// ScopedImporter imports exactly one patient from the legacy source.
// EnsureMapping uses it to pull a not-yet-imported patient on demand.
type ScopedImporter interface {
	ImportPatient(ctx context.Context, code int) error
}

// ScopedImporterFunc adapts a function to ScopedImporter.
type ScopedImporterFunc func(ctx context.Context, code int) error

func (f ScopedImporterFunc) ImportPatient(ctx context.Context, code int) error {
	return f(ctx, code)
}

type resolver struct {
	store  MappingStore
	scoped ScopedImporter
	source string
}

// NewResolver creates a Resolver over a mapping store. scoped may be
// nil, in which case EnsureMapping degrades to Resolve.
func NewResolver(store MappingStore, scoped ScopedImporter, source string) r4sync.Resolver {
	return &resolver{store: store, scoped: scoped, source: source}
}

// Resolve returns the canonical patient id for a legacy code. Manual
// mappings are checked first and always win.
func (r *resolver) Resolve(ctx context.Context, code int) (string, bool, error) {
	manual, err := r.store.ManualByCode(ctx, r.source, code)
	if err != nil {
		return "", false, err
	}
	if manual != nil {
		slog.Info("Resolved patient via manual override",
			"event", "manual_override",
			"source", r.source,
			"patient_code", code,
			"patient_id", manual.PatientID,
		)
		return manual.PatientID, true, nil
	}

	auto, err := r.store.AutoByCode(ctx, r.source, code)
	if err != nil {
		return "", false, err
	}
	if auto != nil {
		return auto.PatientID, true, nil
	}
	return "", false, nil
}

// EnsureMapping resolves a code, running a scoped single-patient
// import and re-checking when the code is unknown.
func (r *resolver) EnsureMapping(ctx context.Context, code int) (string, bool, error) {
	id, ok, err := r.Resolve(ctx, code)
	if err != nil || ok {
		return id, ok, err
	}
	if r.scoped == nil {
		return "", false, nil
	}

	slog.Info("Running scoped patient import",
		"event", "scoped_import",
		"source", r.source,
		"patient_code", code,
	)
	if err := r.scoped.ImportPatient(ctx, code); err != nil {
		return "", false, ScopedImportError(r.source, code, err)
	}
	return r.Resolve(ctx, code)
}

// PatientID derives the deterministic canonical patient id for a
// legacy patient. The person key is preferred when the practice
// assigned one; the code is the fallback. Determinism makes patient
// re-import idempotent.
func PatientID(source, personKey string, code int) string {
	if personKey != "" {
		return r4.DeterministicID("patient", source, personKey)
	}
	return r4.DeterministicID("patient", source, strconv.Itoa(code))
}
