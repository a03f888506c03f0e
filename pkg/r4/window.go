// Package r4 provides value types shared by the migration pipeline:
// extraction windows, legacy source row shapes, charting domains,
// drop-reason vocabulary and normalization helpers.
//
// The package is pure: it performs no I/O and keeps no global state,
// so every function here is safe for parallel tests.
package r4

import (
	"time"
)

// Window bounds an extraction by patient code and/or timestamp.
// Zero-valued bounds are open: a Window with no fields set matches
// every record.
type Window struct {
	// FromCode and ToCode bound the legacy patient code, inclusive.
	// Zero means unbounded.
	FromCode int
	ToCode   int

	// From and To bound the record timestamp, inclusive lower bound,
	// exclusive upper bound. Zero time means unbounded.
	From time.Time
	To   time.Time
}

// ContainsCode reports whether a legacy patient code falls inside the
// window's code bounds.
func (w Window) ContainsCode(code int) bool {
	if w.FromCode > 0 && code < w.FromCode {
		return false
	}
	if w.ToCode > 0 && code > w.ToCode {
		return false
	}
	return true
}

// ContainsTime reports whether a timestamp falls inside the window's
// date bounds.
func (w Window) ContainsTime(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// SinglePatient returns a window restricted to one legacy patient code
// with the receiver's date bounds retained. Used for scoped imports
// triggered by identity resolution.
func (w Window) SinglePatient(code int) Window {
	w.FromCode = code
	w.ToCode = code
	return w
}
