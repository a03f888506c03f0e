package ioimport

import "time"

// set assigns v to dst when they differ and flips the changed flag.
// The apply functions build field-by-field diffs out of these.
func set[T comparable](dst *T, v T, changed *bool) {
	if *dst != v {
		*dst = v
		*changed = true
	}
}

// setTime is set for timestamps; == on time.Time compares location and
// monotonic clock, Equal compares the instant.
func setTime(dst *time.Time, v time.Time, changed *bool) {
	if !dst.Equal(v) {
		*dst = v
		*changed = true
	}
}
