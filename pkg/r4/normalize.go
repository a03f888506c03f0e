package r4

import (
	"math"
	"strings"
	"time"

	"github.com/gnames/gnuuid"
)

// RoundMoney rounds a monetary value to 2 decimal places, half away
// from zero. Source values arrive as floats with accumulated noise;
// rounding before storage and diffing keeps re-runs from reporting
// spurious updates.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeTime converts a timestamp to UTC and truncates it to
// millisecond precision. The legacy source stores sub-millisecond
// noise that would defeat field-by-field diffing.
func NormalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Millisecond)
}

// DeterministicID derives a stable UUID (v5) from a kind tag and its
// identifying parts. No randomness, so re-derivation over the same
// source record always yields the same id.
func DeterministicID(kind string, parts ...string) string {
	seed := kind + "|" + strings.Join(parts, "|")
	return gnuuid.New(seed).String()
}
