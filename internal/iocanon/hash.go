package iocanon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chairside/r4sync/pkg/r4"
)

// ContentHash digests a normalized payload. Keys are sorted and values
// rendered through one canonical formatter, so the hash is independent
// of map iteration order and of how the source spelled a number. Equal
// hashes mean "no update needed".
func ContentHash(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\n", k, renderValue(payload[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// normalizePayloadValue collapses the value types drivers produce into
// the canonical set stored in JSONB: float noise rounded away, times
// normalized, bytes as strings.
func normalizePayloadValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return strings.TrimSpace(string(t))
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return r4.NormalizeTime(t)
	case float64:
		return r4.RoundMoney(t)
	default:
		return v
	}
}

// renderValue formats one payload value canonically for hashing.
func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return r4.NormalizeTime(t).Format(time.RFC3339Nano)
	case float64:
		// Integral floats render without a decimal point, so "3"
		// and 3.0 hash identically.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	case string:
		return strings.Join(strings.Fields(t), " ")
	default:
		return fmt.Sprintf("%v", t)
	}
}
