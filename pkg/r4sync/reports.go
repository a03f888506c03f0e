package r4sync

import (
	"time"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/stats"
)

// Issue is a linkage-queue entry produced during import.
type Issue struct {
	EntityType  r4.EntityType  `json:"entity_type"`
	LegacyID    string         `json:"legacy_id"`
	Reason      r4.Reason      `json:"reason"`
	PatientCode int            `json:"patient_code,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// IssueSummaryRow is one group in the linkage-queue summary.
type IssueSummaryRow struct {
	Source     string `json:"source"`
	EntityType string `json:"entity_type"`
	ReasonCode string `json:"reason_code"`
	Status     string `json:"status"`
	Count      int    `json:"count"`
}

// ChartingSummary is the immutable result of one normalizer run.
type ChartingSummary struct {
	Domain string              `json:"domain"`
	Import stats.ImportSummary `json:"import"`
	Drops  stats.DropSummary   `json:"drops"`
}

// Parity statuses. A patient with zero in-window source rows is
// no_data, which is distinct from a mismatch.
const (
	ParityPass   = "pass"
	ParityFail   = "fail"
	ParityNoData = "no_data"
)

// PatientParity is the parity result for one (patient, domain) pair.
type PatientParity struct {
	PatientCode       int    `json:"patient_code"`
	Domain            string `json:"domain"`
	Status            string `json:"status"` // pass, fail or no_data
	LatestMatch       bool   `json:"latest_match"`
	LatestDigestMatch bool   `json:"latest_digest_match"`
	SourceKey         string `json:"source_key,omitempty"`
	DestKey           string `json:"dest_key,omitempty"`
	SourceDigest      string `json:"source_digest,omitempty"`
	DestDigest        string `json:"dest_digest,omitempty"`
}

// ParityReport aggregates parity results for a cohort. Status is pass
// when every patient-with-data matches on both key and digest,
// no_data when no patient in the cohort has data, fail otherwise.
type ParityReport struct {
	ReportID     string          `json:"report_id"`
	Source       string          `json:"source"`
	Domains      []string        `json:"domains"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Status       string          `json:"status"`
	Patients     []PatientParity `json:"patients"`
	FirstFailure *PatientParity  `json:"first_failure,omitempty"`
}

// DropReport explains the count delta between source and destination
// for one patient and domain.
type DropReport struct {
	ReportID    string            `json:"report_id"`
	Source      string            `json:"source"`
	PatientCode int               `json:"patient_code"`
	Domain      string            `json:"domain"`
	GeneratedAt time.Time         `json:"generated_at"`
	SourceCount int               `json:"source_count"`
	DestCount   int               `json:"dest_count"`
	Drops       stats.DropSummary `json:"drops"`
}

// CohortMode selects how multiple domains combine during cohort
// selection.
type CohortMode string

const (
	// CohortUnion selects patients with data in any requested domain.
	CohortUnion CohortMode = "union"
	// CohortIntersection selects patients with data in every
	// requested domain.
	CohortIntersection CohortMode = "intersection"
)
