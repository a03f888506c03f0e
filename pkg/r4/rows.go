package r4

import (
	"fmt"
	"time"
)

// PatientRow is a patient record streamed from the legacy source.
type PatientRow struct {
	Code      int
	PersonKey string
	Surname   string
	Forename  string
	Title     string
	Gender    string
	DOB       time.Time
	Phone     string
	Email     string
	Address   string
	Postcode  string
	Inactive  bool
}

// LegacyID returns the source-native identifier for the natural key.
func (p PatientRow) LegacyID() string {
	return fmt.Sprintf("%d", p.Code)
}

// AppointmentRow is an appointment record streamed from the legacy
// source.
type AppointmentRow struct {
	ID          int64
	PatientCode int
	UserCode    int
	Start       time.Time
	End         time.Time
	Status      string
	Reason      string
	Notes       string
}

func (a AppointmentRow) LegacyID() string {
	return fmt.Sprintf("%d", a.ID)
}

// UserRow is a practitioner or staff record streamed from the legacy
// source.
type UserRow struct {
	Code     int
	Surname  string
	Forename string
	Role     string
	Inactive bool
}

func (u UserRow) LegacyID() string {
	return fmt.Sprintf("%d", u.Code)
}

// TreatmentRow is a completed-treatment record streamed from the
// legacy source.
type TreatmentRow struct {
	ID          int64
	PatientCode int
	UserCode    int
	CodeID      int
	Description string
	Tooth       int
	Surface     string
	Date        time.Time
	Fee         float64
	Status      string
}

func (t TreatmentRow) LegacyID() string {
	return fmt.Sprintf("%d", t.ID)
}

// TreatmentPlanRow is a treatment plan header. R4 keys plans by
// (patient code, plan number); the composite forms the legacy id.
type TreatmentPlanRow struct {
	PatientCode int
	PlanNumber  int
	UserCode    int
	Created     time.Time
	Accepted    time.Time
	Status      string
	Description string
	Total       float64
}

func (t TreatmentPlanRow) LegacyID() string {
	return fmt.Sprintf("%d-%d", t.PatientCode, t.PlanNumber)
}

// TreatmentPlanItemRow is a single planned treatment inside a plan.
type TreatmentPlanItemRow struct {
	PatientCode int
	PlanNumber  int
	ItemNumber  int
	CodeID      int
	Description string
	Tooth       int
	Surface     string
	Fee         float64
	Completed   bool
}

func (t TreatmentPlanItemRow) LegacyID() string {
	return fmt.Sprintf("%d-%d-%d", t.PatientCode, t.PlanNumber, t.ItemNumber)
}

// TreatmentReviewRow is a plan review/recall record.
type TreatmentReviewRow struct {
	ID          int64
	PatientCode int
	PlanNumber  int
	UserCode    int
	ReviewDate  time.Time
	Outcome     string
	Notes       string
}

func (t TreatmentReviewRow) LegacyID() string {
	return fmt.Sprintf("%d", t.ID)
}

// TreatmentTransactionRow is a financial transaction attached to
// treatment activity.
type TreatmentTransactionRow struct {
	TransID     int64
	RefID       int64
	PatientCode int
	UserCode    int
	Date        time.Time
	Kind        string
	Amount      float64
	Description string
}

func (t TreatmentTransactionRow) LegacyID() string {
	return fmt.Sprintf("%d", t.TransID)
}

// ChartingCandidate is a raw charting row from any charting domain
// before normalization. Domain adapters turn candidates into
// canonical records; the filter pipeline decides whether one is
// imported at all.
type ChartingCandidate struct {
	Domain      Domain
	RefID       int64 // dedicated reference id, 0 when the schema lacks one
	TransID     int64 // generic transaction id fallback
	PatientCode int
	RecordedAt  time.Time
	Tooth       int
	Surface     string
	CodeID      int
	Description string
	PlanNumber  int
	ItemNumber  int

	// Payload carries domain-specific measurements, e.g. probing
	// depths for perio rows or sextant scores for BPE rows.
	Payload map[string]any
}
