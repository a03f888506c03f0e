// Package schema provides destination-store models for R4sync.
// Models cover migration support tables (patient mappings, linkage
// issues), normalized legacy snapshots and canonical charting
// records. DDL is managed through GORM AutoMigrate.
package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Audit holds attribution fields shared by all migrated rows. ActorID
// comes from the host application; the import never invents one.
type Audit struct {
	CreatedBy string    `gorm:"column:created_by;type:varchar(100)"`
	UpdatedBy string    `gorm:"column:updated_by;type:varchar(100)"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// StampCreate sets attribution for a freshly inserted row.
func (a *Audit) StampCreate(actor string, now time.Time) {
	a.CreatedBy = actor
	a.UpdatedBy = actor
	a.CreatedAt = now
	a.UpdatedAt = now
}

// StampUpdate sets attribution for an in-place update. Creation
// attribution is preserved.
func (a *Audit) StampUpdate(actor string, now time.Time) {
	a.UpdatedBy = actor
	a.UpdatedAt = now
}

// PatientMapping associates a legacy patient code with a canonical
// patient id. Produced automatically during patient import. Both
// directions are unique: one code maps to one patient and vice versa.
type PatientMapping struct {
	ID                uint   `gorm:"primaryKey"`
	Source            string `gorm:"column:source;type:varchar(20);uniqueIndex:ux_pm_code,priority:1;uniqueIndex:ux_pm_patient,priority:1"`
	LegacyPatientCode int    `gorm:"column:legacy_patient_code;uniqueIndex:ux_pm_code,priority:2"`
	PatientID         string `gorm:"column:patient_id;type:uuid;uniqueIndex:ux_pm_patient,priority:2"`
	Audit
}

func (PatientMapping) TableName() string {
	return "patient_mappings"
}

// ManualPatientMapping is an operator-curated override. At least one
// of LegacyPatientCode or LegacyPersonKey must be set. Manual
// mappings always win over automatic ones and are never touched by
// imports.
type ManualPatientMapping struct {
	ID                uint    `gorm:"primaryKey"`
	Source            string  `gorm:"column:source;type:varchar(20);uniqueIndex:ux_mpm_code,priority:1;uniqueIndex:ux_mpm_person,priority:1"`
	LegacyPatientCode *int    `gorm:"column:legacy_patient_code;uniqueIndex:ux_mpm_code,priority:2"`
	LegacyPersonKey   *string `gorm:"column:legacy_person_key;type:varchar(50);uniqueIndex:ux_mpm_person,priority:2"`
	PatientID         string  `gorm:"column:patient_id;type:uuid"`
	Note              string  `gorm:"column:note;type:text"`
	Audit
}

func (ManualPatientMapping) TableName() string {
	return "manual_patient_mappings"
}

// LinkageIssue records a failure to resolve a reference during
// import. Imports refresh open issues but never move a status away
// from resolved or ignored; those transitions are administrative.
type LinkageIssue struct {
	ID          uint              `gorm:"primaryKey"`
	Source      string            `gorm:"column:source;type:varchar(20);uniqueIndex:ux_li_key,priority:1"`
	EntityType  string            `gorm:"column:entity_type;type:varchar(40);uniqueIndex:ux_li_key,priority:2"`
	LegacyID    string            `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_li_key,priority:3"`
	ReasonCode  string            `gorm:"column:reason_code;type:varchar(60)"`
	Status      string            `gorm:"column:status;type:varchar(20);index"`
	PatientCode int               `gorm:"column:patient_code"`
	Details     datatypes.JSONMap `gorm:"column:details"`
	Audit
}

func (LinkageIssue) TableName() string {
	return "linkage_issues"
}

// Linkage issue statuses. The only automated transition is creation
// as open; resolved and ignored are set by operators.
const (
	IssueOpen     = "open"
	IssueResolved = "resolved"
	IssueIgnored  = "ignored"
)

// R4Patient is a normalized snapshot of a legacy patient record.
type R4Patient struct {
	ID          uint      `gorm:"primaryKey"`
	Source      string    `gorm:"column:source;type:varchar(20);uniqueIndex:ux_r4p,priority:1"`
	LegacyID    string    `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_r4p,priority:2"`
	PatientCode int       `gorm:"column:patient_code;index"`
	PersonKey   string    `gorm:"column:person_key;type:varchar(50)"`
	Surname     string    `gorm:"column:surname;type:varchar(100)"`
	Forename    string    `gorm:"column:forename;type:varchar(100)"`
	Title       string    `gorm:"column:title;type:varchar(20)"`
	Gender      string    `gorm:"column:gender;type:varchar(10)"`
	DOB         time.Time `gorm:"column:dob"`
	Phone       string    `gorm:"column:phone;type:varchar(40)"`
	Email       string    `gorm:"column:email;type:varchar(255)"`
	Address     string    `gorm:"column:address;type:text"`
	Postcode    string    `gorm:"column:postcode;type:varchar(20)"`
	Inactive    bool      `gorm:"column:inactive"`
	Audit
}

func (R4Patient) TableName() string {
	return "r4_patients"
}

// R4Appointment is a normalized snapshot of a legacy appointment.
// PatientID is the resolved canonical link; nil when the legacy
// patient code had no mapping at import time.
type R4Appointment struct {
	ID          uint      `gorm:"primaryKey"`
	Source      string    `gorm:"column:source;type:varchar(20);uniqueIndex:ux_r4a,priority:1"`
	LegacyID    string    `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_r4a,priority:2"`
	PatientID   *string   `gorm:"column:patient_id;type:uuid;index"`
	PatientCode int       `gorm:"column:patient_code;index"`
	UserCode    int       `gorm:"column:user_code"`
	StartsAt    time.Time `gorm:"column:starts_at;index"`
	EndsAt      time.Time `gorm:"column:ends_at"`
	Status      string    `gorm:"column:status;type:varchar(30)"`
	Reason      string    `gorm:"column:reason;type:varchar(255)"`
	Notes       string    `gorm:"column:notes;type:text"`
	Audit
}

func (R4Appointment) TableName() string {
	return "r4_appointments"
}

// R4User is a normalized snapshot of a legacy practitioner or staff
// record.
type R4User struct {
	ID       uint   `gorm:"primaryKey"`
	Source   string `gorm:"column:source;type:varchar(20);uniqueIndex:ux_r4u,priority:1"`
	LegacyID string `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_r4u,priority:2"`
	UserCode int    `gorm:"column:user_code;index"`
	Surname  string `gorm:"column:surname;type:varchar(100)"`
	Forename string `gorm:"column:forename;type:varchar(100)"`
	Role     string `gorm:"column:role;type:varchar(50)"`
	Inactive bool   `gorm:"column:inactive"`
	Audit
}

func (R4User) TableName() string {
	return "r4_users"
}

// R4Treatment is a normalized snapshot of a completed treatment.
type R4Treatment struct {
	ID          uint      `gorm:"primaryKey"`
	Source      string    `gorm:"column:source;type:varchar(20);uniqueIndex:ux_r4t,priority:1"`
	LegacyID    string    `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_r4t,priority:2"`
	PatientID   *string   `gorm:"column:patient_id;type:uuid;index"`
	PatientCode int       `gorm:"column:patient_code;index"`
	UserCode    int       `gorm:"column:user_code"`
	CodeID      int       `gorm:"column:code_id"`
	Description string    `gorm:"column:description;type:varchar(255)"`
	Tooth       int       `gorm:"column:tooth"`
	Surface     string    `gorm:"column:surface;type:varchar(10)"`
	TreatedAt   time.Time `gorm:"column:treated_at;index"`
	Fee         float64   `gorm:"column:fee;type:numeric(10,2)"`
	Status      string    `gorm:"column:status;type:varchar(30)"`
	Audit
}

func (R4Treatment) TableName() string {
	return "r4_treatments"
}

// R4TreatmentPlan is a normalized snapshot of a treatment plan header.
type R4TreatmentPlan struct {
	ID          uint      `gorm:"primaryKey"`
	Source      string    `gorm:"column:source;type:varchar(20);uniqueIndex:ux_r4tp,priority:1"`
	LegacyID    string    `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_r4tp,priority:2"`
	PatientID   *string   `gorm:"column:patient_id;type:uuid;index"`
	PatientCode int       `gorm:"column:patient_code;index"`
	PlanNumber  int       `gorm:"column:plan_number"`
	UserCode    int       `gorm:"column:user_code"`
	CreatedOn   time.Time `gorm:"column:created_on"`
	AcceptedOn  time.Time `gorm:"column:accepted_on"`
	Status      string    `gorm:"column:status;type:varchar(30)"`
	Description string    `gorm:"column:description;type:varchar(255)"`
	Total       float64   `gorm:"column:total;type:numeric(10,2)"`
	Audit
}

func (R4TreatmentPlan) TableName() string {
	return "r4_treatment_plans"
}

// R4TreatmentPlanItem is a normalized snapshot of one planned
// treatment line.
type R4TreatmentPlanItem struct {
	ID          uint    `gorm:"primaryKey"`
	Source      string  `gorm:"column:source;type:varchar(20);uniqueIndex:ux_r4tpi,priority:1"`
	LegacyID    string  `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_r4tpi,priority:2"`
	PatientCode int     `gorm:"column:patient_code;index"`
	PlanNumber  int     `gorm:"column:plan_number"`
	ItemNumber  int     `gorm:"column:item_number"`
	CodeID      int     `gorm:"column:code_id"`
	Description string  `gorm:"column:description;type:varchar(255)"`
	Tooth       int     `gorm:"column:tooth"`
	Surface     string  `gorm:"column:surface;type:varchar(10)"`
	Fee         float64 `gorm:"column:fee;type:numeric(10,2)"`
	Completed   bool    `gorm:"column:completed"`
	Audit
}

func (R4TreatmentPlanItem) TableName() string {
	return "r4_treatment_plan_items"
}

// R4TreatmentReview is a normalized snapshot of a plan review/recall.
type R4TreatmentReview struct {
	ID          uint      `gorm:"primaryKey"`
	Source      string    `gorm:"column:source;type:varchar(20);uniqueIndex:ux_r4tr,priority:1"`
	LegacyID    string    `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_r4tr,priority:2"`
	PatientCode int       `gorm:"column:patient_code;index"`
	PlanNumber  int       `gorm:"column:plan_number"`
	UserCode    int       `gorm:"column:user_code"`
	ReviewedAt  time.Time `gorm:"column:reviewed_at"`
	Outcome     string    `gorm:"column:outcome;type:varchar(100)"`
	Notes       string    `gorm:"column:notes;type:text"`
	Audit
}

func (R4TreatmentReview) TableName() string {
	return "r4_treatment_reviews"
}

// R4TreatmentTransaction is a normalized snapshot of a treatment
// financial transaction.
type R4TreatmentTransaction struct {
	ID          uint      `gorm:"primaryKey"`
	Source      string    `gorm:"column:source;type:varchar(20);uniqueIndex:ux_r4tt,priority:1"`
	LegacyID    string    `gorm:"column:legacy_id;type:varchar(60);uniqueIndex:ux_r4tt,priority:2"`
	RefID       int64     `gorm:"column:ref_id;index"`
	PatientCode int       `gorm:"column:patient_code;index"`
	UserCode    int       `gorm:"column:user_code"`
	PostedAt    time.Time `gorm:"column:posted_at;index"`
	Kind        string    `gorm:"column:kind;type:varchar(30)"`
	Amount      float64   `gorm:"column:amount;type:numeric(10,2)"`
	Description string    `gorm:"column:description;type:varchar(255)"`
	Audit
}

func (R4TreatmentTransaction) TableName() string {
	return "r4_treatment_transactions"
}

// CanonicalChartingRecord is the normalized cross-domain
// representation of a charting finding. UniqueKey is deterministic
// from (domain, source, source-native id) alone, which makes
// re-extraction idempotent; ContentHash gates updates.
type CanonicalChartingRecord struct {
	ID          uint              `gorm:"primaryKey"`
	UniqueKey   string            `gorm:"column:unique_key;type:uuid;uniqueIndex"`
	Domain      string            `gorm:"column:domain;type:varchar(30);index:ix_ccr_domain_patient,priority:1"`
	Source      string            `gorm:"column:source;type:varchar(20)"`
	PatientID   *string           `gorm:"column:patient_id;type:uuid;index"`
	PatientCode int               `gorm:"column:patient_code;index:ix_ccr_domain_patient,priority:2"`
	RecordedAt  time.Time         `gorm:"column:recorded_at;index"`
	Tooth       int               `gorm:"column:tooth"`
	Surface     string            `gorm:"column:surface;type:varchar(10)"`
	CodeID      int               `gorm:"column:code_id"`
	Payload     datatypes.JSONMap `gorm:"column:payload"`
	ContentHash string            `gorm:"column:content_hash;type:char(64)"`
	Audit
}

func (CanonicalChartingRecord) TableName() string {
	return "canonical_charting_records"
}
