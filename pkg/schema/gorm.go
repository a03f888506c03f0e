package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&PatientMapping{},
		&ManualPatientMapping{},
		&LinkageIssue{},
		&R4Patient{},
		&R4Appointment{},
		&R4User{},
		&R4Treatment{},
		&R4TreatmentPlan{},
		&R4TreatmentPlanItem{},
		&R4TreatmentReview{},
		&R4TreatmentTransaction{},
		&CanonicalChartingRecord{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
