package ioidentity

import (
	"context"
	"errors"

	"github.com/chairside/r4sync/pkg/schema"
	"gorm.io/gorm"
)

// MappingStore reads and writes patient mappings. Defined here, on the
// consumer side, so resolver logic is testable against an in-memory
// fake.
type MappingStore interface {
	// ManualByCode returns the manual mapping for a legacy patient
	// code, or nil when none exists.
	ManualByCode(ctx context.Context, source string, code int) (*schema.ManualPatientMapping, error)

	// AutoByCode returns the automatic mapping for a legacy patient
	// code, or nil when none exists.
	AutoByCode(ctx context.Context, source string, code int) (*schema.PatientMapping, error)

	// UpsertAuto creates an automatic mapping if the code has none.
	// An existing mapping for the code is left untouched; automatic
	// mappings never move a code to a different patient.
	UpsertAuto(ctx context.Context, m *schema.PatientMapping) error
}

type gormMappings struct {
	db *gorm.DB
}

// NewGormMappings returns a MappingStore over the destination
// database.
func NewGormMappings(db *gorm.DB) MappingStore {
	return &gormMappings{db: db}
}

func (s *gormMappings) ManualByCode(
	ctx context.Context, source string, code int,
) (*schema.ManualPatientMapping, error) {
	var m schema.ManualPatientMapping
	err := s.db.WithContext(ctx).
		Where("source = ? AND legacy_patient_code = ?", source, code).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, LookupError(source, code, err)
	}
	return &m, nil
}

func (s *gormMappings) AutoByCode(
	ctx context.Context, source string, code int,
) (*schema.PatientMapping, error) {
	var m schema.PatientMapping
	err := s.db.WithContext(ctx).
		Where("source = ? AND legacy_patient_code = ?", source, code).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, LookupError(source, code, err)
	}
	return &m, nil
}

func (s *gormMappings) UpsertAuto(
	ctx context.Context, m *schema.PatientMapping,
) error {
	existing, err := s.AutoByCode(ctx, m.Source, m.LegacyPatientCode)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return LookupError(m.Source, m.LegacyPatientCode, err)
	}
	return nil
}
