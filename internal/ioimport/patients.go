package ioimport

import (
	"context"
	"time"

	"github.com/chairside/r4sync/internal/ioidentity"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
)

// NewPatientImporter creates the patient importer. Besides the
// snapshot row it maintains the automatic patient mapping: every
// imported patient gets a deterministic canonical id keyed by person
// key when present, legacy code otherwise. Existing mappings are never
// moved.
func NewPatientImporter(
	deps Deps,
	store Store[schema.R4Patient],
	mappings ioidentity.MappingStore,
) r4sync.Importer {
	im := &importer[r4.PatientRow, schema.R4Patient]{
		deps:   deps,
		entity: r4.EntityPatient,
		store:  store,
		stream: deps.Ext.StreamPatients,
		convert: func(row r4.PatientRow) schema.R4Patient {
			return schema.R4Patient{
				Source:      deps.Source,
				LegacyID:    row.LegacyID(),
				PatientCode: row.Code,
				PersonKey:   row.PersonKey,
				Surname:     row.Surname,
				Forename:    row.Forename,
				Title:       row.Title,
				Gender:      row.Gender,
				DOB:         r4.NormalizeTime(row.DOB),
				Phone:       row.Phone,
				Email:       row.Email,
				Address:     row.Address,
				Postcode:    row.Postcode,
				Inactive:    row.Inactive,
			}
		},
		apply: applyPatient,
	}
	im.onRow = func(ctx context.Context, row r4.PatientRow) error {
		if deps.DryRun {
			return nil
		}
		m := &schema.PatientMapping{
			Source:            deps.Source,
			LegacyPatientCode: row.Code,
			PatientID:         ioidentity.PatientID(deps.Source, row.PersonKey, row.Code),
		}
		m.StampCreate(deps.Actor, time.Now().UTC())
		return mappings.UpsertAuto(ctx, m)
	}
	return im
}

func applyPatient(e, in *schema.R4Patient) bool {
	var changed bool
	set(&e.PatientCode, in.PatientCode, &changed)
	set(&e.PersonKey, in.PersonKey, &changed)
	set(&e.Surname, in.Surname, &changed)
	set(&e.Forename, in.Forename, &changed)
	set(&e.Title, in.Title, &changed)
	set(&e.Gender, in.Gender, &changed)
	setTime(&e.DOB, in.DOB, &changed)
	set(&e.Phone, in.Phone, &changed)
	set(&e.Email, in.Email, &changed)
	set(&e.Address, in.Address, &changed)
	set(&e.Postcode, in.Postcode, &changed)
	set(&e.Inactive, in.Inactive, &changed)
	return changed
}
