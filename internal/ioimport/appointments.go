package ioimport

import (
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
)

// NewAppointmentImporter creates the appointment importer.
// Appointments link to patients; unresolved references are stored with
// a null link and queued.
func NewAppointmentImporter(deps Deps, store Store[schema.R4Appointment]) r4sync.Importer {
	return &importer[r4.AppointmentRow, schema.R4Appointment]{
		deps:   deps,
		entity: r4.EntityAppointment,
		store:  store,
		stream: deps.Ext.StreamAppointments,
		convert: func(row r4.AppointmentRow) schema.R4Appointment {
			return schema.R4Appointment{
				Source:      deps.Source,
				LegacyID:    row.LegacyID(),
				PatientCode: row.PatientCode,
				UserCode:    row.UserCode,
				StartsAt:    r4.NormalizeTime(row.Start),
				EndsAt:      r4.NormalizeTime(row.End),
				Status:      row.Status,
				Reason:      row.Reason,
				Notes:       row.Notes,
			}
		},
		apply:       applyAppointment,
		patientCode: func(row r4.AppointmentRow) int { return row.PatientCode },
		link:        func(m *schema.R4Appointment) *string { return m.PatientID },
		setLink:     func(m *schema.R4Appointment, id string) { m.PatientID = &id },
	}
}

func applyAppointment(e, in *schema.R4Appointment) bool {
	var changed bool
	set(&e.PatientCode, in.PatientCode, &changed)
	set(&e.UserCode, in.UserCode, &changed)
	setTime(&e.StartsAt, in.StartsAt, &changed)
	setTime(&e.EndsAt, in.EndsAt, &changed)
	set(&e.Status, in.Status, &changed)
	set(&e.Reason, in.Reason, &changed)
	set(&e.Notes, in.Notes, &changed)
	return changed
}
