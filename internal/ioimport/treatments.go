package ioimport

import (
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
)

// NewTreatmentImporter creates the completed-treatment importer.
func NewTreatmentImporter(deps Deps, store Store[schema.R4Treatment]) r4sync.Importer {
	return &importer[r4.TreatmentRow, schema.R4Treatment]{
		deps:   deps,
		entity: r4.EntityTreatment,
		store:  store,
		stream: deps.Ext.StreamTreatments,
		convert: func(row r4.TreatmentRow) schema.R4Treatment {
			return schema.R4Treatment{
				Source:      deps.Source,
				LegacyID:    row.LegacyID(),
				PatientCode: row.PatientCode,
				UserCode:    row.UserCode,
				CodeID:      row.CodeID,
				Description: row.Description,
				Tooth:       row.Tooth,
				Surface:     row.Surface,
				TreatedAt:   r4.NormalizeTime(row.Date),
				Fee:         r4.RoundMoney(row.Fee),
				Status:      row.Status,
			}
		},
		apply:       applyTreatment,
		patientCode: func(row r4.TreatmentRow) int { return row.PatientCode },
		link:        func(m *schema.R4Treatment) *string { return m.PatientID },
		setLink:     func(m *schema.R4Treatment, id string) { m.PatientID = &id },
	}
}

func applyTreatment(e, in *schema.R4Treatment) bool {
	var changed bool
	set(&e.PatientCode, in.PatientCode, &changed)
	set(&e.UserCode, in.UserCode, &changed)
	set(&e.CodeID, in.CodeID, &changed)
	set(&e.Description, in.Description, &changed)
	set(&e.Tooth, in.Tooth, &changed)
	set(&e.Surface, in.Surface, &changed)
	setTime(&e.TreatedAt, in.TreatedAt, &changed)
	set(&e.Fee, in.Fee, &changed)
	set(&e.Status, in.Status, &changed)
	return changed
}
