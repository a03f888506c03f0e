package ioimport

import (
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
)

// NewTreatmentTransactionImporter creates the financial-transaction
// importer. The dedicated reference id is carried through when the
// source schema has one; it is the preferred join key downstream.
func NewTreatmentTransactionImporter(deps Deps, store Store[schema.R4TreatmentTransaction]) r4sync.Importer {
	return &importer[r4.TreatmentTransactionRow, schema.R4TreatmentTransaction]{
		deps:   deps,
		entity: r4.EntityTreatmentTransaction,
		store:  store,
		stream: deps.Ext.StreamTreatmentTransactions,
		convert: func(row r4.TreatmentTransactionRow) schema.R4TreatmentTransaction {
			return schema.R4TreatmentTransaction{
				Source:      deps.Source,
				LegacyID:    row.LegacyID(),
				RefID:       row.RefID,
				PatientCode: row.PatientCode,
				UserCode:    row.UserCode,
				PostedAt:    r4.NormalizeTime(row.Date),
				Kind:        row.Kind,
				Amount:      r4.RoundMoney(row.Amount),
				Description: row.Description,
			}
		},
		apply: applyTreatmentTransaction,
	}
}

func applyTreatmentTransaction(e, in *schema.R4TreatmentTransaction) bool {
	var changed bool
	set(&e.RefID, in.RefID, &changed)
	set(&e.PatientCode, in.PatientCode, &changed)
	set(&e.UserCode, in.UserCode, &changed)
	setTime(&e.PostedAt, in.PostedAt, &changed)
	set(&e.Kind, in.Kind, &changed)
	set(&e.Amount, in.Amount, &changed)
	set(&e.Description, in.Description, &changed)
	return changed
}
