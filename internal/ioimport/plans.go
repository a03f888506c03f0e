package ioimport

import (
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
)

// NewTreatmentPlanImporter creates the plan-header importer. Plans
// link to patients; their natural key is the (patient code, plan
// number) composite.
func NewTreatmentPlanImporter(deps Deps, store Store[schema.R4TreatmentPlan]) r4sync.Importer {
	return &importer[r4.TreatmentPlanRow, schema.R4TreatmentPlan]{
		deps:   deps,
		entity: r4.EntityTreatmentPlan,
		store:  store,
		stream: deps.Ext.StreamTreatmentPlans,
		convert: func(row r4.TreatmentPlanRow) schema.R4TreatmentPlan {
			return schema.R4TreatmentPlan{
				Source:      deps.Source,
				LegacyID:    row.LegacyID(),
				PatientCode: row.PatientCode,
				PlanNumber:  row.PlanNumber,
				UserCode:    row.UserCode,
				CreatedOn:   r4.NormalizeTime(row.Created),
				AcceptedOn:  r4.NormalizeTime(row.Accepted),
				Status:      row.Status,
				Description: row.Description,
				Total:       r4.RoundMoney(row.Total),
			}
		},
		apply:       applyTreatmentPlan,
		patientCode: func(row r4.TreatmentPlanRow) int { return row.PatientCode },
		link:        func(m *schema.R4TreatmentPlan) *string { return m.PatientID },
		setLink:     func(m *schema.R4TreatmentPlan, id string) { m.PatientID = &id },
	}
}

func applyTreatmentPlan(e, in *schema.R4TreatmentPlan) bool {
	var changed bool
	set(&e.PatientCode, in.PatientCode, &changed)
	set(&e.PlanNumber, in.PlanNumber, &changed)
	set(&e.UserCode, in.UserCode, &changed)
	setTime(&e.CreatedOn, in.CreatedOn, &changed)
	setTime(&e.AcceptedOn, in.AcceptedOn, &changed)
	set(&e.Status, in.Status, &changed)
	set(&e.Description, in.Description, &changed)
	set(&e.Total, in.Total, &changed)
	return changed
}

// NewTreatmentPlanItemImporter creates the plan-line importer.
func NewTreatmentPlanItemImporter(deps Deps, store Store[schema.R4TreatmentPlanItem]) r4sync.Importer {
	return &importer[r4.TreatmentPlanItemRow, schema.R4TreatmentPlanItem]{
		deps:   deps,
		entity: r4.EntityTreatmentPlanItem,
		store:  store,
		stream: deps.Ext.StreamTreatmentPlanItems,
		convert: func(row r4.TreatmentPlanItemRow) schema.R4TreatmentPlanItem {
			return schema.R4TreatmentPlanItem{
				Source:      deps.Source,
				LegacyID:    row.LegacyID(),
				PatientCode: row.PatientCode,
				PlanNumber:  row.PlanNumber,
				ItemNumber:  row.ItemNumber,
				CodeID:      row.CodeID,
				Description: row.Description,
				Tooth:       row.Tooth,
				Surface:     row.Surface,
				Fee:         r4.RoundMoney(row.Fee),
				Completed:   row.Completed,
			}
		},
		apply: applyTreatmentPlanItem,
	}
}

func applyTreatmentPlanItem(e, in *schema.R4TreatmentPlanItem) bool {
	var changed bool
	set(&e.PatientCode, in.PatientCode, &changed)
	set(&e.PlanNumber, in.PlanNumber, &changed)
	set(&e.ItemNumber, in.ItemNumber, &changed)
	set(&e.CodeID, in.CodeID, &changed)
	set(&e.Description, in.Description, &changed)
	set(&e.Tooth, in.Tooth, &changed)
	set(&e.Surface, in.Surface, &changed)
	set(&e.Fee, in.Fee, &changed)
	set(&e.Completed, in.Completed, &changed)
	return changed
}

// NewTreatmentReviewImporter creates the plan-review importer.
func NewTreatmentReviewImporter(deps Deps, store Store[schema.R4TreatmentReview]) r4sync.Importer {
	return &importer[r4.TreatmentReviewRow, schema.R4TreatmentReview]{
		deps:   deps,
		entity: r4.EntityTreatmentReview,
		store:  store,
		stream: deps.Ext.StreamTreatmentReviews,
		convert: func(row r4.TreatmentReviewRow) schema.R4TreatmentReview {
			return schema.R4TreatmentReview{
				Source:      deps.Source,
				LegacyID:    row.LegacyID(),
				PatientCode: row.PatientCode,
				PlanNumber:  row.PlanNumber,
				UserCode:    row.UserCode,
				ReviewedAt:  r4.NormalizeTime(row.ReviewDate),
				Outcome:     row.Outcome,
				Notes:       row.Notes,
			}
		},
		apply: applyTreatmentReview,
	}
}

func applyTreatmentReview(e, in *schema.R4TreatmentReview) bool {
	var changed bool
	set(&e.PatientCode, in.PatientCode, &changed)
	set(&e.PlanNumber, in.PlanNumber, &changed)
	set(&e.UserCode, in.UserCode, &changed)
	setTime(&e.ReviewedAt, in.ReviewedAt, &changed)
	set(&e.Outcome, in.Outcome, &changed)
	set(&e.Notes, in.Notes, &changed)
	return changed
}
