package r4

// Domain tags a canonical charting record with the charting area it
// came from.
type Domain string

const (
	DomainPerioProbe       Domain = "perio_probe"
	DomainBPEScore         Domain = "bpe_score"
	DomainBPEFurcation     Domain = "bpe_furcation"
	DomainPatientNote      Domain = "patient_note"
	DomainCompletedFinding Domain = "completed_finding"
)

// Domains lists every charting domain in a fixed order. The order is
// used for deterministic iteration in cohort selection and parity
// runs.
func Domains() []Domain {
	return []Domain{
		DomainPerioProbe,
		DomainBPEScore,
		DomainBPEFurcation,
		DomainPatientNote,
		DomainCompletedFinding,
	}
}

// ParseDomain returns the Domain for a string, or false when the
// string names no known domain.
func ParseDomain(s string) (Domain, bool) {
	for _, d := range Domains() {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// EntityType names a legacy entity handled by the importers. Used as
// part of linkage-issue keys.
type EntityType string

const (
	EntityPatient              EntityType = "patient"
	EntityAppointment          EntityType = "appointment"
	EntityUser                 EntityType = "user"
	EntityTreatment            EntityType = "treatment"
	EntityTreatmentPlan        EntityType = "treatment_plan"
	EntityTreatmentPlanItem    EntityType = "treatment_plan_item"
	EntityTreatmentReview      EntityType = "treatment_review"
	EntityTreatmentTransaction EntityType = "treatment_transaction"
	EntityCharting             EntityType = "charting"
)

// EntityTypes lists importable entity types in dependency order:
// patients and users first, then entities that reference them.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityPatient,
		EntityUser,
		EntityAppointment,
		EntityTreatment,
		EntityTreatmentPlan,
		EntityTreatmentPlanItem,
		EntityTreatmentReview,
		EntityTreatmentTransaction,
	}
}
