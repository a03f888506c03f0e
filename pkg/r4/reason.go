package r4

// Reason names a cause for excluding a candidate row from canonical
// import, or for recording a linkage issue. The set below is the
// canonical vocabulary; older spellings are normalized through
// CanonicalReason before storage so historic and current runs stay
// comparable.
type Reason string

const (
	// Drop reasons, in pipeline order.
	ReasonOutOfWindow        Reason = "out_of_window"
	ReasonMissingPatientCode Reason = "missing_patient_code"
	ReasonMissingTooth       Reason = "missing_tooth"
	ReasonMissingCodeID      Reason = "missing_code_id"
	ReasonRestorative        Reason = "restorative_excluded"
	ReasonDuplicateKey       Reason = "duplicate_key"

	// Linkage reasons.
	ReasonMissingPatientMapping Reason = "missing_patient_mapping"
	ReasonPatientConflict       Reason = "patient_conflict"
)

// reasonAliases maps legacy spellings, produced by earlier migration
// tooling, to the canonical vocabulary.
var reasonAliases = map[string]Reason{
	"outside_window":    ReasonOutOfWindow,
	"date_out_of_range": ReasonOutOfWindow,
	"no_patient":        ReasonMissingPatientCode,
	"no_patient_code":   ReasonMissingPatientCode,
	"no_tooth":          ReasonMissingTooth,
	"tooth_missing":     ReasonMissingTooth,
	"no_code":           ReasonMissingCodeID,
	"missing_code":      ReasonMissingCodeID,
	"restorative":       ReasonRestorative,
	"is_restorative":    ReasonRestorative,
	"duplicate":         ReasonDuplicateKey,
	"dup_key":           ReasonDuplicateKey,
	"unmapped_patient":  ReasonMissingPatientMapping,
	"patient_unmapped":  ReasonMissingPatientMapping,
	"link_conflict":     ReasonPatientConflict,
}

// CanonicalReason normalizes a reason-code string to the canonical
// vocabulary. Unknown values pass through unchanged; callers decide
// whether to store or reject them.
func CanonicalReason(s string) Reason {
	if r, ok := reasonAliases[s]; ok {
		return r
	}
	return Reason(s)
}
