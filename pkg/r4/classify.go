package r4

import (
	"strings"
)

// TreatmentClass is the coarse classification of a free-text
// treatment description.
type TreatmentClass string

const (
	ClassRestorative TreatmentClass = "restorative"
	ClassExtraction  TreatmentClass = "extraction"
	ClassEndodontic  TreatmentClass = "endodontic"
	ClassProsthetic  TreatmentClass = "prosthetic"
	ClassHygiene     TreatmentClass = "hygiene"
	ClassDiagnostic  TreatmentClass = "diagnostic"
	ClassOther       TreatmentClass = "other"
)

// classRule pairs a treatment class with the keywords that select it.
type classRule struct {
	class    TreatmentClass
	keywords []string
}

// classRules is an ordered table: the first rule whose keyword matches
// wins. Order matters: "root filling" must classify as endodontic
// before the "filling" keyword claims it for restorative.
var classRules = []classRule{
	{ClassEndodontic, []string{
		"root filling", "root canal", "rct", "pulpotomy", "pulpectomy",
		"apicectomy",
	}},
	{ClassRestorative, []string{
		"filling", "amalgam", "composite", "glass ionomer", "inlay",
		"onlay", "crown", "veneer", "restoration",
	}},
	{ClassExtraction, []string{
		"extraction", "extract", "removal of tooth", "surgical removal",
	}},
	{ClassProsthetic, []string{
		"denture", "bridge", "implant", "pontic",
	}},
	{ClassHygiene, []string{
		"scale", "polish", "scaling", "prophylaxis", "perio treatment",
		"oral hygiene",
	}},
	{ClassDiagnostic, []string{
		"examination", "exam", "radiograph", "x-ray", "xray",
		"study model", "consultation",
	}},
}

// ClassifyTreatment matches a free-text description against the
// ordered keyword table, case-insensitively. The first matching rule
// wins; descriptions matching nothing classify as "other".
//
// This is a best-effort heuristic over operator-entered text, not a
// verified mapping. Tests pin known labels instead of asserting
// exhaustive correctness.
func ClassifyTreatment(description string) TreatmentClass {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return ClassOther
	}
	for _, rule := range classRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.class
			}
		}
	}
	return ClassOther
}
