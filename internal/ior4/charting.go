package ior4

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chairside/r4sync/pkg/r4"
)

// chartingSpec describes where one charting domain lives in the R4
// schema. Every column is listed as an ordered slice of candidate
// names because the schema varies between installations; the probe
// picks the first that exists. key, patient and date are required,
// everything else is optional.
type chartingSpec struct {
	table   string
	key     []string
	patient []string
	date    []string
	ref     []string
	tooth   []string
	surface []string
	code    []string
	desc    []string
	plan    []string
	item    []string

	// payload lists measurement fields carried verbatim into the
	// candidate payload, keyed by their canonical payload name.
	payload []payloadField
}

type payloadField struct {
	name       string
	candidates []string
}

var chartingSpecs = map[r4.Domain]chartingSpec{
	r4.DomainPerioProbe: {
		table:   "PerioProbes",
		key:     []string{"TransID", "PerioID"},
		patient: []string{"PatientCode"},
		date:    []string{"ExamDate", "RecordedDate"},
		ref:     []string{"RefID"},
		tooth:   []string{"ToothNumber", "Tooth"},
		payload: []payloadField{
			{"depth_mb", []string{"DepthMB"}},
			{"depth_b", []string{"DepthB"}},
			{"depth_db", []string{"DepthDB"}},
			{"depth_ml", []string{"DepthML"}},
			{"depth_l", []string{"DepthL"}},
			{"depth_dl", []string{"DepthDL"}},
			{"bleeding", []string{"Bleeding"}},
			{"mobility", []string{"Mobility"}},
		},
	},
	r4.DomainBPEScore: {
		table:   "BPEScores",
		key:     []string{"TransID", "BPEID"},
		patient: []string{"PatientCode"},
		date:    []string{"ExamDate", "ScoreDate"},
		ref:     []string{"RefID"},
		payload: []payloadField{
			{"sextant", []string{"Sextant"}},
			{"score", []string{"Score"}},
		},
	},
	r4.DomainBPEFurcation: {
		table:   "BPEFurcations",
		key:     []string{"TransID", "FurcationID"},
		patient: []string{"PatientCode"},
		date:    []string{"ExamDate"},
		ref:     []string{"RefID"},
		tooth:   []string{"ToothNumber", "Tooth"},
		payload: []payloadField{
			{"sextant", []string{"Sextant"}},
			{"grade", []string{"Grade", "FurcationGrade"}},
		},
	},
	r4.DomainPatientNote: {
		table:   "PatientNotes",
		key:     []string{"NoteID", "TransID"},
		patient: []string{"PatientCode"},
		date:    []string{"NoteDate", "CreatedDate"},
		desc:    []string{"NoteText", "Note"},
		payload: []payloadField{
			{"category", []string{"Category", "NoteType"}},
		},
	},
	r4.DomainCompletedFinding: {
		table:   "CompletedTreatments",
		key:     []string{"TransID", "TreatmentID"},
		patient: []string{"PatientCode"},
		date:    []string{"CompletedDate", "TreatmentDate"},
		ref:     []string{"RefID", "ReferenceID"},
		tooth:   []string{"ToothNumber", "Tooth"},
		surface: []string{"Surface"},
		code:    []string{"CodeID"},
		desc:    []string{"Description"},
		plan:    []string{"PlanNumber"},
		item:    []string{"ItemNumber"},
		payload: []payloadField{
			{"fee", []string{"Fee"}},
		},
	},
}

// chartingPlan is a chartingSpec resolved against one concrete schema:
// the fixed columns plus the optional bindings that actually exist.
type chartingPlan struct {
	table      string
	keyCol     string
	patientCol string
	dateCol    string
	bindings   []chartingBinding
}

// chartingBinding pairs a resolved column with the assignment of its
// scanned value into a candidate.
type chartingBinding struct {
	column string
	assign func(v any, c *r4.ChartingCandidate)
}

func (e *extractor) planFor(ctx context.Context, domain r4.Domain) (*chartingPlan, error) {
	spec, ok := chartingSpecs[domain]
	if !ok {
		return nil, QueryError(string(domain),
			fmt.Errorf("unknown charting domain %q", domain))
	}

	p := &chartingPlan{table: spec.table}

	required := []struct {
		logical    string
		candidates []string
		dest       *string
	}{
		{"key", spec.key, &p.keyCol},
		{"patient_code", spec.patient, &p.patientCol},
		{"recorded_at", spec.date, &p.dateCol},
	}
	for _, r := range required {
		col, ok := e.probe.Resolve(ctx, spec.table, r.logical, r.candidates)
		if !ok {
			return nil, ColumnProbeError(spec.table, r.logical, r.candidates)
		}
		*r.dest = col
	}

	optional := []struct {
		logical    string
		candidates []string
		assign     func(v any, c *r4.ChartingCandidate)
	}{
		{"ref_id", spec.ref, func(v any, c *r4.ChartingCandidate) { c.RefID = asInt64(v) }},
		{"tooth", spec.tooth, func(v any, c *r4.ChartingCandidate) { c.Tooth = int(asInt64(v)) }},
		{"surface", spec.surface, func(v any, c *r4.ChartingCandidate) { c.Surface = asString(v) }},
		{"code_id", spec.code, func(v any, c *r4.ChartingCandidate) { c.CodeID = int(asInt64(v)) }},
		{"description", spec.desc, func(v any, c *r4.ChartingCandidate) { c.Description = asString(v) }},
		{"plan_number", spec.plan, func(v any, c *r4.ChartingCandidate) { c.PlanNumber = int(asInt64(v)) }},
		{"item_number", spec.item, func(v any, c *r4.ChartingCandidate) { c.ItemNumber = int(asInt64(v)) }},
	}
	for _, o := range optional {
		if len(o.candidates) == 0 {
			continue
		}
		col, ok := e.probe.Resolve(ctx, spec.table, o.logical, o.candidates)
		if !ok {
			continue
		}
		p.bindings = append(p.bindings, chartingBinding{column: col, assign: o.assign})
	}

	for _, f := range spec.payload {
		col, ok := e.probe.Resolve(ctx, spec.table, "payload."+f.name, f.candidates)
		if !ok {
			continue
		}
		name := f.name
		p.bindings = append(p.bindings, chartingBinding{
			column: col,
			assign: func(v any, c *r4.ChartingCandidate) {
				if v = normalizeValue(v); v != nil {
					c.Payload[name] = v
				}
			},
		})
	}
	return p, nil
}

// StreamCharting streams raw charting candidates for one domain in
// ascending key order.
func (e *extractor) StreamCharting(
	ctx context.Context, domain r4.Domain, w r4.Window,
	yield func(r4.ChartingCandidate) error,
) error {
	p, err := e.planFor(ctx, domain)
	if err != nil {
		return err
	}

	cols := []string{p.keyCol, p.patientCol, p.dateCol}
	for _, b := range p.bindings {
		cols = append(cols, b.column)
	}

	var lastKey int64
	for {
		args := []any{lastKey}
		where := []string{p.keyCol + " > " + e.d.Placeholder(1)}
		where, args = e.windowClause(where, args, w, p.patientCol, p.dateCol)

		q := e.d.Limit(buildSelect(cols, p.table, where, p.keyCol), e.pageSize)

		var page []r4.ChartingCandidate
		what := "charting_" + string(domain)
		err := e.queryPage(ctx, what, q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					key         int64
					patientCode sql.NullInt64
					recordedAt  sql.NullTime
				)
				dest := []any{&key, &patientCode, &recordedAt}
				vals := make([]any, len(p.bindings))
				for i := range vals {
					dest = append(dest, &vals[i])
				}
				if err := rows.Scan(dest...); err != nil {
					return err
				}

				c := r4.ChartingCandidate{
					Domain:      domain,
					TransID:     key,
					PatientCode: int(patientCode.Int64),
					RecordedAt:  recordedAt.Time,
					Payload:     make(map[string]any),
				}
				for i, b := range p.bindings {
					b.assign(vals[i], &c)
				}
				page = append(page, c)
			}
			return nil
		})
		if err != nil {
			return QueryError(what, err)
		}

		for _, c := range page {
			if err := yield(c); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		lastKey = page[len(page)-1].TransID
	}
}

// CountCharting returns the number of raw in-window source rows for a
// domain. The count is pre-pipeline: drop reports reconcile it against
// the destination through the drop reasons.
func (e *extractor) CountCharting(
	ctx context.Context, domain r4.Domain, w r4.Window,
) (int, error) {
	p, err := e.planFor(ctx, domain)
	if err != nil {
		return 0, err
	}

	var args []any
	var where []string
	where, args = e.windowClause(where, args, w, p.patientCol, p.dateCol)

	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", p.table)
	if len(where) > 0 {
		q += " WHERE " + joinAnd(where)
	}

	var n int
	what := "charting_count_" + string(domain)
	err = e.queryPage(ctx, what, q, args, func(rows *sql.Rows) error {
		if rows.Next() {
			return rows.Scan(&n)
		}
		return nil
	})
	if err != nil {
		return 0, QueryError(what, err)
	}
	return n, nil
}

// PatientCodes returns the distinct legacy patient codes with
// in-window rows for a domain, ascending.
func (e *extractor) PatientCodes(
	ctx context.Context, domain r4.Domain, w r4.Window,
) ([]int, error) {
	p, err := e.planFor(ctx, domain)
	if err != nil {
		return nil, err
	}

	var args []any
	var where []string
	where, args = e.windowClause(where, args, w, p.patientCol, p.dateCol)

	q := fmt.Sprintf("SELECT DISTINCT %s FROM %s", p.patientCol, p.table)
	if len(where) > 0 {
		q += " WHERE " + joinAnd(where)
	}
	q += " ORDER BY " + p.patientCol

	var codes []int
	what := "charting_patients_" + string(domain)
	err = e.queryPage(ctx, what, q, args, func(rows *sql.Rows) error {
		codes = codes[:0]
		for rows.Next() {
			var code sql.NullInt64
			if err := rows.Scan(&code); err != nil {
				return err
			}
			if code.Valid {
				codes = append(codes, int(code.Int64))
			}
		}
		return nil
	})
	if err != nil {
		return nil, QueryError(what, err)
	}
	return codes, nil
}

func joinAnd(where []string) string {
	s := where[0]
	for _, w := range where[1:] {
		s += " AND " + w
	}
	return s
}

// normalizeValue maps driver scan values onto the small set of types
// allowed in a candidate payload: int64, float64, bool, string,
// time.Time or nil.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case time.Time:
		return t
	default:
		return v
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	case []byte:
		var n int64
		fmt.Sscanf(string(t), "%d", &n)
		return n
	case string:
		var n int64
		fmt.Sscanf(t, "%d", &n)
		return n
	default:
		return 0
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
