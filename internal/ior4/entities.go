package ior4

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chairside/r4sync/pkg/r4"
)

// windowClause appends code and date predicates for a window to a
// WHERE fragment. codeCol or dateCol may be empty when the entity has
// no such axis. Returns the extended fragment and argument list.
func (e *extractor) windowClause(
	where []string, args []any, w r4.Window, codeCol, dateCol string,
) ([]string, []any) {
	if codeCol != "" {
		if w.FromCode > 0 {
			args = append(args, w.FromCode)
			where = append(where,
				fmt.Sprintf("%s >= %s", codeCol, e.d.Placeholder(len(args))))
		}
		if w.ToCode > 0 {
			args = append(args, w.ToCode)
			where = append(where,
				fmt.Sprintf("%s <= %s", codeCol, e.d.Placeholder(len(args))))
		}
	}
	if dateCol != "" {
		if !w.From.IsZero() {
			args = append(args, w.From)
			where = append(where,
				fmt.Sprintf("%s >= %s", dateCol, e.d.Placeholder(len(args))))
		}
		if !w.To.IsZero() {
			args = append(args, w.To)
			where = append(where,
				fmt.Sprintf("%s < %s", dateCol, e.d.Placeholder(len(args))))
		}
	}
	return where, args
}

func buildSelect(cols []string, table string, where []string, order string) string {
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + " ORDER BY " + order
}

// StreamPatients streams patient records in ascending patient-code
// order.
func (e *extractor) StreamPatients(
	ctx context.Context, w r4.Window, yield func(r4.PatientRow) error,
) error {
	cols := []string{
		"PatientCode", "PersonKey", "Surname", "Forename", "Title",
		"Sex", "DateOfBirth", "Telephone", "EMail", "Address1",
		"PostCode", "Inactive",
	}

	lastCode := 0
	for {
		args := []any{lastCode}
		where := []string{"PatientCode > " + e.d.Placeholder(1)}
		where, args = e.windowClause(where, args, w, "PatientCode", "")

		q := e.d.Limit(
			buildSelect(cols, "Patients", where, "PatientCode"), e.pageSize)

		var page []r4.PatientRow
		err := e.queryPage(ctx, "patients", q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					r                                 r4.PatientRow
					personKey, title, gender          sql.NullString
					phone, email, address, postcode   sql.NullString
					surname, forename                 sql.NullString
					dob                               sql.NullTime
					inactive                          sql.NullBool
				)
				err := rows.Scan(
					&r.Code, &personKey, &surname, &forename, &title,
					&gender, &dob, &phone, &email, &address,
					&postcode, &inactive,
				)
				if err != nil {
					return err
				}
				r.PersonKey = personKey.String
				r.Surname = surname.String
				r.Forename = forename.String
				r.Title = title.String
				r.Gender = gender.String
				r.DOB = dob.Time
				r.Phone = phone.String
				r.Email = email.String
				r.Address = address.String
				r.Postcode = postcode.String
				r.Inactive = inactive.Bool
				page = append(page, r)
			}
			return nil
		})
		if err != nil {
			return QueryError("patients", err)
		}

		for _, r := range page {
			if err := yield(r); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		lastCode = page[len(page)-1].Code
	}
}

// StreamAppointments streams appointments in ascending appointment-id
// order.
func (e *extractor) StreamAppointments(
	ctx context.Context, w r4.Window, yield func(r4.AppointmentRow) error,
) error {
	cols := []string{
		"AppointmentID", "PatientCode", "UserCode", "StartTime",
		"EndTime", "Status", "Reason", "Notes",
	}

	var lastID int64
	for {
		args := []any{lastID}
		where := []string{"AppointmentID > " + e.d.Placeholder(1)}
		where, args = e.windowClause(where, args, w, "PatientCode", "StartTime")

		q := e.d.Limit(
			buildSelect(cols, "Appointments", where, "AppointmentID"), e.pageSize)

		var page []r4.AppointmentRow
		err := e.queryPage(ctx, "appointments", q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					r                      r4.AppointmentRow
					patientCode, userCode  sql.NullInt64
					start, end             sql.NullTime
					status, reason, notes  sql.NullString
				)
				err := rows.Scan(
					&r.ID, &patientCode, &userCode, &start, &end,
					&status, &reason, &notes,
				)
				if err != nil {
					return err
				}
				r.PatientCode = int(patientCode.Int64)
				r.UserCode = int(userCode.Int64)
				r.Start = start.Time
				r.End = end.Time
				r.Status = status.String
				r.Reason = reason.String
				r.Notes = notes.String
				page = append(page, r)
			}
			return nil
		})
		if err != nil {
			return QueryError("appointments", err)
		}

		for _, r := range page {
			if err := yield(r); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		lastID = page[len(page)-1].ID
	}
}

// StreamUsers streams practitioner and staff records in ascending
// user-code order. Users have no window axes.
func (e *extractor) StreamUsers(
	ctx context.Context, yield func(r4.UserRow) error,
) error {
	cols := []string{"UserCode", "Surname", "Forename", "Role", "Inactive"}

	lastCode := 0
	for {
		args := []any{lastCode}
		where := []string{"UserCode > " + e.d.Placeholder(1)}

		q := e.d.Limit(
			buildSelect(cols, "Users", where, "UserCode"), e.pageSize)

		var page []r4.UserRow
		err := e.queryPage(ctx, "users", q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					r                       r4.UserRow
					surname, forename, role sql.NullString
					inactive                sql.NullBool
				)
				if err := rows.Scan(&r.Code, &surname, &forename, &role, &inactive); err != nil {
					return err
				}
				r.Surname = surname.String
				r.Forename = forename.String
				r.Role = role.String
				r.Inactive = inactive.Bool
				page = append(page, r)
			}
			return nil
		})
		if err != nil {
			return QueryError("users", err)
		}

		for _, r := range page {
			if err := yield(r); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		lastCode = page[len(page)-1].Code
	}
}

// StreamTreatments streams completed treatments in ascending
// treatment-id order.
func (e *extractor) StreamTreatments(
	ctx context.Context, w r4.Window, yield func(r4.TreatmentRow) error,
) error {
	cols := []string{
		"TreatmentID", "PatientCode", "UserCode", "CodeID",
		"Description", "Tooth", "Surface", "TreatmentDate", "Fee",
		"Status",
	}

	var lastID int64
	for {
		args := []any{lastID}
		where := []string{"TreatmentID > " + e.d.Placeholder(1)}
		where, args = e.windowClause(where, args, w, "PatientCode", "TreatmentDate")

		q := e.d.Limit(
			buildSelect(cols, "Treatments", where, "TreatmentID"), e.pageSize)

		var page []r4.TreatmentRow
		err := e.queryPage(ctx, "treatments", q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					r                             r4.TreatmentRow
					patientCode, userCode, codeID sql.NullInt64
					tooth                         sql.NullInt64
					description, surface, status  sql.NullString
					date                          sql.NullTime
					fee                           sql.NullFloat64
				)
				err := rows.Scan(
					&r.ID, &patientCode, &userCode, &codeID,
					&description, &tooth, &surface, &date, &fee,
					&status,
				)
				if err != nil {
					return err
				}
				r.PatientCode = int(patientCode.Int64)
				r.UserCode = int(userCode.Int64)
				r.CodeID = int(codeID.Int64)
				r.Description = description.String
				r.Tooth = int(tooth.Int64)
				r.Surface = surface.String
				r.Date = date.Time
				r.Fee = fee.Float64
				r.Status = status.String
				page = append(page, r)
			}
			return nil
		})
		if err != nil {
			return QueryError("treatments", err)
		}

		for _, r := range page {
			if err := yield(r); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		lastID = page[len(page)-1].ID
	}
}

// StreamTreatmentPlans streams plan headers ordered by
// (patient code, plan number).
func (e *extractor) StreamTreatmentPlans(
	ctx context.Context, w r4.Window, yield func(r4.TreatmentPlanRow) error,
) error {
	cols := []string{
		"PatientCode", "PlanNumber", "UserCode", "CreatedDate",
		"AcceptedDate", "Status", "Description", "PlanTotal",
	}

	lastCode, lastPlan := 0, 0
	for {
		args := []any{lastCode, lastCode, lastPlan}
		where := []string{fmt.Sprintf(
			"(PatientCode > %s OR (PatientCode = %s AND PlanNumber > %s))",
			e.d.Placeholder(1), e.d.Placeholder(2), e.d.Placeholder(3),
		)}
		where, args = e.windowClause(where, args, w, "PatientCode", "CreatedDate")

		q := e.d.Limit(
			buildSelect(cols, "TreatmentPlans", where,
				"PatientCode, PlanNumber"), e.pageSize)

		var page []r4.TreatmentPlanRow
		err := e.queryPage(ctx, "treatment_plans", q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					r                   r4.TreatmentPlanRow
					userCode            sql.NullInt64
					created, accepted   sql.NullTime
					status, description sql.NullString
					total               sql.NullFloat64
				)
				err := rows.Scan(
					&r.PatientCode, &r.PlanNumber, &userCode,
					&created, &accepted, &status, &description, &total,
				)
				if err != nil {
					return err
				}
				r.UserCode = int(userCode.Int64)
				r.Created = created.Time
				r.Accepted = accepted.Time
				r.Status = status.String
				r.Description = description.String
				r.Total = total.Float64
				page = append(page, r)
			}
			return nil
		})
		if err != nil {
			return QueryError("treatment_plans", err)
		}

		for _, r := range page {
			if err := yield(r); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		last := page[len(page)-1]
		lastCode, lastPlan = last.PatientCode, last.PlanNumber
	}
}

// StreamTreatmentPlanItems streams plan lines ordered by
// (patient code, plan number, item number).
func (e *extractor) StreamTreatmentPlanItems(
	ctx context.Context, w r4.Window, yield func(r4.TreatmentPlanItemRow) error,
) error {
	cols := []string{
		"PatientCode", "PlanNumber", "ItemNumber", "CodeID",
		"Description", "Tooth", "Surface", "Fee", "Completed",
	}

	lastCode, lastPlan, lastItem := 0, 0, 0
	for {
		args := []any{lastCode, lastCode, lastPlan, lastCode, lastPlan, lastItem}
		where := []string{fmt.Sprintf(
			"(PatientCode > %s"+
				" OR (PatientCode = %s AND PlanNumber > %s)"+
				" OR (PatientCode = %s AND PlanNumber = %s AND ItemNumber > %s))",
			e.d.Placeholder(1), e.d.Placeholder(2), e.d.Placeholder(3),
			e.d.Placeholder(4), e.d.Placeholder(5), e.d.Placeholder(6),
		)}
		where, args = e.windowClause(where, args, w, "PatientCode", "")

		q := e.d.Limit(
			buildSelect(cols, "TreatmentPlanItems", where,
				"PatientCode, PlanNumber, ItemNumber"), e.pageSize)

		var page []r4.TreatmentPlanItemRow
		err := e.queryPage(ctx, "treatment_plan_items", q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					r                    r4.TreatmentPlanItemRow
					codeID, tooth        sql.NullInt64
					description, surface sql.NullString
					fee                  sql.NullFloat64
					completed            sql.NullBool
				)
				err := rows.Scan(
					&r.PatientCode, &r.PlanNumber, &r.ItemNumber,
					&codeID, &description, &tooth, &surface, &fee,
					&completed,
				)
				if err != nil {
					return err
				}
				r.CodeID = int(codeID.Int64)
				r.Description = description.String
				r.Tooth = int(tooth.Int64)
				r.Surface = surface.String
				r.Fee = fee.Float64
				r.Completed = completed.Bool
				page = append(page, r)
			}
			return nil
		})
		if err != nil {
			return QueryError("treatment_plan_items", err)
		}

		for _, r := range page {
			if err := yield(r); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		last := page[len(page)-1]
		lastCode, lastPlan, lastItem = last.PatientCode, last.PlanNumber, last.ItemNumber
	}
}

// StreamTreatmentReviews streams plan reviews in ascending review-id
// order.
func (e *extractor) StreamTreatmentReviews(
	ctx context.Context, w r4.Window, yield func(r4.TreatmentReviewRow) error,
) error {
	cols := []string{
		"ReviewID", "PatientCode", "PlanNumber", "UserCode",
		"ReviewDate", "Outcome", "Notes",
	}

	var lastID int64
	for {
		args := []any{lastID}
		where := []string{"ReviewID > " + e.d.Placeholder(1)}
		where, args = e.windowClause(where, args, w, "PatientCode", "ReviewDate")

		q := e.d.Limit(
			buildSelect(cols, "TreatmentReviews", where, "ReviewID"), e.pageSize)

		var page []r4.TreatmentReviewRow
		err := e.queryPage(ctx, "treatment_reviews", q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					r                                r4.TreatmentReviewRow
					patientCode, planNumber, userCode sql.NullInt64
					reviewDate                       sql.NullTime
					outcome, notes                   sql.NullString
				)
				err := rows.Scan(
					&r.ID, &patientCode, &planNumber, &userCode,
					&reviewDate, &outcome, &notes,
				)
				if err != nil {
					return err
				}
				r.PatientCode = int(patientCode.Int64)
				r.PlanNumber = int(planNumber.Int64)
				r.UserCode = int(userCode.Int64)
				r.ReviewDate = reviewDate.Time
				r.Outcome = outcome.String
				r.Notes = notes.String
				page = append(page, r)
			}
			return nil
		})
		if err != nil {
			return QueryError("treatment_reviews", err)
		}

		for _, r := range page {
			if err := yield(r); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		lastID = page[len(page)-1].ID
	}
}

// StreamTreatmentTransactions streams financial transactions in
// ascending transaction-id order. The dedicated reference id column
// varies between installations and may be absent entirely; it is
// probed, preferred, and falls back to zero when missing.
func (e *extractor) StreamTreatmentTransactions(
	ctx context.Context, w r4.Window, yield func(r4.TreatmentTransactionRow) error,
) error {
	refCol, hasRef := e.probe.Resolve(ctx, "TreatmentTransactions",
		"ref_id", []string{"RefID", "ReferenceID"})

	cols := []string{
		"TransID", "PatientCode", "UserCode", "TransDate",
		"TransType", "Amount", "Description",
	}
	if hasRef {
		cols = append([]string{"TransID", refCol}, cols[1:]...)
	}

	var lastID int64
	for {
		args := []any{lastID}
		where := []string{"TransID > " + e.d.Placeholder(1)}
		where, args = e.windowClause(where, args, w, "PatientCode", "TransDate")

		q := e.d.Limit(
			buildSelect(cols, "TreatmentTransactions", where, "TransID"), e.pageSize)

		var page []r4.TreatmentTransactionRow
		err := e.queryPage(ctx, "treatment_transactions", q, args, func(rows *sql.Rows) error {
			page = page[:0]
			for rows.Next() {
				var (
					r                     r4.TreatmentTransactionRow
					refID                 sql.NullInt64
					patientCode, userCode sql.NullInt64
					date                  sql.NullTime
					kind, description     sql.NullString
					amount                sql.NullFloat64
				)
				dest := []any{&r.TransID}
				if hasRef {
					dest = append(dest, &refID)
				}
				dest = append(dest, &patientCode, &userCode, &date,
					&kind, &amount, &description)
				if err := rows.Scan(dest...); err != nil {
					return err
				}
				r.RefID = refID.Int64
				r.PatientCode = int(patientCode.Int64)
				r.UserCode = int(userCode.Int64)
				r.Date = date.Time
				r.Kind = kind.String
				r.Amount = amount.Float64
				r.Description = description.String
				page = append(page, r)
			}
			return nil
		})
		if err != nil {
			return QueryError("treatment_transactions", err)
		}

		for _, r := range page {
			if err := yield(r); err != nil {
				return err
			}
		}
		if len(page) < e.pageSize {
			return nil
		}
		lastID = page[len(page)-1].TransID
	}
}
