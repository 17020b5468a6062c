package services

import "github.com/contaflux/contaflux-api/internal/models"

// DateColumn names the record column a basis recognizes on. The
// repository constrains its query on this column so the SQL filter and
// the in-memory predicate below cannot disagree.
type DateColumn string

const (
	ColumnCompetenceDate DateColumn = "competence_date"
	ColumnPaymentDate    DateColumn = "payment_date"
)

// QueryWindow describes the range condition the record store should
// apply for a basis. RequirePaid means the store must also restrict to
// settled records.
type QueryWindow struct {
	Column      DateColumn
	Range       models.DateRange
	RequirePaid bool
}

// BasisQueryWindow translates a basis and period into the repository's
// range condition.
func BasisQueryWindow(basis models.Basis, period models.DateRange) QueryWindow {
	if basis == models.BasisCash {
		return QueryWindow{Column: ColumnPaymentDate, Range: period, RequirePaid: true}
	}
	return QueryWindow{Column: ColumnCompetenceDate, Range: period}
}

// InPeriod decides whether a record belongs to the period under the
// chosen basis.
//
// Accrual basis recognizes on the competence date. Cash basis recognizes
// on the payment date, and only for PAID records with a payment date
// actually set; a pending or late record is never visible under cash
// basis no matter what its dates say.
func InPeriod(rec models.FinancialRecord, basis models.Basis, period models.DateRange) bool {
	switch basis {
	case models.BasisCash:
		if rec.Status != models.StatusPaid || rec.PaymentDate == nil {
			return false
		}
		return period.Contains(*rec.PaymentDate)
	default:
		return period.Contains(rec.CompetenceDate)
	}
}

// FilterByPeriod returns the records that fall inside the period under
// the chosen basis. Used when a single fetch serves multiple derived
// views (e.g. the series window feeding per-month buckets).
func FilterByPeriod(records []models.FinancialRecord, basis models.Basis, period models.DateRange) []models.FinancialRecord {
	out := make([]models.FinancialRecord, 0, len(records))
	for _, rec := range records {
		if InPeriod(rec, basis, period) {
			out = append(out, rec)
		}
	}
	return out
}
