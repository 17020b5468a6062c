package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordType distinguishes income from expense entries
type RecordType string

const (
	RecordTypeIncome  RecordType = "INCOME"
	RecordTypeExpense RecordType = "EXPENSE"
)

// RecordStatus is the settlement state of a financial record. LATE is
// never stored; it is derived at read time from a pending record whose
// due date has passed.
type RecordStatus string

const (
	StatusPending RecordStatus = "PENDING"
	StatusPaid    RecordStatus = "PAID"
	StatusLate    RecordStatus = "LATE"
)

// Basis selects the recognition rule used when assigning a record to a
// reporting period.
type Basis string

const (
	// BasisAccrual recognizes a record on its competence date.
	BasisAccrual Basis = "ACCRUAL"
	// BasisCash recognizes a record on its payment date, and only once
	// it has actually been paid.
	BasisCash Basis = "CASH"
)

// FinancialRecord is one ledger entry (payable or receivable).
//
// CategoryID is denormalized from the cost center's DRE link at save
// time. The two can drift if the cost center is later re-linked; the
// aggregation engine deliberately reads the stored CategoryID (what the
// record was) while cost-center views resolve the current link (what it
// is now).
type FinancialRecord struct {
	ID               uuid.UUID       `json:"id"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"` // always positive; Type carries the sign
	Type             RecordType      `json:"type"`
	Status           RecordStatus    `json:"status"`
	DueDate          Date            `json:"due_date"`
	CompetenceDate   Date            `json:"competence_date"`
	PaymentDate      *Date           `json:"payment_date,omitempty"` // non-nil only when PAID
	CategoryID       uuid.UUID       `json:"category_id"`
	CostCenterID     uuid.UUID       `json:"cost_center_id"`
	CounterpartyID   *uuid.UUID      `json:"counterparty_id,omitempty"`
	CounterpartyName string          `json:"counterparty_name,omitempty"`
	DocumentNumber   string          `json:"document_number,omitempty"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	BankAccountID    *uuid.UUID      `json:"bank_account_id,omitempty"`
}

// EffectiveStatus classifies a stored PENDING record as LATE when its
// due date has passed. The caller supplies today so the result is
// deterministic and testable without a clock.
func (r FinancialRecord) EffectiveStatus(today Date) RecordStatus {
	if r.Status == StatusPending && r.DueDate.Before(today) {
		return StatusLate
	}
	return r.Status
}

// SignedAmount returns the amount with income positive and expense
// negative.
func (r FinancialRecord) SignedAmount() decimal.Decimal {
	if r.Type == RecordTypeExpense {
		return r.Amount.Neg()
	}
	return r.Amount
}
