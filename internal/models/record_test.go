package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	today := NewDate(2025, time.June, 15)

	tests := []struct {
		name   string
		status RecordStatus
		due    Date
		want   RecordStatus
	}{
		{"pending before due date", StatusPending, NewDate(2025, time.June, 20), StatusPending},
		{"pending due today", StatusPending, today, StatusPending},
		{"pending past due", StatusPending, NewDate(2025, time.June, 10), StatusLate},
		{"paid past due stays paid", StatusPaid, NewDate(2025, time.June, 10), StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := FinancialRecord{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.want, rec.EffectiveStatus(today))
		})
	}
}

func TestSignedAmount(t *testing.T) {
	amount := decimal.RequireFromString("150.75")

	income := FinancialRecord{Type: RecordTypeIncome, Amount: amount}
	assert.True(t, income.SignedAmount().Equal(amount))

	expense := FinancialRecord{Type: RecordTypeExpense, Amount: amount}
	assert.True(t, expense.SignedAmount().Equal(amount.Neg()))
}
