package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerType identifies what a budget line is planned against. Category
// ownership exists in the type system but current flows only plan at
// cost-center level.
type OwnerType string

const (
	OwnerTypeCostCenter OwnerType = "COST_CENTER"
	OwnerTypeCategory   OwnerType = "CATEGORY"
)

// BudgetLine is the planned amount for one owner in one calendar month.
// The store enforces at most one row per (month, owner type, owner id)
// with upsert semantics; an annual budget is twelve such rows.
type BudgetLine struct {
	Month     ReferenceMonth  `json:"month"`
	OwnerType OwnerType       `json:"owner_type"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Amount    decimal.Decimal `json:"amount"`
}
