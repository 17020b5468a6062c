package models

import "github.com/google/uuid"

// CategoryType distinguishes income accounts from expense accounts
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Category is one node of the chart-of-accounts tree. A category with a
// nil ParentID is a DRE root group (e.g. "Receita Bruta", "Custos Fixos").
type Category struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Type         CategoryType `json:"type"`
	IsActive     bool         `json:"is_active"`
	IncludeInDRE bool         `json:"include_in_dre"` // counts toward statement output
	IsGroup      bool         `json:"is_group"`       // organizational folder, not postable
	ParentID     *uuid.UUID   `json:"parent_id,omitempty"`
	SortOrder    int          `json:"sort_order"`
}

// IsLeaf reports whether the category can directly receive financial
// records. Only leaf categories may be linked from a cost center.
func (c Category) IsLeaf() bool {
	return !c.IsGroup
}

// IsRoot reports whether the category is a DRE root group.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
