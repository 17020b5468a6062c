package models

import "github.com/google/uuid"

// CostCenter is the operational unit financial records are tagged with.
// Every active cost center points at exactly one leaf category; a cost
// center whose link dangles or points at a group is excluded from
// aggregation rather than failing it.
type CostCenter struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	IsActive      bool      `json:"is_active"`
	DRECategoryID uuid.UUID `json:"dre_category_id"`
}
