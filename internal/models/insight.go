package models

import "github.com/shopspring/decimal"

// InsightType identifies which rule produced an insight
type InsightType string

const (
	InsightBudgetExceeded     InsightType = "BUDGET_EXCEEDED"
	InsightBudgetAlert        InsightType = "BUDGET_ALERT"
	InsightCategorySpike      InsightType = "CATEGORY_SPIKE"
	InsightSpendConcentration InsightType = "SPEND_CONCENTRATION"
)

// InsightMetrics carries the numbers behind an insight so the UI can
// render them alongside the message.
type InsightMetrics struct {
	CurrentValue    decimal.Decimal `json:"current_value"`
	ComparisonValue decimal.Decimal `json:"comparison_value"`
	BudgetLimit     decimal.Decimal `json:"budget_limit,omitempty"`
	Percent         float64         `json:"percent"`
}

// Insight is a derived recommendation. It is computed fresh on every
// data reload and never persisted.
type Insight struct {
	Type             InsightType     `json:"type"`
	Priority         int             `json:"priority"`
	Title            string          `json:"title"`
	Message          string          `json:"message"`
	Metrics          *InsightMetrics `json:"metrics,omitempty"`
	ActionSuggestion string          `json:"action_suggestion,omitempty"`
}
