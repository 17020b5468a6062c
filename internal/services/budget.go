package services

import (
	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetEntry pairs a planned figure with the realized spend it is
// measured against.
type BudgetEntry struct {
	Budget   decimal.Decimal `json:"budget"`
	Realized decimal.Decimal `json:"realized"`
	Diff     decimal.Decimal `json:"diff"` // budget minus realized; negative means overspent
}

func (e BudgetEntry) withDiff() BudgetEntry {
	e.Diff = e.Budget.Sub(e.Realized)
	return e
}

// BudgetRollup is the merged planned-vs-realized view at every level of
// the hierarchy. Category and root figures are derived sums of their
// constituent cost centers; nothing above cost-center level is stored.
type BudgetRollup struct {
	CostCenters map[uuid.UUID]BudgetEntry `json:"cost_centers"`
	Categories  map[uuid.UUID]BudgetEntry `json:"categories"`
	Roots       map[uuid.UUID]BudgetEntry `json:"roots"`
	Total       BudgetEntry               `json:"total"`
}

// RollupBudget merges budget lines with realized cost-center aggregates
// for the selected period. Month mode uses the single matching line per
// cost center; year mode sums that year's twelve lines.
//
// Inactive cost centers and cost centers whose DRE link dangles or
// points at a group category are excluded, matching the aggregation
// engine's degrade-don't-crash posture. Realized figures compare against
// each cost center's current category link, not the historical category
// stored on records.
func RollupBudget(
	lines []models.BudgetLine,
	costCenters []models.CostCenter,
	realized map[uuid.UUID]CostCenterTotals,
	tree *CategoryTree,
	sel PeriodSelection,
) *BudgetRollup {
	budgetByOwner := make(map[uuid.UUID]decimal.Decimal)
	for _, line := range lines {
		if line.OwnerType != models.OwnerTypeCostCenter {
			continue
		}
		if !lineInSelection(line, sel) {
			continue
		}
		budgetByOwner[line.OwnerID] = budgetByOwner[line.OwnerID].Add(line.Amount)
	}

	rollup := &BudgetRollup{
		CostCenters: make(map[uuid.UUID]BudgetEntry),
		Categories:  make(map[uuid.UUID]BudgetEntry),
		Roots:       make(map[uuid.UUID]BudgetEntry),
	}

	for _, cc := range costCenters {
		if !cc.IsActive {
			continue
		}
		category, ok := tree.Get(cc.DRECategoryID)
		if !ok || category.IsGroup {
			continue
		}

		entry := BudgetEntry{
			Budget:   budgetByOwner[cc.ID],
			Realized: realized[cc.ID].Absolute,
		}
		if entry.Budget.IsZero() && entry.Realized.IsZero() {
			continue
		}
		rollup.CostCenters[cc.ID] = entry.withDiff()

		chain := tree.AncestorIDs(cc.DRECategoryID)
		for _, id := range chain {
			cat := rollup.Categories[id]
			cat.Budget = cat.Budget.Add(entry.Budget)
			cat.Realized = cat.Realized.Add(entry.Realized)
			rollup.Categories[id] = cat.withDiff()
		}
		if len(chain) > 0 {
			rootID := chain[len(chain)-1]
			root := rollup.Roots[rootID]
			root.Budget = root.Budget.Add(entry.Budget)
			root.Realized = root.Realized.Add(entry.Realized)
			rollup.Roots[rootID] = root.withDiff()
		}

		rollup.Total.Budget = rollup.Total.Budget.Add(entry.Budget)
		rollup.Total.Realized = rollup.Total.Realized.Add(entry.Realized)
	}
	rollup.Total = rollup.Total.withDiff()

	return rollup
}

func lineInSelection(line models.BudgetLine, sel PeriodSelection) bool {
	if sel.Mode == PeriodModeYear {
		return line.Month.Year == sel.Year
	}
	return line.Month == sel.Month
}

// DistributeAnnual splits an annual total into twelve monthly amounts
// that sum back to the total exactly. The first eleven months are the
// even split floored to cents; the residual lands on month twelve so
// rounding can never leak a cent.
func DistributeAnnual(total decimal.Decimal) [12]decimal.Decimal {
	var months [12]decimal.Decimal

	monthly := total.Div(decimal.NewFromInt(12)).RoundFloor(2)
	running := decimal.Zero
	for i := 0; i < 11; i++ {
		months[i] = monthly
		running = running.Add(monthly)
	}
	months[11] = total.Sub(running)
	return months
}

// SumMonthly collapses twelve monthly amounts into an annual total.
func SumMonthly(months [12]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m)
	}
	return total
}

// CopyPreviousMonth stages the prior month's per-owner amounts as a
// draft for the target month. Nothing is persisted here; a separate
// commit step upserts the staged lines keyed on (month, owner type,
// owner id).
func CopyPreviousMonth(previous []models.BudgetLine, target models.ReferenceMonth) []models.BudgetLine {
	source := target.Previous()
	draft := make([]models.BudgetLine, 0, len(previous))
	for _, line := range previous {
		if line.Month != source {
			continue
		}
		draft = append(draft, models.BudgetLine{
			Month:     target,
			OwnerType: line.OwnerType,
			OwnerID:   line.OwnerID,
			Amount:    line.Amount,
		})
	}
	return draft
}
