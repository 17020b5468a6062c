package services

import (
	"fmt"
	"sort"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/shopspring/decimal"
)

// Rule thresholds. Priorities are fixed per rule; evaluation runs in
// descending priority order and the first match wins.
const (
	priorityBudgetExceeded     = 10
	priorityBudgetAlert        = 8
	priorityCategorySpike      = 6
	prioritySpendConcentration = 4

	budgetAlertFloor    = 0.80 // consumed fraction where the alert window opens
	budgetAlertVelocity = 1.2  // consumed-vs-elapsed ratio that trips the alert
	spikeThreshold      = 0.30 // month-over-month increase that counts as a spike
	concentrationShare  = 0.20 // share of total expense that counts as concentration
)

// InsightInput is everything the selector inspects. All fields may be
// nil or empty; the selector degrades to no insight instead of failing a
// page render.
type InsightInput struct {
	Current  *AggregateResult
	Previous *AggregateResult
	Budget   *BudgetRollup
	Tree     *CategoryTree
	Period   models.DateRange
	Today    models.Date
}

// SelectInsight evaluates the rule set against the period's aggregates
// and returns the single highest-priority match, or nil when nothing
// fires. Within one rule, ties are broken by category name ascending so
// identical inputs always produce the identical insight.
func SelectInsight(input InsightInput) *models.Insight {
	rules := []func(InsightInput) *models.Insight{
		budgetExceededRule,
		budgetAlertRule,
		categorySpikeRule,
		spendConcentrationRule,
	}
	for _, rule := range rules {
		if insight := rule(input); insight != nil {
			return insight
		}
	}
	return nil
}

// budgetExceededRule fires when any leaf category grouping has realized
// spend above a positive planned amount.
func budgetExceededRule(input InsightInput) *models.Insight {
	if input.Budget == nil || input.Tree == nil {
		return nil
	}

	name, entry, ok := worstByName(input, func(entry BudgetEntry) bool {
		return entry.Budget.IsPositive() && entry.Realized.GreaterThan(entry.Budget)
	})
	if !ok {
		return nil
	}

	overspend := entry.Realized.Sub(entry.Budget)
	return &models.Insight{
		Type:     models.InsightBudgetExceeded,
		Priority: priorityBudgetExceeded,
		Title:    "Orçamento estourado",
		Message: fmt.Sprintf("%s passou do orçamento em %s no período (realizado %s de %s planejados)",
			name, overspend.StringFixed(2), entry.Realized.StringFixed(2), entry.Budget.StringFixed(2)),
		Metrics: &models.InsightMetrics{
			CurrentValue:    entry.Realized,
			ComparisonValue: entry.Budget,
			BudgetLimit:     entry.Budget,
			Percent:         percentOf(entry.Realized, entry.Budget),
		},
		ActionSuggestion: "Revise os lançamentos da categoria ou ajuste o planejamento do mês",
	}
}

// budgetAlertRule fires when consumption sits between 80% and 99% of
// plan and the spend pace outruns the calendar by more than 20%.
func budgetAlertRule(input InsightInput) *models.Insight {
	if input.Budget == nil || input.Tree == nil {
		return nil
	}

	elapsed := ElapsedFraction(input.Period, input.Today)
	if elapsed <= 0 {
		return nil
	}

	name, entry, ok := worstByName(input, func(entry BudgetEntry) bool {
		if !entry.Budget.IsPositive() {
			return false
		}
		consumed, _ := entry.Realized.Div(entry.Budget).Float64()
		if consumed < budgetAlertFloor || consumed >= 1.0 {
			return false
		}
		return consumed/elapsed > budgetAlertVelocity
	})
	if !ok {
		return nil
	}

	consumed := percentOf(entry.Realized, entry.Budget)
	return &models.Insight{
		Type:     models.InsightBudgetAlert,
		Priority: priorityBudgetAlert,
		Title:    "Orçamento quase no limite",
		Message: fmt.Sprintf("%s já consumiu %.0f%% do orçamento com %.0f%% do período decorrido",
			name, consumed, elapsed*100),
		Metrics: &models.InsightMetrics{
			CurrentValue:    entry.Realized,
			ComparisonValue: entry.Budget,
			BudgetLimit:     entry.Budget,
			Percent:         consumed,
		},
		ActionSuggestion: "Freie novos lançamentos nessa categoria até o fim do período",
	}
}

// categorySpikeRule fires when a leaf expense category grew more than
// 30% versus the immediately preceding period. Previous spend must be
// positive, which also guards the division.
func categorySpikeRule(input InsightInput) *models.Insight {
	if input.Current == nil || input.Previous == nil || input.Tree == nil {
		return nil
	}

	type spike struct {
		name     string
		current  decimal.Decimal
		previous decimal.Decimal
		growth   float64
	}
	var candidates []spike

	for id, current := range input.Current.Absolute {
		category, ok := input.Tree.Get(id)
		if !ok || !category.IsLeaf() || category.Type != models.CategoryTypeExpense {
			continue
		}
		previous := input.Previous.AbsoluteOf(id)
		if !previous.IsPositive() {
			continue
		}
		growth, _ := current.Sub(previous).Div(previous).Float64()
		if growth > spikeThreshold {
			candidates = append(candidates, spike{
				name: category.Name, current: current, previous: previous, growth: growth,
			})
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].name < candidates[j].name })
	top := candidates[0]

	return &models.Insight{
		Type:     models.InsightCategorySpike,
		Priority: priorityCategorySpike,
		Title:    "Gasto em alta",
		Message: fmt.Sprintf("%s cresceu %.0f%% em relação ao período anterior (%s contra %s)",
			top.name, top.growth*100, top.current.StringFixed(2), top.previous.StringFixed(2)),
		Metrics: &models.InsightMetrics{
			CurrentValue:    top.current,
			ComparisonValue: top.previous,
			Percent:         top.growth * 100,
		},
		ActionSuggestion: "Confira os lançamentos recentes dessa categoria",
	}
}

// spendConcentrationRule fires when a single leaf expense category
// carries more than 20% of the period's total expense. The denominator
// is the root-level expense total, so spend whose stored category
// drifted to a group node still widens the base even though only leaves
// can be the concentrated category.
func spendConcentrationRule(input InsightInput) *models.Insight {
	if input.Current == nil || input.Tree == nil {
		return nil
	}

	total := decimal.Zero
	for _, root := range input.Tree.Roots() {
		if root.Type == models.CategoryTypeExpense {
			total = total.Add(input.Current.AbsoluteOf(root.ID))
		}
	}
	if !total.IsPositive() {
		return nil
	}

	type leafSpend struct {
		name   string
		amount decimal.Decimal
	}
	var leaves []leafSpend

	for id, amount := range input.Current.Absolute {
		category, ok := input.Tree.Get(id)
		if !ok || !category.IsLeaf() || category.Type != models.CategoryTypeExpense {
			continue
		}
		leaves = append(leaves, leafSpend{name: category.Name, amount: amount})
	}

	sort.Slice(leaves, func(i, j int) bool { return leaves[i].name < leaves[j].name })
	for _, leaf := range leaves {
		share, _ := leaf.amount.Div(total).Float64()
		if share > concentrationShare {
			return &models.Insight{
				Type:     models.InsightSpendConcentration,
				Priority: prioritySpendConcentration,
				Title:    "Gasto concentrado",
				Message: fmt.Sprintf("%s responde por %.0f%% de toda a despesa do período",
					leaf.name, share*100),
				Metrics: &models.InsightMetrics{
					CurrentValue:    leaf.amount,
					ComparisonValue: total,
					Percent:         share * 100,
				},
				ActionSuggestion: "Avalie se essa concentração de despesa é esperada",
			}
		}
	}
	return nil
}

// worstByName scans the budget rollup's leaf categories for entries
// matching the predicate and returns the first by category name
// ascending, keeping same-priority selection deterministic.
func worstByName(input InsightInput, match func(BudgetEntry) bool) (string, BudgetEntry, bool) {
	type hit struct {
		name  string
		entry BudgetEntry
	}
	var hits []hit

	for id, entry := range input.Budget.Categories {
		category, ok := input.Tree.Get(id)
		if !ok || !category.IsLeaf() {
			continue
		}
		if match(entry) {
			hits = append(hits, hit{name: category.Name, entry: entry})
		}
	}
	if len(hits) == 0 {
		return "", BudgetEntry{}, false
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].name < hits[j].name })
	return hits[0].name, hits[0].entry, true
}
