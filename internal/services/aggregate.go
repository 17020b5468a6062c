package services

import (
	"strings"
	"unicode"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AggregateResult holds both signings of the rollup keyed by category
// id. Signed counts income as positive and expense as negative; Absolute
// counts every record as positive. Each record's contribution is
// propagated to every ancestor, so any node (leaf or root group) already
// carries its fully rolled-up total.
type AggregateResult struct {
	Signed   map[uuid.UUID]decimal.Decimal
	Absolute map[uuid.UUID]decimal.Decimal
	// Excluded counts records whose stored category id resolved to no
	// tree node. They contribute to no aggregate; the caller decides
	// whether that is worth logging.
	Excluded int
}

// SignedOf returns the rolled-up signed total for a category, zero when
// the category received no contributions.
func (a *AggregateResult) SignedOf(id uuid.UUID) decimal.Decimal {
	return a.Signed[id]
}

// AbsoluteOf returns the rolled-up absolute total for a category.
func (a *AggregateResult) AbsoluteOf(id uuid.UUID) decimal.Decimal {
	return a.Absolute[id]
}

// Aggregate walks each record up the category tree from its stored
// category id, accumulating into both maps at every level visited. The
// walk is cycle-safe and aggregates by the record's stored category
// (historical truth), not the cost center's current link.
//
// The caller is responsible for having already filtered records to the
// desired period and basis.
func Aggregate(records []models.FinancialRecord, tree *CategoryTree) *AggregateResult {
	result := &AggregateResult{
		Signed:   make(map[uuid.UUID]decimal.Decimal),
		Absolute: make(map[uuid.UUID]decimal.Decimal),
	}

	for _, rec := range records {
		chain := tree.AncestorIDs(rec.CategoryID)
		if len(chain) == 0 {
			result.Excluded++
			continue
		}

		signed := rec.SignedAmount()
		for _, id := range chain {
			result.Signed[id] = result.Signed[id].Add(signed)
			result.Absolute[id] = result.Absolute[id].Add(rec.Amount)
		}
	}
	return result
}

// CostCenterTotals is the per-cost-center slice of an aggregation.
type CostCenterTotals struct {
	Signed   decimal.Decimal `json:"signed"`
	Absolute decimal.Decimal `json:"absolute"`
	Count    int             `json:"count"`
}

// AggregateByCostCenter sums records by their cost center. Unlike the
// category rollup this keys on the operational tag directly, so budget
// views compare against the cost center's current link rather than the
// record's stored category.
func AggregateByCostCenter(records []models.FinancialRecord) map[uuid.UUID]CostCenterTotals {
	totals := make(map[uuid.UUID]CostCenterTotals)
	for _, rec := range records {
		t := totals[rec.CostCenterID]
		t.Signed = t.Signed.Add(rec.SignedAmount())
		t.Absolute = t.Absolute.Add(rec.Amount)
		t.Count++
		totals[rec.CostCenterID] = t
	}
	return totals
}

// StatementLabels names the DRE root groups the statement lines are
// derived from. Matching is by normalized name, so "Deduções" and
// "deducoes" resolve to the same root.
type StatementLabels struct {
	GrossRevenue  string
	Deductions    string
	VariableCosts string
	FixedCosts    string
	NonOperating  string
	IncomeTax     string
}

// DefaultStatementLabels returns the stock Brazilian chart-of-accounts
// root names.
func DefaultStatementLabels() StatementLabels {
	return StatementLabels{
		GrossRevenue:  "Receita Bruta",
		Deductions:    "Deduções",
		VariableCosts: "Custos Variáveis",
		FixedCosts:    "Custos Fixos",
		NonOperating:  "Resultado Não Operacional",
		IncomeTax:     "Impostos sobre Resultado",
	}
}

// StatementLine is one row of the income statement: its value and its
// share of gross revenue.
type StatementLine struct {
	Value   decimal.Decimal `json:"value"`
	Percent float64         `json:"percent"`
}

// StatementLines is the computed DRE.
type StatementLines struct {
	GrossRevenue       StatementLine `json:"gross_revenue"`
	Deductions         StatementLine `json:"deductions"`
	NetRevenue         StatementLine `json:"net_revenue"`
	VariableCosts      StatementLine `json:"variable_costs"`
	ContributionMargin StatementLine `json:"contribution_margin"`
	FixedCosts         StatementLine `json:"fixed_costs"`
	OperatingResult    StatementLine `json:"operating_result"`
	NonOperating       StatementLine `json:"non_operating"`
	PreTaxResult       StatementLine `json:"pre_tax_result"`
	IncomeTax          StatementLine `json:"income_tax"`
	NetResult          StatementLine `json:"net_result"`
}

// ComputeStatementLines derives the income statement from an aggregate.
// Roots are resolved by normalized name against the configured labels; a
// label with no matching root contributes zero, and a root flagged out
// of the statement (IncludeInDRE false) is never resolved, so its whole
// subtree stays out of every line. Percentages are of gross revenue and
// resolve to 0 when gross revenue is zero, never NaN.
func ComputeStatementLines(agg *AggregateResult, tree *CategoryTree, labels StatementLabels) StatementLines {
	rootsByName := make(map[string]uuid.UUID)
	for _, root := range tree.Roots() {
		if !root.IncludeInDRE {
			continue
		}
		rootsByName[normalizeLabel(root.Name)] = root.ID
	}

	signedOf := func(label string) decimal.Decimal {
		if id, ok := rootsByName[normalizeLabel(label)]; ok {
			return agg.SignedOf(id)
		}
		return decimal.Zero
	}
	absoluteOf := func(label string) decimal.Decimal {
		if id, ok := rootsByName[normalizeLabel(label)]; ok {
			return agg.AbsoluteOf(id)
		}
		return decimal.Zero
	}

	grossRevenue := signedOf(labels.GrossRevenue)
	deductions := absoluteOf(labels.Deductions)
	variableCosts := absoluteOf(labels.VariableCosts)
	fixedCosts := absoluteOf(labels.FixedCosts)
	nonOperating := signedOf(labels.NonOperating)
	incomeTax := absoluteOf(labels.IncomeTax)

	netRevenue := grossRevenue.Sub(deductions)
	contributionMargin := netRevenue.Sub(variableCosts)
	operatingResult := contributionMargin.Sub(fixedCosts)
	preTaxResult := operatingResult.Add(nonOperating)
	netResult := preTaxResult.Sub(incomeTax)

	line := func(v decimal.Decimal) StatementLine {
		return StatementLine{Value: v, Percent: percentOf(v, grossRevenue)}
	}

	return StatementLines{
		GrossRevenue:       line(grossRevenue),
		Deductions:         line(deductions),
		NetRevenue:         line(netRevenue),
		VariableCosts:      line(variableCosts),
		ContributionMargin: line(contributionMargin),
		FixedCosts:         line(fixedCosts),
		OperatingResult:    line(operatingResult),
		NonOperating:       line(nonOperating),
		PreTaxResult:       line(preTaxResult),
		IncomeTax:          line(incomeTax),
		NetResult:          line(netResult),
	}
}

// percentOf returns value as a percentage of base, 0 when base is zero.
func percentOf(value, base decimal.Decimal) float64 {
	if base.IsZero() {
		return 0
	}
	pct, _ := value.Div(base).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}

// normalizeLabel strips diacritics, folds case, and collapses interior
// whitespace so user-configured root names match regardless of accents.
func normalizeLabel(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}
