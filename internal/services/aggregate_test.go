package services

import (
	"testing"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordFor(categoryID uuid.UUID, recType models.RecordType, amount string) models.FinancialRecord {
	return models.FinancialRecord{
		ID:             uuid.New(),
		Type:           recType,
		Status:         models.StatusPaid,
		Amount:         decimal.RequireFromString(amount),
		CompetenceDate: models.NewDate(2025, time.June, 10),
		DueDate:        models.NewDate(2025, time.June, 10),
		CategoryID:     categoryID,
		CostCenterID:   uuid.New(),
	}
}

func TestAggregate_RollupConservation(t *testing.T) {
	root := newCategory("Custos Fixos", models.CategoryTypeExpense, nil, 0)
	root.IsGroup = true
	leafA := newCategory("Aluguel", models.CategoryTypeExpense, &root.ID, 0)
	leafB := newCategory("Energia", models.CategoryTypeExpense, &root.ID, 1)
	tree := BuildCategoryTree([]models.Category{root, leafA, leafB})

	records := []models.FinancialRecord{
		recordFor(leafA.ID, models.RecordTypeExpense, "1200.00"),
		recordFor(leafA.ID, models.RecordTypeExpense, "300.50"),
		recordFor(leafB.ID, models.RecordTypeExpense, "499.50"),
	}

	agg := Aggregate(records, tree)

	// The root's total equals the sum of its leaves exactly.
	leafSum := agg.AbsoluteOf(leafA.ID).Add(agg.AbsoluteOf(leafB.ID))
	assert.True(t, agg.AbsoluteOf(root.ID).Equal(leafSum),
		"root %s != leaf sum %s", agg.AbsoluteOf(root.ID), leafSum)
	assert.Equal(t, "2000", agg.AbsoluteOf(root.ID).String())
	assert.Equal(t, 0, agg.Excluded)
}

func TestAggregate_SignedMirrorsAbsoluteForExpenses(t *testing.T) {
	root := newCategory("Custos Variáveis", models.CategoryTypeExpense, nil, 0)
	leaf := newCategory("Insumos", models.CategoryTypeExpense, &root.ID, 0)
	tree := BuildCategoryTree([]models.Category{root, leaf})

	records := []models.FinancialRecord{
		recordFor(leaf.ID, models.RecordTypeExpense, "750.00"),
		recordFor(leaf.ID, models.RecordTypeExpense, "250.00"),
	}

	agg := Aggregate(records, tree)

	// Expense-only input: signed is the negation of absolute at every node.
	for _, id := range []uuid.UUID{root.ID, leaf.ID} {
		assert.True(t, agg.SignedOf(id).Equal(agg.AbsoluteOf(id).Neg()))
	}
}

func TestAggregate_MixedTypesAtOneNode(t *testing.T) {
	root := newCategory("Resultado Não Operacional", models.CategoryTypeIncome, nil, 0)
	tree := BuildCategoryTree([]models.Category{root})

	records := []models.FinancialRecord{
		recordFor(root.ID, models.RecordTypeIncome, "300.00"),
		recordFor(root.ID, models.RecordTypeExpense, "500.00"),
	}

	agg := Aggregate(records, tree)

	assert.Equal(t, "-200", agg.SignedOf(root.ID).String())
	assert.Equal(t, "800", agg.AbsoluteOf(root.ID).String())
}

func TestAggregate_UnknownCategoryCounted(t *testing.T) {
	root := newCategory("Receita Bruta", models.CategoryTypeIncome, nil, 0)
	tree := BuildCategoryTree([]models.Category{root})

	records := []models.FinancialRecord{
		recordFor(root.ID, models.RecordTypeIncome, "100.00"),
		recordFor(uuid.New(), models.RecordTypeIncome, "999.00"),
	}

	agg := Aggregate(records, tree)

	assert.Equal(t, 1, agg.Excluded)
	assert.Equal(t, "100", agg.SignedOf(root.ID).String())
}

func TestAggregateByCostCenter(t *testing.T) {
	ccA := uuid.New()
	ccB := uuid.New()

	mk := func(cc uuid.UUID, recType models.RecordType, amount string) models.FinancialRecord {
		r := recordFor(uuid.New(), recType, amount)
		r.CostCenterID = cc
		return r
	}

	totals := AggregateByCostCenter([]models.FinancialRecord{
		mk(ccA, models.RecordTypeExpense, "100.00"),
		mk(ccA, models.RecordTypeExpense, "150.00"),
		mk(ccB, models.RecordTypeIncome, "900.00"),
	})

	require.Len(t, totals, 2)
	assert.Equal(t, "-250", totals[ccA].Signed.String())
	assert.Equal(t, "250", totals[ccA].Absolute.String())
	assert.Equal(t, 2, totals[ccA].Count)
	assert.Equal(t, "900", totals[ccB].Signed.String())
}

// statementFixture builds the six DRE root groups with leaf records
// producing known totals.
func statementFixture(t *testing.T) (*AggregateResult, *CategoryTree) {
	t.Helper()

	labels := DefaultStatementLabels()
	gross := newCategory(labels.GrossRevenue, models.CategoryTypeIncome, nil, 0)
	deductions := newCategory(labels.Deductions, models.CategoryTypeExpense, nil, 1)
	variable := newCategory(labels.VariableCosts, models.CategoryTypeExpense, nil, 2)
	fixed := newCategory(labels.FixedCosts, models.CategoryTypeExpense, nil, 3)
	nonOp := newCategory(labels.NonOperating, models.CategoryTypeIncome, nil, 4)
	tax := newCategory(labels.IncomeTax, models.CategoryTypeExpense, nil, 5)

	tree := BuildCategoryTree([]models.Category{gross, deductions, variable, fixed, nonOp, tax})

	records := []models.FinancialRecord{
		recordFor(gross.ID, models.RecordTypeIncome, "10000.00"),
		recordFor(deductions.ID, models.RecordTypeExpense, "1000.00"),
		recordFor(variable.ID, models.RecordTypeExpense, "3000.00"),
		recordFor(fixed.ID, models.RecordTypeExpense, "2000.00"),
		recordFor(nonOp.ID, models.RecordTypeExpense, "200.00"),
		recordFor(tax.ID, models.RecordTypeExpense, "500.00"),
	}

	return Aggregate(records, tree), tree
}

func TestComputeStatementLines(t *testing.T) {
	agg, tree := statementFixture(t)

	lines := ComputeStatementLines(agg, tree, DefaultStatementLabels())

	tests := []struct {
		name string
		line StatementLine
		want string
	}{
		{"gross revenue", lines.GrossRevenue, "10000"},
		{"deductions", lines.Deductions, "1000"},
		{"net revenue", lines.NetRevenue, "9000"},
		{"variable costs", lines.VariableCosts, "3000"},
		{"contribution margin", lines.ContributionMargin, "6000"},
		{"fixed costs", lines.FixedCosts, "2000"},
		{"operating result", lines.OperatingResult, "4000"},
		{"non operating", lines.NonOperating, "-200"},
		{"pre tax result", lines.PreTaxResult, "3800"},
		{"income tax", lines.IncomeTax, "500"},
		{"net result", lines.NetResult, "3300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.line.Value.String())
		})
	}

	assert.InDelta(t, 33.0, lines.NetResult.Percent, 1e-9)
	assert.InDelta(t, 90.0, lines.NetRevenue.Percent, 1e-9)
}

func TestComputeStatementLines_ExcludedRootStaysOut(t *testing.T) {
	labels := DefaultStatementLabels()
	gross := newCategory(labels.GrossRevenue, models.CategoryTypeIncome, nil, 0)
	fixed := newCategory(labels.FixedCosts, models.CategoryTypeExpense, nil, 1)
	fixed.IncludeInDRE = false
	tree := BuildCategoryTree([]models.Category{gross, fixed})

	agg := Aggregate([]models.FinancialRecord{
		recordFor(gross.ID, models.RecordTypeIncome, "1000.00"),
		recordFor(fixed.ID, models.RecordTypeExpense, "400.00"),
	}, tree)

	lines := ComputeStatementLines(agg, tree, labels)

	// The excluded root matches the fixed-costs label by name but must
	// contribute nothing to any statement line.
	assert.Equal(t, "0", lines.FixedCosts.Value.String())
	assert.Equal(t, "1000", lines.OperatingResult.Value.String())
	assert.Equal(t, "1000", lines.NetResult.Value.String())
}

func TestComputeStatementLines_ZeroGrossRevenue(t *testing.T) {
	labels := DefaultStatementLabels()
	fixed := newCategory(labels.FixedCosts, models.CategoryTypeExpense, nil, 0)
	tree := BuildCategoryTree([]models.Category{fixed})

	agg := Aggregate([]models.FinancialRecord{
		recordFor(fixed.ID, models.RecordTypeExpense, "2000.00"),
	}, tree)

	lines := ComputeStatementLines(agg, tree, labels)

	assert.Equal(t, "-2000", lines.NetResult.Value.String())
	// No gross revenue means every percentage is 0, never NaN.
	assert.Equal(t, 0.0, lines.NetResult.Percent)
	assert.Equal(t, 0.0, lines.FixedCosts.Percent)
}

func TestComputeStatementLines_AccentInsensitiveLabels(t *testing.T) {
	// The chart of accounts was created without accents; the stock
	// labels must still resolve these roots.
	gross := newCategory("receita  bruta", models.CategoryTypeIncome, nil, 0)
	deductions := newCategory("DEDUCOES", models.CategoryTypeExpense, nil, 1)
	tree := BuildCategoryTree([]models.Category{gross, deductions})

	agg := Aggregate([]models.FinancialRecord{
		recordFor(gross.ID, models.RecordTypeIncome, "1000.00"),
		recordFor(deductions.ID, models.RecordTypeExpense, "100.00"),
	}, tree)

	lines := ComputeStatementLines(agg, tree, DefaultStatementLabels())

	assert.Equal(t, "1000", lines.GrossRevenue.Value.String())
	assert.Equal(t, "900", lines.NetRevenue.Value.String())
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Deduções", "deducoes"},
		{"  Custos   Variáveis ", "custos variaveis"},
		{"RECEITA BRUTA", "receita bruta"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLabel(tt.in))
	}
}

func BenchmarkAggregate(b *testing.B) {
	root := newCategory("Custos Fixos", models.CategoryTypeExpense, nil, 0)
	mid := newCategory("Pessoal", models.CategoryTypeExpense, &root.ID, 0)
	leaf := newCategory("Salários", models.CategoryTypeExpense, &mid.ID, 0)
	tree := BuildCategoryTree([]models.Category{root, mid, leaf})

	records := make([]models.FinancialRecord, 0, 1000)
	for i := 0; i < 1000; i++ {
		records = append(records, recordFor(leaf.ID, models.RecordTypeExpense, "37.41"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Aggregate(records, tree)
	}
}
