package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves canned data and can block record fetches until
// released, which lets tests interleave overlapping reloads.
type fakeStore struct {
	categories  []models.Category
	costCenters []models.CostCenter
	budgetLines []models.BudgetLine
	records     []models.FinancialRecord

	recordErr error
	gate      chan struct{}

	mu          sync.Mutex
	lastWindow  QueryWindow
	fetchCount  int
	budgetYears []int
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) ListCostCenters(ctx context.Context) ([]models.CostCenter, error) {
	return f.costCenters, nil
}

func (f *fakeStore) ListBudgetLines(ctx context.Context, year int) ([]models.BudgetLine, error) {
	f.mu.Lock()
	f.budgetYears = append(f.budgetYears, year)
	f.mu.Unlock()
	return f.budgetLines, nil
}

func (f *fakeStore) ListFinancialRecords(ctx context.Context, window QueryWindow) ([]models.FinancialRecord, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.lastWindow = window
	f.fetchCount++
	f.mu.Unlock()
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return f.records, nil
}

func reloadFixture() *fakeStore {
	labels := DefaultStatementLabels()
	gross := newCategory(labels.GrossRevenue, models.CategoryTypeIncome, nil, 0)
	fixed := newCategory(labels.FixedCosts, models.CategoryTypeExpense, nil, 1)
	cc := newCostCenter("Loja Centro", fixed.ID)

	june := models.NewDate(2025, time.June, 10)
	may := models.NewDate(2025, time.May, 10)

	income := recordFor(gross.ID, models.RecordTypeIncome, "5000.00")
	income.CompetenceDate = june
	expense := recordFor(fixed.ID, models.RecordTypeExpense, "1200.00")
	expense.CostCenterID = cc.ID
	expense.CompetenceDate = june
	prior := recordFor(fixed.ID, models.RecordTypeExpense, "900.00")
	prior.CostCenterID = cc.ID
	prior.CompetenceDate = may

	return &fakeStore{
		categories:  []models.Category{gross, fixed},
		costCenters: []models.CostCenter{cc},
		budgetLines: []models.BudgetLine{
			budgetLine(models.ReferenceMonth{Year: 2025, Month: time.June}, cc.ID, "2000.00"),
		},
		records: []models.FinancialRecord{income, expense, prior},
	}
}

func TestReloader_Reload(t *testing.T) {
	store := reloadFixture()
	reloader := NewReloader(store, DefaultStatementLabels())

	sel := PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.June}}
	today := models.NewDate(2025, time.June, 15)

	bundle, err := reloader.Reload(context.Background(), sel, models.BasisAccrual, today)
	require.NoError(t, err)

	// Period slice: June only.
	assert.Equal(t, "5000", bundle.Statement.GrossRevenue.Value.String())
	assert.Equal(t, "1200", bundle.Statement.FixedCosts.Value.String())
	assert.Equal(t, "3800", bundle.Statement.NetResult.Value.String())

	// Previous slice picked up the May record.
	fixedID := store.categories[1].ID
	assert.Equal(t, "900", bundle.Previous.AbsoluteOf(fixedID).String())

	// Budget merged against June's realized cost-center spend.
	cc := store.costCenters[0]
	require.Contains(t, bundle.Budget.CostCenters, cc.ID)
	assert.Equal(t, "2000", bundle.Budget.CostCenters[cc.ID].Budget.String())
	assert.Equal(t, "1200", bundle.Budget.CostCenters[cc.ID].Realized.String())

	assert.Equal(t, []int{2025}, store.budgetYears)

	// The single record fetch covers every derived window, back through
	// the year-over-year month.
	assert.Equal(t, models.NewDate(2024, time.June, 1), store.lastWindow.Range.Start)
	assert.Equal(t, models.NewDate(2025, time.June, 30), store.lastWindow.Range.End)
	assert.Equal(t, ColumnCompetenceDate, store.lastWindow.Column)
}

func TestReloader_CashBasisWindow(t *testing.T) {
	store := reloadFixture()
	reloader := NewReloader(store, DefaultStatementLabels())

	sel := PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.June}}
	_, err := reloader.Reload(context.Background(), sel, models.BasisCash, models.NewDate(2025, time.June, 15))
	require.NoError(t, err)

	assert.Equal(t, ColumnPaymentDate, store.lastWindow.Column)
	assert.True(t, store.lastWindow.RequirePaid)
}

func TestReloader_FetchErrorFailsWholeReload(t *testing.T) {
	store := reloadFixture()
	store.recordErr = errors.New("connection reset")
	reloader := NewReloader(store, DefaultStatementLabels())

	sel := PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.June}}
	bundle, err := reloader.Reload(context.Background(), sel, models.BasisAccrual, models.NewDate(2025, time.June, 15))

	assert.Nil(t, bundle)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")
}

func TestReloader_SupersededReloadIsDiscarded(t *testing.T) {
	store := reloadFixture()
	store.gate = make(chan struct{})
	reloader := NewReloader(store, DefaultStatementLabels())

	sel := PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.June}}
	today := models.NewDate(2025, time.June, 15)

	type result struct {
		bundle *Bundle
		err    error
	}
	firstDone := make(chan result, 1)
	go func() {
		b, err := reloader.Reload(context.Background(), sel, models.BasisAccrual, today)
		firstDone <- result{b, err}
	}()

	// Let the second reload start while the first is blocked on its
	// record fetch, then release both.
	secondDone := make(chan result, 1)
	go func() {
		b, err := reloader.Reload(context.Background(), sel, models.BasisAccrual, today)
		secondDone <- result{b, err}
	}()

	time.Sleep(20 * time.Millisecond)
	close(store.gate)

	first := <-firstDone
	second := <-secondDone

	// Whichever reload holds the newest generation wins; the other is
	// told to discard. Exactly one bundle survives.
	results := []result{first, second}
	var bundles, superseded int
	for _, r := range results {
		switch {
		case r.err == nil && r.bundle != nil:
			bundles++
		case errors.Is(r.err, ErrSuperseded):
			superseded++
		default:
			t.Fatalf("unexpected outcome: bundle=%v err=%v", r.bundle, r.err)
		}
	}
	assert.Equal(t, 1, bundles)
	assert.Equal(t, 1, superseded)
}

func TestDeriveBundle_InsightFeedsFromSamePeriod(t *testing.T) {
	labels := DefaultStatementLabels()
	leaf := newCategory("Marketing", models.CategoryTypeExpense, nil, 0)
	cc := newCostCenter("Digital", leaf.ID)

	rec := recordFor(leaf.ID, models.RecordTypeExpense, "1500.00")
	rec.CostCenterID = cc.ID
	rec.CompetenceDate = models.NewDate(2025, time.June, 5)

	sel := PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.June}}
	today := models.NewDate(2025, time.June, 20)
	ranges := ResolvePeriodRanges(sel, today)

	lines := []models.BudgetLine{
		budgetLine(sel.Month, cc.ID, "1000.00"),
	}

	bundle := deriveBundle(sel, models.BasisAccrual, today, ranges,
		[]models.Category{leaf}, []models.CostCenter{cc}, lines,
		[]models.FinancialRecord{rec}, labels)

	require.NotNil(t, bundle.Insight)
	assert.Equal(t, models.InsightBudgetExceeded, bundle.Insight.Type)
	assert.Contains(t, bundle.Insight.Message, "Marketing")

	// The same decimal flows into the cost-center slice and the insight.
	assert.True(t, bundle.ByCostCenter[cc.ID].Absolute.Equal(decimal.RequireFromString("1500.00")))
}
