package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/google/uuid"
)

// ErrSuperseded is returned when a newer reload started while this one
// was still fetching. The caller must discard the result instead of
// merging a stale bundle with newer state.
var ErrSuperseded = errors.New("reload superseded by a newer request")

// RecordStore is the queryable external store the reporting core reads
// from. Implementations own all I/O; the core never opens a connection.
type RecordStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListCostCenters(ctx context.Context) ([]models.CostCenter, error)
	ListBudgetLines(ctx context.Context, year int) ([]models.BudgetLine, error)
	ListFinancialRecords(ctx context.Context, window QueryWindow) ([]models.FinancialRecord, error)
}

// Bundle is the complete output of one reload: the fetched inputs plus
// every derived view, produced together so the dashboard, statement, and
// budget screens can never disagree about the same period.
type Bundle struct {
	Selection    PeriodSelection
	Basis        models.Basis
	Today        models.Date
	Ranges       PeriodRanges
	Tree         *CategoryTree
	CostCenters  []models.CostCenter
	Records      []models.FinancialRecord
	Current      *AggregateResult
	Previous     *AggregateResult
	ByCostCenter map[uuid.UUID]CostCenterTotals
	Budget       *BudgetRollup
	Statement    StatementLines
	Insight      *models.Insight
}

// Reloader coordinates the concurrent fetches behind a reload and
// guarantees that when reloads overlap, only the newest one's bundle
// survives. Each reload is identified by a generation number; a reload
// that finishes after a newer one started is discarded, which resolves
// the out-of-order-response race without loading flags.
type Reloader struct {
	store  RecordStore
	labels StatementLabels

	mu     sync.Mutex
	latest uint64
}

// NewReloader creates a reload coordinator over the given store.
func NewReloader(store RecordStore, labels StatementLabels) *Reloader {
	return &Reloader{store: store, labels: labels}
}

// Reload fetches all inputs for the selection concurrently, waits for
// every fetch, and derives the full bundle. Partial data silently
// produces wrong totals, so no aggregation happens until every fetch has
// succeeded. Returns ErrSuperseded when a newer reload overtook this one.
func (r *Reloader) Reload(ctx context.Context, sel PeriodSelection, basis models.Basis, today models.Date) (*Bundle, error) {
	r.mu.Lock()
	r.latest++
	generation := r.latest
	r.mu.Unlock()

	ranges := ResolvePeriodRanges(sel, today)
	fetchWindow := BasisQueryWindow(basis, fetchRange(ranges))

	var (
		wg          sync.WaitGroup
		categories  []models.Category
		costCenters []models.CostCenter
		budgetLines []models.BudgetLine
		records     []models.FinancialRecord
		errs        [4]error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		categories, errs[0] = r.store.ListCategories(ctx)
	}()
	go func() {
		defer wg.Done()
		costCenters, errs[1] = r.store.ListCostCenters(ctx)
	}()
	go func() {
		defer wg.Done()
		budgetLines, errs[2] = r.store.ListBudgetLines(ctx, sel.ReferenceYear())
	}()
	go func() {
		defer wg.Done()
		records, errs[3] = r.store.ListFinancialRecords(ctx, fetchWindow)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("reload fetch failed: %w", err)
		}
	}

	r.mu.Lock()
	stale := generation != r.latest
	r.mu.Unlock()
	if stale {
		return nil, ErrSuperseded
	}

	return deriveBundle(sel, basis, today, ranges, categories, costCenters, budgetLines, records, r.labels), nil
}

// fetchRange is the widest window any derived view needs, so a single
// record fetch serves the period, previous, year-over-year, series, and
// year-to-date slices.
func fetchRange(ranges PeriodRanges) models.DateRange {
	window := ranges.Period
	for _, r := range []models.DateRange{ranges.Previous, ranges.Series, ranges.YearToDate} {
		if r.Start.Before(window.Start) {
			window.Start = r.Start
		}
		if r.End.After(window.End) {
			window.End = r.End
		}
	}
	if ranges.YearOverYear != nil {
		if ranges.YearOverYear.Start.Before(window.Start) {
			window.Start = ranges.YearOverYear.Start
		}
		if ranges.YearOverYear.End.After(window.End) {
			window.End = ranges.YearOverYear.End
		}
	}
	return window
}

func deriveBundle(
	sel PeriodSelection,
	basis models.Basis,
	today models.Date,
	ranges PeriodRanges,
	categories []models.Category,
	costCenters []models.CostCenter,
	budgetLines []models.BudgetLine,
	records []models.FinancialRecord,
	labels StatementLabels,
) *Bundle {
	tree := BuildCategoryTree(categories)

	currentRecords := FilterByPeriod(records, basis, ranges.Period)
	previousRecords := FilterByPeriod(records, basis, ranges.Previous)

	current := Aggregate(currentRecords, tree)
	previous := Aggregate(previousRecords, tree)
	byCostCenter := AggregateByCostCenter(currentRecords)

	budget := RollupBudget(budgetLines, costCenters, byCostCenter, tree, sel)

	return &Bundle{
		Selection:    sel,
		Basis:        basis,
		Today:        today,
		Ranges:       ranges,
		Tree:         tree,
		CostCenters:  costCenters,
		Records:      records,
		Current:      current,
		Previous:     previous,
		ByCostCenter: byCostCenter,
		Budget:       budget,
		Statement:    ComputeStatementLines(current, tree, labels),
		Insight: SelectInsight(InsightInput{
			Current:  current,
			Previous: previous,
			Budget:   budget,
			Tree:     tree,
			Period:   ranges.Period,
			Today:    today,
		}),
	}
}
