package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
)

// DashboardHandler serves the period KPIs, the trailing trend series,
// and the period's single insight.
type DashboardHandler struct {
	reloader *services.Reloader
	loc      *time.Location
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(reloader *services.Reloader, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{reloader: reloader, loc: loc}
}

type KPIsResponse struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpense  decimal.Decimal `json:"total_expense"`
	NetResult     decimal.Decimal `json:"net_result"`
	RecordCount   int             `json:"record_count"`
	PendingCount  int             `json:"pending_count"`
	LateCount     int             `json:"late_count"`
	ExcludedCount int             `json:"excluded_count"`
}

type TrendPoint struct {
	Period  string          `json:"period"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type DashboardResponse struct {
	Period  services.PeriodSelection `json:"period"`
	Basis   models.Basis             `json:"basis"`
	KPIs    KPIsResponse             `json:"kpis"`
	Trend   []TrendPoint             `json:"trend"`
	Insight *models.Insight          `json:"insight,omitempty"`
}

// GetDashboard handles GET /v1/dashboard
// Query params: mode (month|year), month (YYYY-MM), year, basis (accrual|cash)
func (h *DashboardHandler) GetDashboard(c fiber.Ctx) error {
	// 1. Parse period and basis
	sel, err := parsePeriodSelection(c, h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	basis, err := parseBasis(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// 2. Reload all inputs and derived views for the period
	today := businessToday(h.loc)
	bundle, err := h.reloader.Reload(c.Context(), sel, basis, today)
	if err != nil {
		if errors.Is(err, services.ErrSuperseded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a newer reload superseded this request",
			})
		}
		log.Printf("dashboard reload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load dashboard data",
		})
	}

	// 3. Build KPIs from the period's records
	periodRecords := services.FilterByPeriod(bundle.Records, basis, bundle.Ranges.Period)
	kpis := buildKPIs(periodRecords, today, bundle.Current.Excluded)

	// 4. Build the trailing trend series
	trend := buildTrend(bundle, basis)

	return c.JSON(DashboardResponse{
		Period:  sel,
		Basis:   basis,
		KPIs:    kpis,
		Trend:   trend,
		Insight: bundle.Insight,
	})
}

func buildKPIs(records []models.FinancialRecord, today models.Date, excluded int) KPIsResponse {
	kpis := KPIsResponse{
		TotalIncome:   decimal.Zero,
		TotalExpense:  decimal.Zero,
		NetResult:     decimal.Zero,
		ExcludedCount: excluded,
	}
	for _, rec := range records {
		if rec.Type == models.RecordTypeIncome {
			kpis.TotalIncome = kpis.TotalIncome.Add(rec.Amount)
		} else {
			kpis.TotalExpense = kpis.TotalExpense.Add(rec.Amount)
		}
		switch rec.EffectiveStatus(today) {
		case models.StatusPending:
			kpis.PendingCount++
		case models.StatusLate:
			kpis.LateCount++
		}
		kpis.RecordCount++
	}
	kpis.NetResult = kpis.TotalIncome.Sub(kpis.TotalExpense)
	return kpis
}

// buildTrend buckets the series window per month. In year mode the
// buckets are the selected year's twelve months; in month mode the
// trailing eight months ending at the selection.
func buildTrend(bundle *services.Bundle, basis models.Basis) []TrendPoint {
	var months []models.ReferenceMonth
	start := bundle.Ranges.Series.Start
	end := bundle.Ranges.Series.End
	for m := (models.ReferenceMonth{Year: start.Year, Month: start.Month}); ; m = m.AddMonths(1) {
		months = append(months, m)
		if m.Contains(end) {
			break
		}
	}

	trend := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		point := TrendPoint{
			Period:  m.String(),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
		for _, rec := range services.FilterByPeriod(bundle.Records, basis, services.MonthRange(m)) {
			if rec.Type == models.RecordTypeIncome {
				point.Income = point.Income.Add(rec.Amount)
			} else {
				point.Expense = point.Expense.Add(rec.Amount)
			}
		}
		point.Net = point.Income.Sub(point.Expense)
		trend = append(trend, point)
	}
	return trend
}
