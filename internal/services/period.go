package services

import (
	"fmt"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
)

// PeriodMode selects month-level or year-level reporting
type PeriodMode string

const (
	PeriodModeMonth PeriodMode = "month"
	PeriodModeYear  PeriodMode = "year"
)

// seriesMonths is how many trailing months the dashboard trend covers.
const seriesMonths = 8

// PeriodSelection is the user's choice of reporting window: a month when
// Mode is month, a year otherwise.
type PeriodSelection struct {
	Mode  PeriodMode            `json:"mode"`
	Month models.ReferenceMonth `json:"month,omitempty"`
	Year  int                   `json:"year,omitempty"`
}

// PeriodRanges bundles every date window a reload needs so the caller
// can issue all fetches from a single resolution step.
type PeriodRanges struct {
	Period       models.DateRange  `json:"period"`
	Previous     models.DateRange  `json:"previous"`
	YearOverYear *models.DateRange `json:"year_over_year,omitempty"` // month mode only
	Series       models.DateRange  `json:"series"`
	YearToDate   models.DateRange  `json:"year_to_date"`
}

// MonthRange returns the inclusive first-to-last-day range of a month.
func MonthRange(m models.ReferenceMonth) models.DateRange {
	return models.DateRange{
		Start: models.NewDate(m.Year, m.Month, 1),
		End:   models.NewDate(m.Year, m.Month, m.DaysInMonth()),
	}
}

// YearRange returns the inclusive Jan 1 – Dec 31 range of a year.
func YearRange(year int) models.DateRange {
	return models.DateRange{
		Start: models.NewDate(year, time.January, 1),
		End:   models.NewDate(year, time.December, 31),
	}
}

// PreviousPeriod returns the selection one step back in the same mode.
func PreviousPeriod(sel PeriodSelection) PeriodSelection {
	if sel.Mode == PeriodModeYear {
		return PeriodSelection{Mode: PeriodModeYear, Year: sel.Year - 1}
	}
	return PeriodSelection{Mode: PeriodModeMonth, Month: sel.Month.Previous()}
}

// YearOverYearPeriod returns the same month one year earlier. Only
// defined for month mode.
func YearOverYearPeriod(sel PeriodSelection) (PeriodSelection, error) {
	if sel.Mode != PeriodModeMonth {
		return PeriodSelection{}, fmt.Errorf("year-over-year requires month mode, got %q", sel.Mode)
	}
	return PeriodSelection{
		Mode:  PeriodModeMonth,
		Month: models.ReferenceMonth{Year: sel.Month.Year - 1, Month: sel.Month.Month},
	}, nil
}

// SeriesRange returns the window used for trend charts: the trailing
// eight months ending at the selected month, or Jan–Dec of the selected
// year.
func SeriesRange(sel PeriodSelection) models.DateRange {
	if sel.Mode == PeriodModeYear {
		return YearRange(sel.Year)
	}
	first := sel.Month.AddMonths(-(seriesMonths - 1))
	return models.DateRange{
		Start: models.NewDate(first.Year, first.Month, 1),
		End:   MonthRange(sel.Month).End,
	}
}

// YearToDateRange returns Jan 1 of the year through today, capped at
// Dec 31 of that year.
func YearToDateRange(year int, today models.Date) models.DateRange {
	end := models.NewDate(year, time.December, 31)
	if today.Before(end) {
		end = today
	}
	return models.DateRange{Start: models.NewDate(year, time.January, 1), End: end}
}

// Range resolves the selection's own inclusive window.
func (sel PeriodSelection) Range() models.DateRange {
	if sel.Mode == PeriodModeYear {
		return YearRange(sel.Year)
	}
	return MonthRange(sel.Month)
}

// ReferenceYear returns the calendar year the selection falls in.
func (sel PeriodSelection) ReferenceYear() int {
	if sel.Mode == PeriodModeYear {
		return sel.Year
	}
	return sel.Month.Year
}

// ResolvePeriodRanges computes every window derived from a selection.
// The caller threads today in explicitly so the result is deterministic.
func ResolvePeriodRanges(sel PeriodSelection, today models.Date) PeriodRanges {
	ranges := PeriodRanges{
		Period:     sel.Range(),
		Previous:   PreviousPeriod(sel).Range(),
		Series:     SeriesRange(sel),
		YearToDate: YearToDateRange(sel.ReferenceYear(), today),
	}

	if sel.Mode == PeriodModeMonth {
		if yoy, err := YearOverYearPeriod(sel); err == nil {
			r := yoy.Range()
			ranges.YearOverYear = &r
		}
	}
	return ranges
}

// ElapsedFraction returns how much of the period has passed as of today,
// clamped to [0, 1]. Used by the budget-alert velocity rule.
func ElapsedFraction(period models.DateRange, today models.Date) float64 {
	if today.Before(period.Start) {
		return 0
	}
	total := daysBetween(period.Start, period.End) + 1
	if total <= 0 {
		return 0
	}
	elapsed := daysBetween(period.Start, today) + 1
	if elapsed > total {
		elapsed = total
	}
	return float64(elapsed) / float64(total)
}

func daysBetween(a, b models.Date) int {
	return int(b.Time(time.UTC).Sub(a.Time(time.UTC)).Hours() / 24)
}
