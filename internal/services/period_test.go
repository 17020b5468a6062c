package services

import (
	"testing"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name      string
		month     models.ReferenceMonth
		wantStart models.Date
		wantEnd   models.Date
	}{
		{
			name:      "january",
			month:     models.ReferenceMonth{Year: 2025, Month: time.January},
			wantStart: models.NewDate(2025, time.January, 1),
			wantEnd:   models.NewDate(2025, time.January, 31),
		},
		{
			name:      "leap february",
			month:     models.ReferenceMonth{Year: 2024, Month: time.February},
			wantStart: models.NewDate(2024, time.February, 1),
			wantEnd:   models.NewDate(2024, time.February, 29),
		},
		{
			name:      "non-leap february",
			month:     models.ReferenceMonth{Year: 2025, Month: time.February},
			wantStart: models.NewDate(2025, time.February, 1),
			wantEnd:   models.NewDate(2025, time.February, 28),
		},
		{
			name:      "thirty day month",
			month:     models.ReferenceMonth{Year: 2025, Month: time.April},
			wantStart: models.NewDate(2025, time.April, 1),
			wantEnd:   models.NewDate(2025, time.April, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthRange(tt.month)
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
		})
	}
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		name string
		sel  PeriodSelection
		want PeriodSelection
	}{
		{
			name: "mid year month",
			sel:  PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.June}},
			want: PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.May}},
		},
		{
			name: "january rolls into prior year",
			sel:  PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.January}},
			want: PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2024, Month: time.December}},
		},
		{
			name: "year mode",
			sel:  PeriodSelection{Mode: PeriodModeYear, Year: 2025},
			want: PeriodSelection{Mode: PeriodModeYear, Year: 2024},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PreviousPeriod(tt.sel))
		})
	}
}

func TestYearOverYearPeriod(t *testing.T) {
	sel := PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.March}}
	got, err := YearOverYearPeriod(sel)
	require.NoError(t, err)
	assert.Equal(t, models.ReferenceMonth{Year: 2024, Month: time.March}, got.Month)

	_, err = YearOverYearPeriod(PeriodSelection{Mode: PeriodModeYear, Year: 2025})
	assert.Error(t, err)
}

func TestSeriesRange(t *testing.T) {
	sel := PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.March}}
	got := SeriesRange(sel)

	// Eight trailing months ending March 2025 start in August 2024.
	assert.Equal(t, models.NewDate(2024, time.August, 1), got.Start)
	assert.Equal(t, models.NewDate(2025, time.March, 31), got.End)

	yearSel := PeriodSelection{Mode: PeriodModeYear, Year: 2025}
	assert.Equal(t, YearRange(2025), SeriesRange(yearSel))
}

func TestYearToDateRange(t *testing.T) {
	today := models.NewDate(2025, time.June, 15)
	got := YearToDateRange(2025, today)
	assert.Equal(t, models.NewDate(2025, time.January, 1), got.Start)
	assert.Equal(t, today, got.End)

	// A past year caps at Dec 31 rather than extending to today.
	past := YearToDateRange(2024, today)
	assert.Equal(t, models.NewDate(2024, time.December, 31), past.End)
}

func TestResolvePeriodRanges_MonthMode(t *testing.T) {
	sel := PeriodSelection{Mode: PeriodModeMonth, Month: models.ReferenceMonth{Year: 2025, Month: time.June}}
	today := models.NewDate(2025, time.June, 10)

	ranges := ResolvePeriodRanges(sel, today)

	assert.Equal(t, models.NewDate(2025, time.June, 1), ranges.Period.Start)
	assert.Equal(t, models.NewDate(2025, time.June, 30), ranges.Period.End)
	assert.Equal(t, models.NewDate(2025, time.May, 31), ranges.Previous.End)
	require.NotNil(t, ranges.YearOverYear)
	assert.Equal(t, models.NewDate(2024, time.June, 1), ranges.YearOverYear.Start)
	assert.Equal(t, today, ranges.YearToDate.End)
}

func TestResolvePeriodRanges_YearModeHasNoYoY(t *testing.T) {
	sel := PeriodSelection{Mode: PeriodModeYear, Year: 2025}
	ranges := ResolvePeriodRanges(sel, models.NewDate(2025, time.June, 10))
	assert.Nil(t, ranges.YearOverYear)
	assert.Equal(t, YearRange(2024), ranges.Previous)
}

func TestElapsedFraction(t *testing.T) {
	june := MonthRange(models.ReferenceMonth{Year: 2025, Month: time.June})

	tests := []struct {
		name  string
		today models.Date
		want  float64
	}{
		{"before period", models.NewDate(2025, time.May, 20), 0},
		{"first day", models.NewDate(2025, time.June, 1), 1.0 / 30.0},
		{"ten of thirty days", models.NewDate(2025, time.June, 10), 10.0 / 30.0},
		{"last day", models.NewDate(2025, time.June, 30), 1},
		{"after period clamps", models.NewDate(2025, time.July, 5), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ElapsedFraction(june, tt.today), 1e-9)
		})
	}
}
