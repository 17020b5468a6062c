package models

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or timezone component.
// All period math in the reporting core compares Dates, never time.Time,
// so midnight-boundary drift in the server's local zone cannot shift a
// record into the wrong month.
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// NewDate creates a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf extracts the calendar date from a time.Time in the given location.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}, nil
}

// Time converts the Date to midnight in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Compare returns -1 if d is before other, 0 if equal, +1 if after.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	y, m, day := t.Date()
	return Date{Year: y, Month: m, Day: day}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// DateRange is an inclusive calendar-date interval. Both Start and End
// belong to the range.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether the date falls inside the range (inclusive).
func (r DateRange) Contains(d Date) bool {
	return d.Compare(r.Start) >= 0 && d.Compare(r.End) <= 0
}

// ReferenceMonth identifies one calendar month (e.g. 2024-02).
type ReferenceMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// ParseReferenceMonth parses a month in YYYY-MM format.
func ParseReferenceMonth(s string) (ReferenceMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return ReferenceMonth{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return ReferenceMonth{Year: t.Year(), Month: t.Month()}, nil
}

// String formats the month as YYYY-MM.
func (m ReferenceMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// AddMonths returns the month n months after m, rolling over year
// boundaries in either direction.
func (m ReferenceMonth) AddMonths(n int) ReferenceMonth {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return ReferenceMonth{Year: t.Year(), Month: t.Month()}
}

// Previous returns the immediately preceding month.
func (m ReferenceMonth) Previous() ReferenceMonth { return m.AddMonths(-1) }

// Contains reports whether the date falls inside the month.
func (m ReferenceMonth) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// DaysInMonth returns the number of days in the month.
func (m ReferenceMonth) DaysInMonth() int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
