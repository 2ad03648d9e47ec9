package aggregation

import (
	"strings"
	"time"

	"github.com/dalemusser/missio/internal/app/system/apperr"
)

// Period selects the time window of the performance indicators.
type Period string

const (
	PeriodAll     Period = "all"
	PeriodYear    Period = "year"
	PeriodQuarter Period = "quarter"
	PeriodMonth   Period = "month"
)

// ParsePeriod accepts all|year|quarter|month. Blank means all.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodAll, nil
	case PeriodAll, PeriodYear, PeriodQuarter, PeriodMonth:
		return p, nil
	}
	return "", apperr.Invalid("period", "must be one of all, year, quarter, month")
}

// Cutoff returns the earliest instant included by p, counted back from now
// in calendar units. ok is false for PeriodAll.
func (p Period) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	switch p {
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	case PeriodQuarter:
		return now.AddDate(0, -3, 0), true
	case PeriodMonth:
		return now.AddDate(0, -1, 0), true
	}
	return time.Time{}, false
}

// Includes reports whether an event at when falls inside the window.
// The cutoff itself is included.
func (p Period) Includes(when, now time.Time) bool {
	cutoff, ok := p.Cutoff(now)
	return !ok || !when.Before(cutoff)
}

// Month is a calendar month in a specific location.
type Month struct {
	Year  int
	Month time.Month
	Loc   *time.Location
}

// ParseMonth parses "YYYY-MM". Blank means the current month of now in loc.
func ParseMonth(s string, now time.Time, loc *time.Location) (Month, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		n := now.In(loc)
		return Month{Year: n.Year(), Month: n.Month(), Loc: loc}, nil
	}
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return Month{}, apperr.Invalid("month", "must be formatted YYYY-MM")
	}
	return Month{Year: t.Year(), Month: t.Month(), Loc: loc}, nil
}

// Bounds returns the half-open interval [start, end) covering the month.
func (m Month) Bounds() (start, end time.Time) {
	loc := m.Loc
	if loc == nil {
		loc = time.UTC
	}
	start = time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// Contains reports whether t falls within the month.
func (m Month) Contains(t time.Time) bool {
	start, end := m.Bounds()
	return !t.Before(start) && t.Before(end)
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	start, _ := m.Bounds()
	return start.Format("2006-01")
}
