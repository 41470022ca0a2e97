// Package align transforms series in memory for chart overlays: trimming to
// an overlapping range, shifting dates by a lag/lead offset, rebasing to a
// common index value, and collapsing daily data to month-end observations.
// Nothing here touches the store.
package align

import (
	"errors"
	"fmt"
	"time"

	"fredlens/internal/model"
)

var (
	// ErrNoOverlap is returned when two series share no date range.
	ErrNoOverlap = errors.New("series have no overlapping date range")
	// ErrZeroBase is returned by Rebase when the first value is exactly zero.
	ErrZeroBase = errors.New("cannot rebase: first value is zero")
)

// Unit is the unit of a Shift offset.
type Unit int

const (
	Days Unit = iota
	Months
)

// ParseUnit converts a CLI flag value to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "days", "day", "d":
		return Days, nil
	case "months", "month", "m":
		return Months, nil
	}
	return Days, fmt.Errorf("unknown offset unit %q (want days or months)", s)
}

// DropMissing returns a copy of s without missing observations. Values are
// never fabricated to fill the gaps.
func DropMissing(s model.Series) model.Series {
	out := model.Series{Name: s.Name, Points: make([]model.Point, 0, len(s.Points))}
	for _, p := range s.Points {
		if !p.Missing() {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// Clip returns the observations of s with start <= date <= end.
func Clip(s model.Series, start, end time.Time) model.Series {
	out := model.Series{Name: s.Name}
	for _, p := range s.Points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// OverlapRange returns the intersection [max(starts), min(ends)] of the two
// series' date ranges. It fails with ErrNoOverlap when the intersection is
// empty or collapses to a single date (start >= end).
func OverlapRange(a, b model.Series) (start, end time.Time, err error) {
	if a.Empty() || b.Empty() {
		return time.Time{}, time.Time{}, ErrNoOverlap
	}
	start = a.Start()
	if b.Start().After(start) {
		start = b.Start()
	}
	end = a.End()
	if b.End().Before(end) {
		end = b.End()
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, ErrNoOverlap
	}
	return start, end, nil
}

// Shift re-indexes a series in time: every date moves forward by offset in
// the given unit (backward when negative), values untouched. The calendar
// moves with the series, so a shifted series can leave the original overlap
// and must be re-trimmed before plotting.
//
// This is deliberately index-shifting, not value displacement within a fixed
// index. The two differ on unevenly spaced series, and rebasing after a
// shift only keeps dates meaningful under re-indexing.
func Shift(s model.Series, offset int, unit Unit) model.Series {
	out := model.Series{Name: s.Name, Points: make([]model.Point, len(s.Points))}
	for i, p := range s.Points {
		d := p.Date
		switch unit {
		case Months:
			d = addMonths(d, offset)
		default:
			d = d.AddDate(0, 0, offset)
		}
		out.Points[i] = model.Point{Date: d, Value: p.Value}
	}
	return out
}

// addMonths moves a date by whole months. A date on the last day of its
// month lands on the last day of the target month, so month-end aligned
// series stay month-end aligned and round-trip exactly.
func addMonths(t time.Time, k int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, k, 0)
	last := daysIn(target.Year(), target.Month())
	if d == daysIn(y, m) || d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, time.UTC)
}

// daysIn returns the number of days in a month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Rebase scales a series so its first non-missing value equals base.
// A zero first value is invalid input: the error propagates instead of
// silently emitting Inf or NaN.
func Rebase(s model.Series, base float64) (model.Series, error) {
	var v0 float64
	found := false
	for _, p := range s.Points {
		if !p.Missing() {
			v0 = p.Value
			found = true
			break
		}
	}
	if !found {
		return model.Series{}, fmt.Errorf("cannot rebase %s: no non-missing values", s.Name)
	}
	if v0 == 0 {
		return model.Series{}, fmt.Errorf("%w (series %s)", ErrZeroBase, s.Name)
	}
	out := model.Series{Name: s.Name, Points: make([]model.Point, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = model.Point{Date: p.Date, Value: p.Value / v0 * base}
	}
	return out, nil
}

// ResampleMonthEnd collapses observations to one per calendar month: the
// arithmetic mean of the month's non-missing values, placed at the month's
// last day. Months with no non-missing observation are dropped. Aligns a
// daily series (oil price) with a monthly one (unemployment rate).
func ResampleMonthEnd(s model.Series) model.Series {
	out := model.Series{Name: s.Name}
	var (
		sum      float64
		n        int
		curYear  int
		curMonth time.Month
		inPeriod bool
	)
	flush := func() {
		if inPeriod && n > 0 {
			out.Points = append(out.Points, model.Point{
				Date:  model.Date(curYear, curMonth, daysIn(curYear, curMonth)),
				Value: sum / float64(n),
			})
		}
		sum, n = 0, 0
	}
	for _, p := range s.Points {
		y, m, _ := p.Date.Date()
		if !inPeriod || y != curYear || m != curMonth {
			flush()
			curYear, curMonth, inPeriod = y, m, true
		}
		if !p.Missing() {
			sum += p.Value
			n++
		}
	}
	flush()
	return out
}
