package model

import (
	"math"
	"sort"
	"time"
)

// Point is a single dated observation. A NaN value marks a missing observation.
type Point struct {
	Date  time.Time
	Value float64
}

// Missing reports whether the observation has no value.
func (p Point) Missing() bool { return math.IsNaN(p.Value) }

// Series is a named, date-indexed sequence of observations.
// Invariant: Points are sorted ascending by date with no duplicate dates.
type Series struct {
	Name   string
	Points []Point
}

func (s Series) Len() int    { return len(s.Points) }
func (s Series) Empty() bool { return len(s.Points) == 0 }

// Start returns the first date, or the zero time when the series is empty.
func (s Series) Start() time.Time {
	if s.Empty() {
		return time.Time{}
	}
	return s.Points[0].Date
}

// End returns the last date, or the zero time when the series is empty.
func (s Series) End() time.Time {
	if s.Empty() {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// Dates returns all observation dates in order.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// Values returns all observation values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Sort restores the ascending-by-date invariant.
func (s *Series) Sort() {
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })
}

// Date builds a UTC-midnight date, the canonical representation for
// observation dates throughout the store and aligner.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
