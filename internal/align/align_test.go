package align

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fredlens/internal/model"
)

func mkSeries(name string, start time.Time, values ...float64) model.Series {
	s := model.Series{Name: name}
	for i, v := range values {
		s.Points = append(s.Points, model.Point{Date: start.AddDate(0, 0, i), Value: v})
	}
	return s
}

func TestDropMissing(t *testing.T) {
	s := mkSeries("A", model.Date(2024, 7, 1), 1, math.NaN(), 3, math.NaN())
	got := DropMissing(s)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, 1.0, got.Points[0].Value)
	assert.Equal(t, 3.0, got.Points[1].Value)
	assert.Equal(t, model.Date(2024, 7, 3), got.Points[1].Date)
	// input untouched
	assert.Equal(t, 4, s.Len())
}

func TestClip(t *testing.T) {
	s := mkSeries("A", model.Date(2024, 1, 1), 1, 2, 3, 4, 5)
	got := Clip(s, model.Date(2024, 1, 2), model.Date(2024, 1, 4))
	require.Equal(t, 3, got.Len())
	assert.Equal(t, model.Date(2024, 1, 2), got.Start())
	assert.Equal(t, model.Date(2024, 1, 4), got.End())
}

func TestOverlapRange(t *testing.T) {
	// X spans Jan-Oct 2024, Y spans Mar-Dec 2024: overlap is Mar-Oct.
	x := model.Series{Name: "X", Points: []model.Point{
		{Date: model.Date(2024, 1, 15), Value: 1},
		{Date: model.Date(2024, 10, 15), Value: 2},
	}}
	y := model.Series{Name: "Y", Points: []model.Point{
		{Date: model.Date(2024, 3, 1), Value: 1},
		{Date: model.Date(2024, 12, 31), Value: 2},
	}}
	start, end, err := OverlapRange(x, y)
	require.NoError(t, err)
	assert.Equal(t, model.Date(2024, 3, 1), start)
	assert.Equal(t, model.Date(2024, 10, 15), end)
	assert.True(t, start.Before(end))

	// symmetric
	s2, e2, err := OverlapRange(y, x)
	require.NoError(t, err)
	assert.Equal(t, start, s2)
	assert.Equal(t, end, e2)
}

func TestOverlapRange_NoOverlap(t *testing.T) {
	a := mkSeries("A", model.Date(2020, 1, 1), 1, 2, 3)
	b := mkSeries("B", model.Date(2021, 1, 1), 1, 2, 3)
	_, _, err := OverlapRange(a, b)
	assert.ErrorIs(t, err, ErrNoOverlap)

	// A single shared date counts as no overlap (start == end).
	c := mkSeries("C", model.Date(2020, 1, 3), 9, 9)
	d := mkSeries("D", model.Date(2020, 1, 1), 1, 2, 3)
	_, _, err = OverlapRange(d, c)
	assert.ErrorIs(t, err, ErrNoOverlap)

	_, _, err = OverlapRange(a, model.Series{Name: "empty"})
	assert.ErrorIs(t, err, ErrNoOverlap)
}

func TestShiftDays_RoundTrip(t *testing.T) {
	// Deliberately non-contiguous dates.
	s := model.Series{Name: "A", Points: []model.Point{
		{Date: model.Date(2024, 1, 1), Value: 1},
		{Date: model.Date(2024, 1, 5), Value: 2},
		{Date: model.Date(2024, 2, 29), Value: 3},
		{Date: model.Date(2024, 6, 30), Value: 4},
	}}
	for _, k := range []int{1, 7, 94, -18} {
		back := Shift(Shift(s, k, Days), -k, Days)
		require.Equal(t, s.Len(), back.Len())
		for i := range s.Points {
			assert.Equal(t, s.Points[i].Date, back.Points[i].Date, "offset %d", k)
			assert.Equal(t, s.Points[i].Value, back.Points[i].Value)
		}
	}
}

func TestShiftDays_MovesIndexNotValues(t *testing.T) {
	s := mkSeries("A", model.Date(2024, 7, 1), 10, 20, 30)
	got := Shift(s, 2, Days)
	// Dates move, values stay attached to their observation.
	assert.Equal(t, model.Date(2024, 7, 3), got.Points[0].Date)
	assert.Equal(t, 10.0, got.Points[0].Value)
	assert.Equal(t, model.Date(2024, 7, 5), got.Points[2].Date)
	assert.Equal(t, 30.0, got.Points[2].Value)
}

func TestShiftMonths_PreservesMonthEnd(t *testing.T) {
	s := model.Series{Name: "A", Points: []model.Point{
		{Date: model.Date(2024, 1, 31), Value: 1},
		{Date: model.Date(2024, 2, 29), Value: 2},
	}}
	got := Shift(s, 1, Months)
	assert.Equal(t, model.Date(2024, 2, 29), got.Points[0].Date)
	assert.Equal(t, model.Date(2024, 3, 31), got.Points[1].Date)

	// Month-end aligned series round-trip exactly.
	back := Shift(Shift(s, 18, Months), -18, Months)
	for i := range s.Points {
		assert.Equal(t, s.Points[i].Date, back.Points[i].Date)
	}
}

func TestShiftMonths_MidMonth(t *testing.T) {
	s := model.Series{Name: "A", Points: []model.Point{
		{Date: model.Date(2024, 1, 15), Value: 1},
	}}
	got := Shift(s, 13, Months)
	assert.Equal(t, model.Date(2025, 2, 15), got.Points[0].Date)
}

func TestRebase(t *testing.T) {
	s := mkSeries("A", model.Date(2024, 1, 1), 5, 10, 20)
	got, err := Rebase(s, 100)
	require.NoError(t, err)
	assert.InDelta(t, 100, got.Points[0].Value, 1e-9)
	assert.InDelta(t, 200, got.Points[1].Value, 1e-9)
	assert.InDelta(t, 400, got.Points[2].Value, 1e-9)
}

func TestRebase_SkipsLeadingMissing(t *testing.T) {
	s := mkSeries("A", model.Date(2024, 1, 1), math.NaN(), 4, 8)
	got, err := Rebase(s, 100)
	require.NoError(t, err)
	assert.True(t, got.Points[0].Missing())
	assert.InDelta(t, 100, got.Points[1].Value, 1e-9)
	assert.InDelta(t, 200, got.Points[2].Value, 1e-9)
}

func TestRebase_ZeroFirstValue(t *testing.T) {
	s := mkSeries("A", model.Date(2024, 1, 1), 0, 10, 20)
	_, err := Rebase(s, 100)
	assert.ErrorIs(t, err, ErrZeroBase)
}

func TestRebase_AllMissing(t *testing.T) {
	s := mkSeries("A", model.Date(2024, 1, 1), math.NaN(), math.NaN())
	_, err := Rebase(s, 100)
	assert.Error(t, err)
}

func TestResampleMonthEnd(t *testing.T) {
	s := model.Series{Name: "OIL", Points: []model.Point{
		{Date: model.Date(2024, 1, 2), Value: 10},
		{Date: model.Date(2024, 1, 20), Value: 20},
		{Date: model.Date(2024, 2, 10), Value: 30},
		{Date: model.Date(2024, 2, 11), Value: math.NaN()},
		{Date: model.Date(2024, 4, 1), Value: 40},
	}}
	got := ResampleMonthEnd(s)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, model.Date(2024, 1, 31), got.Points[0].Date)
	assert.InDelta(t, 15, got.Points[0].Value, 1e-9)
	// missing value is excluded from the mean, not imputed as zero
	assert.Equal(t, model.Date(2024, 2, 29), got.Points[1].Date)
	assert.InDelta(t, 30, got.Points[1].Value, 1e-9)
	// gap month (March) stays absent
	assert.Equal(t, model.Date(2024, 4, 30), got.Points[2].Date)
	assert.InDelta(t, 40, got.Points[2].Value, 1e-9)
}

func TestResampleMonthEnd_AllMissingMonthDropped(t *testing.T) {
	s := model.Series{Name: "A", Points: []model.Point{
		{Date: model.Date(2024, 1, 2), Value: math.NaN()},
		{Date: model.Date(2024, 2, 2), Value: 7},
	}}
	got := ResampleMonthEnd(s)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, model.Date(2024, 2, 29), got.Points[0].Date)
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"days": Days, "d": Days, "months": Months, "m": Months} {
		got, err := ParseUnit(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseUnit("weeks")
	assert.Error(t, err)
}
