package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeriesSort(t *testing.T) {
	s := Series{Name: "A", Points: []Point{
		{Date: Date(2024, 3, 1), Value: 3},
		{Date: Date(2024, 1, 1), Value: 1},
		{Date: Date(2024, 2, 1), Value: 2},
	}}
	s.Sort()
	assert.Equal(t, []float64{1, 2, 3}, s.Values())
	assert.Equal(t, Date(2024, 1, 1), s.Start())
	assert.Equal(t, Date(2024, 3, 1), s.End())
}

func TestEmptySeries(t *testing.T) {
	var s Series
	assert.True(t, s.Empty())
	assert.Equal(t, time.Time{}, s.Start())
	assert.Equal(t, time.Time{}, s.End())
}

func TestPointMissing(t *testing.T) {
	assert.True(t, Point{Value: math.NaN()}.Missing())
	assert.False(t, Point{Value: 0}.Missing())
}
