package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daily(start time.Time, values ...float64) *Series {
	dates := make([]time.Time, len(values))
	for i := range values {
		dates[i] = start.AddDate(0, 0, i)
	}
	return &Series{Name: "Demand", Dates: dates, Values: values}
}

func TestNew_LengthMismatch(t *testing.T) {
	_, err := New("x", []time.Time{time.Now()}, []float64{1, 2})
	require.ErrorIs(t, err, ErrLengthMismatch)

	s, err := New("x", nil, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestDiffAndIntegrate(t *testing.T) {
	x := []float64{1, 4, 9, 16, 25}
	assert.Equal(t, []float64{3, 5, 7, 9}, Difference(x, 1))
	assert.Equal(t, []float64{2, 2, 2}, Difference(x, 2))
	assert.Nil(t, Difference([]float64{1}, 1))

	// continuing the squares: next second differences are 2
	got := Integrate([]float64{2, 2}, x, 2)
	assert.InDeltaSlice(t, []float64{36, 49}, got, 1e-12)

	got = Integrate([]float64{1, 1, 1}, []float64{10}, 1)
	assert.InDeltaSlice(t, []float64{11, 12, 13}, got, 1e-12)

	got = Integrate([]float64{5}, nil, 0)
	assert.Equal(t, []float64{5}, got)
}

func TestSeriesDiffKeepsLaterDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := daily(start, 1, 3, 6)
	d := s.Diff()
	assert.Equal(t, []float64{2, 3}, d.Values)
	assert.Equal(t, start.AddDate(0, 0, 1), d.Dates[0])
	assert.Equal(t, []float64{1, 3, 6}, s.Values, "receiver untouched")

	assert.Equal(t, []float64{1}, s.DiffN(2).Values)
	assert.Equal(t, s.Values, s.DiffN(0).Values)
}

func TestFrequencyAndFutureDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := daily(start, 1, 2, 3, 4)
	assert.Equal(t, 24*time.Hour, s.Frequency())

	dates := s.FutureDates(3, 0)
	require.Len(t, dates, 3)
	assert.Equal(t, start.AddDate(0, 0, 4), dates[0])
	assert.Equal(t, start.AddDate(0, 0, 6), dates[2])

	hourly := s.FutureDates(2, time.Hour)
	assert.Equal(t, start.AddDate(0, 0, 3).Add(2*time.Hour), hourly[1])

	single := daily(start, 7)
	assert.Equal(t, DefaultStep, single.Frequency())
	assert.Nil(t, single.FutureDates(0, 0))
}

func TestInspect(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := daily(start, 1, 2, 3, 4, 5, 6)
	assert.False(t, s.Inspect().Irregular())

	// 01, 02, 02, 04, 05, 09: one duplicate, then two-day and four-day jumps
	s.Dates[2] = s.Dates[1]
	s.Dates[5] = s.Dates[5].AddDate(0, 0, 3)
	st := s.Inspect()
	assert.Equal(t, 1, st.Duplicates)
	assert.Equal(t, 2, st.Gaps)
	assert.Equal(t, 0, st.OutOfOrder)
	assert.True(t, st.Irregular())
	assert.Equal(t, 6, st.Observations)
}

func TestLastAndFinite(t *testing.T) {
	var empty Series
	_, _, ok := empty.Last()
	assert.False(t, ok)

	s := daily(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 1, 2)
	d, v, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 2, d.Day())
	assert.True(t, s.Finite())
	assert.InDelta(t, 1.5, s.Mean(), 1e-12)
}
