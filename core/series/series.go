package series

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultStep is used for forecast dates when the spacing cannot be inferred.
const DefaultStep = 24 * time.Hour

// ErrLengthMismatch is returned when dates and values differ in length.
var ErrLengthMismatch = errors.New("dates and values length mismatch")

// Series is an ordered sequence of dated observations. Operations never
// modify the receiver.
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// New builds a series from parallel slices. Dates may be nil for an
// undated series.
func New(name string, dates []time.Time, values []float64) (*Series, error) {
	if dates != nil && len(dates) != len(values) {
		return nil, ErrLengthMismatch
	}
	return &Series{Name: name, Dates: dates, Values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}

// Last returns the last observation. ok is false for an empty series.
func (s *Series) Last() (date time.Time, value float64, ok bool) {
	n := s.Len()
	if n == 0 {
		return time.Time{}, 0, false
	}
	if len(s.Dates) == n {
		date = s.Dates[n-1]
	}
	return date, s.Values[n-1], true
}

// Copy returns a deep copy.
func (s *Series) Copy() *Series {
	out := &Series{Name: s.Name, Values: append([]float64(nil), s.Values...)}
	if s.Dates != nil {
		out.Dates = append([]time.Time(nil), s.Dates...)
	}
	return out
}

// Mean returns the arithmetic mean of the values.
func (s *Series) Mean() float64 {
	if s.Len() == 0 {
		return math.NaN()
	}
	return stat.Mean(s.Values, nil)
}

// Finite reports whether every value is a finite number.
func (s *Series) Finite() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Diff returns the first difference of the values. The result has one
// observation fewer and keeps the later date of each pair.
func (s *Series) Diff() *Series {
	n := s.Len()
	if n < 2 {
		return &Series{Name: s.Name}
	}
	out := &Series{Name: s.Name, Values: Difference(s.Values, 1)}
	if len(s.Dates) == n {
		out.Dates = append([]time.Time(nil), s.Dates[1:]...)
	}
	return out
}

// DiffN applies Diff d times.
func (s *Series) DiffN(d int) *Series {
	out := s.Copy()
	for i := 0; i < d; i++ {
		out = out.Diff()
	}
	return out
}

// Difference returns the d-th order difference of x.
func Difference(x []float64, d int) []float64 {
	out := append([]float64(nil), x...)
	for k := 0; k < d; k++ {
		if len(out) < 2 {
			return nil
		}
		next := make([]float64, len(out)-1)
		for i := 1; i < len(out); i++ {
			next[i-1] = out[i] - out[i-1]
		}
		out = next
	}
	return out
}

// Integrate reverses d rounds of differencing for values that continue
// history. history must hold at least d observations; only its tail is used.
func Integrate(diffs, history []float64, d int) []float64 {
	out := append([]float64(nil), diffs...)
	if d == 0 {
		return out
	}
	// Last value of each differencing level, from level d-1 down to 0.
	levels := make([]float64, d)
	cur := history
	for k := 0; k < d; k++ {
		levels[k] = cur[len(cur)-1]
		cur = Difference(cur, 1)
	}
	for k := d - 1; k >= 0; k-- {
		acc := []float64{levels[k]}
		acc = append(acc, out...)
		floats.CumSum(acc, acc)
		out = acc[1:]
	}
	return out
}

// Frequency returns the most common positive spacing between consecutive
// dates, or DefaultStep when it cannot be determined.
func (s *Series) Frequency() time.Duration {
	if len(s.Dates) < 2 {
		return DefaultStep
	}
	counts := make(map[time.Duration]int)
	var best time.Duration
	for i := 1; i < len(s.Dates); i++ {
		step := s.Dates[i].Sub(s.Dates[i-1])
		if step <= 0 {
			continue
		}
		counts[step]++
		if c := counts[step]; c > counts[best] || (c == counts[best] && step < best) {
			best = step
		}
	}
	if best <= 0 {
		return DefaultStep
	}
	return best
}

// FutureDates returns h dates spaced by step after the last observed date.
// A non-positive step uses Frequency.
func (s *Series) FutureDates(h int, step time.Duration) []time.Time {
	if h <= 0 {
		return nil
	}
	if step <= 0 {
		step = s.Frequency()
	}
	last, _, _ := s.Last()
	out := make([]time.Time, h)
	for i := range out {
		out[i] = last.Add(time.Duration(i+1) * step)
	}
	return out
}

// Stats summarises the date index quality of a series.
type Stats struct {
	Observations int
	Duplicates   int
	OutOfOrder   int
	Gaps         int
	Step         time.Duration
}

// Irregular reports whether the date index is not evenly spaced.
func (st Stats) Irregular() bool {
	return st.Duplicates > 0 || st.OutOfOrder > 0 || st.Gaps > 0
}

// Inspect counts duplicate, out of order and gapped dates relative to the
// dominant spacing.
func (s *Series) Inspect() Stats {
	st := Stats{Observations: s.Len(), Step: s.Frequency()}
	for i := 1; i < len(s.Dates); i++ {
		step := s.Dates[i].Sub(s.Dates[i-1])
		switch {
		case step == 0:
			st.Duplicates++
		case step < 0:
			st.OutOfOrder++
		case step != st.Step:
			st.Gaps++
		}
	}
	return st
}
