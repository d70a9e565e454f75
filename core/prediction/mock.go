package prediction

import (
	"context"

	"github.com/kilianp07/chargecast/core/model"
	"github.com/kilianp07/chargecast/core/series"
)

// MockEngine returns deterministic forecasts. Values are repeated
// cyclically up to the horizon; without Values the last observation is
// repeated.
type MockEngine struct {
	Values []float64
	Err    error
	Calls  int
}

// Name returns "mock".
func (m *MockEngine) Name() string { return "mock" }

// Forecast returns the configured values or error.
func (m *MockEngine) Forecast(_ context.Context, s *series.Series, req Request) (*model.Forecast, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	_, last, ok := s.Last()
	if !ok {
		return nil, ErrNoData
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	values := make([]float64, req.Horizon)
	for i := range values {
		if len(m.Values) > 0 {
			values[i] = m.Values[i%len(m.Values)]
		} else {
			values[i] = last
		}
	}
	return &model.Forecast{
		Series:  s.Name,
		Engine:  m.Name(),
		Step:    step(s, req),
		Points:  points(s, req, values, nil, nil),
		Summary: model.FitSummary{Order: "mock", NObs: s.Len()},
	}, nil
}
