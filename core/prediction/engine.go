package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/chargecast/core/factory"
	"github.com/kilianp07/chargecast/core/model"
	"github.com/kilianp07/chargecast/core/series"
)

var (
	// ErrNoData is returned when an engine is given an empty series.
	ErrNoData         = errors.New("prediction: empty series")
	ErrInvalidHorizon = errors.New("prediction: horizon must be positive")
)

// Request describes the forecast to produce.
type Request struct {
	Horizon int
	// Step spaces the forecast dates. Zero uses the series frequency.
	Step time.Duration
	// Confidence is the interval level in (0,1). Zero disables intervals.
	Confidence float64
}

// Engine fits a model on a series and forecasts it.
type Engine interface {
	Name() string
	Forecast(ctx context.Context, s *series.Series, req Request) (*model.Forecast, error)
}

var engineRegistry = factory.NewRegistry[Engine]()

// RegisterEngine adds an engine factory identified by name.
func RegisterEngine(name string, f factory.Factory[Engine]) error {
	return engineRegistry.Register(name, f)
}

// NewEngine builds the engine described by cfg.
func NewEngine(cfg factory.ModuleConfig) (Engine, error) {
	return engineRegistry.Create(cfg)
}

// Engines lists the registered engine types.
func Engines() []string { return engineRegistry.Names() }

func init() {
	_ = RegisterEngine("arima", func(conf map[string]any) (Engine, error) {
		c := DefaultARIMAConfig()
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewARIMAEngine(c, nil)
	})
	_ = RegisterEngine("mock", func(conf map[string]any) (Engine, error) {
		var c struct {
			Values []float64 `json:"values"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return &MockEngine{Values: c.Values}, nil
	})
}

func (r Request) validate() error {
	if r.Horizon < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidHorizon, r.Horizon)
	}
	return nil
}

// points dates values with the future dates of s.
func points(s *series.Series, req Request, values, lower, upper []float64) []model.Point {
	dates := s.FutureDates(len(values), req.Step)
	out := make([]model.Point, len(values))
	for i, v := range values {
		p := model.Point{Date: dates[i], Value: v, Lower: v, Upper: v}
		if lower != nil {
			p.Lower, p.Upper = lower[i], upper[i]
		}
		out[i] = p
	}
	return out
}

func step(s *series.Series, req Request) time.Duration {
	if req.Step > 0 {
		return req.Step
	}
	return s.Frequency()
}
