package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/chargecast/core/arima"
	"github.com/kilianp07/chargecast/core/logger"
	"github.com/kilianp07/chargecast/core/model"
	"github.com/kilianp07/chargecast/core/series"
)

// ARIMAConfig holds the settings of the ARIMA engine. Zero orders keep
// their zero value; use DefaultARIMAConfig for ARIMA(1,1,1).
type ARIMAConfig struct {
	P             int     `json:"p"`
	D             int     `json:"d"`
	Q             int     `json:"q"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
	// Confidence is the interval level used when a request carries none.
	// Zero leaves such requests without intervals.
	Confidence float64 `json:"confidence"`
}

// DefaultARIMAConfig returns the ARIMA(1,1,1) configuration.
func DefaultARIMAConfig() ARIMAConfig {
	o := arima.DefaultOrder
	return ARIMAConfig{P: o.P, D: o.D, Q: o.Q}
}

// Order returns the model order.
func (c ARIMAConfig) Order() arima.Order {
	return arima.Order{P: c.P, D: c.D, Q: c.Q}
}

// ARIMAEngine forecasts with an ARIMA model fitted on each call.
type ARIMAEngine struct {
	cfg   ARIMAConfig
	order arima.Order
	log   logger.Logger
}

// NewARIMAEngine validates cfg and returns the engine. A nil logger
// discards output.
func NewARIMAEngine(cfg ARIMAConfig, log logger.Logger) (*ARIMAEngine, error) {
	if log == nil {
		log = logger.Nop{}
	}
	if !(cfg.Confidence >= 0 && cfg.Confidence < 1) {
		return nil, fmt.Errorf("%w: %v", arima.ErrInvalidConfidence, cfg.Confidence)
	}
	e := &ARIMAEngine{cfg: cfg, order: cfg.Order(), log: log}
	if _, err := e.newModel(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetLogger replaces the logger used by subsequent fits.
func (e *ARIMAEngine) SetLogger(log logger.Logger) {
	if log != nil {
		e.log = log
	}
}

func (e *ARIMAEngine) newModel() (*arima.Model, error) {
	return arima.New(e.order,
		arima.WithMaxIterations(e.cfg.MaxIterations),
		arima.WithTolerance(e.cfg.Tolerance),
		arima.WithLogger(e.log),
	)
}

// Name identifies the engine and its order.
func (e *ARIMAEngine) Name() string { return e.order.String() }

// Forecast fits the model on s and forecasts req.Horizon steps ahead.
func (e *ARIMAEngine) Forecast(ctx context.Context, s *series.Series, req Request) (*model.Forecast, error) {
	if s.Len() == 0 {
		return nil, ErrNoData
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	m, err := e.newModel()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	fit, err := m.Fit(ctx, s)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	values, err := fit.Forecast(req.Horizon)
	if err != nil {
		return nil, err
	}
	level := req.Confidence
	if level == 0 {
		level = e.cfg.Confidence
	}
	var lower, upper []float64
	if level > 0 {
		lower, upper, err = fit.ForecastIntervals(req.Horizon, level)
		if err != nil {
			return nil, fmt.Errorf("intervals: %w", err)
		}
	}
	e.log.Infof("fitted %s on %d observations in %s (sigma2=%.4f)", fit.Order, s.Len(), elapsed, fit.Sigma2)

	return &model.Forecast{
		Series:     s.Name,
		Engine:     e.Name(),
		Step:       step(s, req),
		Confidence: level,
		Points:     points(s, req, values, lower, upper),
		Summary:    summarize(fit, elapsed),
	}, nil
}

func summarize(fit *arima.Fit, elapsed time.Duration) model.FitSummary {
	sum := model.FitSummary{
		Order:       fit.Order.String(),
		AR:          fit.AR,
		MA:          fit.MA,
		Mean:        fit.Mean,
		Sigma2:      fit.Sigma2,
		LogLik:      fit.LogLik,
		AIC:         fit.AIC,
		BIC:         fit.BIC,
		NObs:        fit.NObs,
		Iterations:  fit.Iterations,
		Exact:       fit.Exact,
		MAE:         fit.Accuracy.MAE,
		RMSE:        fit.Accuracy.RMSE,
		MAPE:        fit.Accuracy.MAPE,
		FitDuration: elapsed,
	}
	if fit.LjungBox != nil {
		sum.LjungBoxP = fit.LjungBox.PValue
	}
	return sum
}
