package metrics

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/chargecast/core/metrics"
)

const defaultPromJob = "chargecast"

// PromConfig configures the Prometheus sink.
type PromConfig struct {
	// PushgatewayURL enables pushing after each recorded event.
	PushgatewayURL string `json:"pushgateway_url"`
	Job            string `json:"job"`
}

// PromSink exposes the latest forecast and fit statistics as Prometheus
// metrics.
type PromSink struct {
	forecast    *prometheus.GaugeVec
	coef        *prometheus.GaugeVec
	fit         *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	lastSuccess prometheus.Gauge
	pusher      *push.Pusher
}

// NewPromSink registers forecast metrics on the default Prometheus registerer.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		forecast: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chargecast_forecast_value",
			Help: "Forecast demand per horizon step",
		}, []string{"series", "step", "bound"}),
		coef: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chargecast_model_coefficient",
			Help: "Fitted model coefficients",
		}, []string{"series", "term"}),
		fit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chargecast_model_fit",
			Help: "Fit statistics of the last model",
		}, []string{"series", "stat"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chargecast_fit_duration_seconds",
			Help:    "Time spent fitting the model",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chargecast_forecast_runs_total",
			Help: "Total number of successful forecast runs",
		}, []string{"series"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chargecast_forecast_failures_total",
			Help: "Total number of failed runs by pipeline stage",
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chargecast_last_success_timestamp_seconds",
			Help: "Unix time of the last successful forecast",
		}),
	}

	var err error
	if s.forecast, err = register(reg, s.forecast); err != nil {
		return nil, err
	}
	if s.coef, err = register(reg, s.coef); err != nil {
		return nil, err
	}
	if s.fit, err = register(reg, s.fit); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	if s.lastSuccess, err = register(reg, s.lastSuccess); err != nil {
		return nil, err
	}

	if cfg.PushgatewayURL != "" {
		job := cfg.Job
		if job == "" {
			job = defaultPromJob
		}
		s.pusher = push.New(cfg.PushgatewayURL, job).
			Collector(s.forecast).Collector(s.coef).Collector(s.fit).
			Collector(s.duration).Collector(s.runs).Collector(s.failures).
			Collector(s.lastSuccess)
	}
	return s, nil
}

// register reuses an already registered collector of the same type.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordForecast replaces the forecast gauges of the series and updates the
// fit statistics.
func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	f := ev.Forecast
	if f == nil {
		return errors.New("prometheus sink: nil forecast")
	}
	series := f.Series
	s.forecast.DeletePartialMatch(prometheus.Labels{"series": series})
	for i, p := range f.Points {
		step := strconv.Itoa(i + 1)
		s.forecast.WithLabelValues(series, step, "value").Set(p.Value)
		s.forecast.WithLabelValues(series, step, "lower").Set(p.Lower)
		s.forecast.WithLabelValues(series, step, "upper").Set(p.Upper)
	}

	sum := f.Summary
	s.coef.DeletePartialMatch(prometheus.Labels{"series": series})
	for i, v := range sum.AR {
		s.coef.WithLabelValues(series, fmt.Sprintf("ar%d", i+1)).Set(v)
	}
	for i, v := range sum.MA {
		s.coef.WithLabelValues(series, fmt.Sprintf("ma%d", i+1)).Set(v)
	}
	s.coef.WithLabelValues(series, "mean").Set(sum.Mean)

	for stat, v := range map[string]float64{
		"sigma2": sum.Sigma2,
		"loglik": sum.LogLik,
		"aic":    sum.AIC,
		"bic":    sum.BIC,
		"mae":    sum.MAE,
		"rmse":   sum.RMSE,
		"mape":   sum.MAPE,
		"nobs":   float64(sum.NObs),
	} {
		s.fit.WithLabelValues(series, stat).Set(v)
	}
	s.duration.WithLabelValues(f.Engine).Observe(sum.FitDuration.Seconds())
	s.runs.WithLabelValues(series).Inc()
	s.lastSuccess.Set(float64(ev.Time.Unix()))
	return s.push()
}

// RecordFailure counts the failed stage.
func (s *PromSink) RecordFailure(ev coremetrics.FailureEvent) error {
	s.failures.WithLabelValues(ev.Stage).Inc()
	return s.push()
}

func (s *PromSink) push() error {
	if s.pusher == nil {
		return nil
	}
	if err := s.pusher.Push(); err != nil {
		return fmt.Errorf("pushgateway: %w", err)
	}
	return nil
}
