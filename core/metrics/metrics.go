package metrics

import (
	"time"

	"github.com/kilianp07/chargecast/core/model"
)

// ForecastEvent is emitted once per successful run.
type ForecastEvent struct {
	Forecast *model.Forecast
	// Observations is the length of the history the model was fitted on.
	Observations int
	Time         time.Time
}

// ForecastSink records forecasts for observability purposes.
type ForecastSink interface {
	RecordForecast(ev ForecastEvent) error
}

// FailureEvent describes a run that stopped at a pipeline stage.
type FailureEvent struct {
	RunID  string
	Source string
	Stage  string
	Error  string
	Time   time.Time
}

// FailureRecorder records failed runs.
type FailureRecorder interface {
	RecordFailure(ev FailureEvent) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordForecast(ForecastEvent) error { return nil }
func (NopSink) RecordFailure(FailureEvent) error   { return nil }
