package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/chargecast/config"
	"github.com/kilianp07/chargecast/core/history"
	coremetrics "github.com/kilianp07/chargecast/core/metrics"
	"github.com/kilianp07/chargecast/core/model"
	coremon "github.com/kilianp07/chargecast/core/monitoring"
	"github.com/kilianp07/chargecast/core/prediction"
	"github.com/kilianp07/chargecast/core/series"
	infrahistory "github.com/kilianp07/chargecast/infra/history"
	"github.com/kilianp07/chargecast/infra/loader"
	"github.com/kilianp07/chargecast/infra/logger"
	_ "github.com/kilianp07/chargecast/infra/metrics"
	"github.com/kilianp07/chargecast/pkg/chart"
	"github.com/kilianp07/chargecast/pkg/report"
)

// Pipeline stages reported in StageError.
const (
	StageLoad    = "load"
	StageFit     = "fit"
	StageReport  = "report"
	StageChart   = "chart"
	StageHistory = "history"
	StageMetrics = "metrics"
)

// StageError tells which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Service runs the forecasting pipeline once per Run call.
type Service struct {
	cfg    *config.Config
	engine prediction.Engine
	sink   coremetrics.ForecastSink
	store  history.Store
	stdout io.Writer
	log    logger.Logger
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithStdout redirects the report when no output file is configured.
func WithStdout(w io.Writer) Option { return func(s *Service) { s.stdout = w } }

// WithEngine replaces the engine built from the model section.
func WithEngine(e prediction.Engine) Option { return func(s *Service) { s.engine = e } }

// WithSink replaces the sinks built from the metrics section.
func WithSink(sink coremetrics.ForecastSink) Option { return func(s *Service) { s.sink = sink } }

// WithHistory records runs in store regardless of the history section.
func WithHistory(store history.Store) Option { return func(s *Service) { s.store = store } }

// WithLogger sets the pipeline logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

// New wires the collaborators described by cfg. Options take precedence
// over the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Service{cfg: cfg, stdout: os.Stdout, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logger.New("pipeline")
	}
	if s.engine == nil {
		eng, err := prediction.NewEngine(cfg.Model.Module())
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		if ls, ok := eng.(interface{ SetLogger(logger.Logger) }); ok {
			ls.SetLogger(logger.New(cfg.Model.Engine))
		}
		s.engine = eng
	}
	if s.sink == nil {
		sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		s.sink = sink
	}
	if s.store == nil && cfg.History.Enabled {
		store, err := infrahistory.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			if c, ok := s.sink.(coremetrics.Closer); ok {
				_ = c.Close()
			}
			return nil, fmt.Errorf("history: %w", err)
		}
		s.store = store
	}
	return s, nil
}

// Run loads the history, forecasts it and publishes the result. The first
// failing stage aborts the run.
func (s *Service) Run(ctx context.Context) (*model.Forecast, error) {
	runID := uuid.NewString()
	in := s.cfg.Input

	data, err := loader.LoadCSV(in.Path, in.LoaderOptions())
	if err != nil {
		return nil, s.fail(runID, StageLoad, err)
	}
	s.inspect(data)

	step, err := s.cfg.Forecast.Step()
	if err != nil {
		return nil, s.fail(runID, StageFit, err)
	}
	f, err := s.engine.Forecast(ctx, data, prediction.Request{
		Horizon:    s.cfg.Forecast.Horizon,
		Step:       step,
		Confidence: s.cfg.Forecast.Confidence,
	})
	if err != nil {
		return nil, s.fail(runID, StageFit, err)
	}
	f.RunID = runID
	f.Source = in.Path
	f.CreatedAt = s.now().UTC()

	if err := s.writeReport(f); err != nil {
		return nil, s.fail(runID, StageReport, err)
	}
	if path := s.cfg.Output.Chart; path != "" {
		if err := writeFile(path, func(w io.Writer) error {
			return chart.RenderHTML(w, data, f, chart.Options{Tail: s.cfg.Output.ChartTail})
		}); err != nil {
			return nil, s.fail(runID, StageChart, err)
		}
		s.log.Infof("chart written to %s", path)
	}
	if s.store != nil {
		if err := s.store.Save(ctx, f); err != nil {
			return nil, s.fail(runID, StageHistory, err)
		}
	}
	ev := coremetrics.ForecastEvent{Forecast: f, Observations: data.Len(), Time: f.CreatedAt}
	if err := s.sink.RecordForecast(ev); err != nil {
		return nil, s.fail(runID, StageMetrics, err)
	}
	s.log.Debugw("run complete", map[string]any{"run_id": runID, "engine": f.Engine, "horizon": f.Horizon()})
	return f, nil
}

// Close releases the sinks and the history store.
func (s *Service) Close() error {
	var errs []error
	if c, ok := s.sink.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

func (s *Service) inspect(data *series.Series) {
	st := data.Inspect()
	s.log.Infof("loaded %d observations of %s from %s", st.Observations, data.Name, s.cfg.Input.Path)
	if st.Irregular() {
		s.log.Warnf("irregular dates: %d duplicates, %d out of order, %d gaps (step %s)",
			st.Duplicates, st.OutOfOrder, st.Gaps, st.Step)
	}
}

func (s *Service) writeReport(f *model.Forecast) error {
	opts := report.Options{
		Format: s.cfg.Output.Format,
		Title:  s.cfg.Forecast.Title(),
		Color:  s.cfg.Output.Color,
	}
	if path := s.cfg.Output.File; path != "" {
		return writeFile(path, func(w io.Writer) error { return report.Write(w, f, opts) })
	}
	return report.Write(s.stdout, f, opts)
}

// fail reports err to the failure recorders and the monitor, then wraps it
// with its stage.
func (s *Service) fail(runID, stage string, err error) error {
	s.log.Errorf("run %s failed at %s: %v", runID, stage, err)
	if rec, ok := s.sink.(coremetrics.FailureRecorder); ok {
		ev := coremetrics.FailureEvent{
			RunID:  runID,
			Source: s.cfg.Input.Path,
			Stage:  stage,
			Error:  err.Error(),
			Time:   s.now().UTC(),
		}
		if rerr := rec.RecordFailure(ev); rerr != nil {
			s.log.Warnf("record failure: %v", rerr)
		}
	}
	coremon.CaptureException(err, map[string]string{"stage": stage, "run_id": runID})
	return &StageError{Stage: stage, Err: err}
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
