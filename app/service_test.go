package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargecast/config"
	"github.com/kilianp07/chargecast/core/history"
	coremetrics "github.com/kilianp07/chargecast/core/metrics"
	"github.com/kilianp07/chargecast/core/prediction"
	"github.com/kilianp07/chargecast/infra/logger"
	"github.com/kilianp07/chargecast/infra/loader"
)

type recordSink struct {
	forecasts []coremetrics.ForecastEvent
	failures  []coremetrics.FailureEvent
	err       error
}

func (r *recordSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	r.forecasts = append(r.forecasts, ev)
	return r.err
}

func (r *recordSink) RecordFailure(ev coremetrics.FailureEvent) error {
	r.failures = append(r.failures, ev)
	return nil
}

type closingSink struct {
	recordSink
	closed int
}

func (c *closingSink) Close() error {
	c.closed++
	return nil
}

func writeCSV(t *testing.T, n int, value func(i int) float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Demand\n")
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s,%g\n", start.AddDate(0, 0, i).Format("2006-01-02"), value(i))
	}
	path := filepath.Join(t.TempDir(), "charging_demand.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func testConfig(input string) *config.Config {
	cfg := config.Default()
	cfg.Input.Path = input
	return cfg
}

func TestRun_DefaultReport(t *testing.T) {
	path := writeCSV(t, 3*365, func(int) float64 { return 100 })
	var out bytes.Buffer
	sink := &recordSink{}
	svc, err := New(testConfig(path), WithStdout(&out), WithSink(sink), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)

	f, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30, f.Horizon())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 32)
	assert.Equal(t, "Next 30-Day Demand Forecast:", lines[0])
	assert.Equal(t, " 2024-01-01    100.000000", lines[1])
	assert.Equal(t, "2024-01-30    100.000000", lines[30])
	assert.Equal(t, "Freq: D, Name: predicted_mean, dtype: float64", lines[31])

	require.Len(t, sink.forecasts, 1)
	assert.Equal(t, f.RunID, sink.forecasts[0].Forecast.RunID)
	assert.Equal(t, 3*365, sink.forecasts[0].Observations)
	assert.Equal(t, path, f.Source)
	assert.NotEmpty(t, f.RunID)
	assert.Empty(t, sink.failures)
}

func TestRun_MockEngine(t *testing.T) {
	path := writeCSV(t, 10, func(i int) float64 { return float64(i) })
	cfg := testConfig(path)
	cfg.Forecast.Horizon = 3
	cfg.Forecast.Label = "Forecast:"
	cfg.Output.Chart = filepath.Join(t.TempDir(), "forecast.html")
	cfg.Output.File = filepath.Join(t.TempDir(), "forecast.csv")
	cfg.Output.Format = config.FormatCSV
	store := history.NewMemoryStore()
	eng := &prediction.MockEngine{Values: []float64{5, 6, 7}}
	var out bytes.Buffer

	svc, err := New(cfg, WithEngine(eng), WithStdout(&out), WithHistory(store), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	f, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Calls)
	assert.Empty(t, out.String(), "report goes to the output file")

	data, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)
	assert.Equal(t, "date,forecast,lower,upper\n"+
		"2021-01-11,5,5,5\n2021-01-12,6,6,6\n2021-01-13,7,7,7\n", string(data))

	html, err := os.ReadFile(cfg.Output.Chart)
	require.NoError(t, err)
	assert.Contains(t, string(html), "2021-01-13")

	saved, err := store.Get(context.Background(), f.RunID)
	require.NoError(t, err)
	assert.Equal(t, f.Values(), saved.Values())
	require.NoError(t, svc.Close())
}

func TestRun_MissingInput(t *testing.T) {
	var out bytes.Buffer
	sink := &recordSink{}
	svc, err := New(testConfig(filepath.Join(t.TempDir(), "missing.csv")),
		WithStdout(&out), WithSink(sink), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)

	_, err = svc.Run(context.Background())
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageLoad, se.Stage)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, out.String(), "nothing is printed on failure")
	require.Len(t, sink.failures, 1)
	assert.Equal(t, StageLoad, sink.failures[0].Stage)
	assert.Empty(t, sink.forecasts)
}

func TestRun_BadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Demand\n2024-01-01,1\n2024-01-02,n/a\n"), 0o600))
	svc, err := New(testConfig(path), WithStdout(&bytes.Buffer{}), WithSink(&recordSink{}), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	var pe *loader.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestRun_FitAndMetricsFailures(t *testing.T) {
	path := writeCSV(t, 20, func(i int) float64 { return float64(i) })
	boom := errors.New("boom")

	sink := &recordSink{}
	svc, err := New(testConfig(path), WithEngine(&prediction.MockEngine{Err: boom}),
		WithStdout(&bytes.Buffer{}), WithSink(sink), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "fit: boom")
	require.Len(t, sink.failures, 1)
	assert.Equal(t, StageFit, sink.failures[0].Stage)

	sink = &recordSink{err: boom}
	svc, err = New(testConfig(path), WithEngine(&prediction.MockEngine{}),
		WithStdout(&bytes.Buffer{}), WithSink(sink), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageMetrics, se.Stage)
}

func TestRun_InsufficientData(t *testing.T) {
	path := writeCSV(t, 5, func(i int) float64 { return float64(i) })
	var out bytes.Buffer
	svc, err := New(testConfig(path), WithStdout(&out), WithSink(&recordSink{}), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageFit, se.Stage)
	assert.Empty(t, out.String())
}

func TestNew_FromConfig(t *testing.T) {
	cfg := testConfig("unused.csv")
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	cfg.Metrics.Sinks = nil
	svc, err := New(cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	assert.Equal(t, "ARIMA(1,1,1)", svc.engine.Name())
	assert.IsType(t, coremetrics.NopSink{}, svc.sink)
	assert.NotNil(t, svc.store)
	require.NoError(t, svc.Close())

	cfg.Model.Engine = "prophet"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNew_HistoryErrorClosesSink(t *testing.T) {
	cfg := testConfig("unused.csv")
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "missing", "dir", "history.db")
	sink := &closingSink{}
	_, err := New(cfg, WithSink(sink), WithLogger(logger.NopLogger{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history")
	assert.Equal(t, 1, sink.closed)
}
