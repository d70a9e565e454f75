package metrics

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/chargecast/core/metrics"
	"github.com/kilianp07/chargecast/infra/logger"
)

const (
	influxTimeout = 10 * time.Second
	healthTimeout = 5 * time.Second
)

// InfluxConfig configures the InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes forecasts to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: healthTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.ForecastSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordForecast writes one demand_forecast point per step and a
// forecast_fit point in a single request.
func (s *InfluxSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	f := ev.Forecast
	if f == nil {
		return errors.New("influx sink: nil forecast")
	}
	ctx, cancel := context.WithTimeout(context.Background(), influxTimeout)
	defer cancel()

	points := make([]*write.Point, 0, len(f.Points)+1)
	for i, p := range f.Points {
		points = append(points, write.NewPointWithMeasurement("demand_forecast").
			AddTag("series", f.Series).
			AddTag("run_id", f.RunID).
			AddTag("engine", f.Engine).
			AddField("step", i+1).
			AddField("value", round3(p.Value)).
			AddField("lower", round3(p.Lower)).
			AddField("upper", round3(p.Upper)).
			SetTime(p.Date))
	}
	sum := f.Summary
	points = append(points, write.NewPointWithMeasurement("forecast_fit").
		AddTag("series", f.Series).
		AddTag("run_id", f.RunID).
		AddTag("order", sum.Order).
		AddField("observations", ev.Observations).
		AddField("sigma2", round3(sum.Sigma2)).
		AddField("loglik", round3(sum.LogLik)).
		AddField("aic", round3(sum.AIC)).
		AddField("mae", round3(sum.MAE)).
		AddField("rmse", round3(sum.RMSE)).
		AddField("fit_ms", round3(float64(sum.FitDuration)/float64(time.Millisecond))).
		SetTime(ev.Time))
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordFailure writes a forecast_failure point.
func (s *InfluxSink) RecordFailure(ev coremetrics.FailureEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), influxTimeout)
	defer cancel()
	p := write.NewPointWithMeasurement("forecast_failure").
		AddTag("stage", ev.Stage).
		AddTag("source", ev.Source).
		AddField("run_id", ev.RunID).
		AddField("error", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
