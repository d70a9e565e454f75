// Package chart draws the demand history next to its forecast as an HTML
// page.
package chart

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/chargecast/core/model"
	"github.com/kilianp07/chargecast/core/series"
	"github.com/kilianp07/chargecast/pkg/export"
)

// DefaultTail is the number of historical observations drawn.
const DefaultTail = 180

// missing is rendered by echarts as a gap.
const missing = "-"

// Options tunes the chart.
type Options struct {
	Title string
	// Tail limits the history drawn; zero uses DefaultTail, negative draws
	// everything.
	Tail int
}

// RenderHTML writes a line chart of the history tail, the forecast and its
// interval bounds.
func RenderHTML(w io.Writer, history *series.Series, f *model.Forecast, o Options) error {
	if f == nil || f.Horizon() == 0 {
		return errors.New("chart: empty forecast")
	}
	tail := o.Tail
	if tail == 0 {
		tail = DefaultTail
	}
	var dates []string
	var observed []opts.LineData
	layout := export.DateLayout(f.Step)
	if n := history.Len(); n > 0 {
		from := 0
		if tail > 0 && n > tail {
			from = n - tail
		}
		for i := from; i < n; i++ {
			dates = append(dates, history.Dates[i].Format(layout))
			observed = append(observed, opts.LineData{Value: history.Values[i]})
		}
	}

	// The forecast line starts at the last observation so both lines join.
	hist := len(observed)
	forecast := make([]opts.LineData, hist, hist+f.Horizon())
	lower := make([]opts.LineData, hist, hist+f.Horizon())
	upper := make([]opts.LineData, hist, hist+f.Horizon())
	for i := range forecast {
		forecast[i] = opts.LineData{Value: missing}
		lower[i] = opts.LineData{Value: missing}
		upper[i] = opts.LineData{Value: missing}
	}
	if hist > 0 {
		forecast[hist-1] = observed[hist-1]
	}
	intervals := false
	for _, p := range f.Points {
		dates = append(dates, p.Date.Format(layout))
		observed = append(observed, opts.LineData{Value: missing})
		forecast = append(forecast, opts.LineData{Value: p.Value})
		lower = append(lower, opts.LineData{Value: p.Lower})
		upper = append(upper, opts.LineData{Value: p.Upper})
		intervals = intervals || p.Lower != p.Upper
	}

	title := o.Title
	if title == "" {
		title = fmt.Sprintf("%s forecast (%s)", f.Series, f.Engine)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: f.Series}),
	)
	line.SetXAxis(dates).
		AddSeries("history", observed).
		AddSeries("forecast", forecast)
	if intervals {
		dashed := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})
		line.AddSeries("lower", lower, dashed).AddSeries("upper", upper, dashed)
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
