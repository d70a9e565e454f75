package config

import (
	"fmt"
	"slices"

	"github.com/kilianp07/chargecast/pkg/report"
)

const (
	FormatText  = report.FormatText
	FormatTable = report.FormatTable
	FormatJSON  = report.FormatJSON
	FormatCSV   = report.FormatCSV
	FormatYAML  = report.FormatYAML
)

// OutputConfig selects where and how the forecast is written.
type OutputConfig struct {
	Format string `json:"format"`
	// File receives the report instead of stdout when set.
	File string `json:"file"`
	// Chart, when set, receives an HTML chart of history and forecast.
	Chart string `json:"chart"`
	// ChartTail limits the number of observations drawn on the chart.
	ChartTail int `json:"chart_tail"`
	// Color highlights the table title.
	Color bool `json:"color"`
}

// SetDefaults selects the text report.
func (c *OutputConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = FormatText
	}
}

// Validate checks the format.
func (c OutputConfig) Validate() error {
	if !slices.Contains(report.Formats, c.Format) {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}
