// Package export serialises forecasts for other tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/chargecast/core/model"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"date", "forecast", "lower", "upper"}

// WriteJSON writes the forecast to w in indented JSON format.
func WriteJSON(w io.Writer, f *model.Forecast) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// WriteCSV writes one row per forecast point.
func WriteCSV(w io.Writer, f *model.Forecast) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	layout := DateLayout(f.Step)
	for _, p := range f.Points {
		rec := []string{
			p.Date.Format(layout),
			strconv.FormatFloat(p.Value, 'f', -1, 64),
			strconv.FormatFloat(p.Lower, 'f', -1, 64),
			strconv.FormatFloat(p.Upper, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYAML writes the forecast to w in YAML format.
func WriteYAML(w io.Writer, f *model.Forecast) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// DateLayout renders daily and coarser steps as plain dates.
func DateLayout(step time.Duration) string {
	if step > 0 && step < 24*time.Hour {
		return time.RFC3339
	}
	return time.DateOnly
}
