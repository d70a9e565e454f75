// Package report renders a forecast for humans or other programs.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/kilianp07/chargecast/core/model"
	"github.com/kilianp07/chargecast/pkg/export"
)

const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatYAML  = "yaml"
)

// Formats lists the supported formats.
var Formats = []string{FormatText, FormatTable, FormatJSON, FormatCSV, FormatYAML}

// footer closes the text rendering, naming the value column.
const footer = "Name: predicted_mean, dtype: float64"

const day = 24 * time.Hour

// Options selects the rendering.
type Options struct {
	Format string
	// Title heads the text and table formats.
	Title string
	// Color highlights the table title on terminals.
	Color bool
}

// Write renders f to w. An empty format selects text.
func Write(w io.Writer, f *model.Forecast, opts Options) error {
	switch opts.Format {
	case FormatText, "":
		return writeText(w, f, opts.Title)
	case FormatTable:
		return writeTable(w, f, opts)
	case FormatJSON:
		return export.WriteJSON(w, f)
	case FormatCSV:
		return export.WriteCSV(w, f)
	case FormatYAML:
		return export.WriteYAML(w, f)
	}
	return fmt.Errorf("unknown report format %q", opts.Format)
}

// writeText prints the title, one "date    value" line per point with the
// values right aligned, and the footer. The first line after a title is
// indented by one space and whole-day steps are named in the footer, the
// way a labelled pandas series prints.
func writeText(w io.Writer, f *model.Forecast, title string) error {
	layout := export.DateLayout(f.Step)
	values := make([]string, len(f.Points))
	width := 0
	for i, p := range f.Points {
		values[i] = strconv.FormatFloat(p.Value, 'f', 6, 64)
		width = max(width, len(values[i]))
	}
	lead := ""
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
		lead = " "
	}
	for i, p := range f.Points {
		if _, err := fmt.Fprintf(w, "%s%s    %*s\n", lead, p.Date.Format(layout), width, values[i]); err != nil {
			return err
		}
		lead = ""
	}
	end := footer
	if freq := FreqLabel(f.Step); freq != "" {
		end = "Freq: " + freq + ", " + footer
	}
	_, err := fmt.Fprintln(w, end)
	return err
}

// FreqLabel names a whole-day step as "D" or "<n>D". Other steps have no
// label.
func FreqLabel(step time.Duration) string {
	if step <= 0 || step%day != 0 {
		return ""
	}
	if n := step / day; n > 1 {
		return strconv.Itoa(int(n)) + "D"
	}
	return "D"
}

func writeTable(w io.Writer, f *model.Forecast, opts Options) error {
	label := fmt.Sprint
	if opts.Color {
		label = color.New(color.FgCyan, color.Bold).SprintFunc()
	}
	if opts.Title != "" {
		if _, err := fmt.Fprintln(w, label(opts.Title)); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Date", "Forecast", "Lower", "Upper"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	layout := export.DateLayout(f.Step)
	data := make([][]string, 0, len(f.Points))
	for _, p := range f.Points {
		data = append(data, []string{
			p.Date.Format(layout),
			strconv.FormatFloat(p.Value, 'f', 2, 64),
			strconv.FormatFloat(p.Lower, 'f', 2, 64),
			strconv.FormatFloat(p.Upper, 'f', 2, 64),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
