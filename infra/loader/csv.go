package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/chargecast/core/series"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrNoObservations = errors.New("no observations")
)

// dateFormats are tried in order when Options.DateFormat is empty.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// Options controls how a delimited file is mapped to a series.
type Options struct {
	DateColumn  string
	ValueColumn string
	// DateFormat is a Go time layout. Empty tries the common layouts.
	DateFormat string
	Delimiter  rune
	// Name labels the resulting series; defaults to ValueColumn.
	Name string
}

// DefaultOptions reads the "Date" and "Demand" columns of a comma separated
// file.
func DefaultOptions() Options {
	return Options{DateColumn: "Date", ValueColumn: "Demand", Delimiter: ','}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DateColumn == "" {
		o.DateColumn = d.DateColumn
	}
	if o.ValueColumn == "" {
		o.ValueColumn = d.ValueColumn
	}
	if o.Delimiter == 0 {
		o.Delimiter = d.Delimiter
	}
	if o.Name == "" {
		o.Name = o.ValueColumn
	}
	return o
}

// ParseError reports a cell that could not be parsed. Line is 1-based and
// counts the header.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadCSV reads a series from the file at path.
func LoadCSV(path string, opts Options) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	s, err := LoadCSVFromReader(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadCSVFromReader reads a series from r. Every row must hold a valid date
// and a finite number; the first bad cell aborts the load.
func LoadCSVFromReader(r io.Reader, opts Options) (*series.Series, error) {
	opts = opts.withDefaults()
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoObservations
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateIdx, err := columnIndex(header, opts.DateColumn)
	if err != nil {
		return nil, err
	}
	valueIdx, err := columnIndex(header, opts.ValueColumn)
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	var values []float64
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rawDate := strings.TrimSpace(rec[dateIdx])
		d, err := parseDate(rawDate, opts.DateFormat)
		if err != nil {
			return nil, &ParseError{Line: line, Column: opts.DateColumn, Value: rawDate, Err: err}
		}
		rawValue := strings.TrimSpace(rec[valueIdx])
		v, err := parseValue(rawValue)
		if err != nil {
			return nil, &ParseError{Line: line, Column: opts.ValueColumn, Value: rawValue, Err: err}
		}
		dates = append(dates, d)
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, ErrNoObservations
	}
	return series.New(opts.Name, dates, values)
}

func columnIndex(header []string, name string) (int, error) {
	clean := func(h string) string {
		return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for i, h := range header {
		if clean(h) == name {
			return i, nil
		}
	}
	for i, h := range header {
		if strings.EqualFold(clean(h), name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q in %v", ErrColumnNotFound, name, header)
}

func parseDate(s, layout string) (time.Time, error) {
	if layout != "" {
		return time.Parse(layout, s)
	}
	for _, l := range dateFormats {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}

func parseValue(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("value is not finite")
	}
	return v, nil
}
