package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/kilianp07/chargecast/infra/loader"
)

const (
	DefaultInputPath   = "charging_demand.csv"
	DefaultDateColumn  = "Date"
	DefaultValueColumn = "Demand"
)

// InputConfig locates the demand history.
type InputConfig struct {
	Path        string `json:"path"`
	DateColumn  string `json:"date_column"`
	ValueColumn string `json:"value_column"`
	// DateFormat is a Go time layout; empty detects common layouts.
	DateFormat string `json:"date_format"`
	// Delimiter is a single character, or "tab".
	Delimiter string `json:"delimiter"`
}

// SetDefaults applies the historical file layout.
func (c *InputConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = DefaultInputPath
	}
	if c.DateColumn == "" {
		c.DateColumn = DefaultDateColumn
	}
	if c.ValueColumn == "" {
		c.ValueColumn = DefaultValueColumn
	}
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
}

// Validate checks mandatory fields.
func (c InputConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if _, err := c.delimiter(); err != nil {
		return err
	}
	return nil
}

func (c InputConfig) delimiter() (rune, error) {
	switch c.Delimiter {
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError || size != len(c.Delimiter) {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return r, nil
}

// LoaderOptions converts the section to loader options.
func (c InputConfig) LoaderOptions() loader.Options {
	d, _ := c.delimiter()
	return loader.Options{
		DateColumn:  c.DateColumn,
		ValueColumn: c.ValueColumn,
		DateFormat:  c.DateFormat,
		Delimiter:   d,
	}
}
