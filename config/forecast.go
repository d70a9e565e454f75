package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultHorizon    = 30
	DefaultConfidence = 0.95
)

// ForecastConfig controls the forecast horizon and presentation.
type ForecastConfig struct {
	Horizon int `json:"horizon"`
	// Frequency spaces forecast dates: a Go duration or one of hourly,
	// daily, weekly. Empty infers it from the history.
	Frequency string `json:"frequency"`
	// Confidence is the prediction interval level; 0 disables intervals.
	Confidence float64 `json:"confidence"`
	// Label heads the text report.
	Label string `json:"label"`
}

// SetDefaults applies the 30 step horizon.
func (c *ForecastConfig) SetDefaults() {
	if c.Horizon == 0 {
		c.Horizon = DefaultHorizon
	}
}

// Validate checks the horizon, frequency and confidence level.
func (c ForecastConfig) Validate() error {
	if c.Horizon < 1 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if c.Confidence < 0 || c.Confidence >= 1 {
		return fmt.Errorf("confidence must be in [0,1), got %v", c.Confidence)
	}
	_, err := c.Step()
	return err
}

// Step parses Frequency. Zero means infer.
func (c ForecastConfig) Step() (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(c.Frequency)) {
	case "":
		return 0, nil
	case "h", "hourly":
		return time.Hour, nil
	case "d", "daily":
		return 24 * time.Hour, nil
	case "w", "weekly":
		return 7 * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(c.Frequency)
	if err != nil {
		return 0, fmt.Errorf("frequency: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("frequency must be positive, got %s", d)
	}
	return d, nil
}

// Title returns Label or the default heading for the horizon.
func (c ForecastConfig) Title() string {
	if c.Label != "" {
		return c.Label
	}
	return fmt.Sprintf("Next %d-Day Demand Forecast:", c.Horizon)
}
