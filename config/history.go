package config

import "fmt"

const DefaultHistoryPath = "chargecast.db"

// HistoryConfig enables the SQLite record of past forecast runs.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SetDefaults sets the database path.
func (c *HistoryConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = DefaultHistoryPath
	}
}

// Validate requires a path when enabled.
func (c HistoryConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
