package config

import "time"

const defaultFlushTimeout = 2 * time.Second

// SentryConfig defines settings for Sentry error monitoring. Monitoring is
// off while DSN is empty.
type SentryConfig struct {
	DSN              string        `json:"dsn"`
	Environment      string        `json:"environment"`
	TracesSampleRate float64       `json:"traces_sample_rate"`
	Release          string        `json:"release"`
	FlushTimeout     time.Duration `json:"flush_timeout"`
}

// Enabled reports whether a DSN is configured.
func (c SentryConfig) Enabled() bool { return c.DSN != "" }

// Timeout returns how long pending events are flushed for on exit.
func (c SentryConfig) Timeout() time.Duration {
	if c.FlushTimeout <= 0 {
		return defaultFlushTimeout
	}
	return c.FlushTimeout
}
