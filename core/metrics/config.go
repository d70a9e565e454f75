package metrics

import "github.com/kilianp07/chargecast/core/factory"

// Config lists the metrics sinks to build. An empty list disables metrics.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}
