package config

import (
	"fmt"

	"github.com/kilianp07/chargecast/core/arima"
	"github.com/kilianp07/chargecast/core/factory"
)

const DefaultEngine = "arima"

// ModelConfig selects the prediction engine and its order.
type ModelConfig struct {
	Engine string `json:"engine"`
	// Order, when set as "p,d,q", overrides P, D and Q.
	Order         string  `json:"order"`
	P             int     `json:"p"`
	D             int     `json:"d"`
	Q             int     `json:"q"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
	// Conf carries extra settings for engines other than arima.
	Conf map[string]any `json:"conf"`
}

// SetDefaults selects the arima engine and resolves Order.
func (c *ModelConfig) SetDefaults() {
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.Order != "" {
		if o, err := arima.ParseOrder(c.Order); err == nil {
			c.P, c.D, c.Q = o.P, o.D, o.Q
		}
	}
}

// Validate checks the order of the arima engine.
func (c ModelConfig) Validate() error {
	if c.Order != "" {
		if _, err := arima.ParseOrder(c.Order); err != nil {
			return err
		}
	}
	if c.Engine == DefaultEngine {
		if err := c.ARIMAOrder().Validate(); err != nil {
			return err
		}
	}
	if c.MaxIterations < 0 || c.Tolerance < 0 {
		return fmt.Errorf("max_iterations and tolerance must not be negative")
	}
	return nil
}

// ARIMAOrder returns the configured order.
func (c ModelConfig) ARIMAOrder() arima.Order {
	return arima.Order{P: c.P, D: c.D, Q: c.Q}
}

// Module converts the section to an engine module configuration.
func (c ModelConfig) Module() factory.ModuleConfig {
	conf := make(map[string]any, len(c.Conf)+5)
	for k, v := range c.Conf {
		conf[k] = v
	}
	if c.Engine == DefaultEngine {
		conf["p"] = c.P
		conf["d"] = c.D
		conf["q"] = c.Q
		conf["max_iterations"] = c.MaxIterations
		conf["tolerance"] = c.Tolerance
	}
	return factory.ModuleConfig{Type: c.Engine, Conf: conf}
}
