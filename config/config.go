package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/kilianp07/chargecast/core/metrics"
)

// EnvPrefix prefixes environment overrides, e.g. CC_FORECAST__HORIZON=7.
const EnvPrefix = "CC_"

type Config struct {
	Input    InputConfig    `json:"input"`
	Model    ModelConfig    `json:"model"`
	Forecast ForecastConfig `json:"forecast"`
	Output   OutputConfig   `json:"output"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  metrics.Config `json:"metrics"`
	History  HistoryConfig  `json:"history"`
	Sentry   SentryConfig   `json:"sentry"`
}

// FlagKeys maps command line flag names to configuration keys. Flags not
// listed are ignored by the loader.
var FlagKeys = map[string]string{
	"input":     "input.path",
	"horizon":   "forecast.horizon",
	"order":     "model.order",
	"format":    "output.format",
	"output":    "output.file",
	"chart":     "output.chart",
	"log-level": "logging.level",
	"history":   "history.enabled",
}

// LoadOption customises Load.
type LoadOption func(*loadState)

type loadState struct {
	flags *pflag.FlagSet
}

// WithFlags applies the explicitly set flags of fs on top of every other
// source.
func WithFlags(fs *pflag.FlagSet) LoadOption {
	return func(l *loadState) { l.flags = fs }
}

// Load builds the configuration from defaults, the optional file at path,
// environment variables and flags, in increasing order of precedence.
// An empty path skips the file.
func Load(path string, opts ...LoadOption) (*Config, error) {
	var l loadState
	for _, o := range opts {
		o(&l)
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	if l.flags != nil {
		p := posflag.ProviderWithFlag(l.flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(l.flags, f)
		})
		if err := k.Load(p, nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used without any file, environment or
// flag.
func Default() *Config {
	cfg := Config{
		Model:    ModelConfig{P: 1, D: 1, Q: 1},
		Forecast: ForecastConfig{Confidence: DefaultConfidence},
	}
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	c.Input.SetDefaults()
	c.Model.SetDefaults()
	c.Forecast.SetDefaults()
	c.Output.SetDefaults()
	c.Logging.SetDefaults()
	c.History.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"input", c.Input.Validate},
		{"model", c.Model.Validate},
		{"forecast", c.Forecast.Validate},
		{"output", c.Output.Validate},
		{"logging", c.Logging.Validate},
		{"history", c.History.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}

// Finalize applies defaults then validates.
func (c *Config) Finalize() error {
	c.SetDefaults()
	return c.Validate()
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"input.path":           DefaultInputPath,
		"input.date_column":    DefaultDateColumn,
		"input.value_column":   DefaultValueColumn,
		"input.delimiter":      ",",
		"model.engine":         DefaultEngine,
		"model.p":              1,
		"model.d":              1,
		"model.q":              1,
		"forecast.horizon":     DefaultHorizon,
		"forecast.confidence":  DefaultConfidence,
		"output.format":        FormatText,
		"logging.level":        DefaultLogLevel,
		"logging.max_size_mb":  DefaultMaxSizeMB,
		"logging.max_backups":  DefaultMaxBackups,
		"logging.max_age_days": DefaultMaxAgeDays,
		"history.enabled":      false,
		"history.path":         DefaultHistoryPath,
	}
}
