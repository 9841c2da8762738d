package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/emsga/core/factory"
	"github.com/kilianp07/emsga/core/ga"
	"github.com/kilianp07/emsga/core/metrics"
	"github.com/kilianp07/emsga/core/monitoring"
)

type Config struct {
	GA         ga.Config            `json:"ga"`
	Inputs     factory.ModuleConfig `json:"inputs"`
	Results    ResultsConfig        `json:"results"`
	Metrics    metrics.Config       `json:"metrics"`
	Monitoring monitoring.Config    `json:"monitoring"`
	Service    ServiceConfig        `json:"service"`
	Logging    LoggingConfig        `json:"logging"`
}

// Load reads the configuration file at path, applies K_ prefixed environment
// overrides ("__" separates nested keys, e.g. K_GA__SEED), then defaults and
// validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
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
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.GA.SetDefaults()
	if c.Inputs.Type == "" {
		c.Inputs.Type = "file"
	}
	c.Service.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.GA.Validate(); err != nil {
		return fmt.Errorf("ga: %w", err)
	}
	if err := c.Results.Validate(); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	if err := c.Monitoring.Validate(); err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}
	if err := c.Service.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
