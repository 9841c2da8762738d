package ga

import (
	"fmt"
	"time"
)

// Config defines the parameters of an optimisation run.
type Config struct {
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	CrossoverRate  float64 `json:"crossover_rate"`
	MutationRate   float64 `json:"mutation_rate"`
	// Seed feeds the random source of every run. Zero draws a new seed per run.
	Seed int64 `json:"seed"`
	// MutateLast allows the last individual of each generation to mutate.
	// It is off by default, which keeps that individual out of mutation.
	MutateLast        bool           `json:"mutate_last"`
	HourZero          HourZeroPolicy `json:"hour_zero"`
	GenerationDelayMS int            `json:"generation_delay_ms"`
	// LogEvery controls how often progress is logged, in generations.
	LogEvery int `json:"log_every"`
}

// SetDefaults applies the reference settings to unset fields.
func (c *Config) SetDefaults() {
	if c.PopulationSize == 0 {
		c.PopulationSize = 100
	}
	if c.Generations == 0 {
		c.Generations = 100
	}
	if c.CrossoverRate == 0 {
		c.CrossoverRate = 0.8
	}
	if c.MutationRate == 0 {
		c.MutationRate = 0.001
	}
	if c.HourZero == "" {
		c.HourZero = HourZeroCorrected
	}
	if c.LogEvery == 0 {
		c.LogEvery = 10
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population_size must be >0: %w", ErrInvalidConfig)
	}
	if c.Generations <= 0 {
		return fmt.Errorf("generations must be >0: %w", ErrInvalidConfig)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("crossover_rate must be in [0,1]: %w", ErrInvalidConfig)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation_rate must be in [0,1]: %w", ErrInvalidConfig)
	}
	if c.GenerationDelayMS < 0 {
		return fmt.Errorf("generation_delay_ms must be >=0: %w", ErrInvalidConfig)
	}
	return c.HourZero.Validate()
}

func (c Config) generationDelay() time.Duration {
	return time.Duration(c.GenerationDelayMS) * time.Millisecond
}
