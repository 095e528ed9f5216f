package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gendrift/internal/popgen"
)

const (
	DefaultPopulation  = 100
	DefaultFrequency   = 0.5
	DefaultGenerations = 1000
	DefaultRepetitions = 3
	DefaultSelection   = 0.2
	DefaultDominance   = 0.25
	DefaultWorkers     = 4
)

type Config struct {
	Model          string  `yaml:"model"`
	PopulationSize int     `yaml:"population_size"`
	Frequency      float64 `yaml:"frequency"`
	Generations    int     `yaml:"generations"`
	Repetitions    int     `yaml:"repetitions"`
	Seed           uint64  `yaml:"seed"`
	Selection      float64 `yaml:"selection"`
	Dominance      float64 `yaml:"dominance"`
	Workers        int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:          popgen.ModelDrift,
		PopulationSize: DefaultPopulation,
		Frequency:      DefaultFrequency,
		Generations:    DefaultGenerations,
		Repetitions:    DefaultRepetitions,
		Selection:      DefaultSelection,
		Dominance:      DefaultDominance,
		Workers:        DefaultWorkers,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base. Keys absent from the file
// keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run-level settings and the engine parameters.
func (c *Config) Validate() error {
	switch c.Model {
	case popgen.ModelDrift, popgen.ModelSelection:
	default:
		return fmt.Errorf("%w: unknown model %q", popgen.ErrInvalidParameter, c.Model)
	}
	if c.Repetitions < 1 {
		return fmt.Errorf("%w: repetitions must be >= 1, got %d", popgen.ErrInvalidParameter, c.Repetitions)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", popgen.ErrInvalidParameter, c.Workers)
	}
	return c.Params().Validate()
}

func (c *Config) Params() popgen.Params {
	p := popgen.Params{
		N:           c.PopulationSize,
		Freq:        c.Frequency,
		Generations: c.Generations,
	}
	if c.Model == popgen.ModelSelection {
		p.Selection = c.Selection
		p.Dominance = c.Dominance
	}
	return p
}
