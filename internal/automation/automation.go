// Package automation runs batches of ensembles: scripted scenarios loaded
// from YAML and one-dimensional scans over a model parameter.
package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gendrift/internal/config"
	"github.com/san-kum/gendrift/internal/ensemble"
	"github.com/san-kum/gendrift/internal/logging"
	"github.com/san-kum/gendrift/internal/popgen"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string
	Description string
	Steps       []ScenarioStep
}

// ScenarioStep is one run. Keys missing from the file take the values of
// config.DefaultConfig.
type ScenarioStep struct {
	Label  string
	Config *config.Config
}

type scenarioFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []yaml.Node `yaml:"steps"`
}

type stepLabel struct {
	Label string `yaml:"label"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var raw scenarioFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	sc := &Scenario{
		Name:        raw.Name,
		Description: raw.Description,
		Steps:       make([]ScenarioStep, 0, len(raw.Steps)),
	}
	for i := range raw.Steps {
		cfg := config.DefaultConfig()
		if err := raw.Steps[i].Decode(cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		var lbl stepLabel
		if err := raw.Steps[i].Decode(&lbl); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if lbl.Label == "" {
			lbl.Label = fmt.Sprintf("%s-%d", cfg.Model, i+1)
		}
		sc.Steps = append(sc.Steps, ScenarioStep{Label: lbl.Label, Config: cfg})
	}
	return sc, nil
}

type StepResult struct {
	Label  string
	Result *ensemble.Result
}

// RunScenario validates every step before running any of them, then runs
// the steps in order.
func RunScenario(ctx context.Context, sc *Scenario, newSampler ensemble.SamplerFactory, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	for i, step := range sc.Steps {
		if err := step.Config.Validate(); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Label, err)
		}
	}

	results := make([]StepResult, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(sc.Steps), "label", step.Label, "model", step.Config.Model)

		res, err := ensemble.Run(ctx, ensemble.Config{
			Model:       step.Config.Model,
			Params:      step.Config.Params(),
			Repetitions: step.Config.Repetitions,
			Seed:        step.Config.Seed,
			Workers:     step.Config.Workers,
			Logger:      logger,
		}, newSampler)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Label, err)
		}
		results = append(results, StepResult{Label: step.Label, Result: res})
	}
	return results, nil
}

// Scan parameters.
const (
	ParamSelection = "selection"
	ParamDominance = "dominance"
	ParamFrequency = "frequency"
)

// ParameterScan runs Base at Steps evenly spaced values of Param in
// [Min, Max].
type ParameterScan struct {
	Base  config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

// ScanResult summarises one scanned value. FixedA counts replicates that
// fixed allele A; FixedA / Repetitions estimates its fixation probability.
type ScanResult struct {
	Value  float64
	FixedA int
	Result *ensemble.Result
}

func (s ScanResult) FixationProbability() float64 {
	if len(s.Result.Replicates) == 0 {
		return 0
	}
	return float64(s.FixedA) / float64(len(s.Result.Replicates))
}

// Values lists the scanned parameter values.
func (s *ParameterScan) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	vals := make([]float64, s.Steps)
	step := (s.Max - s.Min) / float64(s.Steps-1)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	vals[len(vals)-1] = s.Max
	return vals
}

func (s *ParameterScan) configAt(v float64) (config.Config, error) {
	cfg := s.Base
	switch s.Param {
	case ParamSelection:
		cfg.Selection = v
	case ParamDominance:
		cfg.Dominance = v
	case ParamFrequency:
		cfg.Frequency = v
	default:
		return cfg, fmt.Errorf("%w: cannot scan parameter %q", popgen.ErrInvalidParameter, s.Param)
	}
	return cfg, cfg.Validate()
}

// RunParameterScan runs one ensemble per value. Value i is seeded from
// Base.Seed + i*Repetitions so no two replicates share a seed.
func RunParameterScan(ctx context.Context, scan *ParameterScan, newSampler ensemble.SamplerFactory, logger *log.Logger) ([]ScanResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if scan.Steps < 1 {
		return nil, fmt.Errorf("%w: scan needs at least one step", popgen.ErrInvalidParameter)
	}

	values := scan.Values()
	results := make([]ScanResult, 0, len(values))
	for i, v := range values {
		cfg, err := scan.configAt(v)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", scan.Param, v, err)
		}

		res, err := ensemble.Run(ctx, ensemble.Config{
			Model:       cfg.Model,
			Params:      cfg.Params(),
			Repetitions: cfg.Repetitions,
			Seed:        cfg.Seed + uint64(i*cfg.Repetitions),
			Workers:     cfg.Workers,
			Logger:      logger,
		}, newSampler)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", scan.Param, v, err)
		}

		fixedA := 0
		for _, r := range res.Replicates {
			if r.Fixed && r.FixedAt == 1 {
				fixedA++
			}
		}
		results = append(results, ScanResult{Value: v, FixedA: fixedA, Result: res})
		logger.Info("scan step", scan.Param, v, "fixed_a", fixedA, "reps", len(res.Replicates))
	}
	return results, nil
}
