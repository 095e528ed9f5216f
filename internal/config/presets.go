package config

import "sort"

var Presets = map[string]map[string]*Config{
	"drift": {
		"small": {
			Model: "drift", PopulationSize: 10, Frequency: 0.5, Generations: 200, Repetitions: 10,
		},
		"large": {
			Model: "drift", PopulationSize: 10000, Frequency: 0.5, Generations: 1000, Repetitions: 5,
		},
		"rare": {
			Model: "drift", PopulationSize: 100, Frequency: 0.05, Generations: 1000, Repetitions: 20,
		},
	},
	"selection": {
		"default": {
			Model: "selection", PopulationSize: 100, Frequency: 0.5, Generations: 1000, Repetitions: 3,
			Selection: 0.2, Dominance: 0.25,
		},
		"recessive": {
			Model: "selection", PopulationSize: 1000, Frequency: 0.1, Generations: 500, Repetitions: 5,
			Selection: 0.1, Dominance: 1.0,
		},
		"dominant": {
			Model: "selection", PopulationSize: 1000, Frequency: 0.1, Generations: 500, Repetitions: 5,
			Selection: 0.1, Dominance: 0.0,
		},
		"additive": {
			Model: "selection", PopulationSize: 1000, Frequency: 0.5, Generations: 200, Repetitions: 5,
			Selection: 0.2, Dominance: 0.5,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
