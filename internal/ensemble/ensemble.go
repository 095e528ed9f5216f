// Package ensemble runs repeated simulations concurrently and aggregates
// their outcomes.
//
// Every replicate gets its own sampler, seeded with the base seed plus the
// replicate index, so results are reproducible regardless of scheduling.
package ensemble

import (
	"context"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gendrift/internal/logging"
	"github.com/san-kum/gendrift/internal/metrics"
	"github.com/san-kum/gendrift/internal/popgen"
)

// SamplerFactory builds an independent sampler for one replicate.
type SamplerFactory func(seed uint64) popgen.Sampler

type Config struct {
	Model       string
	Params      popgen.Params
	Repetitions int
	Seed        uint64
	Workers     int
	Logger      *log.Logger
}

// Replicate is one simulated trajectory. Genotypes is nil for drift runs.
// FixedAt is the absorbing frequency when Fixed is set.
type Replicate struct {
	Index       int
	Seed        uint64
	Frequencies []float64
	Genotypes   []popgen.Genotypes
	FixationGen int
	Fixed       bool
	FixedAt     float64
	Metrics     map[string]float64
}

type Summary struct {
	Repetitions int
	MeanFinal   float64
	StdFinal    float64
	FixedCount  int
	// HasFixation is false when no replicate fixed; MeanFixationGen is
	// zero in that case.
	HasFixation     bool
	MeanFixationGen float64
	Metrics         map[string]float64
}

type Result struct {
	Config     Config
	Replicates []Replicate
	Summary    Summary
}

// Run simulates cfg.Repetitions replicates with at most cfg.Workers
// goroutines. The first failure cancels the remaining replicates.
func Run(ctx context.Context, cfg Config, newSampler SamplerFactory) (*Result, error) {
	if cfg.Repetitions < 1 {
		return nil, fmt.Errorf("%w: repetitions must be >= 1, got %d", popgen.ErrInvalidParameter, cfg.Repetitions)
	}
	if newSampler == nil {
		return nil, fmt.Errorf("%w: nil sampler factory", popgen.ErrInvalidParameter)
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	reps := make([]Replicate, cfg.Repetitions)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(workers)

	for i := 0; i < cfg.Repetitions; i++ {
		idx := i
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seed := cfg.Seed + uint64(idx)
			rep, err := RunOne(cfg.Model, cfg.Params, newSampler(seed))
			if err != nil {
				return fmt.Errorf("replicate %d: %w", idx, err)
			}
			rep.Index = idx
			rep.Seed = seed
			reps[idx] = rep
			logger.Debug("replicate done", "model", cfg.Model, "rep", idx, "generations", len(rep.Frequencies), "fixed", rep.Fixed)
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Config:     cfg,
		Replicates: reps,
		Summary:    Summarize(reps),
	}, nil
}

// RunOne runs a single replicate of model and evaluates the default
// metrics on it.
func RunOne(model string, params popgen.Params, smp popgen.Sampler) (Replicate, error) {
	var rep Replicate

	switch model {
	case popgen.ModelDrift:
		res, err := popgen.Drift(params, smp)
		if err != nil {
			return rep, err
		}
		rep.Frequencies = res.Trajectory.Frequencies()
		rep.FixationGen = res.FixationGen
		rep.Fixed = res.Fixed
		rep.FixedAt = res.FixedAt
	case popgen.ModelSelection:
		res, err := popgen.Selection(params, smp)
		if err != nil {
			return rep, err
		}
		rep.Frequencies = res.Frequencies
		rep.Genotypes = res.Genotypes
		rep.FixationGen = res.FixationGen
		rep.Fixed = res.Fixed
		rep.FixedAt = res.FixedAt
	default:
		return rep, fmt.Errorf("%w: unknown model %q", popgen.ErrInvalidParameter, model)
	}

	rep.Metrics = metrics.Evaluate(metrics.Defaults(params.Generations), rep.Frequencies)
	return rep, nil
}

// Summarize averages final frequencies, fixation generations and metrics
// across replicates. Only replicates that fixed count towards the mean
// fixation generation.
func Summarize(reps []Replicate) Summary {
	s := Summary{
		Repetitions: len(reps),
		Metrics:     make(map[string]float64),
	}
	if len(reps) == 0 {
		return s
	}

	finals := make([]float64, len(reps))
	var fixGens []float64
	byMetric := make(map[string][]float64)
	for i, r := range reps {
		if len(r.Frequencies) > 0 {
			finals[i] = r.Frequencies[len(r.Frequencies)-1]
		}
		if r.Fixed {
			fixGens = append(fixGens, float64(r.FixationGen))
		}
		for name, v := range r.Metrics {
			byMetric[name] = append(byMetric[name], v)
		}
	}

	s.MeanFinal = stat.Mean(finals, nil)
	if len(finals) > 1 {
		s.StdFinal = stat.StdDev(finals, nil)
	}
	s.FixedCount = len(fixGens)
	if len(fixGens) > 0 {
		s.HasFixation = true
		s.MeanFixationGen = stat.Mean(fixGens, nil)
	}
	for name, vals := range byMetric {
		s.Metrics[name] = stat.Mean(vals, nil)
	}
	return s
}
