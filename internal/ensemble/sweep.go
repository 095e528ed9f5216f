package ensemble

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gendrift/internal/popgen"
)

// SweepConfig runs neutral drift over geometrically spaced population
// sizes: Min, Min*Factor, ... while <= Max.
type SweepConfig struct {
	Min         int
	Max         int
	Factor      int
	Freq        float64
	Generations int
	Trials      int
	Seed        uint64
	Workers     int
	Logger      *log.Logger
}

func DefaultSweep() SweepConfig {
	return SweepConfig{
		Min:         10,
		Max:         1_000_000,
		Factor:      10,
		Freq:        0.5,
		Generations: 10000,
		Trials:      2,
	}
}

func (c SweepConfig) Validate() error {
	if c.Min < 1 {
		return fmt.Errorf("%w: minimum population must be >= 1, got %d", popgen.ErrInvalidParameter, c.Min)
	}
	if c.Max < c.Min {
		return fmt.Errorf("%w: maximum population %d below minimum %d", popgen.ErrInvalidParameter, c.Max, c.Min)
	}
	if c.Factor < 2 {
		return fmt.Errorf("%w: growth factor must be >= 2, got %d", popgen.ErrInvalidParameter, c.Factor)
	}
	if c.Trials < 1 {
		return fmt.Errorf("%w: trials must be >= 1, got %d", popgen.ErrInvalidParameter, c.Trials)
	}
	return nil
}

// Sizes lists the population sizes the sweep visits.
func (c SweepConfig) Sizes() []int {
	var sizes []int
	if c.Min < 1 || c.Factor < 2 {
		return sizes
	}
	for n := c.Min; n <= c.Max; n *= c.Factor {
		sizes = append(sizes, n)
		if n > c.Max/c.Factor {
			break
		}
	}
	return sizes
}

// SweepPoint aggregates the trials run at one population size.
// MeanFrequency averages every trial padded with its last value out to
// the generation cap.
type SweepPoint struct {
	N             int
	MeanFrequency float64
	Result        *Result
}

func Sweep(ctx context.Context, cfg SweepConfig, newSampler SamplerFactory) ([]SweepPoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sizes := cfg.Sizes()
	points := make([]SweepPoint, 0, len(sizes))
	for i, n := range sizes {
		res, err := Run(ctx, Config{
			Model:       popgen.ModelDrift,
			Params:      popgen.Params{N: n, Freq: cfg.Freq, Generations: cfg.Generations},
			Repetitions: cfg.Trials,
			Seed:        cfg.Seed + uint64(i*cfg.Trials),
			Workers:     cfg.Workers,
			Logger:      cfg.Logger,
		}, newSampler)
		if err != nil {
			return points, fmt.Errorf("population %d: %w", n, err)
		}

		means := make([]float64, len(res.Replicates))
		for j, r := range res.Replicates {
			means[j] = r.Metrics["mean_frequency"]
		}
		points = append(points, SweepPoint{
			N:             n,
			MeanFrequency: stat.Mean(means, nil),
			Result:        res,
		})

		if cfg.Logger != nil {
			cfg.Logger.Info("sweep step", "n", n, "mean_frequency", points[len(points)-1].MeanFrequency)
		}
	}
	return points, nil
}
