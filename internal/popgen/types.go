package popgen

import "math"

const (
	ModelDrift     = "drift"
	ModelSelection = "selection"
)

// Sampler draws the random counts the engine needs. Implementations may
// assume 0 <= p <= 1 and that probs sum to 1; the engine validates both
// before calling.
type Sampler interface {
	Binomial(n int, p float64) int
	Multinomial(n int, probs []float64) []int
}

// Params describes one run. Selection and Dominance are ignored by Drift.
type Params struct {
	N           int
	Freq        float64
	Generations int
	Selection   float64
	Dominance   float64
}

func (p Params) Validate() error {
	if p.N < 1 {
		return invalidf("population size must be >= 1, got %d", p.N)
	}
	if p.Generations < 1 {
		return invalidf("generation cap must be >= 1, got %d", p.Generations)
	}
	if !isProbability(p.Freq) {
		return invalidf("frequency must be in [0,1], got %v", p.Freq)
	}
	return nil
}

type Point struct {
	Generation int
	Frequency  float64
}

type Trajectory []Point

// Frequencies returns the frequency column of the trajectory.
func (t Trajectory) Frequencies() []float64 {
	out := make([]float64, len(t))
	for i, pt := range t {
		out[i] = pt.Frequency
	}
	return out
}

// Genotypes holds the AA, Aa and aa frequencies of one generation.
type Genotypes struct {
	PAA float64 `json:"p_AA"`
	PAa float64 `json:"p_Aa"`
	Paa float64 `json:"p_aa"`
}

// HardyWeinberg returns the equilibrium genotype frequencies for allele
// frequency p.
func HardyWeinberg(p float64) Genotypes {
	q := 1 - p
	return Genotypes{PAA: p * p, PAa: 2 * p * q, Paa: q * q}
}

func (g Genotypes) Sum() float64 { return g.PAA + g.PAa + g.Paa }

// AlleleFrequency is the frequency of A implied by the genotypes.
func (g Genotypes) AlleleFrequency() float64 { return g.PAA + 0.5*g.PAa }

func (g Genotypes) Slice() []float64 { return []float64{g.PAA, g.PAa, g.Paa} }

// Fitness holds the relative fitness of each genotype.
type Fitness struct {
	WAA float64
	WAa float64
	Waa float64
}

// NewFitness derives fitnesses from the selection coefficient s and the
// dominance coefficient h: wAA = 1, wAa = 1 - h*s, waa = 1 - s. Values of
// s or h outside [0,1] are accepted and may yield negative fitness.
func NewFitness(s, h float64) Fitness {
	return Fitness{WAA: 1, WAa: 1 - h*s, Waa: 1 - s}
}

// Mean returns the population mean fitness for genotypes g.
func (w Fitness) Mean(g Genotypes) float64 {
	return g.PAA*w.WAA + g.PAa*w.WAa + g.Paa*w.Waa
}

// DriftResult is the outcome of a neutral run. FixationGen is the last
// recorded generation; it equals Generations-1 both when fixation happened
// at the last generation and when the cap was exhausted. Fixed tells the
// two apart. FixedAt is the boundary (0 or 1) the run was absorbed at; it
// is meaningful only when Fixed is set, since the trajectory stops short of
// it.
type DriftResult struct {
	Trajectory  Trajectory
	FixationGen int
	Fixed       bool
	FixedAt     float64
}

// SelectionResult is the outcome of a run with selection. Frequencies and
// Genotypes are indexed by generation.
type SelectionResult struct {
	Frequencies []float64
	Genotypes   []Genotypes
	FixationGen int
	Fixed       bool
	FixedAt     float64
}

func isFixed(p float64) bool {
	return p == 0 || p == 1
}

func isProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
