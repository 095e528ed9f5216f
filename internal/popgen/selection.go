package popgen

import "math"

const probabilityTolerance = 1e-9

// Apply returns the genotype proportions after viability selection,
// p'_x = p_x * w_x / wbar. A monomorphic population is returned unchanged:
// with a single genotype present there is nothing to reweight.
func (w Fitness) Apply(g Genotypes) (Genotypes, error) {
	wbar := w.Mean(g)
	if math.IsNaN(wbar) || math.IsInf(wbar, 0) {
		return Genotypes{}, ErrDegenerateFitness
	}
	if wbar == 0 {
		if monomorphic(g) {
			return g, nil
		}
		return Genotypes{}, ErrDegenerateFitness
	}
	return Genotypes{
		PAA: g.PAA * w.WAA / wbar,
		PAa: g.PAa * w.WAa / wbar,
		Paa: g.Paa * w.Waa / wbar,
	}, nil
}

// Selection simulates drift with viability selection and dominance. The
// population starts in Hardy-Weinberg proportions; each generation applies
// selection and then draws N individuals from a single multinomial, so
// drift and selection act in one stochastic step. The run stops once the
// allele frequency is exactly 0 or 1.
func Selection(p Params, smp Sampler) (*SelectionResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !finite(p.Selection) || !finite(p.Dominance) {
		return nil, invalidf("selection and dominance must be finite, got s=%v h=%v", p.Selection, p.Dominance)
	}
	if smp == nil {
		return nil, invalidf("nil sampler")
	}

	capacity := min(p.Generations, 4096)
	res := &SelectionResult{
		Frequencies: make([]float64, 0, capacity),
		Genotypes:   make([]Genotypes, 0, capacity),
	}

	w := NewFitness(p.Selection, p.Dominance)
	g := HardyWeinberg(p.Freq)
	n := float64(p.N)

	for i := 0; i < p.Generations; i++ {
		selected, err := w.Apply(g)
		if err != nil {
			return nil, &SimulationError{Model: ModelSelection, Generation: i, Err: err}
		}

		probs := selected.Slice()
		if err := checkDistribution(probs); err != nil {
			return nil, &SimulationError{Model: ModelSelection, Generation: i, Err: err}
		}

		counts := smp.Multinomial(p.N, probs)
		if err := checkCounts(counts, p.N); err != nil {
			return nil, &SimulationError{Model: ModelSelection, Generation: i, Err: err}
		}

		g = Genotypes{
			PAA: float64(counts[0]) / n,
			PAa: float64(counts[1]) / n,
			Paa: float64(counts[2]) / n,
		}
		// Counted from alleles so fixation is detected without rounding.
		freq := float64(2*counts[0]+counts[1]) / (2 * n)

		res.Genotypes = append(res.Genotypes, g)
		res.Frequencies = append(res.Frequencies, freq)
		res.FixationGen = i

		if isFixed(freq) {
			res.Fixed = true
			res.FixedAt = freq
			break
		}
	}

	return res, nil
}

func checkDistribution(probs []float64) error {
	sum := 0.0
	for _, p := range probs {
		if !isProbability(p) {
			return invalidf("sampling probability %v outside [0,1]", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return invalidf("sampling probabilities sum to %v", sum)
	}
	return nil
}

func checkCounts(counts []int, n int) error {
	if len(counts) != 3 {
		return invalidf("sampler returned %d categories, want 3", len(counts))
	}
	total := 0
	for _, c := range counts {
		if c < 0 {
			return invalidf("sampler returned negative count %d", c)
		}
		total += c
	}
	if total != n {
		return invalidf("sampler returned %d individuals, want %d", total, n)
	}
	return nil
}

func monomorphic(g Genotypes) bool {
	present := 0
	for _, v := range g.Slice() {
		if v != 0 {
			present++
		}
	}
	return present == 1
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
