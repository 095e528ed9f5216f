package popgen

import (
	"errors"
	"math"
	"testing"
)

func TestHardyWeinberg(t *testing.T) {
	for _, p := range []float64{0, 0.1, 0.5, 0.9, 1} {
		g := HardyWeinberg(p)
		if math.Abs(g.Sum()-1) > 1e-12 {
			t.Errorf("p=%v: genotypes sum to %v", p, g.Sum())
		}
		if math.Abs(g.AlleleFrequency()-p) > 1e-12 {
			t.Errorf("p=%v: allele frequency %v", p, g.AlleleFrequency())
		}
	}
}

func TestNewFitness(t *testing.T) {
	w := NewFitness(0.2, 0.25)
	if w.WAA != 1 {
		t.Errorf("wAA = %v, want 1", w.WAA)
	}
	if math.Abs(w.WAa-0.95) > 1e-12 {
		t.Errorf("wAa = %v, want 0.95", w.WAa)
	}
	if math.Abs(w.Waa-0.8) > 1e-12 {
		t.Errorf("waa = %v, want 0.8", w.Waa)
	}
}

func TestFitnessApply(t *testing.T) {
	w := NewFitness(0.2, 0.25)
	g := HardyWeinberg(0.5)

	got, err := w.Apply(g)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	wbar := 0.25*1 + 0.5*0.95 + 0.25*0.8
	want := Genotypes{PAA: 0.25 / wbar, PAa: 0.5 * 0.95 / wbar, Paa: 0.25 * 0.8 / wbar}
	if math.Abs(got.PAA-want.PAA) > 1e-12 || math.Abs(got.PAa-want.PAa) > 1e-12 || math.Abs(got.Paa-want.Paa) > 1e-12 {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
	if math.Abs(got.Sum()-1) > 1e-12 {
		t.Errorf("post-selection sum = %v", got.Sum())
	}
}

func TestFitnessApplyDegenerate(t *testing.T) {
	w := NewFitness(1, 1)
	_, err := w.Apply(Genotypes{PAA: 0, PAa: 0.5, Paa: 0.5})
	if !errors.Is(err, ErrDegenerateFitness) {
		t.Errorf("expected ErrDegenerateFitness, got %v", err)
	}
}

func TestFitnessApplyMonomorphic(t *testing.T) {
	w := NewFitness(1, 0.5)
	g := Genotypes{Paa: 1}
	got, err := w.Apply(g)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got != g {
		t.Errorf("Apply() = %+v, want unchanged %+v", got, g)
	}
}

func TestSelectionInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"zero population", Params{N: 0, Freq: 0.5, Generations: 10}},
		{"zero generations", Params{N: 10, Freq: 0.5}},
		{"frequency out of range", Params{N: 10, Freq: 2, Generations: 10}},
		{"NaN selection", Params{N: 10, Freq: 0.5, Generations: 10, Selection: math.NaN()}},
		{"infinite dominance", Params{N: 10, Freq: 0.5, Generations: 10, Dominance: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Selection(tt.params, expectedSampler{})
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestSelectionNegativeFitness(t *testing.T) {
	_, err := Selection(Params{N: 100, Freq: 0.5, Generations: 10, Selection: 2, Dominance: 0.25}, expectedSampler{})

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Generation != 0 {
		t.Errorf("expected failure at generation 0, got %d", simErr.Generation)
	}
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestSelectionScripted(t *testing.T) {
	smp := &scriptedSampler{multinomial: [][]int{
		{3, 4, 3},
		{5, 4, 1},
		{10, 0, 0},
	}}
	res, err := Selection(Params{N: 10, Freq: 0.5, Generations: 50, Selection: 0.2, Dominance: 0.25}, smp)
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}

	wantFreq := []float64{0.5, 0.7, 1.0}
	if len(res.Frequencies) != len(wantFreq) {
		t.Fatalf("expected %d generations, got %d", len(wantFreq), len(res.Frequencies))
	}
	for i, f := range wantFreq {
		if math.Abs(res.Frequencies[i]-f) > 1e-12 {
			t.Errorf("generation %d frequency = %v, want %v", i, res.Frequencies[i], f)
		}
	}
	if len(res.Genotypes) != len(res.Frequencies) {
		t.Errorf("genotype and frequency lengths differ: %d vs %d", len(res.Genotypes), len(res.Frequencies))
	}
	if g := res.Genotypes[1]; g.PAA != 0.5 || g.PAa != 0.4 || g.Paa != 0.1 {
		t.Errorf("generation 1 genotypes = %+v", g)
	}
	if res.FixationGen != 2 || !res.Fixed {
		t.Errorf("expected fixation at 2, got %d (fixed=%v)", res.FixationGen, res.Fixed)
	}
	if res.FixedAt != 1 {
		t.Errorf("expected absorption at 1, got %v", res.FixedAt)
	}
}

func TestSelectionPassesSelectedProbabilities(t *testing.T) {
	smp := &scriptedSampler{multinomial: [][]int{{25, 50, 25}}}
	_, err := Selection(Params{N: 100, Freq: 0.5, Generations: 1, Selection: 0.2, Dominance: 0.25}, smp)
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}

	want, _ := NewFitness(0.2, 0.25).Apply(HardyWeinberg(0.5))
	for i, p := range want.Slice() {
		if math.Abs(smp.lastProbs[i]-p) > 1e-12 {
			t.Errorf("probability %d = %v, want %v", i, smp.lastProbs[i], p)
		}
	}
}

func TestSelectionBadCounts(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
	}{
		{"wrong total", []int{1, 1, 1}},
		{"negative", []int{-1, 6, 5}},
		{"wrong arity", []int{5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			smp := &scriptedSampler{multinomial: [][]int{tt.counts}}
			_, err := Selection(Params{N: 10, Freq: 0.5, Generations: 5}, smp)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestSelectionStartsFixed(t *testing.T) {
	for _, freq := range []float64{0, 1} {
		res, err := Selection(Params{N: 30, Freq: freq, Generations: 10, Selection: 1, Dominance: 1}, expectedSampler{})
		if err != nil {
			t.Fatalf("freq %v: selection failed: %v", freq, err)
		}
		if res.FixationGen != 0 || !res.Fixed {
			t.Errorf("freq %v: expected fixation at 0, got %d", freq, res.FixationGen)
		}
		if res.Frequencies[0] != freq {
			t.Errorf("freq %v: recorded %v", freq, res.Frequencies[0])
		}
	}
}

func TestSelectionNeutralExpectation(t *testing.T) {
	res, err := Selection(Params{N: 1000, Freq: 0.5, Generations: 20}, expectedSampler{})
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}
	if len(res.Frequencies) != 20 || res.Fixed {
		t.Fatalf("expected 20 unfixed generations, got %d (fixed=%v)", len(res.Frequencies), res.Fixed)
	}
	for i, f := range res.Frequencies {
		if math.Abs(f-0.5) > 1e-9 {
			t.Errorf("generation %d frequency drifted to %v without sampling noise", i, f)
		}
	}
}
