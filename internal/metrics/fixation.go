package metrics

// FixationGeneration reports the last generation observed, which is where
// a trajectory that stopped at fixation ended.
type FixationGeneration struct {
	last    int
	samples int
}

func NewFixationGeneration() *FixationGeneration {
	return &FixationGeneration{}
}

func (f *FixationGeneration) Name() string { return "fixation_generation" }

func (f *FixationGeneration) Observe(generation int, freq float64) {
	f.last = generation
	f.samples++
}

func (f *FixationGeneration) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return float64(f.last)
}

func (f *FixationGeneration) Reset() {
	f.last = 0
	f.samples = 0
}
