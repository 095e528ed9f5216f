package metrics

// Metric accumulates a scalar over one allele-frequency trajectory.
type Metric interface {
	Name() string
	Observe(generation int, freq float64)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every replicate of a run with
// the given generation cap.
func Defaults(generations int) []Metric {
	return []Metric{
		NewFinalFrequency(),
		NewMeanFrequency(generations),
		NewHeterozygosity(),
		NewFixationGeneration(),
	}
}

// Evaluate resets ms, feeds them freqs in generation order and returns
// their values keyed by name.
func Evaluate(ms []Metric, freqs []float64) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for gen, f := range freqs {
			m.Observe(gen, f)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
