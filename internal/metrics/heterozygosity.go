package metrics

// Heterozygosity is the mean expected heterozygosity 2p(1-p) across the
// observed generations.
type Heterozygosity struct {
	sum     float64
	samples int
}

func NewHeterozygosity() *Heterozygosity {
	return &Heterozygosity{}
}

func (h *Heterozygosity) Name() string { return "heterozygosity" }

func (h *Heterozygosity) Observe(generation int, freq float64) {
	h.sum += 2 * freq * (1 - freq)
	h.samples++
}

func (h *Heterozygosity) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return h.sum / float64(h.samples)
}

func (h *Heterozygosity) Reset() {
	h.sum = 0
	h.samples = 0
}
