package metrics

type FinalFrequency struct {
	last    float64
	samples int
}

func NewFinalFrequency() *FinalFrequency {
	return &FinalFrequency{}
}

func (f *FinalFrequency) Name() string { return "final_frequency" }

func (f *FinalFrequency) Observe(generation int, freq float64) {
	f.last = freq
	f.samples++
}

func (f *FinalFrequency) Value() float64 { return f.last }

func (f *FinalFrequency) Reset() {
	f.last = 0
	f.samples = 0
}

// MeanFrequency averages the frequency over padTo generations. A
// trajectory that stopped early at fixation is extended with its last
// recorded value, so runs of different length are comparable.
type MeanFrequency struct {
	padTo   int
	sum     float64
	last    float64
	samples int
}

func NewMeanFrequency(padTo int) *MeanFrequency {
	return &MeanFrequency{padTo: padTo}
}

func (m *MeanFrequency) Name() string { return "mean_frequency" }

func (m *MeanFrequency) Observe(generation int, freq float64) {
	m.sum += freq
	m.last = freq
	m.samples++
}

func (m *MeanFrequency) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	total := m.samples
	sum := m.sum
	if m.padTo > total {
		sum += m.last * float64(m.padTo-total)
		total = m.padTo
	}
	return sum / float64(total)
}

func (m *MeanFrequency) Reset() {
	m.sum = 0
	m.last = 0
	m.samples = 0
}
