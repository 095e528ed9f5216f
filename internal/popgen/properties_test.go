package popgen_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gendrift/internal/popgen"
	"github.com/san-kum/gendrift/internal/sampling"
)

var _ = Describe("Drift", func() {
	DescribeTable("keeps trajectories well formed",
		func(n int, freq float64, g int, seed uint64) {
			res, err := popgen.Drift(popgen.Params{N: n, Freq: freq, Generations: g}, sampling.New(seed))
			Expect(err).NotTo(HaveOccurred())

			Expect(len(res.Trajectory)).To(BeNumerically("<=", g))
			Expect(res.Trajectory).NotTo(BeEmpty())
			for i, pt := range res.Trajectory {
				Expect(pt.Generation).To(Equal(i))
				Expect(pt.Frequency).To(BeNumerically(">=", 0))
				Expect(pt.Frequency).To(BeNumerically("<=", 1))
			}
			Expect(res.FixationGen).To(Equal(len(res.Trajectory) - 1))
		},
		Entry("small population", 10, 0.5, 500, uint64(1)),
		Entry("rare allele", 50, 0.05, 200, uint64(2)),
		Entry("common allele", 200, 0.9, 300, uint64(3)),
		Entry("large population short cap", 10000, 0.5, 20, uint64(4)),
	)

	It("fixes at generation 0 when starting fixed", func() {
		for _, freq := range []float64{0, 1} {
			res, err := popgen.Drift(popgen.Params{N: 100, Freq: freq, Generations: 50}, sampling.New(9))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.FixationGen).To(Equal(0))
			Expect(res.Fixed).To(BeTrue())
		}
	})

	It("records exactly one point with a single generation", func() {
		res, err := popgen.Drift(popgen.Params{N: 100, Freq: 0.5, Generations: 1}, sampling.New(10))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Trajectory).To(HaveLen(1))
	})

	It("is reproducible for a fixed seed", func() {
		p := popgen.Params{N: 100, Freq: 0.5, Generations: 1000}
		a, err := popgen.Drift(p, sampling.New(1810))
		Expect(err).NotTo(HaveOccurred())
		b, err := popgen.Drift(p, sampling.New(1810))
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Trajectory).To(Equal(b.Trajectory))
		Expect(a.FixationGen).To(Equal(b.FixationGen))
	})

	It("fixes A with probability equal to its starting frequency", func() {
		const reps = 4000
		fixedA := 0
		for i := 0; i < reps; i++ {
			res, err := popgen.Drift(popgen.Params{N: 2, Freq: 0.5, Generations: 500}, sampling.New(uint64(i)))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Fixed).To(BeTrue())
			Expect(res.FixedAt).To(Or(Equal(0.0), Equal(1.0)))
			if res.FixedAt == 1 {
				fixedA++
			}
		}
		Expect(float64(fixedA) / reps).To(BeNumerically("~", 0.5, 0.05))
	})

	It("fixes a single individual immediately", func() {
		for seed := uint64(0); seed < 20; seed++ {
			res, err := popgen.Drift(popgen.Params{N: 1, Freq: 0.5, Generations: 10}, sampling.New(seed))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.FixationGen).To(Equal(0))
		}
	})
})

var _ = Describe("Selection", func() {
	It("keeps every genotype triple normalised", func() {
		p := popgen.Params{N: 1000, Freq: 0.5, Generations: 200, Selection: 0.2, Dominance: 0.25}
		res, err := popgen.Selection(p, sampling.New(5))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Genotypes).To(HaveLen(len(res.Frequencies)))

		for i, g := range res.Genotypes {
			Expect(g.Sum()).To(BeNumerically("~", 1.0, 1e-9))
			for _, v := range g.Slice() {
				Expect(v).To(BeNumerically(">=", 0))
				Expect(v).To(BeNumerically("<=", 1))
			}
			Expect(res.Frequencies[i]).To(BeNumerically(">=", 0))
			Expect(res.Frequencies[i]).To(BeNumerically("<=", 1))
		}
		Expect(res.FixationGen).To(Equal(len(res.Frequencies) - 1))
	})

	It("never reports degenerate fitness for coefficients in [0,1]", func() {
		grid := []float64{0, 0.25, 0.5, 0.75, 1}
		seed := uint64(100)
		for _, freq := range grid {
			for _, s := range grid {
				for _, h := range grid {
					p := popgen.Params{N: 50, Freq: freq, Generations: 100, Selection: s, Dominance: h}
					_, err := popgen.Selection(p, sampling.New(seed))
					seed++
					Expect(errors.Is(err, popgen.ErrDegenerateFitness)).To(BeFalse(),
						"freq=%v s=%v h=%v", freq, s, h)
					Expect(err).NotTo(HaveOccurred())
				}
			}
		}
	})

	It("favours the A allele under directional selection", func() {
		p := popgen.Params{N: 500, Freq: 0.5, Generations: 300, Selection: 0.3, Dominance: 0.5}
		fixedA := 0
		for seed := uint64(0); seed < 40; seed++ {
			res, err := popgen.Selection(p, sampling.New(seed))
			Expect(err).NotTo(HaveOccurred())
			if res.Frequencies[len(res.Frequencies)-1] == 1 {
				fixedA++
			}
		}
		Expect(fixedA).To(BeNumerically(">=", 38))
	})

	It("matches neutral drift when s = 0", func() {
		const reps = 2000
		p := popgen.Params{N: 40, Freq: 0.3, Generations: 30, Dominance: 0.7}

		driftFinal := make([]float64, reps)
		selFinal := make([]float64, reps)
		for i := 0; i < reps; i++ {
			d, err := popgen.Drift(p, sampling.New(uint64(i)))
			Expect(err).NotTo(HaveOccurred())
			driftFinal[i] = finalDrift(d)

			s, err := popgen.Selection(p, sampling.New(uint64(10000+i)))
			Expect(err).NotTo(HaveOccurred())
			selFinal[i] = s.Frequencies[len(s.Frequencies)-1]
		}

		// Both are martingales, so the mean stays at the starting frequency.
		Expect(stat.Mean(driftFinal, nil)).To(BeNumerically("~", 0.3, 0.05))
		Expect(stat.Mean(selFinal, nil)).To(BeNumerically("~", 0.3, 0.05))
	})
})

// finalDrift returns the frequency the run ended on. Drift does not record
// the fixed value, so a fixed run reports the boundary it was absorbed at.
func finalDrift(res *popgen.DriftResult) float64 {
	if res.Fixed {
		return res.FixedAt
	}
	return res.Trajectory[len(res.Trajectory)-1].Frequency
}
