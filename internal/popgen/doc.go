// Package popgen provides the stochastic engine for single-locus,
// two-allele population genetics in finite populations.
//
// Two independent models are implemented:
//
//   - [Drift]: neutral Wright-Fisher sampling. Each generation draws
//     Binomial(N, p)/N as the next allele frequency.
//   - [Selection]: viability selection with dominance. Genotype
//     frequencies are weighted by fitness and the next generation is a
//     single Multinomial(N, p') draw over (AA, Aa, aa).
//
// Both stop early once the allele frequency reaches exactly 0 or 1.
//
// # Randomness
//
// The engine never touches a global generator. Every call receives a
// [Sampler]; callers that run replicates concurrently give each goroutine
// its own sampler (see the sampling package).
//
//	smp := sampling.New(42)
//	res, err := popgen.Drift(popgen.Params{N: 100, Freq: 0.5, Generations: 1000}, smp)
//
// # Fixation generation
//
// FixationGen equals Generations-1 when the cap was reached without
// fixation, which is indistinguishable from fixing exactly at the last
// generation. Use the Fixed field of the result instead of comparing
// against Generations-1.
package popgen
