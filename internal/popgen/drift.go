package popgen

// Drift simulates neutral Wright-Fisher drift. Generation i records p_i and
// then draws p_{i+1} = Binomial(N, p_i)/N. When p_{i+1} is exactly 0 or 1
// the run stops and generation i is reported as the fixation generation;
// the fixed value itself is not recorded.
func Drift(p Params, smp Sampler) (*DriftResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if smp == nil {
		return nil, invalidf("nil sampler")
	}

	res := &DriftResult{
		Trajectory: make(Trajectory, 0, min(p.Generations, 4096)),
	}

	n := float64(p.N)
	freq := p.Freq
	for i := 0; i < p.Generations; i++ {
		res.Trajectory = append(res.Trajectory, Point{Generation: i, Frequency: freq})
		res.FixationGen = i

		count := smp.Binomial(p.N, freq)
		if count < 0 || count > p.N {
			return nil, &SimulationError{
				Model:      ModelDrift,
				Generation: i,
				Err:        invalidf("sampler returned %d successes out of %d", count, p.N),
			}
		}

		next := float64(count) / n
		if isFixed(next) {
			res.Fixed = true
			res.FixedAt = next
			break
		}
		freq = next
	}

	return res, nil
}
