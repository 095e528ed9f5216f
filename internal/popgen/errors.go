package popgen

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidParameter indicates a population size, generation cap,
	// frequency or sampling probability outside its valid range.
	ErrInvalidParameter = errors.New("popgen: invalid parameter")

	// ErrDegenerateFitness indicates a mean fitness of zero, which leaves
	// the post-selection genotype proportions undefined.
	ErrDegenerateFitness = errors.New("popgen: degenerate mean fitness")
)

// SimulationError wraps a failure raised mid-run with the generation it
// happened in.
type SimulationError struct {
	Model      string
	Generation int
	Err        error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s: generation %d: %v", e.Model, e.Generation, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}
