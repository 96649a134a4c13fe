package engine

import "github.com/agbru/aitken/pkg/aitken"

// Options configures a run.
type Options struct {
	// AbsTolerance is the absolute bound of the convergence predicate.
	AbsTolerance float64
	// RelTolerance is the relative bound of the convergence predicate.
	RelTolerance float64
	// Budget caps the number of terms consumed. Zero selects DefaultBudget.
	Budget uint64
	// Policy selects how degenerate steps are handled by the accelerated runner.
	Policy aitken.Policy
}

// Tolerance returns the |x-y| < abs || |x/y-1| < rel predicate described by o.
// With both bounds at zero nothing is ever accepted and the run consumes the
// whole budget.
func (o Options) Tolerance() aitken.Tolerance[float64] {
	return aitken.AbsOrRel[float64](o.AbsTolerance, o.RelTolerance)
}

// normalizeOptions returns a copy of opts with default values filled in for
// zero values.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.Budget == 0 {
		normalized.Budget = DefaultBudget
	}
	return normalized
}
