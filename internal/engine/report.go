package engine

import (
	"math"
	"time"

	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/pkg/models"
)

// NewReport builds the JSON report of a finished run.
//
// Parameters:
//   - p: The problem that was evaluated.
//   - runner: The name of the runner used.
//   - out: The outcome of the run.
//   - opts: The options the run was given, normalized or not.
//   - duration: The wall-clock time of the run.
//   - err: The error returned by the run, if any.
//
// Returns:
//   - models.AccelerationReport: The report, with Error set when err is not nil.
func NewReport(p problems.Problem, runner string, out Outcome, opts Options, duration time.Duration, err error) models.AccelerationReport {
	opts = normalizeOptions(opts)
	report := models.AccelerationReport{
		Problem:    p.Name,
		Runner:     runner,
		Value:      models.Float(out.Value),
		Limit:      models.Float(p.Limit),
		AbsError:   models.Float(math.Abs(out.Value - p.Limit)),
		Iterations: out.Iterations,
		Converged:  out.Converged,
		Degenerate: out.Degenerate,
		Budget:     opts.Budget,
		Policy:     opts.Policy.String(),
		Duration:   duration.String(),
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}
