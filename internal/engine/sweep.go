package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"

	apperrors "github.com/agbru/aitken/internal/errors"
	"github.com/agbru/aitken/internal/parallel"
	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/pkg/aitken"
	"github.com/agbru/aitken/pkg/models"
)

// SweepBudgets returns base^1, base^2, ..., base^maxExp, stopping early if a
// power would overflow uint64. It returns nil when base < 2 or maxExp < 1.
func SweepBudgets(base uint64, maxExp int) []uint64 {
	if base < 2 || maxExp < 1 {
		return nil
	}
	budgets := make([]uint64, 0, maxExp)
	b := uint64(1)
	for k := 1; k <= maxExp; k++ {
		hi, lo := bits.Mul64(b, base)
		if hi != 0 {
			break
		}
		b = lo
		budgets = append(budgets, b)
	}
	return budgets
}

// Sweep runs p once per budget with no tolerance, through both the
// accelerated and the plain runner, and returns one row per budget in input
// order. Rows are computed concurrently. A degenerate step under the Fail
// policy still yields a row holding the last good estimate; any other error
// aborts the sweep.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - accelerated: The runner producing the accelerated values.
//   - plain: The runner producing the plain values.
//   - p: The problem to evaluate.
//   - budgets: The budgets, one row each.
//   - policy: The degenerate-step policy of the accelerated runs.
//
// Returns:
//   - []models.SweepRow: The rows, in the order of budgets.
//   - error: The error of the smallest failing budget, if any.
func Sweep(ctx context.Context, accelerated, plain Runner, p problems.Problem, budgets []uint64, policy aitken.Policy) ([]models.SweepRow, error) {
	rows := make([]models.SweepRow, len(budgets))
	err := parallel.ForEach(len(budgets), 0, func(i int) error {
		// Zero tolerances never accept, so every run consumes its budget.
		opts := Options{Budget: budgets[i], Policy: policy}

		acc, err := accelerated.Run(ctx, nil, i, p, opts)
		if err != nil && !errors.Is(err, aitken.ErrDegenerate) {
			return apperrors.NewAccelerationError(accelerated.Name(), p.Name, err)
		}
		direct, err := plain.Run(ctx, nil, i, p, opts)
		if err != nil {
			return apperrors.NewAccelerationError(plain.Name(), p.Name, err)
		}

		rows[i] = models.SweepRow{
			Budget:           budgets[i],
			Accelerated:      models.Float(acc.Value),
			Plain:            models.Float(direct.Value),
			AcceleratedError: models.Float(math.Abs(acc.Value - p.Limit)),
			PlainError:       models.Float(math.Abs(direct.Value - p.Limit)),
		}
		return nil
	})
	if ie := (*parallel.IndexError)(nil); errors.As(err, &ie) {
		return nil, fmt.Errorf("budget %d: %w", budgets[ie.Index], ie.Err)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}
