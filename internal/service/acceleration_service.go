package service

//go:generate mockgen -source=acceleration_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"

	"github.com/agbru/aitken/internal/engine"
	"github.com/agbru/aitken/internal/problems"
)

var (
	// ErrMaxBudgetExceeded is returned when a request asks for more terms
	// than the configured maximum.
	ErrMaxBudgetExceeded = errors.New("maximum budget exceeded")
)

// Service defines the interface for acceleration services.
// This abstraction enables dependency injection and easier testing/mocking.
type Service interface {
	// Accelerate evaluates a catalogue problem with the named runner.
	//
	// Parameters:
	//   - ctx: The context for cancellation.
	//   - problem: The name of the catalogue problem.
	//   - runner: The name of the runner to use.
	//   - opts: Tolerance, budget and policy for the run.
	//
	// Returns:
	//   - engine.Outcome: The estimate and the number of terms consumed.
	//   - error: An error if validation or the run fails.
	Accelerate(ctx context.Context, problem, runner string, opts engine.Options) (engine.Outcome, error)

	// Problems lists the catalogue entries the service can evaluate.
	Problems() []problems.Problem
}

// AccelerationService resolves problems and runners by name and executes
// runs under a budget ceiling. Implements the Service interface.
type AccelerationService struct {
	factory   engine.RunnerFactory
	registry  *problems.Registry
	maxBudget uint64
	observers []engine.ProgressObserver
}

// Ensure AccelerationService implements Service interface.
var _ Service = (*AccelerationService)(nil)

// NewAccelerationService creates a new instance of AccelerationService.
//
// Parameters:
//   - factory: The factory to retrieve runners from.
//   - registry: The problem catalogue. If nil, the global registry is used.
//   - maxBudget: The maximum allowed budget (0 for no limit).
//   - observers: Progress observers attached to every run. Without any, the
//     run progress is exported to the aitken_run_progress gauge.
func NewAccelerationService(factory engine.RunnerFactory, registry *problems.Registry, maxBudget uint64, observers ...engine.ProgressObserver) *AccelerationService {
	if registry == nil {
		registry = problems.Global()
	}
	if len(observers) == 0 {
		observers = []engine.ProgressObserver{engine.NewMetricsObserver()}
	}
	return &AccelerationService{
		factory:   factory,
		registry:  registry,
		maxBudget: maxBudget,
		observers: observers,
	}
}

// Accelerate validates the request, resolves the problem and runner and
// executes the run, reporting progress to the service observers.
func (s *AccelerationService) Accelerate(ctx context.Context, problem, runner string, opts engine.Options) (engine.Outcome, error) {
	if s.maxBudget > 0 && opts.Budget > s.maxBudget {
		return engine.Outcome{}, ErrMaxBudgetExceeded
	}

	p, err := s.registry.Get(problem)
	if err != nil {
		return engine.Outcome{}, err
	}

	r, err := s.factory.Get(runner)
	if err != nil {
		return engine.Outcome{}, err
	}

	return engine.RunObserved(ctx, r, engine.NewProgressSubject(s.observers...), 0, p, opts)
}

// Problems lists the catalogue sorted by name.
func (s *AccelerationService) Problems() []problems.Problem {
	return s.registry.All()
}
