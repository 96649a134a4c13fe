package engine

import (
	"context"
	"maps"
	"slices"

	"github.com/agbru/aitken/internal/problems"
)

// MockRunner is a configurable Runner for tests in other packages.
type MockRunner struct {
	RunnerName string
	Outcome    Outcome
	Err        error
	Fn         func(ctx context.Context, p problems.Problem, opts Options) (Outcome, error)
}

// Name returns RunnerName, or "mock" when it is empty.
func (m *MockRunner) Name() string {
	if m.RunnerName == "" {
		return "mock"
	}
	return m.RunnerName
}

// Run returns the pre-configured Outcome and Err, or calls Fn if provided.
func (m *MockRunner) Run(ctx context.Context, progressChan chan<- ProgressUpdate, runIndex int, p problems.Problem, opts Options) (Outcome, error) {
	if m.Fn != nil {
		return m.Fn(ctx, p, opts)
	}
	if progressChan != nil {
		progressChan <- ProgressUpdate{RunnerIndex: runIndex, Value: 1.0}
	}
	return m.Outcome, m.Err
}

// TestFactory is a RunnerFactory holding a fixed set of runners, for tests
// that need mock runners.
type TestFactory struct {
	runners map[string]Runner
}

// NewTestFactory creates a factory pre-populated with runners.
func NewTestFactory(runners map[string]Runner) *TestFactory {
	if runners == nil {
		runners = make(map[string]Runner)
	}
	return &TestFactory{runners: runners}
}

// Create returns the runner by name.
func (f *TestFactory) Create(name string) (Runner, error) {
	return f.Get(name)
}

// Get returns the runner by name.
func (f *TestFactory) Get(name string) (Runner, error) {
	r, ok := f.runners[name]
	if !ok {
		return nil, &UnknownRunnerError{Name: name}
	}
	return r, nil
}

// List returns all registered runner names, sorted.
func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.runners))
	for name := range f.runners {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register is a no-op: runners are provided at construction.
func (f *TestFactory) Register(name string, creator func() coreRunner) error {
	return nil
}

// GetAll returns all runners.
func (f *TestFactory) GetAll() map[string]Runner {
	return maps.Clone(f.runners)
}
