package engine

import (
	"context"
	"sync"

	"github.com/agbru/aitken/internal/problems"
)

// ProgressObserver receives the consumed fraction of a run's budget, between
// 0 and 1. runIndex tells concurrent runs apart.
type ProgressObserver interface {
	Update(runIndex int, progress float64)
}

// ProgressSubject fans progress out to every registered observer, in
// registration order. It is safe for concurrent use.
type ProgressSubject struct {
	mu        sync.RWMutex
	observers []ProgressObserver
}

// NewProgressSubject returns a subject with observers already registered.
// Nil observers are skipped.
func NewProgressSubject(observers ...ProgressObserver) *ProgressSubject {
	s := &ProgressSubject{}
	for _, o := range observers {
		s.Register(o)
	}
	return s
}

// Register adds o. A nil observer is ignored.
func (s *ProgressSubject) Register(o ProgressObserver) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Notify forwards one progress value to every observer.
func (s *ProgressSubject) Notify(runIndex int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.Update(runIndex, progress)
	}
}

// AsProgressReporter binds runIndex so core runners only see a callback.
func (s *ProgressSubject) AsProgressReporter(runIndex int) ProgressReporter {
	return func(progress float64) { s.Notify(runIndex, progress) }
}

// ObservableRunner is a Runner that reports progress to a ProgressSubject
// instead of a channel. Runners built by NewRunner implement it.
type ObservableRunner interface {
	Runner
	RunWithObservers(ctx context.Context, subject *ProgressSubject, runIndex int, p problems.Problem, opts Options) (Outcome, error)
}

// RunObserved runs r with subject. Runners that cannot take a subject are run
// plainly and report completion once they succeed.
func RunObserved(ctx context.Context, r Runner, subject *ProgressSubject, runIndex int, p problems.Problem, opts Options) (Outcome, error) {
	if obs, ok := r.(ObservableRunner); ok {
		return obs.RunWithObservers(ctx, subject, runIndex, p, opts)
	}
	out, err := r.Run(ctx, nil, runIndex, p, opts)
	if err == nil && subject != nil {
		subject.Notify(runIndex, 1.0)
	}
	return out, err
}
