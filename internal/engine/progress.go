package engine

import (
	"context"

	"github.com/agbru/aitken/pkg/aitken"
)

// ProgressUpdate is a data transfer object (DTO) that encapsulates the
// progress state of a run. It is sent over a channel from the runner to the
// user interface to provide asynchronous progress updates.
type ProgressUpdate struct {
	// RunnerIndex identifies the runner instance, allowing the UI to
	// distinguish between concurrent runs.
	RunnerIndex int
	// Value is the fraction of the budget consumed, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback core runners use to report progress
// without being coupled to the channel-based plumbing of the application.
type ProgressReporter func(progress float64)

// meter counts consumed terms for one run. It reports progress as the
// consumed fraction of the budget and polls the context every
// CancellationCheckInterval terms. Once the context is done, the tolerance
// it wraps accepts the next estimate so the run returns promptly.
type meter struct {
	ctx          context.Context
	reporter     ProgressReporter
	budget       uint64
	consumed     uint64
	lastReported float64
	err          error
}

func newMeter(ctx context.Context, reporter ProgressReporter, budget uint64) *meter {
	if reporter == nil {
		reporter = func(float64) {}
	}
	return &meter{ctx: ctx, reporter: reporter, budget: budget}
}

// tick is the per-term hook.
func (m *meter) tick() {
	m.consumed++
	if m.consumed%CancellationCheckInterval != 0 {
		return
	}
	if m.err == nil {
		m.err = m.ctx.Err()
	}
	if m.budget == 0 {
		return
	}
	progress := float64(m.consumed) / float64(m.budget)
	if progress-m.lastReported >= ProgressReportThreshold {
		m.reporter(progress)
		m.lastReported = progress
	}
}

// guard wraps tol so that a cancelled run stops at the next comparison.
func (m *meter) guard(tol aitken.Tolerance[float64]) aitken.Tolerance[float64] {
	return func(prev, next float64) bool {
		return m.err != nil || tol(prev, next)
	}
}
