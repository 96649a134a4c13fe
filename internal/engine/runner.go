// Package engine runs problems of the catalogue through the accelerator or
// through plain evaluation. It exposes a `Runner` interface so that the
// orchestration layer, the HTTP server and the REPL can drive either strategy
// interchangeably, and wraps every run with tracing, metrics and progress
// reporting.
package engine

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/pkg/aitken"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aitken_runs_total",
			Help: "The total number of runs processed, by runner and outcome",
		},
		[]string{"runner", "status"},
	)
	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "aitken_run_duration_seconds",
			Help: "The duration of runs in seconds",
		},
		[]string{"runner"},
	)
	runTerms = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aitken_run_terms",
			Help:    "The number of terms consumed per run",
			Buckets: prometheus.ExponentialBuckets(4, 4, 14),
		},
		[]string{"runner"},
	)
)

// Outcome is the result of one run.
type Outcome = aitken.Result[float64]

// Runner defines the public interface for evaluating a problem.
type Runner interface {
	// Run evaluates the problem and returns its estimate. It is safe for
	// concurrent execution and supports cancellation through ctx. Progress
	// updates are sent asynchronously to progressChan.
	//
	// Parameters:
	//   - ctx: The context for managing cancellation and deadlines.
	//   - progressChan: The channel for sending progress updates.
	//   - runIndex: A unique index for the runner instance.
	//   - p: The problem to evaluate.
	//   - opts: Tolerance, budget and policy for the run.
	//
	// Returns:
	//   - Outcome: The estimate and the number of terms consumed.
	//   - error: An error if one occurred (e.g., context cancellation).
	Run(ctx context.Context, progressChan chan<- ProgressUpdate, runIndex int, p problems.Problem, opts Options) (Outcome, error)

	// Name returns the name of the strategy (e.g., "aitken").
	Name() string
}

// coreRunner defines the internal interface of a pure evaluation strategy.
type coreRunner interface {
	RunCore(ctx context.Context, reporter ProgressReporter, p problems.Problem, opts Options) (Outcome, error)
	Name() string
}

// InstrumentedRunner implements Runner using the Decorator pattern: it wraps
// a coreRunner and adds tracing, metrics, debug logging and the adaptation of
// progress reporting.
type InstrumentedRunner struct {
	core coreRunner
}

// NewRunner wraps core into an InstrumentedRunner. It panics if core is nil.
//
// Parameters:
//   - core: The strategy to wrap.
//
// Returns:
//   - Runner: A new InstrumentedRunner.
func NewRunner(core coreRunner) Runner {
	if core == nil {
		panic("engine: the `coreRunner` implementation cannot be nil")
	}
	return &InstrumentedRunner{core: core}
}

// Name returns the name of the wrapped strategy.
func (r *InstrumentedRunner) Name() string {
	return r.core.Name()
}

var _ ObservableRunner = (*InstrumentedRunner)(nil)

// Run adapts progressChan into a ProgressSubject and delegates to
// RunWithObservers.
func (r *InstrumentedRunner) Run(ctx context.Context, progressChan chan<- ProgressUpdate, runIndex int, p problems.Problem, opts Options) (Outcome, error) {
	var subject *ProgressSubject
	if progressChan != nil {
		subject = NewProgressSubject(NewChannelObserver(progressChan))
	}
	return r.RunWithObservers(ctx, subject, runIndex, p, opts)
}

// RunWithObservers executes the run with observer-based progress reporting.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - subject: The progress subject with registered observers. If nil, progress is ignored.
//   - runIndex: A unique index for the runner instance.
//   - p: The problem to evaluate.
//   - opts: Tolerance, budget and policy for the run.
//
// Returns:
//   - Outcome: The estimate and the number of terms consumed.
//   - error: An error if one occurred.
func (r *InstrumentedRunner) RunWithObservers(ctx context.Context, subject *ProgressSubject, runIndex int, p problems.Problem, opts Options) (out Outcome, err error) {
	tracer := otel.Tracer("aitken")
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	opts = normalizeOptions(opts)
	name := r.core.Name()
	span.SetAttributes(
		attribute.String("runner", name),
		attribute.String("problem", p.Name),
		attribute.Int64("budget", int64(min(opts.Budget, uint64(1<<63-1)))),
	)

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := statusOf(out, err)
		runsTotal.WithLabelValues(name, status).Inc()
		runDuration.WithLabelValues(name).Observe(duration)
		runTerms.WithLabelValues(name).Observe(float64(out.Iterations))
		span.SetAttributes(
			attribute.String("status", status),
			attribute.Int64("terms", int64(out.Iterations)),
		)

		log.Debug().
			Str("runner", name).
			Str("problem", p.Name).
			Uint64("budget", opts.Budget).
			Uint64("terms", out.Iterations).
			Float64("duration", duration).
			Str("status", status).
			Msg("run completed")
	}()

	var reporter ProgressReporter
	if subject != nil {
		reporter = subject.AsProgressReporter(runIndex)
	} else {
		reporter = func(float64) {}
	}

	out, err = r.core.RunCore(ctx, reporter, p, opts)
	if err == nil {
		reporter(1.0)
	}
	return out, err
}

// statusOf classifies a finished run for metrics and logs.
func statusOf(out Outcome, err error) string {
	switch {
	case err != nil:
		return "error"
	case out.Degenerate:
		return "degenerate"
	case out.Converged:
		return "converged"
	default:
		return "exhausted"
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Core Strategies
// ─────────────────────────────────────────────────────────────────────────────

// AitkenRunner evaluates problems with Aitken's delta-squared process.
type AitkenRunner struct{}

// Name returns "aitken".
func (AitkenRunner) Name() string { return "aitken" }

// RunCore dispatches to the accelerator form matching the problem.
func (AitkenRunner) RunCore(ctx context.Context, reporter ProgressReporter, p problems.Problem, opts Options) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	m := newMeter(ctx, reporter, opts.Budget)
	acc := aitken.New[float64](aitken.WithPolicy(opts.Policy))
	out, err := problems.Accelerate(acc, p.Observe(m.tick), m.guard(opts.Tolerance()), opts.Budget)
	if m.err != nil {
		return out, m.err
	}
	return out, err
}

// DirectRunner evaluates problems by plain summation or iteration. It is the
// baseline the accelerated runs are compared against.
type DirectRunner struct{}

// Name returns "direct".
func (DirectRunner) Name() string { return "direct" }

// RunCore sums or iterates terms until the tolerance accepts two consecutive
// values or the budget is consumed.
func (DirectRunner) RunCore(ctx context.Context, reporter ProgressReporter, p problems.Problem, opts Options) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	m := newMeter(ctx, reporter, opts.Budget)
	out := problems.Direct(p.Observe(m.tick), m.guard(opts.Tolerance()), opts.Budget)
	if m.err != nil {
		return out, m.err
	}
	return out, nil
}
