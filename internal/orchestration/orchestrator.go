// Package orchestration runs one or more runners on a problem concurrently,
// drives the progress display and turns the outcomes into the comparison
// summary, the budget sweep table and the process exit code.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/aitken/internal/cli"
	"github.com/agbru/aitken/internal/config"
	"github.com/agbru/aitken/internal/engine"
	apperrors "github.com/agbru/aitken/internal/errors"
	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/internal/ui"
	"github.com/agbru/aitken/pkg/models"
)

// RunResult is the outcome of one runner on one problem.
type RunResult struct {
	// Name is the runner name, e.g. "aitken".
	Name string
	// Outcome holds the estimate and the terms consumed. Under the fail
	// policy it is still set when Err is aitken.ErrDegenerate.
	Outcome engine.Outcome
	// Duration is the wall-clock time of the run.
	Duration time.Duration
	// Err is the error returned by the runner, if any.
	Err error
}

// Report converts r into its JSON report.
func (r RunResult) Report(p problems.Problem, opts engine.Options) models.AccelerationReport {
	return engine.NewReport(p, r.Name, r.Outcome, opts, r.Duration, r.Err)
}

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel, so runners rarely block on a slow display.
const ProgressBufferMultiplier = 5

// ExecuteRuns runs every runner on p concurrently and collects their results
// in the order of runners. Progress is rendered to out while they run.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - runners: The runners to execute.
//   - p: The problem to evaluate.
//   - opts: Tolerances, budget and policy shared by all runs.
//   - out: The io.Writer for displaying progress updates.
//   - observers: Extra progress observers, notified next to the display.
//
// Returns:
//   - []RunResult: One result per runner.
func ExecuteRuns(ctx context.Context, runners []engine.Runner, p problems.Problem, opts engine.Options, out io.Writer, observers ...engine.ProgressObserver) []RunResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]RunResult, len(runners))
	progressChan := make(chan engine.ProgressUpdate, len(runners)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(runners), out)

	subject := engine.NewProgressSubject(engine.NewChannelObserver(progressChan))
	for _, o := range observers {
		subject.Register(o)
	}

	for i, r := range runners {
		idx, runner := i, r
		g.Go(func() error {
			startTime := time.Now()
			outcome, err := engine.RunObserved(ctx, runner, subject, idx, p, opts)
			results[idx] = RunResult{
				Name: runner.Name(), Outcome: outcome, Duration: time.Since(startTime), Err: err,
			}
			// A failed run must not cancel the others.
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults prints a table comparing the runs on p, most
// accurate first, followed by the detailed result of the best run. When both
// the accelerated and the plain runner succeeded it also prints how many
// fewer terms acceleration needed.
//
// Parameters:
//   - results: The results to analyze. The slice is sorted in place.
//   - p: The problem that was evaluated.
//   - cfg: The application configuration.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []RunResult, p problems.Problem, cfg config.AppConfig, out io.Writer) int {
	absError := func(r RunResult) float64 {
		e := math.Abs(r.Outcome.Value - p.Limit)
		if math.IsNaN(e) {
			return math.Inf(1)
		}
		return e
	}
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		if ei, ej := absError(results[i]), absError(results[j]); ei != ej {
			return ei < ej
		}
		return results[i].Duration < results[j].Duration
	})

	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Comparison Summary (%s, limit %s) ---\n", p.Name, cli.FormatValue(p.Limit, cfg.Digits, cfg.Verbose))
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprint(tw, ui.HeaderRow("Runner", "Estimate", "Abs error", "Terms", "Duration", "Status"))

	for _, res := range results {
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			status = fmt.Sprintf("%s✅ %s%s", ui.ColorGreen(), runStatus(res.Outcome), ui.ColorReset())
			successCount++
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\t%d\t%s%s%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			cli.FormatValue(res.Outcome.Value, cfg.Digits, cfg.Verbose),
			cli.FormatError(math.Abs(res.Outcome.Value-p.Limit)),
			res.Outcome.Iterations,
			ui.ColorYellow(), duration, ui.ColorReset(),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No runner could complete the evaluation.\n")
		return apperrors.HandleRunError(firstError, 0, out, cli.CLIColorProvider{})
	}

	printTermSavings(results, out)

	fmt.Fprintf(out, "\nGlobal Status: Success.")
	best := results[0]
	cli.DisplayResult(best.Report(p, cfg.ToRunOptions()), cfg.Digits, cfg.Verbose, cfg.Details, out)
	return apperrors.ExitSuccess
}

// runStatus names the way a successful run ended.
func runStatus(out engine.Outcome) string {
	switch {
	case out.Degenerate:
		return "Stopped (degenerate)"
	case out.Converged:
		return "Converged"
	default:
		return "Budget exhausted"
	}
}

// printTermSavings compares the terms consumed by the aitken and direct
// runners when both succeeded and acceleration actually used fewer terms.
func printTermSavings(results []RunResult, out io.Writer) {
	var accelerated, plain *RunResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		switch results[i].Name {
		case "aitken":
			accelerated = &results[i]
		case "direct":
			plain = &results[i]
		}
	}
	if accelerated == nil || plain == nil || accelerated.Outcome.Iterations == 0 ||
		accelerated.Outcome.Iterations >= plain.Outcome.Iterations {
		return
	}
	ratio := float64(plain.Outcome.Iterations) / float64(accelerated.Outcome.Iterations)
	fmt.Fprintf(out, "\nAcceleration: %s%s%s terms instead of %s%s%s (%s%.1fx%s fewer).\n",
		ui.ColorGreen(), strconv.FormatUint(accelerated.Outcome.Iterations, 10), ui.ColorReset(),
		ui.ColorYellow(), strconv.FormatUint(plain.Outcome.Iterations, 10), ui.ColorReset(),
		ui.ColorCyan(), ratio, ui.ColorReset())
}

// RunSweep evaluates p with the aitken and direct runners over the budgets
// base^1..base^k configured in cfg.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - factory: The factory providing the "aitken" and "direct" runners.
//   - p: The problem to evaluate.
//   - cfg: The application configuration.
//
// Returns:
//   - models.SweepReport: One row per budget.
//   - error: An error if a runner is missing or a run failed.
func RunSweep(ctx context.Context, factory engine.RunnerFactory, p problems.Problem, cfg config.AppConfig) (models.SweepReport, error) {
	accelerated, err := factory.Get("aitken")
	if err != nil {
		return models.SweepReport{}, err
	}
	plain, err := factory.Get("direct")
	if err != nil {
		return models.SweepReport{}, err
	}
	opts := cfg.ToRunOptions()
	rows, err := engine.Sweep(ctx, accelerated, plain, p, engine.SweepBudgets(cfg.SweepBase, cfg.SweepMax), opts.Policy)
	if err != nil {
		return models.SweepReport{}, err
	}
	return models.SweepReport{Problem: p.Name, Limit: models.Float(p.Limit), Rows: rows}, nil
}

// ExecuteSweep runs RunSweep and writes the table, or JSON when
// cfg.JSONOutput is set.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func ExecuteSweep(ctx context.Context, factory engine.RunnerFactory, p problems.Problem, cfg config.AppConfig, out io.Writer) int {
	start := time.Now()
	report, err := RunSweep(ctx, factory, p, cfg)
	if err != nil {
		var unknown *engine.UnknownRunnerError
		if errors.As(err, &unknown) {
			fmt.Fprintf(out, "Sweep unavailable: %v\n", err)
			return apperrors.ExitErrorConfig
		}
		return apperrors.HandleRunError(err, time.Since(start), out, cli.CLIColorProvider{})
	}
	if cfg.JSONOutput {
		if err := cli.WriteJSON(out, report); err != nil {
			fmt.Fprintf(out, "Error encoding JSON: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}
	cli.DisplaySweep(report, cfg.Digits, out)
	return apperrors.ExitSuccess
}
