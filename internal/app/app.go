package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agbru/aitken/internal/cli"
	"github.com/agbru/aitken/internal/config"
	"github.com/agbru/aitken/internal/engine"
	apperrors "github.com/agbru/aitken/internal/errors"
	"github.com/agbru/aitken/internal/orchestration"
	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/internal/server"
	"github.com/agbru/aitken/internal/ui"
	"github.com/agbru/aitken/pkg/models"
)

// Application represents the aitken application instance.
// It encapsulates the configuration and provides methods to run
// the application in its various modes (CLI, sweep, server, REPL).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides the runners.
	Factory engine.RunnerFactory
	// Problems is the catalogue problems are looked up in.
	Problems *problems.Registry
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := engine.GlobalFactory()
	registry := problems.Global()

	programName := "aitken"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List(), registry.List())
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(logLevel(cfg))

	return &Application{
		Config:    cfg,
		Factory:   factory,
		Problems:  registry,
		ErrWriter: errWriter,
	}, nil
}

// logLevel keeps the engine debug records off stderr unless the details
// mode was asked for.
func logLevel(cfg config.AppConfig) zerolog.Level {
	if cfg.Details {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Run executes the application based on the configured mode.
// It dispatches to the appropriate handler (completion, listing, server,
// REPL, sweep or single/comparison run).
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Problems == nil {
		a.Problems = problems.Global()
	}

	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	// Respects --no-color and the NO_COLOR environment variable.
	ui.InitTheme(a.Config.NoColor)

	if a.Config.ListProblems {
		return a.runList(out)
	}
	if a.Config.ServerMode {
		return a.runServer()
	}
	if a.Config.Interactive {
		return a.runREPL()
	}
	if a.Config.Sweep {
		return a.runSweep(ctx, out)
	}
	return a.runCalculate(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List(), a.Problems.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runList prints the problem catalogue as a table, or as JSON.
func (a *Application) runList(out io.Writer) int {
	all := a.Problems.All()
	if a.Config.JSONOutput {
		infos := make([]models.ProblemInfo, len(all))
		for i, p := range all {
			infos[i] = p.Info()
		}
		if err := cli.WriteJSON(out, infos); err != nil {
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprint(tw, ui.HeaderRow("Problem", "Kind", "Form", "Limit", "Description"))
	for _, p := range all {
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\t%s\t%s\n",
			ui.ColorBlue(), p.Name, ui.ColorReset(), p.Kind, p.Form(),
			cli.FormatValue(p.Limit, a.Config.Digits, false), p.Title)
	}
	if err := tw.Flush(); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runServer starts the HTTP server mode.
func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive REPL mode.
func (a *Application) runREPL() int {
	repl := cli.NewREPL(a.Factory.GetAll(), a.Problems, cli.REPLConfig{
		DefaultAlgo:    a.Config.Algo,
		DefaultProblem: a.Config.Problem,
		Options:        a.Config.ToRunOptions(),
		Digits:         a.Config.Digits,
		Timeout:        a.Config.Timeout,
		SweepBase:      a.Config.SweepBase,
		SweepMax:       a.Config.SweepMax,
	})
	repl.Start()
	return apperrors.ExitSuccess
}

// lookupProblem resolves the configured problem, reporting unknown names.
func (a *Application) lookupProblem() (problems.Problem, bool) {
	p, err := a.Problems.Get(a.Config.Problem)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return problems.Problem{}, false
	}
	return p, true
}

// runSweep runs the budget sweep of the configured problem.
func (a *Application) runSweep(ctx context.Context, out io.Writer) int {
	p, ok := a.lookupProblem()
	if !ok {
		return apperrors.ExitErrorConfig
	}
	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	return orchestration.ExecuteSweep(ctx, a.Factory, p, a.Config, out)
}

// runCalculate orchestrates a single run or a comparison of all runners.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	p, ok := a.lookupProblem()
	if !ok {
		return apperrors.ExitErrorConfig
	}
	runners := cli.GetRunnersToRun(a.Config, a.Factory)
	if len(runners) == 0 {
		fmt.Fprintf(a.ErrWriter, "Error: unknown runner %q\n", a.Config.Algo)
		return apperrors.ExitErrorConfig
	}

	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, p, out)
		cli.PrintExecutionMode(runners, out)
	}

	// Progress would corrupt JSON and quiet output.
	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	opts := a.Config.ToRunOptions()
	var observers []engine.ProgressObserver
	if a.Config.Details {
		observers = append(observers, engine.NewLoggingObserver(log.Logger, 0))
	}
	results := orchestration.ExecuteRuns(ctx, runners, p, opts, progressOut, observers...)

	if a.Config.JSONOutput {
		return a.printJSONResults(results, p, opts, out)
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Digits:     a.Config.Digits,
		Details:    a.Config.Details,
	}
	return a.analyzeResultsWithOutput(results, p, opts, outputCfg, out)
}

// analyzeResultsWithOutput displays the outcome of the runs. A single run is
// shown on its own; several runs get the comparison summary, after which the
// most accurate report is saved when an output file is configured.
func (a *Application) analyzeResultsWithOutput(results []orchestration.RunResult, p problems.Problem, opts engine.Options, outputCfg cli.OutputConfig, out io.Writer) int {
	if len(results) == 1 || outputCfg.Quiet {
		best := findBestResult(results, p)
		if best == nil {
			res := results[0]
			return apperrors.HandleRunError(res.Err, res.Duration, a.errOrOut(out, outputCfg), cli.CLIColorProvider{})
		}
		if err := cli.DisplayResultWithConfig(out, best.Report(p, opts), outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, p, a.Config, out)
	if exitCode != apperrors.ExitSuccess || outputCfg.OutputFile == "" {
		return exitCode
	}

	best := findBestResult(results, p)
	if err := cli.WriteReportToFile(best.Report(p, opts), outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
		cli.ColorGreen(), cli.ColorCyan(), outputCfg.OutputFile, cli.ColorReset())
	return exitCode
}

// errOrOut keeps quiet output free of failure messages.
func (a *Application) errOrOut(out io.Writer, outputCfg cli.OutputConfig) io.Writer {
	if outputCfg.Quiet {
		return a.ErrWriter
	}
	return out
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if the error indicates help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// findBestResult returns the successful run closest to the limit, or nil.
func findBestResult(results []orchestration.RunResult, p problems.Problem) *orchestration.RunResult {
	var best *orchestration.RunResult
	bestErr := math.Inf(1)
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		e := math.Abs(results[i].Outcome.Value - p.Limit)
		if best == nil || e < bestErr {
			best, bestErr = &results[i], e
		}
	}
	return best
}

func firstError(results []orchestration.RunResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// printJSONResults writes one report per run as a JSON array. The exit code
// reflects the first failure when no run succeeded.
func (a *Application) printJSONResults(results []orchestration.RunResult, p problems.Problem, opts engine.Options, out io.Writer) int {
	reports := make([]models.AccelerationReport, len(results))
	for i, res := range results {
		reports[i] = res.Report(p, opts)
	}
	if err := cli.WriteJSON(out, reports); err != nil {
		return apperrors.ExitErrorGeneric
	}
	if findBestResult(results, p) == nil {
		return apperrors.HandleRunError(firstError(results), 0, a.ErrWriter, nil)
	}
	return apperrors.ExitSuccess
}
