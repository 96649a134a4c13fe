// Package config provides the configuration management for the aitken
// application. It defines the configuration structure, parses command-line
// arguments, applies environment overrides and validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/agbru/aitken/internal/engine"
	apperrors "github.com/agbru/aitken/internal/errors"
	"github.com/agbru/aitken/pkg/aitken"
)

const (
	// EnvPrefix is the prefix for all environment variables read by the
	// application. Environment variables are an alternative to CLI flags.
	EnvPrefix = "AITKEN_"
)

// Default configuration values.
// These can be overridden via command-line flags or environment variables.
const (
	// DefaultProblem is the default problem of the catalogue.
	DefaultProblem = "leibniz"
	// DefaultAlgo runs every registered runner and compares them.
	DefaultAlgo = "all"
	// DefaultBudget is the default maximum number of terms per run.
	DefaultBudget uint64 = engine.DefaultBudget
	// DefaultAbsTolerance is the default absolute convergence bound.
	DefaultAbsTolerance = engine.DefaultAbsTolerance
	// DefaultRelTolerance is the default relative convergence bound.
	DefaultRelTolerance = engine.DefaultRelTolerance
	// DefaultPolicy is the default degenerate-step policy.
	DefaultPolicy = "propagate"
	// DefaultDigits is the number of decimals displayed for estimates.
	DefaultDigits = 12
	// DefaultSweepMax is the largest exponent of a budget sweep.
	DefaultSweepMax = 6
	// DefaultSweepBase is the base of the budgets of a sweep.
	DefaultSweepBase uint64 = 10
	// DefaultTimeout is the default run timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Problem is the name of the catalogue entry to evaluate.
	Problem string
	// Algo selects the runner ("all", "aitken", "direct").
	Algo string
	// AbsTolerance and RelTolerance define the |x-y| < abs || |x/y-1| < rel
	// convergence predicate.
	AbsTolerance float64
	RelTolerance float64
	// Budget is the maximum number of terms a run may consume.
	Budget uint64
	// Policy is the degenerate-step policy name ("propagate", "stop", "fail").
	Policy string
	// Digits is the number of decimals displayed for estimates.
	Digits int
	// Verbose, if true, displays estimates with full float64 precision.
	Verbose bool
	// Details, if true, adds the problem description and error analysis.
	Details bool
	// Sweep, if true, runs a budget sweep instead of a single comparison.
	Sweep bool
	// SweepMax is the largest exponent k of the budgets base^1 ... base^k.
	SweepMax int
	// SweepBase is the base of the sweep budgets.
	SweepBase uint64
	// Timeout sets the maximum duration of a run.
	Timeout time.Duration
	// JSONOutput, if true, outputs the result in JSON format.
	JSONOutput bool
	// ServerMode, if true, starts the application as an HTTP server.
	ServerMode bool
	// Port specifies the port to listen on in server mode.
	Port string
	// NoColor, if true, disables all color output in the CLI.
	// Also respects the NO_COLOR environment variable.
	NoColor bool
	// OutputFile, if specified, saves the result to this file path.
	OutputFile string
	// Quiet mode suppresses progress, banners and informational messages.
	Quiet bool
	// Interactive, if true, starts the application in REPL mode.
	Interactive bool
	// Completion, if set, generates the completion script for the given shell
	// ("bash", "zsh", "fish", "powershell").
	Completion string
	// ListProblems, if true, prints the catalogue and exits.
	ListProblems bool
}

// ToRunOptions converts the configuration into engine.Options. The policy
// name is expected to have been validated.
func (c AppConfig) ToRunOptions() engine.Options {
	policy, _ := aitken.ParsePolicy(c.Policy)
	return engine.Options{
		AbsTolerance: c.AbsTolerance,
		RelTolerance: c.RelTolerance,
		Budget:       c.Budget,
		Policy:       policy,
	}
}

// Validate checks the semantic consistency of the configuration.
//
// Parameters:
//   - availableAlgos: The registered runner names.
//   - availableProblems: The registered problem names.
//
// Returns:
//   - error: A ConfigError if the configuration is invalid, nil otherwise.
func (c AppConfig) Validate(availableAlgos, availableProblems []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Budget == 0 {
		return apperrors.NewConfigError("budget must be at least 1")
	}
	if c.AbsTolerance < 0 || c.RelTolerance < 0 {
		return apperrors.NewConfigError("tolerances cannot be negative: abs=%g rel=%g", c.AbsTolerance, c.RelTolerance)
	}
	if c.Digits < 0 || c.Digits > 17 {
		return apperrors.NewConfigError("digits must be between 0 and 17: %d", c.Digits)
	}
	if _, err := aitken.ParsePolicy(c.Policy); err != nil {
		return apperrors.NewConfigError("unrecognized policy: '%s'. Valid policies are: propagate, stop, fail", c.Policy)
	}
	if c.Sweep {
		if c.SweepBase < 2 {
			return apperrors.NewConfigError("sweep base must be at least 2: %d", c.SweepBase)
		}
		if c.SweepMax < 1 || c.SweepMax > 9 {
			return apperrors.NewConfigError("sweep exponent must be between 1 and 9: %d", c.SweepMax)
		}
	}
	if c.Algo != "all" && !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	if !slices.Contains(availableProblems, c.Problem) {
		return apperrors.NewConfigError("unknown problem: '%s'. Valid problems are: [%s]", c.Problem, strings.Join(availableProblems, ", "))
	}
	return nil
}

// ParseConfig parses the command-line arguments into an AppConfig, applies
// environment overrides for the flags left unset and validates the result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//   - availableAlgos: The registered runner names.
//   - availableProblems: The registered problem names.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing fails or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos, availableProblems []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Runner to use: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))
	problemHelp := fmt.Sprintf("Problem to evaluate, one of [%s].", strings.Join(availableProblems, ", "))

	config := AppConfig{}
	fs.StringVar(&config.Problem, "problem", DefaultProblem, problemHelp)
	fs.StringVar(&config.Problem, "p", DefaultProblem, "Problem to evaluate (shorthand).")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.Float64Var(&config.AbsTolerance, "abs", DefaultAbsTolerance, "Absolute tolerance between consecutive estimates.")
	fs.Float64Var(&config.RelTolerance, "rel", DefaultRelTolerance, "Relative tolerance between consecutive estimates.")
	fs.Uint64Var(&config.Budget, "budget", DefaultBudget, "Maximum number of terms consumed per run.")
	fs.StringVar(&config.Policy, "policy", DefaultPolicy, "Degenerate step policy: propagate, stop or fail.")
	fs.IntVar(&config.Digits, "digits", DefaultDigits, "Decimals displayed for estimates.")
	fs.BoolVar(&config.Verbose, "v", false, "Display estimates with full precision.")
	fs.BoolVar(&config.Details, "d", false, "Display the problem description and error analysis.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.BoolVar(&config.Sweep, "sweep", false, "Compare accelerated and plain values over budgets base^1..base^k.")
	fs.IntVar(&config.SweepMax, "sweep-max", DefaultSweepMax, "Largest exponent k of a sweep.")
	fs.Uint64Var(&config.SweepBase, "sweep-base", DefaultSweepBase, "Base of the sweep budgets.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time of a run.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the result.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start in interactive REPL mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish, powershell).")
	fs.BoolVar(&config.ListProblems, "list", false, "List the available problems and exit.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&config, fs)

	config.Algo = strings.ToLower(config.Algo)
	config.Problem = strings.ToLower(config.Problem)
	config.Policy = strings.ToLower(config.Policy)
	if err := config.Validate(availableAlgos, availableProblems); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}
