package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/aitken/internal/config"
	"github.com/agbru/aitken/internal/engine"
	"github.com/agbru/aitken/internal/problems"
	"golang.org/x/sys/cpu"
)

// GetRunnersToRun determines which runners should be executed based on the
// configuration. Runners are returned in alphabetical order so comparisons
// are reproducible.
//
// Parameters:
//   - cfg: The application configuration containing the algorithm selection.
//   - factory: The runner factory to retrieve implementations from.
//
// Returns:
//   - []engine.Runner: A slice of runners to execute.
func GetRunnersToRun(cfg config.AppConfig, factory engine.RunnerFactory) []engine.Runner {
	if cfg.Algo == "all" {
		keys := factory.List()
		runners := make([]engine.Runner, 0, len(keys))
		for _, k := range keys {
			if r, err := factory.Get(k); err == nil {
				runners = append(runners, r)
			}
		}
		return runners
	}
	if r, err := factory.Get(cfg.Algo); err == nil {
		return []engine.Runner{r}
	}
	return nil
}

// PrintExecutionConfig displays the problem, the stopping rule and the
// environment the runs execute in.
//
// Parameters:
//   - cfg: The application configuration.
//   - p: The problem being evaluated.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, p problems.Problem, out io.Writer) {
	writeOut(out, "--- Execution Configuration ---\n")
	writeOut(out, "Evaluating %s%s%s (%s %s, %s) with a timeout of %s%s%s.\n",
		ColorMagenta(), p.Name, ColorReset(), p.Form(), p.Kind, p.Title, ColorYellow(), cfg.Timeout, ColorReset())
	writeOut(out, "Stopping rule: |Δ| < %s%g%s or |ratio-1| < %s%g%s, budget %s%s%s terms, policy %s%s%s.\n",
		ColorCyan(), cfg.AbsTolerance, ColorReset(),
		ColorCyan(), cfg.RelTolerance, ColorReset(),
		ColorCyan(), formatNumberString(fmt.Sprint(cfg.Budget)), ColorReset(),
		ColorCyan(), cfg.Policy, ColorReset())
	writeOut(out, "Environment: %s%d%s logical processors, Go %s%s%s, FMA %s.\n",
		ColorCyan(), runtime.NumCPU(), ColorReset(), ColorCyan(), runtime.Version(), ColorReset(), fmaSupport())
}

// fmaSupport reports whether the CPU offers fused multiply-add, which changes
// the last bits of the step computation when the compiler fuses it.
func fmaSupport() string {
	if cpu.X86.HasFMA || runtime.GOARCH == "arm64" {
		return "available"
	}
	return "unavailable"
}

// PrintExecutionMode displays the execution mode (single runner vs comparison).
//
// Parameters:
//   - runners: The slice of runners that will be executed.
//   - out: The writer for standard output.
func PrintExecutionMode(runners []engine.Runner, out io.Writer) {
	var modeDesc string
	if len(runners) > 1 {
		modeDesc = "Parallel comparison of all runners"
	} else {
		modeDesc = fmt.Sprintf("Single run with the %s%s%s runner",
			ColorGreen(), runners[0].Name(), ColorReset())
	}
	writeOut(out, "Execution mode: %s.\n", modeDesc)
	writeOut(out, "\n--- Starting Execution ---\n")
}

// writeOut writes a formatted string to the output writer.
func writeOut(out io.Writer, format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}
