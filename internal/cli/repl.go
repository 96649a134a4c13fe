package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/aitken/internal/engine"
	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/pkg/aitken"
	"github.com/agbru/aitken/pkg/models"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// DefaultAlgo is the runner selected at start.
	DefaultAlgo string
	// DefaultProblem is the problem selected at start.
	DefaultProblem string
	// Options are the initial tolerances, budget and policy.
	Options engine.Options
	// Digits is the number of decimals displayed for estimates.
	Digits int
	// Timeout is the maximum duration of each command.
	Timeout time.Duration
	// SweepBase and SweepMax define the default budgets of the sweep command.
	SweepBase uint64
	SweepMax  int
}

// REPL is an interactive acceleration session. Commands change the current
// problem, runner and options, and run, compare or sweep with them.
type REPL struct {
	config         REPLConfig
	registry       map[string]engine.Runner
	problems       *problems.Registry
	currentAlgo    string
	currentProblem string
	opts           engine.Options
	in             io.Reader
	out            io.Writer
}

// NewREPL creates a new REPL instance.
//
// Parameters:
//   - registry: Map of available runners.
//   - catalog: The problems the session can select; nil selects the global registry.
//   - config: REPL configuration.
//
// Returns:
//   - *REPL: A new REPL instance.
func NewREPL(registry map[string]engine.Runner, catalog *problems.Registry, config REPLConfig) *REPL {
	if catalog == nil {
		catalog = problems.Global()
	}
	currentAlgo := config.DefaultAlgo
	if _, ok := registry[currentAlgo]; !ok {
		currentAlgo = ""
		if _, ok := registry["aitken"]; ok {
			currentAlgo = "aitken"
		} else if names := slices.Sorted(maps.Keys(registry)); len(names) > 0 {
			currentAlgo = names[0]
		}
	}
	currentProblem := config.DefaultProblem
	if !catalog.Has(currentProblem) {
		currentProblem = ""
		if names := catalog.List(); len(names) > 0 {
			currentProblem = names[0]
		}
	}
	if config.SweepBase < 2 {
		config.SweepBase = 10
	}
	if config.SweepMax < 1 {
		config.SweepMax = 6
	}

	return &REPL{
		config:         config,
		registry:       registry,
		problems:       catalog,
		currentAlgo:    currentAlgo,
		currentProblem: currentProblem,
		opts:           config.Options,
		in:             os.Stdin,
		out:            os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads and executes commands until the user exits or input ends.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		fmt.Fprint(r.out, ColorGreen()+"aitken> "+ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !r.processCommand(input) {
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sΔ² Aitken Accelerator - Interactive Mode%s             %s║%s\n",
		ColorCyan(), ColorReset(), ColorBold(), ColorReset(), ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  %srun [budget]%s       - Run the current problem with the current runner\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %scompare%s            - Run every runner on the current problem\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %ssweep [max]%s        - Compare accelerated and plain values over growing budgets\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sproblem <name>%s     - Change problem (%s)\n", ColorYellow(), ColorReset(), strings.Join(r.problems.List(), ", "))
	fmt.Fprintf(r.out, "  %salgo <name>%s        - Change runner (%s)\n", ColorYellow(), ColorReset(), r.getAlgoList())
	fmt.Fprintf(r.out, "  %stol <abs> <rel>%s    - Set the convergence tolerances\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sbudget <n>%s         - Set the term budget\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %spolicy <name>%s      - Set the degenerate-step policy (propagate, stop, fail)\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %slist%s               - List runners and problems\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s             - Display current configuration\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s               - Display this help\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s        - Exit interactive mode\n", ColorYellow(), ColorReset(), ColorYellow(), ColorReset())
}

// getAlgoList returns the sorted, comma-separated runner names.
func (r *REPL) getAlgoList() string {
	return strings.Join(slices.Sorted(maps.Keys(r.registry)), ", ")
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "run", "r":
		r.cmdRun(args)
	case "compare", "cmp":
		r.cmdCompare()
	case "sweep", "sw":
		r.cmdSweep(args)
	case "problem", "p":
		r.cmdProblem(args)
	case "algo", "a":
		r.cmdAlgo(args)
	case "tol":
		r.cmdTol(args)
	case "budget", "b":
		r.cmdBudget(args)
	case "policy":
		r.cmdPolicy(args)
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		// A bare number runs with that budget.
		if n, err := strconv.ParseUint(cmd, 10, 64); err == nil && n > 0 {
			r.run(n)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
		}
	}

	return true
}

// parseBudget parses a strictly positive term budget.
func (r *REPL) parseBudget(arg string) (uint64, bool) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || n == 0 {
		fmt.Fprintf(r.out, "%sInvalid budget: %s%s\n", ColorRed(), arg, ColorReset())
		return 0, false
	}
	return n, true
}

func (r *REPL) currentProblemDef() (problems.Problem, bool) {
	p, err := r.problems.Get(r.currentProblem)
	if err != nil {
		fmt.Fprintf(r.out, "%sProblem not found: %s%s\n", ColorRed(), r.currentProblem, ColorReset())
		return problems.Problem{}, false
	}
	return p, true
}

func (r *REPL) cmdRun(args []string) {
	budget := r.opts.Budget
	if len(args) > 0 {
		n, ok := r.parseBudget(args[0])
		if !ok {
			return
		}
		budget = n
	}
	r.run(budget)
}

// run evaluates the current problem with the current runner and budget.
func (r *REPL) run(budget uint64) {
	runner, ok := r.registry[r.currentAlgo]
	if !ok {
		fmt.Fprintf(r.out, "%sRunner not found: %s%s\n", ColorRed(), r.currentAlgo, ColorReset())
		return
	}
	p, ok := r.currentProblemDef()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	opts := r.opts
	opts.Budget = budget
	fmt.Fprintf(r.out, "Evaluating %s%s%s with %s%s%s...\n",
		ColorMagenta(), p.Name, ColorReset(),
		ColorCyan(), runner.Name(), ColorReset())

	progressChan := make(chan engine.ProgressUpdate, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	start := time.Now()
	out, err := runner.Run(ctx, progressChan, 0, p, opts)
	duration := time.Since(start)
	close(progressChan)
	wg.Wait()

	if err != nil && !errors.Is(err, aitken.ErrDegenerate) {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	DisplayResult(engine.NewReport(p, runner.Name(), out, opts, duration, err), r.config.Digits, false, false, r.out)
	fmt.Fprintf(r.out, "Time            : %s%s%s\n\n", ColorGreen(), FormatExecutionDuration(duration), ColorReset())
}

func (r *REPL) cmdCompare() {
	p, ok := r.currentProblemDef()
	if !ok {
		return
	}

	fmt.Fprintf(r.out, "\n%sComparison for %s (limit %s):%s\n", ColorBold(), p.Name, FormatValue(p.Limit, r.config.Digits, false), ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────────────────────%s\n", ColorCyan(), ColorReset())

	for _, name := range slices.Sorted(maps.Keys(r.registry)) {
		runner := r.registry[name]
		ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
		start := time.Now()
		out, err := runner.Run(ctx, nil, 0, p, r.opts)
		duration := time.Since(start)
		cancel()

		if err != nil && !errors.Is(err, aitken.ErrDegenerate) {
			fmt.Fprintf(r.out, "  %s%-10s%s: %sError - %v%s\n",
				ColorYellow(), name, ColorReset(),
				ColorRed(), err, ColorReset())
			continue
		}

		report := engine.NewReport(p, name, out, r.opts, duration, err)
		fmt.Fprintf(r.out, "  %s%-10s%s: %s%s%s  error %s%9s%s  terms %s%12s%s  %s%10s%s\n",
			ColorYellow(), name, ColorReset(),
			ColorGreen(), FormatValue(out.Value, r.config.Digits, false), ColorReset(),
			ColorCyan(), FormatError(float64(report.AbsError)), ColorReset(),
			ColorMagenta(), formatNumberString(strconv.FormatUint(out.Iterations, 10)), ColorReset(),
			ColorCyan(), FormatExecutionDuration(duration), ColorReset())
	}

	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────────────────────%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) cmdSweep(args []string) {
	maxExp := r.config.SweepMax
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > 9 {
			fmt.Fprintf(r.out, "%sInvalid sweep size: %s (1-9)%s\n", ColorRed(), args[0], ColorReset())
			return
		}
		maxExp = n
	}
	accelerated, okA := r.registry["aitken"]
	plain, okD := r.registry["direct"]
	if !okA || !okD {
		fmt.Fprintf(r.out, "%sSweep needs both the aitken and direct runners%s\n", ColorRed(), ColorReset())
		return
	}
	p, ok := r.currentProblemDef()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	rows, err := engine.Sweep(ctx, accelerated, plain, p, engine.SweepBudgets(r.config.SweepBase, maxExp), r.opts.Policy)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	DisplaySweep(models.SweepReport{Problem: p.Name, Limit: models.Float(p.Limit), Rows: rows}, r.config.Digits, r.out)
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdProblem(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: problem <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available problems: %s\n", strings.Join(r.problems.List(), ", "))
		return
	}

	name := strings.ToLower(args[0])
	p, err := r.problems.Get(name)
	if err != nil {
		fmt.Fprintf(r.out, "%sUnknown problem: %s%s\n", ColorRed(), name, ColorReset())
		fmt.Fprintf(r.out, "Available problems: %s\n", strings.Join(r.problems.List(), ", "))
		return
	}

	r.currentProblem = name
	fmt.Fprintf(r.out, "Problem changed to: %s%s%s (%s)\n", ColorGreen(), p.Name, ColorReset(), p.Title)
}

func (r *REPL) cmdAlgo(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available runners: %s\n", r.getAlgoList())
		return
	}

	name := strings.ToLower(args[0])
	if _, ok := r.registry[name]; !ok {
		fmt.Fprintf(r.out, "%sUnknown runner: %s%s\n", ColorRed(), name, ColorReset())
		fmt.Fprintf(r.out, "Available runners: %s\n", r.getAlgoList())
		return
	}

	r.currentAlgo = name
	fmt.Fprintf(r.out, "Runner changed to: %s%s%s\n", ColorGreen(), r.registry[name].Name(), ColorReset())
}

func (r *REPL) cmdTol(args []string) {
	if len(args) != 2 {
		fmt.Fprintf(r.out, "%sUsage: tol <abs> <rel>%s\n", ColorRed(), ColorReset())
		return
	}
	var tols [2]float64
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v < 0 {
			fmt.Fprintf(r.out, "%sInvalid tolerance: %s%s\n", ColorRed(), arg, ColorReset())
			return
		}
		tols[i] = v
	}
	r.opts.AbsTolerance, r.opts.RelTolerance = tols[0], tols[1]
	fmt.Fprintf(r.out, "Tolerances set to: abs %s%g%s, rel %s%g%s\n",
		ColorGreen(), tols[0], ColorReset(), ColorGreen(), tols[1], ColorReset())
}

func (r *REPL) cmdBudget(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: budget <n>%s\n", ColorRed(), ColorReset())
		return
	}
	n, ok := r.parseBudget(args[0])
	if !ok {
		return
	}
	r.opts.Budget = n
	fmt.Fprintf(r.out, "Budget set to: %s%s%s terms\n", ColorGreen(), formatNumberString(strconv.FormatUint(n, 10)), ColorReset())
}

func (r *REPL) cmdPolicy(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: policy <propagate|stop|fail>%s\n", ColorRed(), ColorReset())
		return
	}
	policy, err := aitken.ParsePolicy(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%sUnknown policy: %s%s\n", ColorRed(), args[0], ColorReset())
		return
	}
	r.opts.Policy = policy
	fmt.Fprintf(r.out, "Policy set to: %s%s%s\n", ColorGreen(), policy, ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable runners:%s\n", ColorBold(), ColorReset())
	for _, name := range slices.Sorted(maps.Keys(r.registry)) {
		marker := "  "
		if name == r.currentAlgo {
			marker = ColorGreen() + "► " + ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%s%s\n", marker, ColorYellow(), name, ColorReset())
	}
	fmt.Fprintf(r.out, "\n%sAvailable problems:%s\n", ColorBold(), ColorReset())
	for _, p := range r.problems.All() {
		marker := "  "
		if p.Name == r.currentProblem {
			marker = ColorGreen() + "► " + ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-20s%s - %s\n", marker, ColorYellow(), p.Name, ColorReset(), p.Title)
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	budget := r.opts.Budget
	if budget == 0 {
		budget = engine.DefaultBudget
	}
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Problem:        %s%s%s\n", ColorCyan(), r.currentProblem, ColorReset())
	fmt.Fprintf(r.out, "  Runner:         %s%s%s\n", ColorCyan(), r.currentAlgo, ColorReset())
	fmt.Fprintf(r.out, "  Tolerances:     %sabs %g, rel %g%s\n", ColorCyan(), r.opts.AbsTolerance, r.opts.RelTolerance, ColorReset())
	fmt.Fprintf(r.out, "  Budget:         %s%s%s terms\n", ColorCyan(), formatNumberString(strconv.FormatUint(budget, 10)), ColorReset())
	fmt.Fprintf(r.out, "  Policy:         %s%s%s\n", ColorCyan(), r.opts.Policy, ColorReset())
	fmt.Fprintf(r.out, "  Timeout:        %s%s%s\n", ColorCyan(), r.config.Timeout, ColorReset())
	fmt.Fprintln(r.out)
}
