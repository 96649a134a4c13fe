package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agbru/aitken/internal/engine"
	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/internal/testutil"
	"github.com/agbru/aitken/pkg/aitken"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	config := REPLConfig{
		DefaultAlgo:    "aitken",
		DefaultProblem: "geometric",
		Options: engine.Options{
			AbsTolerance: engine.DefaultAbsTolerance,
			RelTolerance: engine.DefaultRelTolerance,
			Budget:       1000,
		},
		Digits:  6,
		Timeout: 10 * time.Second,
	}
	repl := NewREPL(engine.NewDefaultFactory().GetAll(), nil, config)
	var out bytes.Buffer
	repl.SetOutput(&out)
	return repl, &out
}

func TestNewREPL(t *testing.T) {
	t.Parallel()
	repl, _ := newTestREPL(t)
	if repl.currentAlgo != "aitken" {
		t.Errorf("Expected default algo 'aitken', got '%s'", repl.currentAlgo)
	}
	if repl.currentProblem != "geometric" {
		t.Errorf("Expected default problem 'geometric', got '%s'", repl.currentProblem)
	}
}

func TestNewREPL_Fallbacks(t *testing.T) {
	t.Parallel()
	registry := map[string]engine.Runner{
		"zeta":  &engine.MockRunner{RunnerName: "zeta"},
		"alpha": &engine.MockRunner{RunnerName: "alpha"},
	}
	repl := NewREPL(registry, nil, REPLConfig{DefaultAlgo: "all", DefaultProblem: "nope"})
	if repl.currentAlgo != "alpha" {
		t.Errorf("Expected first sorted runner 'alpha', got '%s'", repl.currentAlgo)
	}
	if repl.currentProblem != problems.Global().List()[0] {
		t.Errorf("Expected first problem, got '%s'", repl.currentProblem)
	}
	if repl.config.SweepBase != 10 || repl.config.SweepMax != 6 {
		t.Errorf("sweep defaults not applied: %+v", repl.config)
	}
}

func TestProcessCommand(t *testing.T) {
	repl, out := newTestREPL(t)
	strip := testutil.StripAnsiCodes

	t.Run("run with budget", func(t *testing.T) {
		repl.processCommand("run 3")
		output := strip(out.String())
		if !strings.Contains(output, "Estimate        : 2.000000") {
			t.Errorf("Expected estimate 2, got %s", output)
		}
		if !strings.Contains(output, "Terms consumed  : 3") {
			t.Errorf("Expected 3 terms, got %s", output)
		}
		out.Reset()
	})

	t.Run("numeric input", func(t *testing.T) {
		repl.processCommand("20")
		output := strip(out.String())
		if !strings.Contains(output, "Terms consumed  : 4") || !strings.Contains(output, "Converged") {
			t.Errorf("Expected convergence after 4 terms, got %s", output)
		}
		out.Reset()
	})

	t.Run("invalid budget", func(t *testing.T) {
		repl.processCommand("run zero")
		if !strings.Contains(out.String(), "Invalid budget") {
			t.Error("Expected invalid budget message")
		}
		out.Reset()
	})

	t.Run("problem", func(t *testing.T) {
		repl.processCommand("problem LEIBNIZ")
		if !strings.Contains(out.String(), "Problem changed to") || repl.currentProblem != "leibniz" {
			t.Errorf("Expected problem change, got %s", out.String())
		}
		out.Reset()
		repl.processCommand("problem zeta")
		if !strings.Contains(out.String(), "Unknown problem") {
			t.Error("Expected unknown problem message")
		}
		out.Reset()
	})

	t.Run("algo", func(t *testing.T) {
		repl.processCommand("algo direct")
		if !strings.Contains(out.String(), "Runner changed to") || repl.currentAlgo != "direct" {
			t.Error("Expected runner change message")
		}
		out.Reset()
		repl.processCommand("algo richardson")
		if !strings.Contains(out.String(), "Unknown runner") {
			t.Error("Expected unknown runner message")
		}
		out.Reset()
		repl.processCommand("algo aitken")
		out.Reset()
	})

	t.Run("tol", func(t *testing.T) {
		repl.processCommand("tol 1e-10 1e-10")
		if repl.opts.AbsTolerance != 1e-10 || repl.opts.RelTolerance != 1e-10 {
			t.Errorf("tolerances not set: %+v", repl.opts)
		}
		out.Reset()
		repl.processCommand("tol -1 0")
		if !strings.Contains(out.String(), "Invalid tolerance") {
			t.Error("Expected invalid tolerance message")
		}
		out.Reset()
	})

	t.Run("budget", func(t *testing.T) {
		repl.processCommand("budget 5000")
		if repl.opts.Budget != 5000 {
			t.Errorf("budget = %d", repl.opts.Budget)
		}
		if !strings.Contains(strip(out.String()), "5,000") {
			t.Errorf("Expected formatted budget, got %s", out.String())
		}
		out.Reset()
	})

	t.Run("policy", func(t *testing.T) {
		repl.processCommand("policy STOP")
		if repl.opts.Policy != aitken.Stop {
			t.Errorf("policy = %v", repl.opts.Policy)
		}
		out.Reset()
		repl.processCommand("policy ignore")
		if !strings.Contains(out.String(), "Unknown policy") {
			t.Error("Expected unknown policy message")
		}
		out.Reset()
	})

	t.Run("compare", func(t *testing.T) {
		repl.processCommand("compare")
		output := strip(out.String())
		if !strings.Contains(output, "Comparison for leibniz") {
			t.Errorf("Expected comparison output, got %s", output)
		}
		if !strings.Contains(output, "aitken") || !strings.Contains(output, "direct") {
			t.Errorf("Expected both runners, got %s", output)
		}
		out.Reset()
	})

	t.Run("sweep", func(t *testing.T) {
		repl.processCommand("sweep 2")
		output := strip(out.String())
		if !strings.Contains(output, "Budget sweep: leibniz") || !strings.Contains(output, "100") {
			t.Errorf("Expected sweep table, got %s", output)
		}
		out.Reset()
		repl.processCommand("sweep 12")
		if !strings.Contains(out.String(), "Invalid sweep size") {
			t.Error("Expected invalid sweep size message")
		}
		out.Reset()
	})

	t.Run("list", func(t *testing.T) {
		repl.processCommand("list")
		output := out.String()
		if !strings.Contains(output, "Available runners") || !strings.Contains(output, "Available problems") {
			t.Error("Expected list output")
		}
		out.Reset()
	})

	t.Run("status", func(t *testing.T) {
		repl.processCommand("status")
		output := strip(out.String())
		if !strings.Contains(output, "Current configuration") || !strings.Contains(output, "stop") {
			t.Errorf("Expected status output, got %s", output)
		}
		out.Reset()
	})

	t.Run("help", func(t *testing.T) {
		repl.processCommand("help")
		if !strings.Contains(out.String(), "Available commands") {
			t.Error("Expected help output")
		}
		out.Reset()
	})

	t.Run("unknown", func(t *testing.T) {
		repl.processCommand("unknown")
		if !strings.Contains(out.String(), "Unknown command") {
			t.Error("Expected unknown command message")
		}
		out.Reset()
	})

	t.Run("exit", func(t *testing.T) {
		if repl.processCommand("exit") {
			t.Error("Expected exit command to return false")
		}
	})
}

func TestREPLRunError(t *testing.T) {
	t.Parallel()
	registry := map[string]engine.Runner{
		"mock": &engine.MockRunner{
			Fn: func(ctx context.Context, p problems.Problem, opts engine.Options) (engine.Outcome, error) {
				return engine.Outcome{}, errors.New("boom")
			},
		},
	}
	repl := NewREPL(registry, nil, REPLConfig{DefaultAlgo: "mock", DefaultProblem: "basel", Timeout: time.Second})
	var out bytes.Buffer
	repl.SetOutput(&out)

	repl.processCommand("run")
	if !strings.Contains(out.String(), "Error: boom") {
		t.Errorf("Expected error output, got %s", out.String())
	}
	out.Reset()

	repl.processCommand("sweep")
	if !strings.Contains(out.String(), "needs both") {
		t.Errorf("Expected missing runner message, got %s", out.String())
	}
}

func TestREPLStart(t *testing.T) {
	repl, out := newTestREPL(t)
	repl.SetInput(strings.NewReader("run 3\nexit\n"))

	repl.Start()

	output := testutil.StripAnsiCodes(out.String())
	if !strings.Contains(output, "Estimate        : 2.000000") {
		t.Errorf("Expected run output, got %s", output)
	}
	if !strings.Contains(output, "Goodbye!") {
		t.Error("Expected goodbye message")
	}
}

func TestREPLStartEOF(t *testing.T) {
	repl, out := newTestREPL(t)
	repl.SetInput(strings.NewReader("status\n"))
	repl.Start()
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Error("Expected goodbye on EOF")
	}
}
