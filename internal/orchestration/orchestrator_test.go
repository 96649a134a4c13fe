package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agbru/aitken/internal/config"
	"github.com/agbru/aitken/internal/engine"
	apperrors "github.com/agbru/aitken/internal/errors"
	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/internal/testutil"
	"github.com/agbru/aitken/internal/ui"
	"github.com/agbru/aitken/pkg/aitken"
	"github.com/agbru/aitken/pkg/models"
)

func mustProblem(t *testing.T, name string) problems.Problem {
	t.Helper()
	p, err := problems.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// TestExecuteRuns verifies that the orchestrator runs every runner and keeps
// results in runner order.
func TestExecuteRuns(t *testing.T) {
	t.Parallel()
	p := mustProblem(t, "geometric")
	tests := []struct {
		name        string
		runners     []engine.Runner
		expectError []bool
	}{
		{
			name:        "Single success",
			runners:     []engine.Runner{&engine.MockRunner{Outcome: engine.Outcome{Value: 2, Iterations: 4}}},
			expectError: []bool{false},
		},
		{
			name:        "Single failure",
			runners:     []engine.Runner{&engine.MockRunner{Err: errors.New("mock error")}},
			expectError: []bool{true},
		},
		{
			name: "Failure does not cancel the others",
			runners: []engine.Runner{
				&engine.MockRunner{RunnerName: "bad", Err: errors.New("mock error")},
				&engine.MockRunner{
					RunnerName: "slow",
					Fn: func(ctx context.Context, p problems.Problem, opts engine.Options) (engine.Outcome, error) {
						time.Sleep(20 * time.Millisecond)
						return engine.Outcome{Value: 2}, ctx.Err()
					},
				},
			},
			expectError: []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := ExecuteRuns(context.Background(), tt.runners, p, engine.Options{}, io.Discard)
			if len(results) != len(tt.runners) {
				t.Fatalf("expected %d results, got %d", len(tt.runners), len(results))
			}
			for i, wantErr := range tt.expectError {
				if (results[i].Err != nil) != wantErr {
					t.Errorf("result %d: err = %v, want error %t", i, results[i].Err, wantErr)
				}
				if results[i].Name != tt.runners[i].Name() {
					t.Errorf("result %d: name %q, want %q", i, results[i].Name, tt.runners[i].Name())
				}
			}
		})
	}
}

// TestExecuteRunsRealRunners checks the leibniz comparison end to end.
func TestExecuteRunsRealRunners(t *testing.T) {
	t.Parallel()
	factory := engine.NewDefaultFactory()
	runners := []engine.Runner{factory.MustGet("aitken"), factory.MustGet("direct")}
	opts := engine.Options{AbsTolerance: 1e-8, RelTolerance: 1e-6, Budget: 100_000}

	results := ExecuteRuns(context.Background(), runners, mustProblem(t, "leibniz"), opts, io.Discard)

	if results[0].Err != nil || results[0].Outcome.Iterations != 56 || results[0].Outcome.Value != 3.141591151580488 {
		t.Errorf("aitken result = %+v", results[0])
	}
	if results[1].Err != nil || results[1].Outcome.Iterations != 100_000 || results[1].Outcome.Converged {
		t.Errorf("direct result = %+v", results[1])
	}
}

// TestAnalyzeComparisonResults checks exit codes and ordering.
func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	p := mustProblem(t, "geometric")
	tests := []struct {
		name           string
		results        []RunResult
		expectedStatus int
		expectedFirst  string
	}{
		{
			name: "All success, most accurate first",
			results: []RunResult{
				{Name: "direct", Outcome: engine.Outcome{Value: 1.99, Iterations: 10}, Duration: time.Millisecond},
				{Name: "aitken", Outcome: engine.Outcome{Value: 2, Iterations: 4, Converged: true}, Duration: 2 * time.Millisecond},
			},
			expectedStatus: apperrors.ExitSuccess,
			expectedFirst:  "aitken",
		},
		{
			name: "NaN estimate sorts last",
			results: []RunResult{
				{Name: "aitken", Outcome: engine.Outcome{Value: math.NaN(), Iterations: 20}},
				{Name: "direct", Outcome: engine.Outcome{Value: 1.5, Iterations: 20}},
			},
			expectedStatus: apperrors.ExitSuccess,
			expectedFirst:  "direct",
		},
		{
			name: "All failure",
			results: []RunResult{
				{Name: "A", Err: errors.New("fail")},
				{Name: "B", Err: errors.New("fail")},
			},
			expectedStatus: apperrors.ExitErrorGeneric,
		},
		{
			name: "Degenerate failure",
			results: []RunResult{
				{Name: "aitken", Outcome: engine.Outcome{Value: 1.4, Degenerate: true}, Err: aitken.ErrDegenerate},
			},
			expectedStatus: apperrors.ExitErrorDegenerate,
		},
		{
			name: "Timeout",
			results: []RunResult{
				{Name: "aitken", Err: context.DeadlineExceeded},
			},
			expectedStatus: apperrors.ExitErrorTimeout,
		},
		{
			name: "Mixed success/failure",
			results: []RunResult{
				{Name: "A", Err: errors.New("fail")},
				{Name: "B", Outcome: engine.Outcome{Value: 2}},
			},
			expectedStatus: apperrors.ExitSuccess,
			expectedFirst:  "B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status := AnalyzeComparisonResults(tt.results, p, config.AppConfig{Digits: 6}, io.Discard)
			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
			if tt.expectedFirst != "" && tt.results[0].Name != tt.expectedFirst {
				t.Errorf("expected %q first, got %q", tt.expectedFirst, tt.results[0].Name)
			}
		})
	}
}

func TestAnalyzeComparisonResultsOutput(t *testing.T) {
	ui.InitTheme(false)
	p := mustProblem(t, "leibniz")
	results := []RunResult{
		{Name: "direct", Outcome: engine.Outcome{Value: 3.1415826535897198, Iterations: 100_000}},
		{Name: "aitken", Outcome: engine.Outcome{Value: 3.141591151580488, Iterations: 56, Converged: true}},
	}
	var buf bytes.Buffer
	AnalyzeComparisonResults(results, p, config.AppConfig{Digits: 6, Budget: 100_000, Policy: "propagate"}, &buf)
	out := testutil.StripAnsiCodes(buf.String())

	for _, want := range []string{
		"Comparison Summary (leibniz, limit 3.141593)",
		"Converged",
		"Budget exhausted",
		"Acceleration: 56 terms instead of 100000 (1785.7x fewer).",
		"Global Status: Success.",
		"--- Result (aitken) ---",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTermSavingsOnlyWhenAccelerationHelps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		aitkenN    uint64
		directN    uint64
		wantSaving bool
	}{
		{name: "Fewer terms", aitkenN: 5, directN: 40, wantSaving: true},
		{name: "Same terms", aitkenN: 6, directN: 6},
		{name: "More terms", aitkenN: 9, directN: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			printTermSavings([]RunResult{
				{Name: "aitken", Outcome: engine.Outcome{Value: 1.41, Iterations: tt.aitkenN}},
				{Name: "direct", Outcome: engine.Outcome{Value: 1.41, Iterations: tt.directN}},
			}, &buf)
			if got := strings.Contains(buf.String(), "Acceleration:"); got != tt.wantSaving {
				t.Errorf("saving line printed = %t, want %t: %q", got, tt.wantSaving, buf.String())
			}
		})
	}
}

// TestExecuteRunsNotifiesObservers checks that extra observers see every run
// finish next to the progress display.
func TestExecuteRunsNotifiesObservers(t *testing.T) {
	t.Parallel()
	rec := &doneObserver{done: make(map[int]bool)}
	runners := []engine.Runner{
		engine.NewRunner(engine.AitkenRunner{}),
		&engine.MockRunner{RunnerName: "mock", Outcome: engine.Outcome{Value: 2}},
	}
	ExecuteRuns(context.Background(), runners, mustProblem(t, "geometric"), engine.Options{Budget: 64}, io.Discard, rec)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := range runners {
		if !rec.done[i] {
			t.Errorf("run %d never reported completion", i)
		}
	}
}

type doneObserver struct {
	mu   sync.Mutex
	done map[int]bool
}

func (o *doneObserver) Update(runIndex int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if progress >= 1.0 {
		o.done[runIndex] = true
	}
}

func sweepConfig() config.AppConfig {
	return config.AppConfig{SweepBase: 10, SweepMax: 2, Digits: 6, Policy: "propagate"}
}

func TestRunSweep(t *testing.T) {
	t.Parallel()
	report, err := RunSweep(context.Background(), engine.NewDefaultFactory(), mustProblem(t, "geometric"), sweepConfig())
	if err != nil {
		t.Fatal(err)
	}
	if report.Problem != "geometric" || len(report.Rows) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Rows[0].Budget != 10 || report.Rows[1].Budget != 100 {
		t.Errorf("unexpected budgets %+v", report.Rows)
	}
	if report.Rows[0].Accelerated != 2 {
		t.Errorf("accelerated = %v, want 2", report.Rows[0].Accelerated)
	}
}

func TestExecuteSweep(t *testing.T) {
	ui.InitTheme(false)
	p := mustProblem(t, "geometric")

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		if code := ExecuteSweep(context.Background(), engine.NewDefaultFactory(), p, sweepConfig(), &buf); code != apperrors.ExitSuccess {
			t.Fatalf("exit code %d", code)
		}
		if !strings.Contains(buf.String(), "Budget sweep: geometric") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := sweepConfig()
		cfg.JSONOutput = true
		if code := ExecuteSweep(context.Background(), engine.NewDefaultFactory(), p, cfg, &buf); code != apperrors.ExitSuccess {
			t.Fatalf("exit code %d", code)
		}
		var report models.SweepReport
		if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(report.Rows) != 2 {
			t.Errorf("expected 2 rows, got %d", len(report.Rows))
		}
	})

	t.Run("Missing runner", func(t *testing.T) {
		var buf bytes.Buffer
		factory := engine.NewTestFactory(map[string]engine.Runner{"aitken": &engine.MockRunner{}})
		if code := ExecuteSweep(context.Background(), factory, p, sweepConfig(), &buf); code != apperrors.ExitErrorConfig {
			t.Errorf("expected config exit code, got %d", code)
		}
	})

	t.Run("Run failure", func(t *testing.T) {
		var buf bytes.Buffer
		failing := &engine.MockRunner{Err: context.DeadlineExceeded}
		factory := engine.NewTestFactory(map[string]engine.Runner{"aitken": failing, "direct": failing})
		if code := ExecuteSweep(context.Background(), factory, p, sweepConfig(), &buf); code != apperrors.ExitErrorTimeout {
			t.Errorf("expected timeout exit code, got %d", code)
		}
	})
}
