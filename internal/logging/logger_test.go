package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return m
}

func TestZerologAdapterFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf))

	logger.Info("run completed",
		Problem("leibniz"),
		Runner("aitken"),
		Terms(56),
		Float64("value", 3.14159),
		Bool("converged", true),
		Duration("elapsed", 2*time.Millisecond),
		Int("index", 1),
	)

	m := decodeLine(t, &buf)
	if m["message"] != "run completed" {
		t.Errorf("message = %v", m["message"])
	}
	if m["problem"] != "leibniz" || m["runner"] != "aitken" {
		t.Errorf("missing domain fields: %v", m)
	}
	if m["terms"] != float64(56) || m["converged"] != true {
		t.Errorf("unexpected fields: %v", m)
	}
	if _, ok := m["elapsed"]; !ok {
		t.Error("missing elapsed field")
	}
}

func TestZerologAdapterLevels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level string
		log   func(Logger)
	}{
		{"debug", func(l Logger) { l.Debug("d") }},
		{"info", func(l Logger) { l.Info("i") }},
		{"warn", func(l Logger) { l.Warn("w", Uint64("budget", 1)) }},
		{"error", func(l Logger) { l.Error("e", errors.New("boom"), Problem("heron")) }},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		tt.log(NewZerologAdapter(zerolog.New(&buf)))
		m := decodeLine(t, &buf)
		if m["level"] != tt.level {
			t.Errorf("level = %v, want %s", m["level"], tt.level)
		}
		if tt.level == "error" && (m["error"] != "boom" || m["problem"] != "heron") {
			t.Errorf("unexpected error line: %v", m)
		}
	}
}

func TestZerologAdapterWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf)).With(Runner("direct"))

	logger.Debug("tick")

	m := decodeLine(t, &buf)
	if m["runner"] != "direct" {
		t.Errorf("child logger lost its field: %v", m)
	}
}

func TestNewLoggerComponent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "server").Info("listening", String("addr", ":8080"))

	m := decodeLine(t, &buf)
	if m["component"] != "server" || m["addr"] != ":8080" {
		t.Errorf("unexpected line: %v", m)
	}
}

func TestStdLoggerAdapterLogfmt(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewStdLoggerAdapter(stdlog.New(&buf, "", 0))

	logger.Info("started")
	logger.Debug("budget", Uint64("budget", 10))
	logger.Warn("slow run", Runner("direct"), Duration("elapsed", 1500*time.Millisecond))
	logger.Error("failed", errors.New("no such problem"), Problem("x=y"))

	want := []string{
		`level=info msg=started`,
		`level=debug msg=budget budget=10`,
		`level=warn msg="slow run" runner=direct elapsed=1.5s`,
		`level=error msg=failed error="no such problem" problem="x=y"`,
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLogfmtValue(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]string{
		"":        `""`,
		"leibniz": "leibniz",
		"a b":     `"a b"`,
		`say "x"`: `"say \"x\""`,
	} {
		if got := logfmtValue(in); got != want {
			t.Errorf("logfmtValue(%q) = %s, want %s", in, got, want)
		}
	}
}
