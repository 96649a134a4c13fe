package app

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

// TestHasVersionFlag tests the HasVersionFlag function.
func TestHasVersionFlag(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"Empty args", []string{}, false},
		{"No version flag", []string{"-problem", "leibniz"}, false},
		{"Long version flag", []string{"--version"}, true},
		{"Short version flag", []string{"-V"}, true},
		{"Version flag with dash", []string{"-version"}, true},
		{"Version flag in middle", []string{"-problem", "leibniz", "--version", "-algo", "aitken"}, true},
		{"Version flag at end", []string{"-problem", "leibniz", "--version"}, true},
		{"Similar but not version", []string{"--verbose"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := HasVersionFlag(tc.args)
			if result != tc.expected {
				t.Errorf("HasVersionFlag(%v) = %v, want %v", tc.args, result, tc.expected)
			}
		})
	}
}

// TestPrintVersion tests the PrintVersion function.
func TestPrintVersion(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	PrintVersion(&buf)
	output := buf.String()

	for _, want := range []string{"aitken ", "Commit:", "Built:", "Go version: " + runtime.Version(), "OS/Arch:", "Runners:    aitken, direct", "Problems:", "leibniz"} {
		if !strings.Contains(output, want) {
			t.Errorf("PrintVersion output should contain %q. Got:\n%s", want, output)
		}
	}
}

// TestGetVersionInfo tests the GetVersionInfo function.
func TestGetVersionInfo(t *testing.T) {
	t.Parallel()
	info := GetVersionInfo()

	if info.GoVersion != runtime.Version() || info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Errorf("runtime fields not filled: %+v", info)
	}
	if info.Version == "" || info.Commit == "" || info.BuildDate == "" {
		t.Errorf("identity fields must never be empty: %+v", info)
	}
	if len(info.Problems) == 0 || len(info.Runners) != 2 {
		t.Errorf("unexpected catalogue in %+v", info)
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	t.Parallel()
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/agbru/aitken", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	v := VersionData{Version: "dev", Commit: "unknown", BuildDate: "unknown"}
	fillFromBuildInfo(&v, bi)
	if v.Version != "v0.3.1" || v.Commit != "0123456789ab" || v.BuildDate != "2026-01-02T03:04:05Z" {
		t.Errorf("build info not applied: %+v", v)
	}

	ldflags := VersionData{Version: "v1.0.0", Commit: "abc123", BuildDate: "2025-01-01T00:00:00Z"}
	fillFromBuildInfo(&ldflags, bi)
	if ldflags.Version != "v1.0.0" || ldflags.Commit != "abc123" || ldflags.BuildDate != "2025-01-01T00:00:00Z" {
		t.Errorf("-ldflags values must win over build info: %+v", ldflags)
	}

	devel := VersionData{Version: "dev"}
	fillFromBuildInfo(&devel, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if devel.Version != "dev" {
		t.Errorf("(devel) must not replace dev, got %q", devel.Version)
	}
}
