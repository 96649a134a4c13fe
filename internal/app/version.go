// Package app wires configuration, runners, problems and output into the
// aitken command: it dispatches between the CLI, sweep, server and REPL
// modes and manages the process lifecycle and version information.
package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/agbru/aitken/internal/engine"
	"github.com/agbru/aitken/internal/problems"
)

// Build-time variables set via -ldflags.
// These are populated during builds to provide version information.
//
// Example build command:
//
//	go build -ldflags="-X github.com/agbru/aitken/internal/app.Version=v1.2.3 -X github.com/agbru/aitken/internal/app.Commit=abc123 -X github.com/agbru/aitken/internal/app.BuildDate=2025-01-01T00:00:00Z"
var (
	// Version is the semantic version of the application (e.g., "v1.0.0").
	Version = "dev"
	// Commit is the short Git commit hash (e.g., "abc123").
	Commit = "unknown"
	// BuildDate is the ISO 8601 timestamp of the build (e.g., "2025-01-01T00:00:00Z").
	BuildDate = "unknown"
)

// HasVersionFlag checks if any argument is a version flag.
// This allows --version to work in any position (e.g., "aitken --server --version").
//
// Parameters:
//   - args: The command-line arguments to check (typically os.Args[1:]).
//
// Returns:
//   - bool: True if a version flag is found, false otherwise.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-V" {
			return true
		}
	}
	return false
}

// PrintVersion writes the version report: build identity, toolchain and
// platform, then the registered runners and problems.
//
// Parameters:
//   - out: The writer to output version information to.
func PrintVersion(out io.Writer) {
	info := GetVersionInfo()
	fmt.Fprintf(out, "aitken %s\n", info.Version)
	fmt.Fprintf(out, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", info.OS, info.Arch)
	fmt.Fprintf(out, "  Runners:    %s\n", strings.Join(info.Runners, ", "))
	fmt.Fprintf(out, "  Problems:   %s\n", strings.Join(info.Problems, ", "))
}

// VersionData is the version report in structured form.
type VersionData struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	BuildDate string   `json:"build_date"`
	GoVersion string   `json:"go_version"`
	OS        string   `json:"os"`
	Arch      string   `json:"arch"`
	Runners   []string `json:"runners"`
	Problems  []string `json:"problems"`
}

// GetVersionInfo returns the version report. Identity fields not set through
// -ldflags are filled from the module build information when the binary
// carries it (go install, or go build inside a VCS checkout).
func GetVersionInfo() VersionData {
	v := VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Runners:   engine.GlobalFactory().List(),
		Problems:  problems.Global().List(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&v, bi)
	}
	return v
}

// fillFromBuildInfo replaces the placeholder identity fields of v with the
// module version and the VCS settings recorded by the Go toolchain.
func fillFromBuildInfo(v *VersionData, bi *debug.BuildInfo) {
	if v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && v.Commit == "unknown":
			v.Commit = s.Value
			if len(v.Commit) > 12 {
				v.Commit = v.Commit[:12]
			}
		case s.Key == "vcs.time" && v.BuildDate == "unknown":
			v.BuildDate = s.Value
		}
	}
}
