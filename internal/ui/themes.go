// Package ui holds the terminal color themes shared by the CLI, the usage
// text and the comparison tables. Colors are addressed by role (a converged
// run, a stalled run, a failure) rather than by hue, so a theme can remap
// them for light backgrounds or drop them entirely.
package ui

import (
	"fmt"
	"os"
	"slices"
	"sync"
)

// ThemeEnv names the environment variable selecting a theme by name.
const ThemeEnv = "AITKEN_THEME"

// Theme maps each display role to an ANSI escape sequence.
type Theme struct {
	Name string
	// Heading marks runner and problem names.
	Heading string
	// Muted is used for exact limits, paths and other reference values.
	Muted string
	// Converged marks estimates and runs that met their tolerance.
	Converged string
	// Stalled marks runs that used their whole budget, and durations.
	Stalled string
	// Failed marks errors and degenerate runs.
	Failed string
	// Accent highlights term counts.
	Accent    string
	Bold      string
	Underline string
	Reset     string
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Heading:   "\033[38;5;39m",
		Muted:     "\033[38;5;245m",
		Converged: "\033[38;5;82m",
		Stalled:   "\033[38;5;220m",
		Failed:    "\033[38;5;196m",
		Accent:    "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme uses darker shades readable on light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Heading:   "\033[38;5;27m",
		Muted:     "\033[38;5;240m",
		Converged: "\033[38;5;28m",
		Stalled:   "\033[38;5;130m",
		Failed:    "\033[38;5;124m",
		Accent:    "\033[38;5;54m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme emits no escape sequences at all.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	mu      sync.RWMutex
	current = DarkTheme
)

// Names returns the registered theme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the theme registered under name.
func Lookup(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// Current returns the active theme.
func Current() Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Use activates t and returns a function restoring the previous theme,
// mostly for tests.
func Use(t Theme) (restore func()) {
	mu.Lock()
	prev := current
	current = t
	mu.Unlock()
	return func() {
		mu.Lock()
		current = prev
		mu.Unlock()
	}
}

// SetTheme activates the theme registered under name. An unknown name
// leaves the active theme unchanged and returns an error.
func SetTheme(name string) error {
	t, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown theme %q (valid: %v)", name, Names())
	}
	mu.Lock()
	current = t
	mu.Unlock()
	return nil
}

// InitTheme picks the theme for this process. Colors are disabled by the
// noColor flag, by a NO_COLOR variable of any value (https://no-color.org/)
// or by TERM=dumb. Otherwise AITKEN_THEME may name a theme, and the dark
// theme is the fallback.
//
// Parameters:
//   - noColor: If true, disables all color output regardless of environment.
func InitTheme(noColor bool) {
	t := DarkTheme
	_, noColorEnv := os.LookupEnv("NO_COLOR")
	switch {
	case noColor, noColorEnv, os.Getenv("TERM") == "dumb":
		t = NoColorTheme
	default:
		if named, ok := Lookup(os.Getenv(ThemeEnv)); ok {
			t = named
		}
	}
	mu.Lock()
	current = t
	mu.Unlock()
}
