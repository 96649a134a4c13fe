package ui

import (
	"os"
	"strings"
	"testing"
)

// Tests in this file mutate the process-wide theme and environment, so none
// of them run in parallel.

func TestSetTheme(t *testing.T) {
	defer Use(Current())()

	for _, name := range Names() {
		if err := SetTheme(name); err != nil {
			t.Fatalf("SetTheme(%q): %v", name, err)
		}
		if got := Current().Name; got != name {
			t.Errorf("SetTheme(%q): active theme %q", name, got)
		}
	}

	Use(LightTheme)
	if err := SetTheme("solarized"); err == nil {
		t.Error("SetTheme should reject an unknown name")
	}
	if got := Current().Name; got != "light" {
		t.Errorf("unknown name changed the theme to %q", got)
	}
}

func TestNames(t *testing.T) {
	got := strings.Join(Names(), ",")
	if got != "dark,light,none" {
		t.Errorf("Names() = %s", got)
	}
}

func TestInitTheme(t *testing.T) {
	defer Use(Current())()

	testCases := []struct {
		name    string
		noColor bool
		env     map[string]string
		want    string
	}{
		{"defaults to dark", false, nil, "dark"},
		{"flag disables colors", true, map[string]string{ThemeEnv: "light"}, "none"},
		{"NO_COLOR disables colors", false, map[string]string{"NO_COLOR": "1"}, "none"},
		{"empty NO_COLOR still counts", false, map[string]string{"NO_COLOR": ""}, "none"},
		{"dumb terminal", false, map[string]string{"TERM": "dumb"}, "none"},
		{"theme from environment", false, map[string]string{ThemeEnv: "light"}, "light"},
		{"unknown theme falls back", false, map[string]string{ThemeEnv: "neon"}, "dark"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TERM", "xterm-256color")
			t.Setenv(ThemeEnv, "")
			unsetNoColor(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			InitTheme(tc.noColor)
			if got := Current().Name; got != tc.want {
				t.Errorf("InitTheme(%v) with %v: got %q, want %q", tc.noColor, tc.env, got, tc.want)
			}
		})
	}
}

func TestNoColorThemeIsEmpty(t *testing.T) {
	defer Use(NoColorTheme)()

	for _, code := range []string{ColorReset(), ColorRed(), ColorGreen(), ColorYellow(), ColorBlue(), ColorMagenta(), ColorCyan(), ColorBold(), ColorUnderline()} {
		if code != "" {
			t.Errorf("no-color theme emitted %q", code)
		}
	}
	if got := HeaderRow("Budget", "Value"); got != "Budget\tValue\n" {
		t.Errorf("HeaderRow = %q", got)
	}
}

func TestColorRoles(t *testing.T) {
	defer Use(DarkTheme)()

	if ColorGreen() != DarkTheme.Converged || ColorRed() != DarkTheme.Failed || ColorYellow() != DarkTheme.Stalled {
		t.Error("color functions do not follow the theme roles")
	}
	if got := Paint(ColorRed(), "x"); got != DarkTheme.Failed+"x"+DarkTheme.Reset {
		t.Errorf("Paint = %q", got)
	}
	if got := Paint("", "x"); got != "x" {
		t.Errorf("Paint without code = %q", got)
	}
	row := HeaderRow("A", "B")
	if strings.Count(row, DarkTheme.Underline) != 2 || !strings.HasSuffix(row, "\n") {
		t.Errorf("HeaderRow = %q", row)
	}
}

// unsetNoColor removes NO_COLOR for the duration of the test. t.Setenv
// registers the restore before the variable is removed.
func unsetNoColor(t *testing.T) {
	t.Helper()
	t.Setenv("NO_COLOR", "")
	if err := os.Unsetenv("NO_COLOR"); err != nil {
		t.Fatal(err)
	}
}
