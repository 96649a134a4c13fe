package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// lookupEnv returns the value of EnvPrefix+key and whether it is set and
// non-empty.
func lookupEnv(key string) (string, bool) {
	val := os.Getenv(EnvPrefix + key)
	return val, val != ""
}

func getEnvString(key, defaultVal string) string {
	if val, ok := lookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvUint64(key string, defaultVal uint64) uint64 {
	if val, ok := lookupEnv(key); ok {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := lookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvFloat accepts any syntax strconv.ParseFloat does, e.g. "1e-10".
func getEnvFloat(key string, defaultVal float64) float64 {
	if val, ok := lookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts "true", "1", "yes" as true and "false", "0", "no" as
// false, case-insensitively. Anything else keeps the default.
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := lookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := lookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if any of the named flags was explicitly set on the
// command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line, giving the
// priority CLI flags > environment variables > defaults.
//
// Supported environment variables:
//   - AITKEN_PROBLEM: Problem name (string)
//   - AITKEN_ALGO: Runner to use (string: aitken, direct, all)
//   - AITKEN_ABS_TOL, AITKEN_REL_TOL: Tolerances (float)
//   - AITKEN_BUDGET: Maximum number of terms (uint64)
//   - AITKEN_POLICY: Degenerate step policy (string)
//   - AITKEN_DIGITS: Displayed decimals (int)
//   - AITKEN_SWEEP_MAX, AITKEN_SWEEP_BASE: Sweep exponent and base
//   - AITKEN_TIMEOUT: Run timeout (duration: "5m", "30s")
//   - AITKEN_PORT: Port for server mode (string)
//   - AITKEN_OUTPUT: Output file path (string)
//   - AITKEN_SERVER, AITKEN_JSON, AITKEN_VERBOSE, AITKEN_DETAILS, AITKEN_QUIET,
//     AITKEN_SWEEP, AITKEN_INTERACTIVE, AITKEN_NO_COLOR: Switches (bool)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "abs") {
		config.AbsTolerance = getEnvFloat("ABS_TOL", config.AbsTolerance)
	}
	if !isFlagSet(fs, "rel") {
		config.RelTolerance = getEnvFloat("REL_TOL", config.RelTolerance)
	}
	if !isFlagSet(fs, "budget") {
		config.Budget = getEnvUint64("BUDGET", config.Budget)
	}
	if !isFlagSet(fs, "digits") {
		config.Digits = getEnvInt("DIGITS", config.Digits)
	}
	if !isFlagSet(fs, "sweep-max") {
		config.SweepMax = getEnvInt("SWEEP_MAX", config.SweepMax)
	}
	if !isFlagSet(fs, "sweep-base") {
		config.SweepBase = getEnvUint64("SWEEP_BASE", config.SweepBase)
	}
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "problem", "p") {
		config.Problem = getEnvString("PROBLEM", config.Problem)
	}
	if !isFlagSet(fs, "algo") {
		config.Algo = getEnvString("ALGO", config.Algo)
	}
	if !isFlagSet(fs, "policy") {
		config.Policy = getEnvString("POLICY", config.Policy)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !isFlagSet(fs, "output", "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	switches := []struct {
		key   string
		flags []string
		field *bool
	}{
		{"SERVER", []string{"server"}, &config.ServerMode},
		{"JSON", []string{"json"}, &config.JSONOutput},
		{"VERBOSE", []string{"v"}, &config.Verbose},
		{"DETAILS", []string{"d", "details"}, &config.Details},
		{"QUIET", []string{"quiet", "q"}, &config.Quiet},
		{"SWEEP", []string{"sweep"}, &config.Sweep},
		{"INTERACTIVE", []string{"interactive"}, &config.Interactive},
		{"NO_COLOR", []string{"no-color"}, &config.NoColor},
	}
	for _, s := range switches {
		if !isFlagSet(fs, s.flags...) {
			*s.field = getEnvBool(s.key, *s.field)
		}
	}
}
