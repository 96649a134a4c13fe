package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/aitken/pkg/aitken"
)

// ColorProvider supplies the escape codes used to highlight the variable
// part of a status line. It is an interface so this package stays free of any
// dependency on the terminal theme.
type ColorProvider interface {
	Warn() string
	Reset() string
}

// DefaultColorProvider provides no color codes (for non-terminal output).
type DefaultColorProvider struct{}

func (DefaultColorProvider) Warn() string  { return "" }
func (DefaultColorProvider) Reset() string { return "" }

// ExitCode maps a run error to the process exit code: timeouts,
// cancellations, degenerate steps and configuration errors each have their
// own code, anything else is generic. A nil error maps to ExitSuccess.
func ExitCode(err error) int {
	var cfgErr ConfigError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, aitken.ErrDegenerate):
		return ExitErrorDegenerate
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	}
	return ExitErrorGeneric
}

// HandleRunError prints the status line explaining why a run failed and
// returns ExitCode(err).
//
// Parameters:
//   - err: The error that occurred.
//   - duration: The duration of the run before it failed.
//   - out: The io.Writer to which the error message will be written.
//   - colors: Provider for terminal color codes (can be nil for no colors).
//
// Returns:
//   - int: The appropriate exit code for the error type.
func HandleRunError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	code := ExitCode(err)
	if code == ExitSuccess {
		return code
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	after := ""
	if duration > 0 {
		after = fmt.Sprintf(" after %s%s%s", colors.Warn(), duration, colors.Reset())
	}

	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", after)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Warn(), after, colors.Reset())
	case ExitErrorDegenerate:
		fmt.Fprintf(out, "Status: Failure (Degenerate). A zero second difference was met%s: %v\n", after, err)
	case ExitErrorConfig:
		fmt.Fprintf(out, "Status: Failure (Configuration). %v\n", err)
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return code
}
