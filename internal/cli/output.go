package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/aitken/pkg/models"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet mode prints only the estimate.
	Quiet bool
	// Verbose shows the estimate with full float64 precision.
	Verbose bool
	// Digits is the number of decimals shown when Verbose is off.
	Digits int
	// Details adds the detailed analysis after the result.
	Details bool
}

// WriteReportToFile writes a run report to config.OutputFile, creating its
// directory when needed. It does nothing when no file is configured.
//
// Parameters:
//   - report: The report of the run.
//   - config: Output configuration.
//
// Returns:
//   - error: An error if the file cannot be written.
func WriteReportToFile(report models.AccelerationReport, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Aitken Acceleration Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Problem: %s\n", report.Problem)
	fmt.Fprintf(file, "# Runner: %s\n", report.Runner)
	fmt.Fprintf(file, "# Policy: %s\n", report.Policy)
	fmt.Fprintf(file, "# Budget: %d\n", report.Budget)
	fmt.Fprintf(file, "# Terms: %d\n", report.Iterations)
	fmt.Fprintf(file, "# Converged: %t\n", report.Converged)
	fmt.Fprintf(file, "# Duration: %s\n", report.Duration)
	fmt.Fprintf(file, "\n")
	fmt.Fprintf(file, "estimate = %s\n", FormatValue(float64(report.Value), 0, true))
	fmt.Fprintf(file, "limit    = %s\n", FormatValue(float64(report.Limit), 0, true))
	fmt.Fprintf(file, "error    = %s\n", FormatError(float64(report.AbsError)))

	return nil
}

// FormatQuietResult formats a report as the bare estimate, suitable for
// scripting.
func FormatQuietResult(report models.AccelerationReport, digits int, verbose bool) string {
	return FormatValue(float64(report.Value), digits, verbose)
}

// DisplayQuietResult outputs a result in quiet mode (minimal output).
func DisplayQuietResult(out io.Writer, report models.AccelerationReport, digits int, verbose bool) {
	fmt.Fprintln(out, FormatQuietResult(report, digits, verbose))
}

// DisplayResultWithConfig displays a report according to config and saves it
// to a file when requested.
//
// Parameters:
//   - out: The output writer.
//   - report: The report of the run.
//   - config: Output configuration.
//
// Returns:
//   - error: An error if file output fails.
func DisplayResultWithConfig(out io.Writer, report models.AccelerationReport, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, report, config.Digits, config.Verbose)
	} else {
		DisplayResult(report, config.Digits, config.Verbose, config.Details, out)
	}

	if config.OutputFile != "" {
		if err := WriteReportToFile(report, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ColorGreen(), ColorCyan(), config.OutputFile, ColorReset())
		}
	}

	return nil
}

// WriteJSON encodes v as indented JSON followed by a newline.
func WriteJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
