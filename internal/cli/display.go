package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbru/aitken/pkg/models"
)

// FormatValue formats an estimate with the given number of decimals, or with
// the shortest exact representation when verbose is set.
func FormatValue(v float64, digits int, verbose bool) string {
	if verbose {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// FormatError formats an absolute error in scientific notation.
func FormatError(e float64) string {
	if e == 0 {
		return "0"
	}
	return strconv.FormatFloat(e, 'e', 2, 64)
}

// outcomeStatus summarizes the convergence flags of a report.
func outcomeStatus(r models.AccelerationReport) string {
	switch {
	case r.Error != "":
		return fmt.Sprintf("%sFailure (%s)%s", ColorRed(), r.Error, ColorReset())
	case r.Degenerate:
		return fmt.Sprintf("%sStopped (degenerate step)%s", ColorYellow(), ColorReset())
	case r.Converged:
		return fmt.Sprintf("%sConverged%s", ColorGreen(), ColorReset())
	default:
		return fmt.Sprintf("%sBudget exhausted%s", ColorYellow(), ColorReset())
	}
}

// DisplayResult prints the estimate of one run, its distance to the known
// limit and the number of terms consumed. With details set it adds the
// relative error, the budget share used and the run time.
//
// Parameters:
//   - report: The report of the run.
//   - digits: The number of decimals shown for the estimate and limit.
//   - verbose: If true, shows full float64 precision instead of digits.
//   - details: If true, prints the detailed analysis.
//   - out: The io.Writer for the output.
func DisplayResult(report models.AccelerationReport, digits int, verbose, details bool, out io.Writer) {
	value, limit := float64(report.Value), float64(report.Limit)

	fmt.Fprintf(out, "\n%s--- Result (%s) ---%s\n", ColorBold(), report.Runner, ColorReset())
	fmt.Fprintf(out, "Estimate        : %s%s%s\n", ColorGreen(), FormatValue(value, digits, verbose), ColorReset())
	fmt.Fprintf(out, "Limit           : %s%s%s\n", ColorCyan(), FormatValue(limit, digits, verbose), ColorReset())
	fmt.Fprintf(out, "Absolute error  : %s%s%s\n", ColorYellow(), FormatError(float64(report.AbsError)), ColorReset())
	fmt.Fprintf(out, "Terms consumed  : %s%s%s\n", ColorMagenta(), formatNumberString(strconv.FormatUint(report.Iterations, 10)), ColorReset())
	fmt.Fprintf(out, "Status          : %s\n", outcomeStatus(report))

	if !details {
		return
	}

	fmt.Fprintf(out, "\n%s--- Detailed result analysis ---%s\n", ColorBold(), ColorReset())
	rel := math.Abs(value/limit - 1)
	fmt.Fprintf(out, "Relative error  : %s%s%s\n", ColorYellow(), FormatError(rel), ColorReset())
	if report.AbsError > 0 && !math.IsNaN(float64(report.AbsError)) {
		fmt.Fprintf(out, "Correct digits  : %s%.1f%s\n", ColorCyan(), -math.Log10(float64(report.AbsError)), ColorReset())
	}
	if report.Budget > 0 {
		share := float64(report.Iterations) / float64(report.Budget) * 100
		fmt.Fprintf(out, "Budget used     : %s%.4g%%%s of %s\n", ColorCyan(), share, ColorReset(), formatNumberString(strconv.FormatUint(report.Budget, 10)))
	}
	fmt.Fprintf(out, "Policy          : %s\n", report.Policy)
	if d, err := time.ParseDuration(report.Duration); err == nil {
		fmt.Fprintf(out, "Run time        : %s%s%s\n", ColorGreen(), FormatExecutionDuration(d), ColorReset())
	}
}

// DisplaySweep prints a sweep as a table of budgets with the accelerated and
// plain values and their absolute errors.
//
// Parameters:
//   - report: The sweep to display.
//   - digits: The number of decimals shown for the values.
//   - out: The io.Writer for the output.
func DisplaySweep(report models.SweepReport, digits int, out io.Writer) {
	fmt.Fprintf(out, "\n%s--- Budget sweep: %s (limit %s) ---%s\n",
		ColorBold(), report.Problem, FormatValue(float64(report.Limit), digits, false), ColorReset())

	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Budget\tAccelerated\tError\tPlain\tError\t\n")
	for _, row := range report.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			formatNumberString(strconv.FormatUint(row.Budget, 10)),
			FormatValue(float64(row.Accelerated), digits, false),
			FormatError(float64(row.AcceleratedError)),
			FormatValue(float64(row.Plain), digits, false),
			FormatError(float64(row.PlainError)),
		)
	}
	_ = tw.Flush()
}

// formatNumberString inserts thousand separators into a numeric string.
//
// Parameters:
//   - s: The numeric string to format.
//
// Returns:
//   - string: The formatted string with comma separators.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var builder strings.Builder
	builder.Grow(len(prefix) + n + (n-1)/3)
	builder.WriteString(prefix)

	firstGroupLen := n % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	builder.WriteString(s[:firstGroupLen])
	for i := firstGroupLen; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
