package ui

import "strings"

// The Color functions name the roles of the active theme after the hue they
// have in the dark theme, which is how most call sites think of them.

// ColorReset returns the sequence clearing all formatting.
func ColorReset() string { return Current().Reset }

// ColorRed returns the failure color.
func ColorRed() string { return Current().Failed }

// ColorGreen returns the convergence color.
func ColorGreen() string { return Current().Converged }

// ColorYellow returns the stalled-run color.
func ColorYellow() string { return Current().Stalled }

// ColorBlue returns the heading color.
func ColorBlue() string { return Current().Heading }

// ColorMagenta returns the accent color.
func ColorMagenta() string { return Current().Accent }

// ColorCyan returns the muted color.
func ColorCyan() string { return Current().Muted }

// ColorBold returns the bold sequence.
func ColorBold() string { return Current().Bold }

// ColorUnderline returns the underline sequence.
func ColorUnderline() string { return Current().Underline }

// Paint wraps s in code and a reset. With an empty code s is returned as is,
// so no stray reset is emitted when colors are off.
func Paint(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + Current().Reset
}

// HeaderRow formats the underlined, tab-separated header line of a
// tabwriter table, newline included.
func HeaderRow(cols ...string) string {
	u := Current().Underline
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(Paint(u, c))
	}
	b.WriteByte('\n')
	return b.String()
}
