// Package cli provides the terminal front end of the accelerator: the
// asynchronous progress display, result and sweep rendering, file and quiet
// output, shell completion and the interactive REPL.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/agbru/aitken/internal/engine"
	"github.com/agbru/aitken/internal/ui"
	"github.com/briandowns/spinner"
)

// FormatExecutionDuration formats a duration in µs below a millisecond, in ms
// below a second and with time.Duration.String otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	// Optimized to 200ms to reduce updates and improve performance.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// The CLI re-exports the theme colors so rendering code reads cli.ColorX
// alongside the other display helpers.

// ColorReset returns the sequence clearing all formatting.
func ColorReset() string { return ui.ColorReset() }

// ColorRed returns the failure color.
func ColorRed() string { return ui.ColorRed() }

// ColorGreen returns the convergence color.
func ColorGreen() string { return ui.ColorGreen() }

// ColorYellow returns the stalled-run color.
func ColorYellow() string { return ui.ColorYellow() }

// ColorBlue returns the heading color.
func ColorBlue() string { return ui.ColorBlue() }

// ColorMagenta returns the accent color.
func ColorMagenta() string { return ui.ColorMagenta() }

// ColorCyan returns the muted color.
func ColorCyan() string { return ui.ColorCyan() }

// ColorBold returns the bold sequence.
func ColorBold() string { return ui.ColorBold() }

// ColorUnderline returns the underline sequence.
func ColorUnderline() string { return ui.ColorUnderline() }

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	//
	// Parameters:
	//   - suffix: The text string to display.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
//
// Parameters:
//   - suffix: The string to display.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState aggregates the progress of concurrent runs. Each runner
// reports the fraction of its budget consumed; the display shows the average.
type ProgressState struct {
	progresses []float64
	numRunners int
}

// NewProgressState creates a ProgressState tracking numRunners runs.
func NewProgressState(numRunners int) *ProgressState {
	return &ProgressState{
		progresses: make([]float64, numRunners),
		numRunners: numRunners,
	}
}

// Update records a new progress value for one runner. Out-of-range indices
// are ignored.
//
// Parameters:
//   - index: The index of the runner (0 to numRunners-1).
//   - value: The progress value (0.0 to 1.0).
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the average progress across all tracked runners.
func (ps *ProgressState) CalculateAverage() float64 {
	var totalProgress float64
	for _, p := range ps.progresses {
		totalProgress += p
	}
	if ps.numRunners == 0 {
		return 0.0
	}
	return totalProgress / float64(ps.numRunners)
}

// progressBar generates a string representing a textual progress bar.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
//   - length: The total character width of the progress bar.
//
// Returns:
//   - string: A string representation of the progress bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// DisplayProgress renders a spinner and a budget progress bar until
// progressChan is closed. It runs in its own goroutine and signals wg when
// done. Most runs converge long before their budget is consumed, so the bar
// usually jumps to 100% at the end; the spinner shows the run is alive.
//
// Parameters:
//   - wg: A WaitGroup to signal when the display routine is complete.
//   - progressChan: The channel receiving progress updates.
//   - numRunners: The number of runners contributing to the progress.
//   - out: The io.Writer to which the progress bar is rendered.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan engine.ProgressUpdate, numRunners int, out io.Writer) {
	defer wg.Done()
	if numRunners <= 0 {
		for range progressChan { // Drain the channel
		}
		return
	}

	label := "Progress"
	if numRunners > 1 {
		label = "Avg progress"
	}
	state := NewProgressWithETA(numRunners)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				if !spinnerStopped {
					s.Stop()
					spinnerStopped = true
				}
				fmt.Fprintf(out, "%s: %s\n", label, FormatProgressBarWithETA(1, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update.RunnerIndex, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label,
				FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth)))
		}
	}
}

