package cli

import (
	"fmt"
	"strings"
	"time"
)

// ETA tuning. Progress is the share of the budget consumed, so the estimate
// is the time left until the budget runs out: an upper bound, since most
// runs stop as soon as the tolerance accepts.
const (
	// etaWarmup is the time before any estimate is shown.
	etaWarmup = 100 * time.Millisecond
	// etaMinProgress is the progress below which the rate is not trusted.
	etaMinProgress = 0.001
	// etaSampleInterval is the minimum spacing of rate samples.
	etaSampleInterval = 50 * time.Millisecond
	// etaSmoothing is the weight of a new sample in the smoothed rate.
	etaSmoothing = 0.3
	// etaCap bounds the displayed estimate.
	etaCap = 24 * time.Hour
)

// ProgressWithETA extends ProgressState with an estimate of the time left
// before the budget is exhausted, from the smoothed rate of progress.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // progress per second, exponentially smoothed
}

// NewProgressWithETA creates a progress tracker for numRunners runners.
func NewProgressWithETA(numRunners int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numRunners),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records the progress of runner index and returns the average
// progress with the current estimate. The estimate is 0 while warming up.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (progress float64, eta time.Duration) {
	p.Update(index, value)
	progress = p.CalculateAverage()
	now := time.Now()

	if now.Sub(p.startTime) < etaWarmup || progress <= etaMinProgress {
		p.lastUpdate, p.lastProgress = now, progress
		return progress, 0
	}
	if dt := now.Sub(p.lastUpdate); dt > etaSampleInterval {
		p.sample(progress, dt, now.Sub(p.startTime))
		p.lastUpdate, p.lastProgress = now, progress
	}
	return progress, p.etaAt(progress)
}

// sample folds the progress made over dt into the smoothed rate. The first
// sample uses the average rate since the start.
func (p *ProgressWithETA) sample(progress float64, dt, elapsed time.Duration) {
	delta := progress - p.lastProgress
	if delta <= 0 {
		return
	}
	if p.progressRate <= 0 {
		p.progressRate = progress / elapsed.Seconds()
		return
	}
	p.progressRate = (1-etaSmoothing)*p.progressRate + etaSmoothing*delta/dt.Seconds()
}

// GetETA returns the estimate for the current progress without sampling.
func (p *ProgressWithETA) GetETA() time.Duration {
	return p.etaAt(p.CalculateAverage())
}

func (p *ProgressWithETA) etaAt(progress float64) time.Duration {
	if p.progressRate <= 0 || progress >= 1 {
		return 0
	}
	seconds := (1 - progress) / p.progressRate
	if seconds >= etaCap.Seconds() {
		return etaCap
	}
	return time.Duration(seconds * float64(time.Second))
}

// FormatETA renders eta with its two most significant units, e.g. "45s",
// "2m30s" or "1h15m". Zero units are dropped; sub-second values read "< 1s"
// and non-positive values "calculating...".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		return joinUnits(int(eta.Minutes()), "m", int(eta.Seconds())%60, "s")
	default:
		return joinUnits(int(eta.Hours()), "h", int(eta.Minutes())%60, "m")
	}
}

func joinUnits(major int, majorUnit string, minor int, minorUnit string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d%s", major, majorUnit)
	if minor > 0 {
		fmt.Fprintf(&b, "%d%s", minor, minorUnit)
	}
	return b.String()
}

// FormatProgressBarWithETA renders progress as a percentage, a bar of width
// cells and the estimate, e.g. "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
