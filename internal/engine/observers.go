package engine

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Channel Observer
// ─────────────────────────────────────────────────────────────────────────────

// ChannelObserver forwards progress updates to a channel, which is how the
// CLI spinner and the orchestration layer receive them.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer that sends updates to ch. The
// channel should be buffered; updates that do not fit are dropped.
//
// Parameters:
//   - ch: The channel to send progress updates to. If nil, updates are discarded.
//
// Returns:
//   - *ChannelObserver: A new observer that forwards to the channel.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update implements ProgressObserver with a non-blocking send.
func (o *ChannelObserver) Update(runIndex int, progress float64) {
	if o.channel == nil {
		return
	}
	update := ProgressUpdate{RunnerIndex: runIndex, Value: min(progress, 1.0)}

	select {
	case o.channel <- update:
	default:
		// Channel full; the display catches up on the next update.
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver logs progress with zerolog, at most once per threshold step
// for each runner.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64
	lastLog   map[int]float64
	mu        sync.Mutex
}

// NewLoggingObserver creates an observer that logs progress whenever it moves
// by at least threshold. A non-positive threshold selects 10%.
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &LoggingObserver{
		logger:    logger,
		threshold: threshold,
		lastLog:   make(map[int]float64),
	}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(runIndex int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	last, seen := o.lastLog[runIndex]
	if seen && progress < 1.0 && progress-last < o.threshold {
		return
	}
	o.logger.Debug().
		Int("runner", runIndex).
		Float64("progress", progress).
		Str("percent", strconv.FormatFloat(progress*100, 'f', 1, 64)+"%").
		Msg("run progress")
	o.lastLog[runIndex] = progress
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer (Prometheus)
// ─────────────────────────────────────────────────────────────────────────────

// progressGauge is registered once globally to avoid duplicate registration
// errors.
var progressGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "aitken_run_progress",
		Help: "Fraction of the term budget consumed by in-flight runs (0.0 to 1.0)",
	},
	[]string{"runner_index"},
)

// MetricsObserver exports progress to a Prometheus gauge.
type MetricsObserver struct {
	gauge *prometheus.GaugeVec
}

// NewMetricsObserver creates an observer that updates the progress gauge.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{gauge: progressGauge}
}

// Update implements ProgressObserver.
func (o *MetricsObserver) Update(runIndex int, progress float64) {
	o.gauge.WithLabelValues(strconv.Itoa(runIndex)).Set(progress)
}
