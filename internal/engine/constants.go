package engine

// ─────────────────────────────────────────────────────────────────────────────
// Run Tuning Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultBudget is the term budget used when Options.Budget is zero. It
	// matches the budget the Leibniz acceptance scenario is stated with.
	DefaultBudget uint64 = 1_000_000_000

	// DefaultAbsTolerance and DefaultRelTolerance form the default
	// |x-y| < abs || |x/y-1| < rel convergence predicate.
	DefaultAbsTolerance = 1e-8
	DefaultRelTolerance = 1e-6

	// ProgressReportThreshold is the minimum change in the consumed fraction of
	// the budget before a new progress update is emitted.
	ProgressReportThreshold = 0.01

	// CancellationCheckInterval is the number of terms consumed between two
	// context checks. Checking on every term costs more than the term itself
	// for the cheap series of the catalogue.
	CancellationCheckInterval = 4096
)
