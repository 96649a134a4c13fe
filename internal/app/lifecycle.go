package app

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// SetupContext bounds ctx by timeout. A non-positive timeout leaves the
// context without a deadline. When the deadline fires, context.Cause reports
// the configured limit.
//
// Parameters:
//   - ctx: The parent context.
//   - timeout: The maximum duration of the command.
//
// Returns:
//   - context.Context: The bounded context.
//   - context.CancelFunc: Releases the timer; it should be deferred.
func SetupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	cause := fmt.Errorf("%w: timeout of %s reached", context.DeadlineExceeded, timeout)
	return context.WithTimeoutCause(ctx, timeout, cause)
}

// SetupSignals returns a context canceled by the first SIGINT or SIGTERM, so
// an interrupted run unwinds through the same cancellation path as a timeout.
func SetupSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// Lifecycle owns the timer and the signal registration of one command.
type Lifecycle struct {
	cancelTimeout context.CancelFunc
	stopSignals   context.CancelFunc
	once          sync.Once
}

// SetupLifecycle bounds ctx by timeout and by termination signals, whichever
// comes first. The returned Lifecycle must be cleaned up once the command
// returns.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *Lifecycle) {
	ctx, cancelTimeout := SetupContext(ctx, timeout)
	ctx, stopSignals := SetupSignals(ctx)
	return ctx, &Lifecycle{cancelTimeout: cancelTimeout, stopSignals: stopSignals}
}

// Cleanup stops listening for signals and releases the timer. It is safe to
// call more than once.
func (l *Lifecycle) Cleanup() {
	l.once.Do(func() {
		if l.stopSignals != nil {
			l.stopSignals()
		}
		if l.cancelTimeout != nil {
			l.cancelTimeout()
		}
	})
}
