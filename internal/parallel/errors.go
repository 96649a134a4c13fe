// Package parallel provides the fan-out helpers used by budget sweeps: a
// bounded ForEach and the collector that picks which failure it reports.
package parallel

import (
	"fmt"
	"sync"
)

// IndexError is the failure of one ForEach index.
type IndexError struct {
	Index int
	Err   error
}

func (e *IndexError) Error() string { return fmt.Sprintf("index %d: %v", e.Index, e.Err) }

func (e *IndexError) Unwrap() error { return e.Err }

// ErrorCollector keeps the failure with the lowest index among those
// recorded, so that the error reported for a fan-out does not depend on
// goroutine scheduling. It is safe for concurrent use; the zero value is
// ready to use.
type ErrorCollector struct {
	mu  sync.Mutex
	err *IndexError
}

// Record notes that index i failed with err. Nil errors are ignored.
func (c *ErrorCollector) Record(i int, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil || i < c.err.Index {
		c.err = &IndexError{Index: i, Err: err}
	}
}

// Err returns the failure with the lowest index as an *IndexError, or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return nil
	}
	return c.err
}
