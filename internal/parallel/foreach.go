package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForEach calls fn(0) ... fn(n-1) concurrently with at most limit calls in
// flight, waits for all of them and returns the error of the lowest failing
// index as an *IndexError. A limit below 1 means runtime.NumCPU(). Every
// index is visited even after an error; fn decides whether to bail out early.
//
// Parameters:
//   - n: The number of indices.
//   - limit: The maximum number of concurrent calls.
//   - fn: The function to run for each index.
//
// Returns:
//   - error: The failure with the lowest index, or nil.
func ForEach(n, limit int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if limit < 1 {
		limit = runtime.NumCPU()
	}

	var g errgroup.Group
	g.SetLimit(limit)
	var ec ErrorCollector
	for i := 0; i < n; i++ {
		g.Go(func() error {
			ec.Record(i, fn(i))
			// Returning nil keeps the group from stopping at the first error.
			return nil
		})
	}
	_ = g.Wait()
	return ec.Err()
}
