// Package aitken implements Aitken's delta-squared process, a sequence
// acceleration technique that estimates the limit of a slowly converging
// sequence, or the sum of a slowly converging series, from three consecutive
// terms at a time.
//
// Four call shapes share one recurrence:
//
//   - Limit: limit of a sequence given by a term-generating function.
//   - LimitSeq: limit of a sequence given by an iterator (a general recurrence).
//   - Sum: limit of a series given by a term-generating function.
//   - SumSeq: limit of a series given by an iterator over its terms.
//
// The series forms are the sequence forms applied to the running partial sums
// S_0 = t_0, S_i = S_{i-1} + t_i instead of the raw terms.
//
// Every call returns a Result carrying the estimate together with the number
// of terms actually consumed. Running out of budget or out of input is not an
// error: the last estimate is returned with Converged set to false.
//
// The package-level functions never guard the division by the second
// difference; a zero denominator yields whatever IEEE-754 produces and the
// run carries on. An Accelerator built with WithPolicy(Stop) or
// WithPolicy(Fail) detects such steps instead.
//
// Example:
//
//	leibniz := func(n uint64) float64 {
//		if n%2 == 0 {
//			return 4 / float64(2*n+1)
//		}
//		return -4 / float64(2*n+1)
//	}
//	res := aitken.Sum(leibniz, aitken.AbsOrRel(1e-8, 1e-6), 1_000_000_000)
//	fmt.Println(res.Value, res.Iterations) // 3.141591151580488 56
package aitken
