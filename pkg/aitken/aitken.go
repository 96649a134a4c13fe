package aitken

import "iter"

// Number is the set of element types the accelerator operates on. The
// recurrence only needs subtraction, multiplication and division, so both
// real and complex floating-point types qualify.
type Number interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Tolerance decides whether two consecutive accelerated estimates are close
// enough to stop. It is called once per candidate estimate with the previous
// estimate first and the new one second. A nil Tolerance never accepts.
type Tolerance[T Number] func(prev, next T) bool

// Result is the outcome of one acceleration run.
type Result[T Number] struct {
	// Value is the accelerated estimate. With fewer than three input values
	// it is the last raw value (or partial sum) read.
	Value T
	// Iterations is the number of terms consumed: generator invocations for
	// the function forms, values read for the iterator forms.
	Iterations uint64
	// Converged reports that the tolerance accepted Value, or that a Stop
	// policy ended the run on a degenerate step.
	Converged bool
	// Degenerate reports that the run met a zero second difference or a
	// non-finite step. Only set by the Stop and Fail policies.
	Degenerate bool
}

// Step applies one Aitken transform to three consecutive values:
//
//	Δx  = x1 - x0
//	Δ²x = x2 - x1 - Δx
//	A   = x0 - (Δx)² / Δ²x
//
// No special case is made for a zero denominator.
func Step[T Number](x0, x1, x2 T) T {
	a, _ := step(x0, x1, x2)
	return a
}

func step[T Number](x0, x1, x2 T) (estimate, d2 T) {
	dx := x1 - x0
	d2 = x2 - x1 - dx
	return x0 - (dx*dx)/d2, d2
}

// finite reports whether v holds neither an infinity nor a NaN in any of its
// components. v-v is zero for every finite value and NaN otherwise.
func finite[T Number](v T) bool {
	return v-v == 0
}

// Limit estimates the limit of the sequence f(0), f(1), ... invoking f at
// most budget times.
//
// f is invoked at 0 and 1 to seed the window, then once per index up to
// budget-1. The run stops as soon as tol accepts a new estimate; Iterations
// is then the number of invocations made. On exhaustion the last estimate is
// returned with Iterations equal to budget.
//
// Parameters:
//   - f: The term-generating function, called with strictly increasing indices.
//   - tol: The convergence predicate.
//   - budget: The maximum number of invocations of f.
//
// Returns:
//   - Result[T]: The estimate and the number of terms consumed.
func Limit[T Number](f func(uint64) T, tol Tolerance[T], budget uint64) Result[T] {
	res, _ := Accelerator[T]{}.Limit(f, tol, budget)
	return res
}

// LimitSeq estimates the limit of the values yielded by seq. The sequence is
// read once, in order, and reading stops at the accepted estimate. Sequences
// of one or two values are returned unaccelerated.
func LimitSeq[T Number](seq iter.Seq[T], tol Tolerance[T]) Result[T] {
	res, _ := Accelerator[T]{}.LimitSeq(seq, tol)
	return res
}

// Sum estimates the sum of the series f(0) + f(1) + ... by accelerating its
// partial sums. Budget and iteration accounting follow Limit.
func Sum[T Number](f func(uint64) T, tol Tolerance[T], budget uint64) Result[T] {
	res, _ := Accelerator[T]{}.Sum(f, tol, budget)
	return res
}

// SumSeq estimates the sum of the series whose terms are yielded by seq.
// With one or two terms the last partial sum is returned unaccelerated.
func SumSeq[T Number](seq iter.Seq[T], tol Tolerance[T]) Result[T] {
	res, _ := Accelerator[T]{}.SumSeq(seq, tol)
	return res
}
