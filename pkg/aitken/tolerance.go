package aitken

import (
	"math"
	"math/cmplx"
)

// Real is the subset of Number with an ordering, used by the tolerance
// constructors that compare magnitudes.
type Real interface {
	~float32 | ~float64
}

// Complex is the subset of Number with complex values.
type Complex interface {
	~complex64 | ~complex128
}

// Absolute accepts when |next - prev| < eps.
func Absolute[T Real](eps float64) Tolerance[T] {
	return func(prev, next T) bool {
		return math.Abs(float64(next-prev)) < eps
	}
}

// Relative accepts when |prev/next - 1| < eps. A zero next estimate makes the
// ratio infinite or NaN and is never accepted.
func Relative[T Real](eps float64) Tolerance[T] {
	return func(prev, next T) bool {
		return math.Abs(float64(prev)/float64(next)-1) < eps
	}
}

// AbsOrRel accepts when either the absolute difference is below abs or the
// relative difference is below rel. It is the usual choice for series whose
// limit may be close to zero.
func AbsOrRel[T Real](abs, rel float64) Tolerance[T] {
	a, r := Absolute[T](abs), Relative[T](rel)
	return func(prev, next T) bool {
		return a(prev, next) || r(prev, next)
	}
}

// Modulus accepts when the modulus of next - prev is below eps.
func Modulus[T Complex](eps float64) Tolerance[T] {
	return func(prev, next T) bool {
		return cmplx.Abs(complex128(next-prev)) < eps
	}
}

// Never rejects every estimate; the run ends only when the input does.
func Never[T Number]() Tolerance[T] {
	return func(T, T) bool { return false }
}

// Always accepts the first estimate.
func Always[T Number]() Tolerance[T] {
	return func(T, T) bool { return true }
}

// Any accepts when at least one of tols accepts. Nil entries are skipped.
func Any[T Number](tols ...Tolerance[T]) Tolerance[T] {
	return func(prev, next T) bool {
		for _, tol := range tols {
			if tol != nil && tol(prev, next) {
				return true
			}
		}
		return false
	}
}
