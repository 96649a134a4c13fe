package aitken

import "iter"

// Terms yields f(0), f(1), ..., f(n-1).
func Terms[T any](f func(uint64) T, n uint64) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := uint64(0); i < n; i++ {
			if !yield(f(i)) {
				return
			}
		}
	}
}

// Recurrence yields x0, next(x0), next(next(x0)), ... for at most n values.
// It is the iterator counterpart of a fixed-point iteration.
func Recurrence[T any](x0 T, next func(T) T, n uint64) iter.Seq[T] {
	return func(yield func(T) bool) {
		x := x0
		for i := uint64(0); i < n; i++ {
			if !yield(x) {
				return
			}
			if i+1 < n {
				x = next(x)
			}
		}
	}
}

// Take yields at most the first n values of seq.
func Take[T any](seq iter.Seq[T], n uint64) iter.Seq[T] {
	return func(yield func(T) bool) {
		if n == 0 {
			return
		}
		var i uint64
		for v := range seq {
			if !yield(v) {
				return
			}
			i++
			if i == n {
				return
			}
		}
	}
}

// PartialSums yields the running sums of seq.
func PartialSums[T Number](seq iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		var s T
		for t := range seq {
			s += t
			if !yield(s) {
				return
			}
		}
	}
}

// Accelerated yields the Aitken-transformed sequence A_0, A_1, ... of seq,
// one estimate per value read from the third onwards. No tolerance is
// applied; the caller stops the iteration.
func Accelerated[T Number](seq iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		var x0, x1 T
		var n int
		for x := range seq {
			switch n {
			case 0:
				x0 = x
			case 1:
				x1 = x
			default:
				if !yield(Step(x0, x1, x)) {
					return
				}
				x0, x1 = x1, x
			}
			if n < 2 {
				n++
			}
		}
	}
}
