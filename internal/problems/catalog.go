package problems

import (
	"iter"
	"math"
)

// DottieNumber is the unique real fixed point of cos.
const DottieNumber = 0.739085133215160641655312087673873404

// Catalog returns the built-in problems, in no particular order.
func Catalog() []Problem {
	return []Problem{
		{
			Name:  "leibniz",
			Title: "Leibniz series 4(1 - 1/3 + 1/5 - ...) = π",
			Kind:  Series,
			Term:  leibnizTerm,
			Limit: math.Pi,
		},
		{
			Name:  "basel",
			Title: "Basel problem Σ 1/(n+1)² = π²/6",
			Kind:  Series,
			Term:  baselTerm,
			Limit: math.Pi * math.Pi / 6,
		},
		{
			Name:  "ln2",
			Title: "Alternating harmonic series Σ (-1)ⁿ/(n+1) = ln 2",
			Kind:  Series,
			Term:  alternatingHarmonicTerm,
			Limit: math.Ln2,
		},
		{
			Name:  "geometric",
			Title: "Geometric series Σ 2⁻ⁿ = 2",
			Kind:  Series,
			Term:  halvingTerm,
			Limit: 2,
		},
		{
			Name:   "euler",
			Title:  "Exponential series Σ 1/n! = e",
			Kind:   Series,
			Stream: factorialReciprocals,
			Limit:  math.E,
		},
		{
			Name:  "compound",
			Title: "Compound interest (1 + 1/n)ⁿ → e",
			Kind:  Sequence,
			Term:  compoundTerm,
			Limit: math.E,
		},
		{
			Name:   "dottie",
			Title:  "Fixed-point iteration xₖ₊₁ = cos xₖ",
			Kind:   Sequence,
			Stream: dottieIteration,
			Limit:  DottieNumber,
		},
		{
			Name:   "heron",
			Title:  "Heron's method xₖ₊₁ = (xₖ + 2/xₖ)/2 → √2",
			Kind:   Sequence,
			Stream: heronIteration,
			Limit:  math.Sqrt2,
		},
	}
}

func leibnizTerm(n uint64) float64 {
	if n%2 == 0 {
		return 4 / float64(2*n+1)
	}
	return -4 / float64(2*n+1)
}

func baselTerm(n uint64) float64 {
	x := 1 / float64(n+1)
	return float64(x * x)
}

func alternatingHarmonicTerm(n uint64) float64 {
	if n%2 == 0 {
		return 1 / float64(n+1)
	}
	return -1 / float64(n+1)
}

func halvingTerm(n uint64) float64 {
	return math.Ldexp(1, -int(min(n, 1100)))
}

func compoundTerm(n uint64) float64 {
	k := float64(n + 1)
	return math.Pow(1+1/k, k)
}

// factorialReciprocals yields 1/0!, 1/1!, 1/2!, ... each term derived from the
// previous one by a single division.
func factorialReciprocals() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		term := 1.0
		for k := 1.0; ; k++ {
			if !yield(term) {
				return
			}
			term /= k
		}
	}
}

func dottieIteration() iter.Seq[float64] {
	return fixedPoint(1, math.Cos)
}

func heronIteration() iter.Seq[float64] {
	return fixedPoint(1, func(x float64) float64 { return (x + 2/x) / 2 })
}

func fixedPoint(x0 float64, next func(float64) float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for x := x0; yield(x); x = next(x) {
		}
	}
}
