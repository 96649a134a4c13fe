// Package problems holds the catalogue of convergent sequences and series used
// to exercise the accelerator, together with the plain evaluation that serves
// as the baseline in comparisons.
package problems

import (
	"fmt"
	"iter"

	"github.com/agbru/aitken/pkg/aitken"
	"github.com/agbru/aitken/pkg/models"
)

// Kind tells whether the terms of a problem are the values whose limit is
// sought (Sequence) or terms to be summed (Series).
type Kind int

const (
	Sequence Kind = iota
	Series
)

// String returns "sequence" or "series".
func (k Kind) String() string {
	if k == Series {
		return "series"
	}
	return "sequence"
}

// Form tells how a problem supplies its terms.
type Form int

const (
	// Function problems expose an indexed term function.
	Function Form = iota
	// Iterator problems expose a stream, typically a recurrence.
	Iterator
)

// String returns "function" or "iterator".
func (f Form) String() string {
	if f == Iterator {
		return "iterator"
	}
	return "function"
}

// Problem describes one convergent sequence or series with a known limit.
// Exactly one of Term and Stream is set.
type Problem struct {
	// Name is the registry key, e.g. "leibniz".
	Name string
	// Title is a short human-readable description.
	Title string
	Kind  Kind
	// Term returns the n-th term, n starting at 0.
	Term func(n uint64) float64
	// Stream returns a fresh, possibly unbounded, stream of terms.
	Stream func() iter.Seq[float64]
	// Limit is the exact value the sequence or series converges to.
	Limit float64
}

// Form reports whether p is a function or an iterator problem.
func (p Problem) Form() Form {
	if p.Term != nil {
		return Function
	}
	return Iterator
}

// Terms returns the first n terms of p as a stream, whatever its form.
func (p Problem) Terms(n uint64) iter.Seq[float64] {
	if p.Term != nil {
		return aitken.Terms(p.Term, n)
	}
	return aitken.Take(p.Stream(), n)
}

// Info returns the JSON description of p.
func (p Problem) Info() models.ProblemInfo {
	return models.ProblemInfo{
		Name:  p.Name,
		Title: p.Title,
		Kind:  p.Kind.String(),
		Form:  p.Form().String(),
		Limit: models.Float(p.Limit),
	}
}

// Validate checks that p is usable.
func (p Problem) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("problem has no name")
	}
	if (p.Term == nil) == (p.Stream == nil) {
		return fmt.Errorf("problem %q must define exactly one of Term and Stream", p.Name)
	}
	return nil
}

// Observe returns a copy of p whose terms invoke hook once each, before the
// term is handed to the consumer. It is how callers count consumed terms or
// interleave cancellation checks without touching the accelerator.
func (p Problem) Observe(hook func()) Problem {
	if hook == nil {
		return p
	}
	if term := p.Term; term != nil {
		p.Term = func(n uint64) float64 {
			hook()
			return term(n)
		}
		return p
	}
	stream := p.Stream
	p.Stream = func() iter.Seq[float64] {
		return func(yield func(float64) bool) {
			for x := range stream() {
				hook()
				if !yield(x) {
					return
				}
			}
		}
	}
	return p
}

// Accelerate runs the accelerator form matching p: Limit or Sum for function
// problems, LimitSeq or SumSeq for iterator problems. Iterator problems are
// truncated to budget terms.
//
// Parameters:
//   - acc: The accelerator carrying the degenerate-step policy.
//   - p: The problem to evaluate.
//   - tol: The convergence predicate.
//   - budget: The maximum number of terms to consume.
//
// Returns:
//   - aitken.Result[float64]: The accelerated estimate.
//   - error: aitken.ErrDegenerate under the Fail policy.
func Accelerate(acc aitken.Accelerator[float64], p Problem, tol aitken.Tolerance[float64], budget uint64) (aitken.Result[float64], error) {
	switch {
	case p.Term != nil && p.Kind == Series:
		return acc.Sum(p.Term, tol, budget)
	case p.Term != nil:
		return acc.Limit(p.Term, tol, budget)
	case p.Kind == Series:
		return acc.SumSeq(aitken.Take(p.Stream(), budget), tol)
	default:
		return acc.LimitSeq(aitken.Take(p.Stream(), budget), tol)
	}
}

// Direct evaluates p without acceleration: it sums (or iterates) terms until
// tol accepts two consecutive partial sums (or terms), or until budget terms
// have been consumed. The result uses the same accounting as the accelerator
// so both can be compared term for term.
func Direct(p Problem, tol aitken.Tolerance[float64], budget uint64) aitken.Result[float64] {
	if tol == nil {
		tol = aitken.Never[float64]()
	}
	var res aitken.Result[float64]
	for x := range p.Terms(budget) {
		prev := res.Value
		if p.Kind == Series {
			res.Value += x
		} else {
			res.Value = x
		}
		res.Iterations++
		if res.Iterations > 1 && tol(prev, res.Value) {
			res.Converged = true
			break
		}
	}
	return res
}
