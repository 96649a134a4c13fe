package aitken

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrDegenerate is returned by an Accelerator using the Fail policy when a
// step has a zero second difference or produces a non-finite estimate.
var ErrDegenerate = errors.New("aitken: degenerate second difference")

// Policy selects how an Accelerator handles a degenerate step, that is a zero
// second difference or an estimate that is infinite or NaN.
type Policy int

const (
	// Propagate performs no check: the division result is used as the new
	// estimate and the run continues with the next window.
	Propagate Policy = iota
	// Stop treats a degenerate step as convergence and returns the previous
	// estimate with Converged and Degenerate set.
	Stop
	// Fail returns the previous estimate together with ErrDegenerate.
	Fail
)

var policyNames = [...]string{"propagate", "stop", "fail"}

// String returns the lower-case name of the policy.
func (p Policy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policyNames[p]
}

// ParsePolicy maps a policy name, case-insensitively, to its Policy.
func ParsePolicy(s string) (Policy, error) {
	for i, name := range policyNames {
		if strings.EqualFold(s, name) {
			return Policy(i), nil
		}
	}
	return Propagate, fmt.Errorf("aitken: unknown policy %q", s)
}

// Option configures an Accelerator.
type Option func(*settings)

type settings struct {
	policy Policy
}

// WithPolicy sets the degenerate-step policy. The default is Propagate.
func WithPolicy(p Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// Accelerator runs the four acceleration forms under a fixed Policy. The zero
// value uses Propagate. An Accelerator holds no state between calls and is
// safe for concurrent use.
type Accelerator[T Number] struct {
	policy Policy
}

// New returns an Accelerator configured by opts.
func New[T Number](opts ...Option) Accelerator[T] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return Accelerator[T]{policy: s.policy}
}

// Policy returns the degenerate-step policy of a.
func (a Accelerator[T]) Policy() Policy {
	return a.policy
}

// Limit is the function form of the sequence accelerator. See the
// package-level Limit for the budget and iteration accounting.
func (a Accelerator[T]) Limit(f func(uint64) T, tol Tolerance[T], budget uint64) (Result[T], error) {
	w := a.window(tol)
	for i := uint64(0); i < budget; i++ {
		if !w.admit(f(i)) {
			break
		}
	}
	return w.res, w.err
}

// LimitSeq is the iterator form of the sequence accelerator.
func (a Accelerator[T]) LimitSeq(seq iter.Seq[T], tol Tolerance[T]) (Result[T], error) {
	w := a.window(tol)
	for x := range seq {
		if !w.admit(x) {
			break
		}
	}
	return w.res, w.err
}

// Sum is the function form of the series accelerator.
func (a Accelerator[T]) Sum(f func(uint64) T, tol Tolerance[T], budget uint64) (Result[T], error) {
	w := a.window(tol)
	var s T
	for i := uint64(0); i < budget; i++ {
		s += f(i)
		if !w.admit(s) {
			break
		}
	}
	return w.res, w.err
}

// SumSeq is the iterator form of the series accelerator.
func (a Accelerator[T]) SumSeq(seq iter.Seq[T], tol Tolerance[T]) (Result[T], error) {
	w := a.window(tol)
	var s T
	for t := range seq {
		s += t
		if !w.admit(s) {
			break
		}
	}
	return w.res, w.err
}

func (a Accelerator[T]) window(tol Tolerance[T]) *window[T] {
	if tol == nil {
		tol = Never[T]()
	}
	return &window[T]{policy: a.policy, tol: tol}
}

// window is the working set of one run: the two most recent values and the
// result built so far. The third value of each triple is the one being
// admitted.
type window[T Number] struct {
	policy Policy
	tol    Tolerance[T]
	x0, x1 T
	res    Result[T]
	err    error
}

// admit feeds the next raw value or partial sum into the window and reports
// whether the run should continue.
func (w *window[T]) admit(x T) bool {
	w.res.Iterations++
	switch w.res.Iterations {
	case 1:
		w.x0, w.res.Value = x, x
		return true
	case 2:
		w.x1, w.res.Value = x, x
		return true
	}

	estimate, d2 := step(w.x0, w.x1, x)
	if w.policy != Propagate && (d2 == 0 || !finite(estimate)) {
		w.res.Degenerate = true
		if w.policy == Fail {
			w.err = ErrDegenerate
		} else {
			w.res.Converged = true
		}
		return false
	}

	prev := w.res.Value
	w.res.Value = estimate
	w.x0, w.x1 = w.x1, x
	if w.tol(prev, estimate) {
		w.res.Converged = true
		return false
	}
	return true
}
