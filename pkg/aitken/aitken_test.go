package aitken

import (
	"iter"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leibniz(n uint64) float64 {
	if n%2 == 0 {
		return 4 / float64(2*n+1)
	}
	return -4 / float64(2*n+1)
}

func basel(n uint64) float64 {
	x := 1 / float64(n+1)
	return x * x
}

func halves(n uint64) float64 {
	return 1 / float64(uint64(1)<<n)
}

func heron(x float64) float64 {
	return (x + 2/x) / 2
}

// directSum adds terms until tol accepts two consecutive partial sums and
// returns the number of terms consumed.
func directSum(f func(uint64) float64, tol Tolerance[float64], budget uint64) (float64, uint64) {
	var s float64
	for i := uint64(0); i < budget; i++ {
		prev := s
		s += f(i)
		if tol(prev, s) {
			return s, i + 1
		}
	}
	return s, budget
}

func TestStep(t *testing.T) {
	t.Parallel()

	// Partial sums of the geometric series 1 + 1/2 + 1/4 are extrapolated exactly.
	assert.Equal(t, 2.0, Step(1.0, 1.5, 1.75))
	// An arithmetic progression has a zero second difference.
	assert.True(t, math.IsInf(Step(1.0, 2.0, 3.0), 0))
	// A constant sequence yields 0/0.
	assert.True(t, math.IsNaN(Step(1.0, 1.0, 1.0)))
}

func TestSum_LeibnizReachesPi(t *testing.T) {
	t.Parallel()

	tol := AbsOrRel[float64](1e-8, 1e-6)
	res := Sum(leibniz, tol, 1_000_000_000)

	require.True(t, res.Converged)
	assert.InEpsilon(t, math.Pi, res.Value, 1e-6)
	assert.Equal(t, 3.141591151580488, res.Value)
	assert.Equal(t, uint64(56), res.Iterations)
	assert.False(t, res.Degenerate)

	_, naive := directSum(leibniz, tol, 1_000_000_000)
	assert.Less(t, res.Iterations, naive)
	assert.Equal(t, uint64(636621), naive)
}

func TestSum_TighterToleranceNeedsMoreTerms(t *testing.T) {
	t.Parallel()

	res := Sum(leibniz, AbsOrRel[float64](1e-12, 1e-8), 10000)
	require.True(t, res.Converged)
	assert.Equal(t, 3.141592638152541, res.Value)
	assert.Equal(t, uint64(254), res.Iterations)

	res = Sum(basel, AbsOrRel[float64](1e-12, 1e-8), 10000)
	require.True(t, res.Converged)
	assert.Equal(t, 1.644838087032238, res.Value)
	assert.Equal(t, uint64(5210), res.Iterations)
}

func TestSum_BaselIsDeterministic(t *testing.T) {
	t.Parallel()

	const budget = 100_000
	first := Sum(basel, Never[float64](), budget)
	second := Sum(basel, Never[float64](), budget)

	assert.Equal(t, first, second)
	assert.Equal(t, 1.6449290708986564, first.Value)
	assert.Equal(t, uint64(budget), first.Iterations)
	assert.False(t, first.Converged)

	// The same recurrence over materialized partial sums.
	sums := make([]float64, budget)
	var s float64
	for i := range sums {
		s += basel(uint64(i))
		sums[i] = s
	}
	var want float64
	for i := 2; i < budget; i++ {
		want = Step(sums[i-2], sums[i-1], sums[i])
	}
	assert.Equal(t, want, first.Value)
}

func TestSum_ThreeTermExactInput(t *testing.T) {
	t.Parallel()

	res := Sum(halves, Never[float64](), 3)
	assert.Equal(t, 2.0, res.Value)
	assert.Equal(t, uint64(3), res.Iterations)

	res = Sum(halves, AbsOrRel[float64](1e-12, 1e-12), 10)
	assert.Equal(t, 2.0, res.Value)
	assert.Equal(t, uint64(4), res.Iterations)
	assert.True(t, res.Converged)
}

func TestLimit_AlwaysStopsAfterThreeInvocations(t *testing.T) {
	t.Parallel()

	var calls uint64
	f := func(n uint64) float64 {
		calls++
		return leibniz(n)
	}
	res := Limit(f, Always[float64](), 1000)

	assert.Equal(t, uint64(3), calls)
	assert.Equal(t, uint64(3), res.Iterations)
	assert.True(t, res.Converged)
	assert.Equal(t, Step(leibniz(0), leibniz(1), leibniz(2)), res.Value)
}

func TestLimit_InvocationsMatchIterations(t *testing.T) {
	t.Parallel()

	for _, budget := range []uint64{0, 1, 2, 3, 10, 500} {
		var calls uint64
		res := Sum(func(n uint64) float64 {
			calls++
			return leibniz(n)
		}, AbsOrRel[float64](1e-8, 1e-6), budget)
		assert.Equal(t, calls, res.Iterations, "budget=%d", budget)
	}
}

func TestLimit_SmallBudgets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		budget uint64
		seq    float64
		series float64
	}{
		{"zero", 0, 0, 0},
		{"one", 1, 4, 4},
		{"two", 2, leibniz(1), leibniz(0) + leibniz(1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := Limit(leibniz, Always[float64](), tc.budget)
			assert.Equal(t, tc.seq, r.Value)
			assert.Equal(t, tc.budget, r.Iterations)
			assert.False(t, r.Converged)

			r = Sum(leibniz, Always[float64](), tc.budget)
			assert.Equal(t, tc.series, r.Value)
			assert.Equal(t, tc.budget, r.Iterations)
		})
	}
}

func TestLimitSeq_ShortInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		seq    float64
		series float64
	}{
		{"empty", nil, 0, 0},
		{"one", []float64{5}, 5, 5},
		{"two", []float64{5, 7}, 7, 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := LimitSeq(sliceSeq(tc.values), Always[float64]())
			assert.Equal(t, tc.seq, r.Value)
			assert.Equal(t, uint64(len(tc.values)), r.Iterations)
			assert.False(t, r.Converged)

			r = SumSeq(sliceSeq(tc.values), Always[float64]())
			assert.Equal(t, tc.series, r.Value)
			assert.Equal(t, uint64(len(tc.values)), r.Iterations)
		})
	}
}

func TestLimitSeq_StopsReadingAtAcceptance(t *testing.T) {
	t.Parallel()

	var read int
	var seq iter.Seq[float64] = func(yield func(float64) bool) {
		for i := uint64(0); i < 1000; i++ {
			read++
			if !yield(halves(i)) {
				return
			}
		}
	}
	res := SumSeq(seq, AbsOrRel[float64](1e-12, 1e-12))

	assert.True(t, res.Converged)
	assert.Equal(t, 2.0, res.Value)
	assert.Equal(t, uint64(4), res.Iterations)
	assert.Equal(t, 4, read)
}

func TestLimitSeq_MatchesFunctionForm(t *testing.T) {
	t.Parallel()

	tol := AbsOrRel[float64](1e-12, 1e-8)
	fn := Sum(leibniz, tol, 10000)
	it := SumSeq(Terms(leibniz, 10000), tol)
	assert.Equal(t, fn, it)

	fn = Limit(basel, Never[float64](), 77)
	it = LimitSeq(Terms(basel, 77), Never[float64]())
	assert.Equal(t, fn, it)
}

func TestLimitSeq_ExhaustionReturnsLastEstimate(t *testing.T) {
	t.Parallel()

	res := LimitSeq(Recurrence(1.0, math.Cos, 10), Never[float64]())
	assert.False(t, res.Converged)
	assert.Equal(t, uint64(10), res.Iterations)
	assert.InDelta(t, 0.739085133215160, res.Value, 1e-4)
}

func TestSumSeq_Euler(t *testing.T) {
	t.Parallel()

	var factorial iter.Seq[float64] = func(yield func(float64) bool) {
		term := 1.0
		for k := 1; ; k++ {
			if !yield(term) {
				return
			}
			term /= float64(k)
		}
	}
	res := SumSeq(Take(factorial, 100), AbsOrRel[float64](1e-15, 1e-15))

	require.True(t, res.Converged)
	assert.Equal(t, 2.7182818284590455, res.Value)
	assert.Equal(t, uint64(18), res.Iterations)
}

func TestPropagate_CarriesNaN(t *testing.T) {
	t.Parallel()

	res := LimitSeq(Recurrence(1.0, heron, 20), Never[float64]())
	assert.True(t, math.IsNaN(res.Value))
	assert.Equal(t, uint64(20), res.Iterations)
	assert.False(t, res.Degenerate)
}

func TestPolicies_Heron(t *testing.T) {
	t.Parallel()

	stop := New[float64](WithPolicy(Stop))
	res, err := stop.LimitSeq(Recurrence(1.0, heron, 20), Never[float64]())
	require.NoError(t, err)
	assert.Equal(t, Result[float64]{Value: 1.414213562373095, Iterations: 8, Converged: true, Degenerate: true}, res)

	fail := New[float64](WithPolicy(Fail))
	res, err = fail.LimitSeq(Recurrence(1.0, heron, 20), Never[float64]())
	require.ErrorIs(t, err, ErrDegenerate)
	assert.Equal(t, 1.414213562373095, res.Value)
	assert.Equal(t, uint64(8), res.Iterations)
	assert.False(t, res.Converged)
	assert.True(t, res.Degenerate)
}

func TestPolicies_DegenerateOnFirstStep(t *testing.T) {
	t.Parallel()

	arithmetic := func(n uint64) float64 { return float64(n) }
	res, err := New[float64](WithPolicy(Stop)).Limit(arithmetic, Never[float64](), 10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Value)
	assert.Equal(t, uint64(3), res.Iterations)
	assert.True(t, res.Degenerate)

	res = Limit(arithmetic, Never[float64](), 10)
	assert.True(t, math.IsInf(res.Value, -1))
	assert.False(t, res.Degenerate)
}

func TestPolicies_AgreeOnHealthyInput(t *testing.T) {
	t.Parallel()

	tol := AbsOrRel[float64](1e-8, 1e-6)
	want := Sum(leibniz, tol, 1000)
	for _, p := range []Policy{Propagate, Stop, Fail} {
		got, err := New[float64](WithPolicy(p)).Sum(leibniz, tol, 1000)
		require.NoError(t, err, p.String())
		assert.Equal(t, want, got, p.String())
	}
}

func TestComplexSeries(t *testing.T) {
	t.Parallel()

	// Σ (i/2)^n = 1 / (1 - i/2) = (4 + 2i) / 5.
	ratio := complex(0, 0.5)
	var terms iter.Seq[complex128] = func(yield func(complex128) bool) {
		z := complex(1, 0)
		for {
			if !yield(z) {
				return
			}
			z *= ratio
		}
	}
	res := SumSeq(Take(terms, 50), Modulus[complex128](1e-12))

	require.True(t, res.Converged)
	assert.InDelta(t, 0.8, real(res.Value), 1e-12)
	assert.InDelta(t, 0.4, imag(res.Value), 1e-12)
}

func TestFloat32(t *testing.T) {
	t.Parallel()

	f := func(n uint64) float32 { return float32(leibniz(n)) }
	res := Sum(f, AbsOrRel[float32](1e-6, 1e-6), 10000)
	assert.True(t, res.Converged)
	assert.InDelta(t, math.Pi, float64(res.Value), 1e-4)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for _, p := range []Policy{Propagate, Stop, Fail} {
		got, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParsePolicy("STOP")
	require.NoError(t, err)
	assert.Equal(t, Stop, got)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
	assert.Equal(t, "Policy(7)", Policy(7).String())
}

func TestNilToleranceNeverAccepts(t *testing.T) {
	t.Parallel()

	res := Sum(leibniz, nil, 100)
	assert.False(t, res.Converged)
	assert.Equal(t, uint64(100), res.Iterations)
}

func sliceSeq(values []float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}
}

var benchResult Result[float64]

func BenchmarkSum(b *testing.B) {
	tol := AbsOrRel[float64](1e-8, 1e-6)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		benchResult = Sum(leibniz, tol, 1_000_000_000)
	}
}

func BenchmarkSumSeq(b *testing.B) {
	tol := AbsOrRel[float64](1e-8, 1e-6)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		benchResult = SumSeq(Terms(leibniz, 1_000_000_000), tol)
	}
}

// BenchmarkDirect sums the Leibniz series term by term until two consecutive
// partial sums satisfy the same tolerance BenchmarkSum uses.
func BenchmarkDirect(b *testing.B) {
	tol := AbsOrRel[float64](1e-8, 1e-6)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var s, prev float64
		var n uint64
		for ; n < 1_000_000_000; n++ {
			prev, s = s, s+leibniz(n)
			if n > 0 && tol(prev, s) {
				break
			}
		}
		benchResult = Result[float64]{Value: s, Iterations: n + 1}
	}
}
