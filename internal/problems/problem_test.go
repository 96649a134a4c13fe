package problems

import (
	"errors"
	"iter"
	"math"
	"slices"
	"testing"

	"github.com/agbru/aitken/pkg/aitken"
)

func TestRegistryListsCatalog(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	want := []string{"basel", "compound", "dottie", "euler", "geometric", "heron", "leibniz", "ln2"}
	if got := r.List(); !slices.Equal(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	all := r.All()
	if len(all) != len(want) {
		t.Fatalf("All() returned %d problems, want %d", len(all), len(want))
	}
	for i, p := range all {
		if p.Name != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, p.Name, want[i])
		}
		if err := p.Validate(); err != nil {
			t.Errorf("catalog problem %s is invalid: %v", p.Name, err)
		}
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Get("zeta")
	if !errors.Is(err, ErrUnknownProblem) {
		t.Fatalf("expected ErrUnknownProblem, got %v", err)
	}
	if Global().Has("zeta") {
		t.Error("global registry should not know zeta")
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Problem{Name: "broken"}); err == nil {
		t.Error("expected an error for a problem without terms")
	}
	both := Problem{Name: "both", Term: leibnizTerm, Stream: heronIteration}
	if err := r.Register(both); err == nil {
		t.Error("expected an error for a problem with two term sources")
	}

	ones := Problem{Name: "ones", Kind: Sequence, Term: func(uint64) float64 { return 1 }, Limit: 1}
	if err := r.Register(ones); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	got, err := r.Get("ones")
	if err != nil || got.Limit != 1 {
		t.Fatalf("Get(ones) = %+v, %v", got, err)
	}
}

func TestLeibnizAcceleratedVersusDirect(t *testing.T) {
	t.Parallel()

	p, err := Lookup("leibniz")
	if err != nil {
		t.Fatal(err)
	}
	tol := aitken.AbsOrRel[float64](1e-8, 1e-6)

	acc, err := Accelerate(aitken.Accelerator[float64]{}, p, tol, 1_000_000_000)
	if err != nil {
		t.Fatal(err)
	}
	if acc.Value != 3.141591151580488 || acc.Iterations != 56 || !acc.Converged {
		t.Errorf("accelerated = %+v", acc)
	}

	direct := Direct(p, tol, 1_000_000_000)
	if direct.Value != 3.1415942243829877 || direct.Iterations != 636621 || !direct.Converged {
		t.Errorf("direct = %+v", direct)
	}
}

func TestCatalogConverges(t *testing.T) {
	t.Parallel()

	tol := aitken.AbsOrRel[float64](1e-10, 1e-10)
	const budget = 1_000_000
	faster := map[string]bool{"leibniz": true, "ln2": true, "geometric": true, "euler": true, "dottie": true}

	for _, p := range Catalog() {
		t.Run(p.Name, func(t *testing.T) {
			t.Parallel()

			acc, err := Accelerate(aitken.Accelerator[float64]{}, p, tol, budget)
			if err != nil {
				t.Fatal(err)
			}
			if !acc.Converged {
				t.Fatalf("did not converge within %d terms: %+v", budget, acc)
			}
			if d := math.Abs(acc.Value - p.Limit); d > 1e-4 {
				t.Errorf("estimate %v is %v away from %v", acc.Value, d, p.Limit)
			}

			direct := Direct(p, tol, budget)
			if faster[p.Name] && acc.Iterations >= direct.Iterations {
				t.Errorf("accelerated used %d terms, direct %d", acc.Iterations, direct.Iterations)
			}
		})
	}
}

func TestAccelerateDispatchesIteratorForms(t *testing.T) {
	t.Parallel()

	euler, _ := Lookup("euler")
	if euler.Form() != Iterator || euler.Kind != Series {
		t.Fatalf("euler is %s %s", euler.Form(), euler.Kind)
	}
	got, err := Accelerate(aitken.Accelerator[float64]{}, euler, aitken.AbsOrRel[float64](1e-15, 1e-15), 100)
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != 2.7182818284590455 || got.Iterations != 18 {
		t.Errorf("euler = %+v", got)
	}

	heron, _ := Lookup("heron")
	stop := aitken.New[float64](aitken.WithPolicy(aitken.Stop))
	got, err = Accelerate(stop, heron, aitken.Never[float64](), 20)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Degenerate || got.Iterations != 8 {
		t.Errorf("heron = %+v", got)
	}

	// Iterator problems are capped by the budget.
	got, _ = Accelerate(aitken.Accelerator[float64]{}, heron, aitken.Never[float64](), 2)
	if got.Iterations != 2 || got.Value != 1.5 {
		t.Errorf("heron with budget 2 = %+v", got)
	}
}

func TestDirectSequence(t *testing.T) {
	t.Parallel()

	heron, _ := Lookup("heron")
	got := Direct(heron, aitken.AbsOrRel[float64](1e-10, 1e-10), 100)
	if !got.Converged || got.Iterations != 6 || got.Value != 1.414213562373095 {
		t.Errorf("Direct(heron) = %+v", got)
	}

	got = Direct(heron, nil, 3)
	if got.Converged || got.Iterations != 3 {
		t.Errorf("Direct(heron, nil) = %+v", got)
	}
}

func TestObserveCountsTerms(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"leibniz", "dottie"} {
		p, _ := Lookup(name)
		var seen uint64
		observed := p.Observe(func() { seen++ })

		res, _ := Accelerate(aitken.Accelerator[float64]{}, observed, aitken.Never[float64](), 500)
		if seen != res.Iterations || seen != 500 {
			t.Errorf("%s: hook saw %d terms, result reports %d", name, seen, res.Iterations)
		}
	}

	p, _ := Lookup("basel")
	if got := p.Observe(nil); got.Term == nil {
		t.Error("Observe(nil) should leave the problem untouched")
	}
}

func TestTermsMatchAcrossForms(t *testing.T) {
	t.Parallel()

	var seq iter.Seq[float64] = factorialReciprocals()
	got := slices.Collect(aitken.Take(seq, 5))
	want := []float64{1, 1, 0.5, 1.0 / 6, 1.0 / 24}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-17 {
			t.Errorf("term %d = %v, want %v", i, got[i], want[i])
		}
	}

	leibniz, _ := Lookup("leibniz")
	if n := len(slices.Collect(leibniz.Terms(7))); n != 7 {
		t.Errorf("Terms(7) yielded %d values", n)
	}
	if halvingTerm(2000) != 0 || halvingTerm(3) != 0.125 {
		t.Error("halvingTerm out of range")
	}
}

func TestKindAndFormStrings(t *testing.T) {
	t.Parallel()

	if Series.String() != "series" || Sequence.String() != "sequence" {
		t.Error("unexpected Kind strings")
	}
	if Function.String() != "function" || Iterator.String() != "iterator" {
		t.Error("unexpected Form strings")
	}
}

func TestProblemInfo(t *testing.T) {
	t.Parallel()

	p, err := Lookup("dottie")
	if err != nil {
		t.Fatal(err)
	}
	info := p.Info()
	if info.Name != "dottie" || info.Kind != "sequence" || info.Form != "iterator" {
		t.Errorf("unexpected info: %+v", info)
	}
	if float64(info.Limit) != DottieNumber {
		t.Errorf("expected limit %v, got %v", DottieNumber, info.Limit)
	}
}
