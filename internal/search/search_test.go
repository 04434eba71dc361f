package search

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/causegen/internal/dynamo"
	"github.com/san-kum/causegen/internal/physics"
)

func newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestSearch_AllFixedParameters(t *testing.T) {
	spec := DefaultSpec()
	spec.Init = Vector{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}

	s := NewSearcher(50)
	res, err := s.Search(context.Background(), spec, newRng(1))
	if err != nil {
		t.Fatal(err)
	}

	// All draws are constant, so the loop must decide on attempt 1.
	if !res.Found {
		t.Fatalf("canonical parameters must yield an attractor (attempts=%d)", res.Attempts)
	}
	if res.Attempts != 1 {
		t.Errorf("constant draws must settle on attempt 1, took %d", res.Attempts)
	}

	p := res.Model.Params()
	want := physics.DefaultParams()
	if p.Cxy != want.Cxy || p.A1 != want.A1 || p.A2 != want.A2 || p.A3 != want.A3 ||
		p.B1 != want.B1 || p.B2 != want.B2 || p.B3 != want.B3 || p.Dt != want.Dt {
		t.Errorf("accepted model fields differ from the fixed inputs: %+v", p)
	}
	for i, v := range p.U0 {
		if v != 0.1 {
			t.Errorf("u0[%d] = %v, want 0.1", i, v)
		}
	}
}

func TestSearch_NoiseLevelRestoredOnAccept(t *testing.T) {
	spec := DefaultSpec()
	spec.NoiseLevel = Fixed(7.5)

	res, err := NewSearcher(10).Search(context.Background(), spec, newRng(2))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Fatal("expected a model")
	}
	if got := res.Model.Params().NoiseLevel; got != 7.5 {
		t.Errorf("noise level %v, want 7.5", got)
	}
}

func TestSearch_RetryBound(t *testing.T) {
	spec := DefaultSpec()

	// Reject everything.
	s := NewSearcher(0)
	s.Check.MaxMagnitude = 0

	res, err := s.Search(context.Background(), spec, newRng(3))
	if err != nil {
		t.Fatal(err)
	}
	if res.Found {
		t.Fatal("nothing should pass a zero magnitude bound")
	}
	if res.Attempts != 1 {
		t.Errorf("MaxTries=0 must perform exactly one attempt, got %d", res.Attempts)
	}
	if res.Model != nil {
		t.Error("no model may be returned on failure")
	}

	s.MaxTries = 4
	res, err = s.Search(context.Background(), spec, newRng(3))
	if err != nil {
		t.Fatal(err)
	}
	if res.Attempts != 5 {
		t.Errorf("expected 5 attempts (1 + 4 retries), got %d", res.Attempts)
	}
}

func TestSearch_DivergentDrawsAreSoftFailures(t *testing.T) {
	// a2=2 makes the Rossler subsystem blow up in finite time; the loop
	// must exhaust quietly instead of erroring.
	spec := DefaultSpec()
	spec.A2 = Fixed(2.0)

	res, err := NewSearcher(2).Search(context.Background(), spec, newRng(4))
	if err != nil {
		t.Fatalf("divergence must not surface as an error: %v", err)
	}
	if res.Found {
		t.Error("divergent parameters must not be accepted")
	}
	if res.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", res.Attempts)
	}
}

func TestSearch_MalformedInitIsImmediate(t *testing.T) {
	spec := DefaultSpec()
	spec.Init = Vector{0.1, 0.1, 0.1, 0.1, 0.1} // 5 components

	_, err := NewSearcher(50).Search(context.Background(), spec, newRng(5))
	var verr *dynamo.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	rng := newRng(11)
	spec := DefaultSpec()
	spec.Cxy = Dist{Rander: distuv.Uniform{Min: 0.5, Max: 1.5, Src: NewSource(rng)}}
	spec.Init = FromDist{Rander: distuv.Uniform{Min: 0.05, Max: 0.3, Src: NewSource(rng)}}

	a, err := NewSearcher(20).Search(context.Background(), spec, rng)
	if err != nil {
		t.Fatal(err)
	}

	rng2 := newRng(11)
	spec2 := DefaultSpec()
	spec2.Cxy = Dist{Rander: distuv.Uniform{Min: 0.5, Max: 1.5, Src: NewSource(rng2)}}
	spec2.Init = FromDist{Rander: distuv.Uniform{Min: 0.05, Max: 0.3, Src: NewSource(rng2)}}

	b, err := NewSearcher(20).Search(context.Background(), spec2, rng2)
	if err != nil {
		t.Fatal(err)
	}

	if a.Found != b.Found || a.Attempts != b.Attempts {
		t.Fatalf("same seed, different outcomes: %+v vs %+v", a, b)
	}
	if a.Found {
		pa, pb := a.Model.Params(), b.Model.Params()
		if pa.Cxy != pb.Cxy {
			t.Errorf("same seed, different c_xy: %v vs %v", pa.Cxy, pb.Cxy)
		}
		for i := range pa.U0 {
			if pa.U0[i] != pb.U0[i] {
				t.Errorf("same seed, different u0[%d]", i)
			}
		}
	}
}

func TestSearch_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSearcher(100).Search(ctx, DefaultSpec(), newRng(6))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInitSpec_Shapes(t *testing.T) {
	rng := newRng(7)

	t.Run("broadcast scalar", func(t *testing.T) {
		u0, err := Broadcast(0.3).SampleVector(rng)
		if err != nil {
			t.Fatal(err)
		}
		if len(u0) != physics.StateDim {
			t.Fatalf("got %d components", len(u0))
		}
		for i, v := range u0 {
			if v != 0.3 {
				t.Errorf("u0[%d] = %v, want 0.3", i, v)
			}
		}
	})

	t.Run("vector passthrough", func(t *testing.T) {
		in := Vector{1, 2, 3, 4, 5, 6}
		u0, err := in.SampleVector(rng)
		if err != nil {
			t.Fatal(err)
		}
		for i := range in {
			if u0[i] != in[i] {
				t.Errorf("component %d altered", i)
			}
		}
	})

	t.Run("malformed vector", func(t *testing.T) {
		_, err := Vector{1, 2, 3, 4, 5}.SampleVector(rng)
		var verr *dynamo.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("from distribution", func(t *testing.T) {
		u0, err := FromDist{Rander: distuv.Uniform{Min: 1, Max: 2, Src: NewSource(rng)}}.SampleVector(rng)
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range u0 {
			if v < 1 || v > 2 {
				t.Errorf("u0[%d] = %v outside [1,2]", i, v)
			}
		}
	})

	t.Run("per component", func(t *testing.T) {
		spec := PerComponent{
			Fixed(1), Fixed(2), Fixed(3),
			Dist{Rander: distuv.Uniform{Min: 4, Max: 4, Src: NewSource(rng)}},
			Fixed(5), Fixed(6),
		}
		u0, err := spec.SampleVector(rng)
		if err != nil {
			t.Fatal(err)
		}
		want := []float64{1, 2, 3, 4, 5, 6}
		for i := range want {
			if u0[i] != want[i] {
				t.Errorf("u0[%d] = %v, want %v", i, u0[i], want[i])
			}
		}
	})

	t.Run("per component wrong length", func(t *testing.T) {
		_, err := PerComponent{Fixed(1), Fixed(2)}.SampleVector(rng)
		var verr *dynamo.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestNewSource_Deterministic(t *testing.T) {
	sa, sb := NewSource(newRng(13)), NewSource(newRng(13))
	// Seed is a no-op; it must not disturb the wrapped generator.
	sb.Seed(99)

	a := distuv.Uniform{Min: 0, Max: 1, Src: sa}
	b := distuv.Uniform{Min: 0, Max: 1, Src: sb}
	for i := 0; i < 100; i++ {
		if x, y := a.Rand(), b.Rand(); x != y {
			t.Fatalf("draw %d: %v != %v", i, x, y)
		}
	}
}

func TestParamSpec_EmptyMixture(t *testing.T) {
	rng := newRng(12)
	if v := (Mixture{}).Sample(rng); !math.IsNaN(v) {
		t.Fatalf("empty mixture drew %v, want NaN", v)
	}

	spec := DefaultSpec()
	spec.Cxy = Mixture{}
	res, err := NewSearcher(2).Search(context.Background(), spec, rng)
	if err != nil {
		t.Fatalf("empty mixture must degrade to rejection, got %v", err)
	}
	if res.Found {
		t.Error("no model may be built from an empty mixture")
	}
}

func TestParamSpec_Mixture(t *testing.T) {
	rng := newRng(8)

	// Two point masses; with weights 3:1 the low component should
	// dominate roughly 3 to 1.
	m := Mixture{
		{Rander: distuv.Uniform{Min: 1, Max: 1, Src: NewSource(rng)}, Weight: 3},
		{Rander: distuv.Uniform{Min: 10, Max: 10, Src: NewSource(rng)}, Weight: 1},
	}

	lo := 0
	const n = 4000
	for i := 0; i < n; i++ {
		switch v := m.Sample(rng); v {
		case 1:
			lo++
		case 10:
		default:
			t.Fatalf("unexpected draw %v", v)
		}
	}

	frac := float64(lo) / n
	if math.Abs(frac-0.75) > 0.05 {
		t.Errorf("low-component fraction %v, want ~0.75", frac)
	}
}
