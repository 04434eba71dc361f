package quality

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// healthy fills a matrix with an offset sine wave, nowhere near zero.
func healthy(rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, 5.0+math.Sin(float64(i)*0.1+float64(j)))
		}
	}
	return m
}

func TestCheck_AcceptsHealthy(t *testing.T) {
	c := DefaultCheck()
	if reason := c.Evaluate(healthy(100, 6)); reason != "" {
		t.Errorf("healthy trajectory rejected: %s", reason)
	}
}

func TestCheck_RejectsNaN(t *testing.T) {
	c := DefaultCheck()
	m := healthy(100, 6)
	m.Set(42, 3, math.NaN())
	if c.Accept(m) {
		t.Error("NaN entry must be rejected")
	}
}

func TestCheck_RejectsInf(t *testing.T) {
	c := DefaultCheck()
	m := healthy(100, 6)
	m.Set(0, 0, math.Inf(1))
	if c.Accept(m) {
		t.Error("Inf entry must be rejected")
	}
}

func TestCheck_RejectsHugeMagnitude(t *testing.T) {
	c := DefaultCheck()
	m := healthy(100, 6)
	m.Set(10, 1, 2e10)
	if c.Accept(m) {
		t.Error("entry above 1e10 must be rejected")
	}

	m.Set(10, 1, -2e10)
	if c.Accept(m) {
		t.Error("negative entry below -1e10 must be rejected")
	}
}

func TestCheck_RejectsAllZeros(t *testing.T) {
	c := DefaultCheck()
	m := mat.NewDense(100, 6, nil)
	if c.Accept(m) {
		t.Error("all-zero trajectory must be rejected")
	}
}

func TestCheck_ZeroFractionBoundary(t *testing.T) {
	c := DefaultCheck()

	// 5% near-zero entries: acceptable.
	m := healthy(100, 6)
	for i := 0; i < 30; i++ {
		m.Set(i, 0, 0)
	}
	if !c.Accept(m) {
		t.Error("5% near-zero entries should pass the 10% bound")
	}

	// Exactly 10%: the bound is exclusive, so this is already degenerate.
	m = healthy(100, 6)
	for i := 0; i < 60; i++ {
		m.Set(i, 0, 0)
	}
	if c.Accept(m) {
		t.Error("exactly 10% near-zero entries must be rejected")
	}

	// 15%: degenerate.
	for i := 0; i < 90; i++ {
		m.Set(i, 0, 0)
	}
	if c.Accept(m) {
		t.Error("15% near-zero entries must be rejected")
	}
}

func TestCheck_ConfigurableThresholds(t *testing.T) {
	c := DefaultCheck()
	c.MaxMagnitude = 1.0
	if c.Accept(healthy(10, 6)) {
		t.Error("tightened magnitude bound should reject values around 5")
	}
}
