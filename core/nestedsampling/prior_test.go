package nestedsampling

import (
	"math"
	"math/rand"
	"testing"
)

func TestUniformPriorDrawWithinBounds(t *testing.T) {
	min := []float64{-1, 0, 5}
	max := []float64{1, 2, 6}
	p, err := NewUniformPrior(min, max)
	if err != nil {
		t.Fatalf("NewUniformPrior: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	out := make([]float64, 3)
	for i := 0; i < 1000; i++ {
		p.Draw(rng, out)
		for j := range out {
			if out[j] < min[j] || out[j] > max[j] {
				t.Fatalf("draw %v outside bounds [%v, %v]", out, min, max)
			}
		}
	}
}

func TestUniformPriorLogDensityOutsideSupport(t *testing.T) {
	p, err := NewUniformPrior([]float64{0}, []float64{1})
	if err != nil {
		t.Fatalf("NewUniformPrior: %v", err)
	}
	if got := p.LogDensity([]float64{2}); !math.IsInf(got, -1) {
		t.Fatalf("LogDensity(2) = %v, want -Inf", got)
	}
	if got := p.LogDensity([]float64{0.5}); math.IsInf(got, -1) {
		t.Fatalf("LogDensity(0.5) should be finite, got %v", got)
	}
}

func TestUniformPriorRejectsBadBounds(t *testing.T) {
	if _, err := NewUniformPrior([]float64{1}, []float64{0}); err == nil {
		t.Fatal("expected error for min >= max")
	}
	if _, err := NewUniformPrior([]float64{0, 0}, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestNormalPriorLogDensityPeak(t *testing.T) {
	p, err := NewNormalPrior([]float64{0}, []float64{1})
	if err != nil {
		t.Fatalf("NewNormalPrior: %v", err)
	}
	atZero := p.LogDensity([]float64{0})
	atFar := p.LogDensity([]float64{5})
	if atZero <= atFar {
		t.Fatalf("density at mean (%v) should exceed density far away (%v)", atZero, atFar)
	}
}

func TestTruncatedNormalPriorStaysInBounds(t *testing.T) {
	p, err := NewTruncatedNormalPrior([]float64{0}, []float64{1}, []float64{-0.5}, []float64{0.5})
	if err != nil {
		t.Fatalf("NewTruncatedNormalPrior: %v", err)
	}
	rng := rand.New(rand.NewSource(2))
	out := make([]float64, 1)
	for i := 0; i < 1000; i++ {
		p.Draw(rng, out)
		if out[0] < -0.5 || out[0] > 0.5 {
			t.Fatalf("draw %v outside truncation bounds", out[0])
		}
	}
	if got := p.LogDensity([]float64{10}); !math.IsInf(got, -1) {
		t.Fatalf("LogDensity(10) = %v, want -Inf outside bounds", got)
	}
}

func TestPriorListDimensionsAndDraw(t *testing.T) {
	u, _ := NewUniformPrior([]float64{0, 0}, []float64{1, 1})
	n, _ := NewNormalPrior([]float64{0}, []float64{1})
	pl := PriorList{u, n}
	if got, want := pl.Dimensions(), 3; got != want {
		t.Fatalf("Dimensions() = %d, want %d", got, want)
	}
	rng := rand.New(rand.NewSource(3))
	out := make([]float64, 3)
	pl.Draw(rng, out)
	if out[0] < 0 || out[0] > 1 || out[1] < 0 || out[1] > 1 {
		t.Fatalf("uniform block out of bounds: %v", out[:2])
	}
}

func TestPriorListLogDensityShortCircuits(t *testing.T) {
	u, _ := NewUniformPrior([]float64{0}, []float64{1})
	n, _ := NewNormalPrior([]float64{0}, []float64{1})
	pl := PriorList{u, n}
	if got := pl.LogDensity([]float64{2, 0}); !math.IsInf(got, -1) {
		t.Fatalf("LogDensity with out-of-support block = %v, want -Inf", got)
	}
}
