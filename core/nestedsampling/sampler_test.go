package nestedsampling

import (
	"math"
	"math/rand"
	"testing"
)

func TestMultiEllipsoidalSamplerDrawRespectsThreshold(t *testing.T) {
	cfg := SamplerConfig{InitialEnlargementFraction: 1.2, ShrinkingRate: 0.0, MaxNDrawAttempts: 20000}
	s, err := NewMultiEllipsoidalSampler(cfg, nil)
	if err != nil {
		t.Fatalf("NewMultiEllipsoidalSampler: %v", err)
	}

	points := sphericalCloud(200, 2, 21)
	assignments := make([]int, len(points))
	if err := s.BuildEllipsoids(points, assignments, 1, len(points), 0); err != nil {
		t.Fatalf("BuildEllipsoids: %v", err)
	}

	prior, err := NewUniformPrior([]float64{-10, -10}, []float64{10, 10})
	if err != nil {
		t.Fatalf("NewUniformPrior: %v", err)
	}
	priors := PriorList{prior}
	likelihood := LikelihoodFunc(func(theta []float64) float64 {
		return -0.5 * (theta[0]*theta[0] + theta[1]*theta[1])
	})

	rng := rand.New(rand.NewSource(55))
	threshold := -5.0
	result, err := s.Draw(rng, priors, likelihood, threshold)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if result == nil {
		t.Fatal("Draw returned nil, nil; expected an accepted candidate")
	}
	if result.LogL <= threshold {
		t.Fatalf("accepted logL %v does not exceed threshold %v", result.LogL, threshold)
	}
}

func TestMultiEllipsoidalSamplerDrawExhaustion(t *testing.T) {
	cfg := SamplerConfig{InitialEnlargementFraction: 1.0, ShrinkingRate: 0.0, MaxNDrawAttempts: 50}
	s, err := NewMultiEllipsoidalSampler(cfg, nil)
	if err != nil {
		t.Fatalf("NewMultiEllipsoidalSampler: %v", err)
	}
	points := sphericalCloud(50, 1, 1)
	assignments := make([]int, len(points))
	if err := s.BuildEllipsoids(points, assignments, 1, len(points), 0); err != nil {
		t.Fatalf("BuildEllipsoids: %v", err)
	}
	prior, _ := NewUniformPrior([]float64{-5}, []float64{5})
	priors := PriorList{prior}
	likelihood := LikelihoodFunc(func(theta []float64) float64 { return math.Inf(-1) })

	rng := rand.New(rand.NewSource(1))
	result, err := s.Draw(rng, priors, likelihood, 0.0)
	if err != nil {
		t.Fatalf("Draw returned an error instead of exhaustion: %v", err)
	}
	if result != nil {
		t.Fatalf("expected exhaustion (nil result), got %+v", result)
	}
}

func TestMultiEllipsoidalSamplerRejectsNonFiniteLikelihood(t *testing.T) {
	cfg := SamplerConfig{InitialEnlargementFraction: 1.0, ShrinkingRate: 0.0, MaxNDrawAttempts: 10}
	s, err := NewMultiEllipsoidalSampler(cfg, nil)
	if err != nil {
		t.Fatalf("NewMultiEllipsoidalSampler: %v", err)
	}
	points := sphericalCloud(50, 1, 2)
	assignments := make([]int, len(points))
	if err := s.BuildEllipsoids(points, assignments, 1, len(points), 0); err != nil {
		t.Fatalf("BuildEllipsoids: %v", err)
	}
	prior, _ := NewUniformPrior([]float64{-5}, []float64{5})
	priors := PriorList{prior}
	likelihood := LikelihoodFunc(func(theta []float64) float64 { return math.Inf(1) })

	rng := rand.New(rand.NewSource(1))
	_, err = s.Draw(rng, priors, likelihood, -1e9)
	if !IsKind(err, KindLikelihoodInfinite) {
		t.Fatalf("Draw error = %v, want KindLikelihoodInfinite", err)
	}
}
