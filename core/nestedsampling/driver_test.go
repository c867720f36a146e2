package nestedsampling

import (
	"context"
	"math"
	"testing"
)

func gaussian1DProblem(t *testing.T) Problem {
	t.Helper()
	prior, err := NewUniformPrior([]float64{-10}, []float64{10})
	if err != nil {
		t.Fatalf("NewUniformPrior: %v", err)
	}
	likelihood := LikelihoodFunc(func(theta []float64) float64 {
		x := theta[0]
		return -0.5 * x * x
	})
	return Problem{Priors: PriorList{prior}, Likelihood: likelihood, Metric: EuclideanMetric{}}
}

func smallConfig(nLive int) Config {
	cfg := DefaultConfig(nLive)
	cfg.MinNObjects = nLive
	cfg.Reducer.MinNObjects = nLive
	cfg.Reducer.InitialNObjects = nLive
	cfg.TerminationFactor = 0.05
	cfg.InitialClusteringDelay = 100000 // keep single-cluster mode for speed
	cfg.ClusteringInterval = 1000000
	return cfg
}

func TestNestedSamplerGaussian1DEvidence(t *testing.T) {
	cfg := smallConfig(500)
	cfg.Seed = 7
	sampler, err := NewNestedSampler(cfg, gaussian1DProblem(t), nil)
	if err != nil {
		t.Fatalf("NewNestedSampler: %v", err)
	}
	results, err := sampler.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := math.Log(math.Sqrt(2*math.Pi) / 20)
	if got := results.LogEvidence(); math.Abs(got-want) > 0.3 {
		t.Fatalf("logZ = %v, want close to %v (analytic)", got, want)
	}
	if results.InformationGain < 0 && math.Abs(results.InformationGain) > 1e-6 {
		t.Fatalf("InformationGain = %v, should not be meaningfully negative", results.InformationGain)
	}
}

func TestNestedSamplerDeterminism(t *testing.T) {
	cfg := smallConfig(200)
	cfg.Seed = 99

	run := func() *Results {
		sampler, err := NewNestedSampler(cfg, gaussian1DProblem(t), nil)
		if err != nil {
			t.Fatalf("NewNestedSampler: %v", err)
		}
		results, err := sampler.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return results
	}

	a := run()
	b := run()

	if a.LogEvidence() != b.LogEvidence() {
		t.Fatalf("logZ differs across identical-seed runs: %v vs %v", a.LogEvidence(), b.LogEvidence())
	}
	if len(a.Posterior) != len(b.Posterior) {
		t.Fatalf("posterior lengths differ: %d vs %d", len(a.Posterior), len(b.Posterior))
	}
	for i := range a.Posterior {
		if a.Posterior[i].LogL != b.Posterior[i].LogL {
			t.Fatalf("posterior row %d LogL differs: %v vs %v", i, a.Posterior[i].LogL, b.Posterior[i].LogL)
		}
		if a.Posterior[i].Theta[0] != b.Posterior[i].Theta[0] {
			t.Fatalf("posterior row %d Theta differs: %v vs %v", i, a.Posterior[i].Theta, b.Posterior[i].Theta)
		}
	}
}

func TestNestedSamplerLogZIsFiniteAndErrIsNonNegative(t *testing.T) {
	cfg := smallConfig(200)
	cfg.Seed = 3
	sampler, err := NewNestedSampler(cfg, gaussian1DProblem(t), nil)
	if err != nil {
		t.Fatalf("NewNestedSampler: %v", err)
	}

	results, err := sampler.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if math.IsInf(results.LogEvidence(), -1) || math.IsNaN(results.LogEvidence()) {
		t.Fatalf("final logZ should be finite for a well-posed problem, got %v", results.LogEvidence())
	}
	if results.LogEvidenceError() < 0 {
		t.Fatalf("LogEvidenceError = %v, should be non-negative", results.LogEvidenceError())
	}
	if results.NIterations <= 0 {
		t.Fatalf("NIterations = %d, want > 0", results.NIterations)
	}
}

func TestNestedSamplerRejectsTooFewLivePoints(t *testing.T) {
	cfg := smallConfig(50)
	problem := gaussian1DProblem(t)
	cfg.NLive = 0
	if _, err := NewNestedSampler(cfg, problem, nil); !IsKind(err, KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig for NLive=0, got %v", err)
	}
}

func TestNestedSamplerDrawExhaustionTerminatesGracefully(t *testing.T) {
	cfg := smallConfig(50)
	cfg.MaxNDrawAttempts = 1
	cfg.Seed = 5

	prior, err := NewUniformPrior([]float64{0}, []float64{1})
	if err != nil {
		t.Fatalf("NewUniformPrior: %v", err)
	}
	// A likelihood that is -Inf everywhere except a vanishingly small
	// region leaves every live point at -Inf, so the first iteration's
	// threshold is -Inf and its single draw attempt almost certainly
	// finds no point whose logL exceeds it.
	likelihood := LikelihoodFunc(func(theta []float64) float64 {
		if theta[0] < 1e-9 {
			return 0
		}
		return math.Inf(-1)
	})
	problem := Problem{Priors: PriorList{prior}, Likelihood: likelihood, Metric: EuclideanMetric{}}

	sampler, err := NewNestedSampler(cfg, problem, nil)
	if err != nil {
		t.Fatalf("NewNestedSampler: %v", err)
	}
	results, err := sampler.Run(context.Background())
	if !IsKind(err, KindDrawExhausted) {
		t.Fatalf("Run error = %v, want KindDrawExhausted", err)
	}
	if results == nil {
		t.Fatal("expected a partial Results even on draw exhaustion")
	}
}
