package nestedsampling

import (
	"log/slog"
	"math"
	"math/rand"
)

// SamplerConfig configures the multi-ellipsoidal constrained sampler.
type SamplerConfig struct {
	// InitialEnlargementFraction is f0, the base enlargement factor.
	InitialEnlargementFraction float64

	// ShrinkingRate is s: larger clusters get smaller enlargement, and
	// enlargement shrinks with remaining prior mass X.
	ShrinkingRate float64

	// MaxNDrawAttempts bounds rejection-sampling attempts before a draw
	// is reported exhausted.
	MaxNDrawAttempts int
}

// Validate checks SamplerConfig for construction-time errors.
func (c SamplerConfig) Validate() error {
	if c.InitialEnlargementFraction < 1 {
		return newEngineError(KindInvalidConfig, "sampler requires InitialEnlargementFraction >= 1", nil)
	}
	if c.ShrinkingRate < 0 {
		return newEngineError(KindInvalidConfig, "sampler requires ShrinkingRate >= 0", nil)
	}
	if c.MaxNDrawAttempts < 1 {
		return newEngineError(KindInvalidConfig, "sampler requires MaxNDrawAttempts >= 1", nil)
	}
	return nil
}

// DrawResult is a successfully accepted candidate point.
type DrawResult struct {
	Theta []float64
	LogL  float64
}

// MultiEllipsoidalSampler fits one enlarged ellipsoid per live-point
// cluster and draws replacement points uniformly over their union,
// correcting for overlap bias and rejecting points failing the
// likelihood threshold or the joint prior support test.
type MultiEllipsoidalSampler struct {
	cfg        SamplerConfig
	ellipsoids []*Ellipsoid
	logger     *slog.Logger
}

// NewMultiEllipsoidalSampler builds a sampler, or returns KindInvalidConfig.
func NewMultiEllipsoidalSampler(cfg SamplerConfig, logger *slog.Logger) (*MultiEllipsoidalSampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiEllipsoidalSampler{cfg: cfg, logger: logger}, nil
}

// BuildEllipsoids fits one enlargement-scaled ellipsoid per cluster: the
// per-cluster enlargement factor is f_c = f0 * (N_live/n_c)^(s/2) * X^s,
// growing smaller clusters more and shrinking the whole set as the
// prior-mass volume X contracts.
func (s *MultiEllipsoidalSampler) BuildEllipsoids(points [][]float64, assignments []int, nClusters, nLive int, logX float64) error {
	groups := make([][][]float64, nClusters)
	for i, c := range assignments {
		groups[c] = append(groups[c], points[i])
	}

	x := math.Exp(logX)
	ellipsoids := make([]*Ellipsoid, 0, nClusters)
	for _, group := range groups {
		nc := len(group)
		if nc < 2 {
			continue
		}
		f := s.cfg.InitialEnlargementFraction *
			math.Pow(float64(nLive)/float64(nc), s.cfg.ShrinkingRate/2) *
			math.Pow(x, s.cfg.ShrinkingRate)
		if f < 1 {
			f = 1
		}
		e, err := BuildEllipsoid(group, f)
		if err != nil {
			return err
		}
		ellipsoids = append(ellipsoids, e)
	}
	if len(ellipsoids) == 0 {
		return newEngineError(KindInvalidConfig, "no cluster produced a valid ellipsoid", nil)
	}
	s.ellipsoids = ellipsoids
	return nil
}

// Draw samples a candidate satisfying logL(theta) > threshold, or returns
// (nil, nil) if maxNdrawAttempts is exhausted. A NaN or +Inf log-likelihood
// observed on a prior-supported point is reported as KindLikelihoodInfinite;
// a -Inf one is simply rejected.
func (s *MultiEllipsoidalSampler) Draw(rng *rand.Rand, priors PriorList, likelihood Likelihood, threshold float64) (*DrawResult, error) {
	volumes := make([]float64, len(s.ellipsoids))
	var total float64
	for i, e := range s.ellipsoids {
		volumes[i] = e.Volume
		total += e.Volume
	}
	if total <= 0 {
		return nil, newEngineError(KindInvalidConfig, "total ellipsoid volume is non-positive", nil)
	}

	for attempt := 0; attempt < s.cfg.MaxNDrawAttempts; attempt++ {
		c := s.chooseCluster(rng, volumes, total)
		theta := s.ellipsoids[c].UniformInteriorSample(rng)

		m := s.multiplicity(theta)
		if m > 1 && rng.Float64() > 1.0/float64(m) {
			continue
		}

		logPrior := priors.LogDensity(theta)
		if math.IsInf(logPrior, -1) {
			continue
		}

		logL := likelihood.LogValue(theta)
		if math.IsNaN(logL) || math.IsInf(logL, 1) {
			return nil, newEngineError(KindLikelihoodInfinite, "likelihood returned a non-finite value on a prior-supported point", nil)
		}

		if logL > threshold {
			return &DrawResult{Theta: theta, LogL: logL}, nil
		}
	}
	return nil, nil
}

// chooseCluster picks a cluster index with probability proportional to
// its ellipsoid's enlarged volume.
func (s *MultiEllipsoidalSampler) chooseCluster(rng *rand.Rand, volumes []float64, total float64) int {
	target := rng.Float64() * total
	var cumulative float64
	for i, v := range volumes {
		cumulative += v
		if cumulative >= target {
			return i
		}
	}
	return len(volumes) - 1
}

// multiplicity counts how many ellipsoids in the current union contain
// theta; used for the Feroz-Hobson union-sampling bias correction.
func (s *MultiEllipsoidalSampler) multiplicity(theta []float64) int {
	count := 0
	for _, e := range s.ellipsoids {
		if e.ContainsPoint(theta) {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// Ellipsoids exposes the current ellipsoid set, for diagnostics and
// persistence.
func (s *MultiEllipsoidalSampler) Ellipsoids() []*Ellipsoid {
	return s.ellipsoids
}
