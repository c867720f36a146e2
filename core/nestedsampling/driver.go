package nestedsampling

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// LivePoint is a current member of the active sample: a parameter vector
// constrained to exceed the running likelihood threshold, plus its
// log-likelihood.
type LivePoint struct {
	Theta []float64
	LogL  float64
}

// PosteriorPoint is one append-only entry of the posterior record: a
// discarded (or final-live-set) point, its log-likelihood, and its full
// log weight log(L) + log(dX) — the point's likelihood combined with
// the prior-mass width it was discarded at.
type PosteriorPoint struct {
	Theta []float64
	LogL  float64
	LogW  float64
}

// NestedSampler is the iteration driver: it owns the live set, the
// evidence/information accumulators, and the single RNG sequence; it
// invokes the Clusterer on a schedule and the MultiEllipsoidalSampler on
// every iteration. Construct -> Run -> query is its entire lifecycle.
type NestedSampler struct {
	cfg     Config
	problem Problem
	d       int

	rng    *rand.Rand
	logger *slog.Logger

	clusterer *Clusterer
	sampler   *MultiEllipsoidalSampler
	reducer   LivePointsReducer

	live         []LivePoint
	nLiveInitial int

	logZ float64
	h    float64
	logW float64
	logX float64

	posterior []PosteriorPoint
	iteration int

	terminationKind string
	start           time.Time
	duration        time.Duration
}

// NewNestedSampler validates cfg against the problem's dimensionality and
// constructs the driver and its collaborators, or returns
// KindInvalidConfig.
func NewNestedSampler(cfg Config, problem Problem, logger *slog.Logger) (*NestedSampler, error) {
	d := problem.Dimensions()
	if err := cfg.Validate(d); err != nil {
		return nil, err
	}
	if len(problem.Priors) == 0 {
		return nil, newEngineError(KindInvalidConfig, "problem requires a non-empty prior list", nil)
	}
	if problem.Likelihood == nil {
		return nil, newEngineError(KindInvalidConfig, "problem requires a likelihood", nil)
	}
	metric := problem.Metric
	if metric == nil {
		metric = EuclideanMetric{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	clusterer, err := NewClusterer(cfg.Clusterer, metric, logger)
	if err != nil {
		return nil, err
	}
	sampler, err := NewMultiEllipsoidalSampler(SamplerConfig{
		InitialEnlargementFraction: cfg.InitialEnlargementFraction,
		ShrinkingRate:              cfg.ShrinkingRate,
		MaxNDrawAttempts:           cfg.MaxNDrawAttempts,
	}, logger)
	if err != nil {
		return nil, err
	}
	reducer, err := NewLivePointsReducer(cfg.Reducer)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &NestedSampler{
		cfg:          cfg,
		problem:      problem,
		d:            d,
		rng:          rand.New(rand.NewSource(seed)),
		logger:       logger,
		clusterer:    clusterer,
		sampler:      sampler,
		reducer:      reducer,
		nLiveInitial: cfg.NLive,
	}, nil
}

// Run executes the full nested-sampling iteration loop — replace the
// worst live point, fold its contribution into the evidence and
// information accumulators, retile the ellipsoid set on a schedule, and
// draw a replacement — until the stopping ratio falls at or below
// TerminationFactor, the sampler exhausts its draw budget, or ctx is
// cancelled.
func (ns *NestedSampler) Run(ctx context.Context) (*Results, error) {
	ns.start = time.Now()
	if err := ns.initLiveSet(); err != nil {
		return nil, err
	}

	ns.logZ = math.Inf(-1)
	ns.h = 0
	ns.logW = math.Log(-math.Expm1(-1.0 / float64(ns.cfg.NLive)))
	ns.logX = 0

	var lastLogZLive float64

	for {
		if err := ctx.Err(); err != nil {
			ns.duration = time.Since(ns.start)
			return nil, err
		}

		k := ns.iteration
		oldN := len(ns.live)

		w := ns.worstIndex()
		lStar := ns.live[w].LogL

		logwK := ns.logW + lStar
		newLogZ := logSumExp(ns.logZ, logwK)
		ns.h = math.Exp(logwK-newLogZ)*lStar + math.Exp(ns.logZ-newLogZ)*(ns.h+ns.logZ) - newLogZ
		ns.logZ = newLogZ

		ns.posterior = append(ns.posterior, PosteriorPoint{
			Theta: append([]float64(nil), ns.live[w].Theta...),
			LogL:  lStar,
			LogW:  logwK,
		})

		logLs := make([]float64, oldN)
		for i, lp := range ns.live {
			logLs[i] = lp.LogL
		}
		logLBar := logSumExpSlice(logLs) - math.Log(float64(oldN))
		logZLive := logLBar + float64(k)*(math.Log(float64(oldN))-math.Log(float64(oldN)+1))
		rho := math.Exp(logZLive - ns.logZ)
		lastLogZLive = logZLive

		if k%ns.cfg.ClusteringInterval == 0 {
			if err := ns.retile(k, oldN); err != nil {
				return nil, err
			}
		}

		wIdx := ns.applyReduction(rho, w)

		result, err := ns.sampler.Draw(ns.rng, ns.problem.Priors, ns.problem.Likelihood, lStar)
		if err != nil {
			ns.duration = time.Since(ns.start)
			return nil, err
		}
		if result == nil {
			ns.terminationKind = KindDrawExhausted.String()
			ns.finalize(lastLogZLive)
			ns.duration = time.Since(ns.start)
			return ns.buildResults(), newEngineError(KindDrawExhausted, "sampler exhausted maxNdrawAttempts", nil)
		}
		ns.live[wIdx] = LivePoint{Theta: result.Theta, LogL: result.LogL}

		nLive := len(ns.live)
		ns.logW -= 1.0 / float64(nLive)
		ns.logX -= 1.0 / float64(nLive)

		ns.iteration++

		if rho <= ns.cfg.TerminationFactor {
			ns.terminationKind = "converged"
			ns.finalize(lastLogZLive)
			break
		}
	}

	ns.duration = time.Since(ns.start)
	return ns.buildResults(), nil
}

// initLiveSet draws NLive independent points from the joint prior and
// evaluates the likelihood at each.
func (ns *NestedSampler) initLiveSet() error {
	ns.live = make([]LivePoint, ns.cfg.NLive)
	for i := range ns.live {
		theta := make([]float64, ns.d)
		ns.problem.Priors.Draw(ns.rng, theta)
		logL := ns.problem.Likelihood.LogValue(theta)
		if math.IsNaN(logL) || math.IsInf(logL, 1) {
			return newEngineError(KindLikelihoodInfinite, "likelihood returned a non-finite value on a prior-supported point", nil)
		}
		ns.live[i] = LivePoint{Theta: theta, LogL: logL}
	}
	return nil
}

// worstIndex returns the index of the live point with the smallest
// log-likelihood.
func (ns *NestedSampler) worstIndex() int {
	logLs := make([]float64, len(ns.live))
	for i, lp := range ns.live {
		logLs[i] = lp.LogL
	}
	return argMin(logLs)
}

// retile rebuilds the cluster assignment and ellipsoid set: a single
// cluster while k is inside the initial clustering delay, a fresh
// k-means partition afterward.
func (ns *NestedSampler) retile(k, nLive int) error {
	points := make([][]float64, len(ns.live))
	for i, lp := range ns.live {
		points[i] = lp.Theta
	}

	var nClusters int
	var assignments []int
	if k < ns.cfg.InitialClusteringDelay {
		nClusters = 1
		assignments = make([]int, len(points))
	} else {
		var err error
		nClusters, assignments, _, err = ns.clusterer.Cluster(ns.rng, points, ns.cfg.Verbose)
		if err != nil {
			return err
		}
	}
	if ns.cfg.Verbose {
		ns.logger.Info("clustering tick", "iteration", k, "n_clusters", nClusters)
	}
	return ns.sampler.BuildEllipsoids(points, assignments, nClusters, nLive, ns.logX)
}

// applyReduction consults the reducer and, if it shrinks the live set,
// drops the worst points outside {w} into the posterior record at the
// current logW. It returns w's index in the (possibly shrunk) live
// slice.
func (ns *NestedSampler) applyReduction(rho float64, w int) int {
	oldN := len(ns.live)
	newN := ns.reducer.UpdateNObjects(rho)
	if newN < ns.cfg.MinNObjects {
		newN = ns.cfg.MinNObjects
	}
	if newN >= oldN {
		return w
	}

	dropCount := oldN - newN
	type idxLogL struct {
		idx  int
		logL float64
	}
	others := make([]idxLogL, 0, oldN-1)
	for i, lp := range ns.live {
		if i == w {
			continue
		}
		others = append(others, idxLogL{idx: i, logL: lp.LogL})
	}
	sort.Slice(others, func(i, j int) bool { return others[i].logL < others[j].logL })

	drop := make(map[int]bool, dropCount)
	for i := 0; i < dropCount && i < len(others); i++ {
		drop[others[i].idx] = true
	}

	newLive := make([]LivePoint, 0, newN)
	newW := -1
	for i, lp := range ns.live {
		if drop[i] {
			ns.posterior = append(ns.posterior, PosteriorPoint{
				Theta: append([]float64(nil), lp.Theta...),
				LogL:  lp.LogL,
				LogW:  ns.logW + lp.LogL,
			})
			continue
		}
		if i == w {
			newW = len(newLive)
		}
		newLive = append(newLive, lp)
	}
	ns.live = newLive
	return newW
}

// finalize absorbs the remaining live set into the posterior at logW and
// rolls logZ_live, the live set's own residual evidence contribution,
// into logZ.
func (ns *NestedSampler) finalize(logZLive float64) {
	for _, lp := range ns.live {
		ns.posterior = append(ns.posterior, PosteriorPoint{
			Theta: append([]float64(nil), lp.Theta...),
			LogL:  lp.LogL,
			LogW:  ns.logW + lp.LogL,
		})
	}
	ns.logZ = logSumExp(ns.logZ, logZLive)
}

// buildResults packages the driver's final state into a Results value.
func (ns *NestedSampler) buildResults() *Results {
	return &Results{
		RunID:             uuid.New(),
		D:                 ns.d,
		NLiveInitial:      ns.nLiveInitial,
		Posterior:         ns.posterior,
		LogZ:              ns.logZ,
		LogZErr:           math.Sqrt(math.Abs(ns.h) / float64(ns.nLiveInitial)),
		InformationGain:   ns.h,
		NIterations:       ns.iteration,
		ComputationalTime: ns.duration,
		TerminationKind:   ns.terminationKind,
	}
}
