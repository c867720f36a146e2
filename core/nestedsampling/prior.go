package nestedsampling

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is the capability set a per-dimension-block prior must expose:
// its dimensionality, a way to draw from its support using the driver's
// single RNG sequence, and a log-density lookup that returns -Inf outside
// its support. Concrete variants (uniform, normal, truncated-normal) are
// selected at construction; no dynamic inheritance depth is needed.
type Prior interface {
	Dimensions() int
	Draw(rng *rand.Rand, out []float64)
	LogDensity(theta []float64) float64
}

// UniformPrior is a D-dimensional axis-aligned box with independent
// per-dimension bounds.
type UniformPrior struct {
	Min, Max []float64
}

// NewUniformPrior builds a box prior; min and max must have equal,
// nonzero length and min[i] < max[i] for every dimension.
func NewUniformPrior(min, max []float64) (*UniformPrior, error) {
	if len(min) == 0 || len(min) != len(max) {
		return nil, newEngineError(KindInvalidConfig, "uniform prior bounds must be non-empty and equal length", nil)
	}
	for i := range min {
		if !(min[i] < max[i]) {
			return nil, newEngineError(KindInvalidConfig, "uniform prior requires min[i] < max[i]", nil)
		}
	}
	return &UniformPrior{Min: min, Max: max}, nil
}

func (p *UniformPrior) Dimensions() int { return len(p.Min) }

func (p *UniformPrior) Draw(rng *rand.Rand, out []float64) {
	for i := range p.Min {
		out[i] = p.Min[i] + rng.Float64()*(p.Max[i]-p.Min[i])
	}
}

func (p *UniformPrior) LogDensity(theta []float64) float64 {
	logVol := 0.0
	for i := range p.Min {
		if theta[i] < p.Min[i] || theta[i] > p.Max[i] {
			return math.Inf(-1)
		}
		logVol += math.Log(p.Max[i] - p.Min[i])
	}
	return -logVol
}

// NormalPrior is an unbounded independent Gaussian block. Draws use the
// driver's RNG directly via NormFloat64 so that the single owned sequence
// stays deterministic; distuv.Normal is used only for its LogProb, which
// needs no random source.
type NormalPrior struct {
	Mu, Sigma []float64
	dists     []distuv.Normal
}

// NewNormalPrior builds an independent Gaussian block prior.
func NewNormalPrior(mu, sigma []float64) (*NormalPrior, error) {
	if len(mu) == 0 || len(mu) != len(sigma) {
		return nil, newEngineError(KindInvalidConfig, "normal prior mu/sigma must be non-empty and equal length", nil)
	}
	dists := make([]distuv.Normal, len(mu))
	for i := range mu {
		if sigma[i] <= 0 {
			return nil, newEngineError(KindInvalidConfig, "normal prior requires sigma[i] > 0", nil)
		}
		dists[i] = distuv.Normal{Mu: mu[i], Sigma: sigma[i]}
	}
	return &NormalPrior{Mu: mu, Sigma: sigma, dists: dists}, nil
}

func (p *NormalPrior) Dimensions() int { return len(p.Mu) }

func (p *NormalPrior) Draw(rng *rand.Rand, out []float64) {
	for i := range p.Mu {
		out[i] = p.Mu[i] + p.Sigma[i]*rng.NormFloat64()
	}
}

func (p *NormalPrior) LogDensity(theta []float64) float64 {
	var logP float64
	for i, d := range p.dists {
		logP += d.LogProb(theta[i])
	}
	return logP
}

// TruncatedNormalPrior is an independent Gaussian block restricted to a
// box, renormalized by the enclosed probability mass. Draws use rejection
// sampling against NormFloat64 draws rather than inverse-CDF, keeping the
// sampling path free of any RNG other than the driver's.
type TruncatedNormalPrior struct {
	Mu, Sigma, Min, Max []float64
	dists               []distuv.Normal
	logMass             []float64
}

// NewTruncatedNormalPrior builds an independent truncated-Gaussian block.
func NewTruncatedNormalPrior(mu, sigma, min, max []float64) (*TruncatedNormalPrior, error) {
	n := len(mu)
	if n == 0 || len(sigma) != n || len(min) != n || len(max) != n {
		return nil, newEngineError(KindInvalidConfig, "truncated-normal prior arguments must be non-empty and equal length", nil)
	}
	dists := make([]distuv.Normal, n)
	logMass := make([]float64, n)
	for i := 0; i < n; i++ {
		if sigma[i] <= 0 || !(min[i] < max[i]) {
			return nil, newEngineError(KindInvalidConfig, "truncated-normal prior requires sigma[i] > 0 and min[i] < max[i]", nil)
		}
		dists[i] = distuv.Normal{Mu: mu[i], Sigma: sigma[i]}
		mass := dists[i].CDF(max[i]) - dists[i].CDF(min[i])
		if mass <= 0 {
			return nil, newEngineError(KindInvalidConfig, "truncated-normal prior bounds enclose zero probability mass", nil)
		}
		logMass[i] = math.Log(mass)
	}
	return &TruncatedNormalPrior{Mu: mu, Sigma: sigma, Min: min, Max: max, dists: dists, logMass: logMass}, nil
}

func (p *TruncatedNormalPrior) Dimensions() int { return len(p.Mu) }

func (p *TruncatedNormalPrior) Draw(rng *rand.Rand, out []float64) {
	for i := range p.Mu {
		for {
			v := p.Mu[i] + p.Sigma[i]*rng.NormFloat64()
			if v >= p.Min[i] && v <= p.Max[i] {
				out[i] = v
				break
			}
		}
	}
}

func (p *TruncatedNormalPrior) LogDensity(theta []float64) float64 {
	var logP float64
	for i, d := range p.dists {
		if theta[i] < p.Min[i] || theta[i] > p.Max[i] {
			return math.Inf(-1)
		}
		logP += d.LogProb(theta[i]) - p.logMass[i]
	}
	return logP
}

// PriorList is the ordered collection of per-dimension prior blocks whose
// dimensions sum to the joint parameter-space dimension D.
type PriorList []Prior

func (pl PriorList) Dimensions() int {
	d := 0
	for _, p := range pl {
		d += p.Dimensions()
	}
	return d
}

// Draw fills out (length Dimensions()) by delegating contiguous
// dimension blocks to each prior in order.
func (pl PriorList) Draw(rng *rand.Rand, out []float64) {
	offset := 0
	for _, p := range pl {
		n := p.Dimensions()
		p.Draw(rng, out[offset:offset+n])
		offset += n
	}
}

// LogDensity sums the block log-densities, short-circuiting to -Inf as
// soon as any block is outside its support.
func (pl PriorList) LogDensity(theta []float64) float64 {
	offset := 0
	var logP float64
	for _, p := range pl {
		n := p.Dimensions()
		block := p.LogDensity(theta[offset : offset+n])
		if math.IsInf(block, -1) {
			return math.Inf(-1)
		}
		logP += block
		offset += n
	}
	return logP
}
