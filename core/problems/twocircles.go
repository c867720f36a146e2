package problems

import (
	"math"

	"github.com/adalundhe/nestor/core/nestedsampling"
)

// twoCirclesRing describes one Gaussian-ring component: a circle of
// radius r0 centered at (cx, cy), with Gaussian falloff of width sigma
// away from the ring.
type twoCirclesRing struct {
	cx, cy, r0, sigma float64
}

func (r twoCirclesRing) logValue(x, y float64) float64 {
	dx, dy := x-r.cx, y-r.cy
	radius := math.Hypot(dx, dy)
	d := radius - r.r0
	return -0.5 * (d * d) / (r.sigma * r.sigma)
}

// TwoCircles builds the two-dimensional two-circles scenario: a uniform
// prior over [-7,7]x[-6,6] and a log-likelihood equal to the pointwise
// maximum of two Gaussian-ring components, producing a bimodal,
// ring-shaped posterior that the clusterer must partition into separate
// ellipsoids.
func TwoCircles() (nestedsampling.Problem, error) {
	min := []float64{-7, -6}
	max := []float64{7, 6}
	prior, err := nestedsampling.NewUniformPrior(min, max)
	if err != nil {
		return nestedsampling.Problem{}, err
	}

	rings := [2]twoCirclesRing{
		{cx: -1.5, cy: 0, r0: 2.0, sigma: 0.3},
		{cx: 1.5, cy: 0, r0: 2.0, sigma: 0.3},
	}

	likelihood := nestedsampling.LikelihoodFunc(func(theta []float64) float64 {
		x, y := theta[0], theta[1]
		a := rings[0].logValue(x, y)
		b := rings[1].logValue(x, y)
		if a > b {
			return a
		}
		return b
	})

	return nestedsampling.Problem{
		Priors:     nestedsampling.PriorList{prior},
		Likelihood: likelihood,
		Metric:     nestedsampling.EuclideanMetric{},
	}, nil
}
