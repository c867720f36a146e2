package problems

import (
	"math"

	"github.com/adalundhe/nestor/core/nestedsampling"
)

// Eggbox builds the two-dimensional eggbox scenario: a uniform prior over
// [0, 10*pi]^2 and a log-likelihood with a periodic, many-modal egg-crate
// surface, logL(x,y) = (2 + cos(x/2)*cos(y/2))^5.
func Eggbox() (nestedsampling.Problem, error) {
	min := []float64{0, 0}
	max := []float64{10 * math.Pi, 10 * math.Pi}
	prior, err := nestedsampling.NewUniformPrior(min, max)
	if err != nil {
		return nestedsampling.Problem{}, err
	}

	likelihood := nestedsampling.LikelihoodFunc(func(theta []float64) float64 {
		x, y := theta[0], theta[1]
		base := 2 + math.Cos(x/2)*math.Cos(y/2)
		return math.Pow(base, 5)
	})

	return nestedsampling.Problem{
		Priors:     nestedsampling.PriorList{prior},
		Likelihood: likelihood,
		Metric:     nestedsampling.EuclideanMetric{},
	}, nil
}
