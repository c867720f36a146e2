package problems

import "github.com/adalundhe/nestor/core/nestedsampling"

// Gaussian1D builds the one-dimensional Gaussian scenario: a uniform
// prior over [-10,10] and logL(x) = -x^2/2, whose analytic evidence is
// log(sqrt(2*pi)/20).
func Gaussian1D() (nestedsampling.Problem, error) {
	prior, err := nestedsampling.NewUniformPrior([]float64{-10}, []float64{10})
	if err != nil {
		return nestedsampling.Problem{}, err
	}

	likelihood := nestedsampling.LikelihoodFunc(func(theta []float64) float64 {
		x := theta[0]
		return -0.5 * x * x
	})

	return nestedsampling.Problem{
		Priors:     nestedsampling.PriorList{prior},
		Likelihood: likelihood,
		Metric:     nestedsampling.EuclideanMetric{},
	}, nil
}
