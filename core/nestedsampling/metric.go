package nestedsampling

import "math"

// Metric computes a scalar distance between two parameter vectors. A
// correct implementation is symmetric and zero iff a and b are equal; the
// clusterer and ellipsoid-merge logic rely on that, not on any particular
// norm.
type Metric interface {
	Distance(a, b []float64) float64
}

// EuclideanMetric is the default Metric: ordinary L2 distance. It mirrors
// the squared-L2-via-dot-products identity used throughout
// core/vectorgraphdb/quantization's distance and k-means code, but keeps
// the plain (non-squared, non-BLAS) form here since callers are working
// with D-dimensional parameter vectors rather than large batches of
// high-dimensional embeddings.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	var sumSq float64
	for i := range a {
		d := a[i] - b[i]
		sumSq += d * d
	}
	return math.Sqrt(sumSq)
}

// squaredEuclidean is the hot-path helper used internally by the
// clusterer and ellipsoid merge logic, which only ever compare distances
// and so never need the square root.
func squaredEuclidean(a, b []float64) float64 {
	var sumSq float64
	for i := range a {
		d := a[i] - b[i]
		sumSq += d * d
	}
	return sumSq
}
