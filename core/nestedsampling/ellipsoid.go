package nestedsampling

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// eigenFloor is the relative floor applied to non-positive eigenvalues of
// a near-singular sample covariance, as a fraction of the largest
// eigenvalue.
const eigenFloor = 1e-12

// Ellipsoid is the bounding ellipsoid of a point subset: componentwise
// mean, unbiased sample covariance, its eigendecomposition, an
// enlargement factor, and the derived semi-axes and hyper-volume.
//
// Eigenvectors are stored as columns of a D×D rotation matrix, in the
// ascending-eigenvalue order gonum's mat.EigenSym returns, following the
// convention in core/vectorgraphdb/quantization/avq.go
// (GetPrincipalQueryDirection indexes the last column for the largest
// eigenvalue).
type Ellipsoid struct {
	D            int
	Center       []float64
	Cov          *mat.SymDense
	Eigenvalues  []float64
	Eigenvectors *mat.Dense
	F            float64
	SemiAxes     []float64
	Volume       float64
}

// BuildEllipsoid fits the bounding ellipsoid of points with enlargement
// factor f. It requires n = len(points) >= 2 so that a sample covariance
// is defined; the D+1-point merge policy for singular clusters is the
// caller's responsibility (see Clusterer).
func BuildEllipsoid(points [][]float64, f float64) (*Ellipsoid, error) {
	n := len(points)
	if n < 2 {
		return nil, newEngineError(KindInvalidConfig, "ellipsoid requires at least 2 points", nil)
	}
	d := len(points[0])

	center := make([]float64, d)
	for _, p := range points {
		for i := 0; i < d; i++ {
			center[i] += p[i]
		}
	}
	for i := range center {
		center[i] /= float64(n)
	}

	flat := make([]float64, n*d)
	for i, p := range points {
		copy(flat[i*d:(i+1)*d], p)
	}
	x := mat.NewDense(n, d, flat)

	cov := mat.NewSymDense(d, nil)
	stat.CovarianceMatrix(cov, x, nil)

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return nil, newEngineError(KindInvalidConfig, "covariance eigendecomposition failed", nil)
	}
	values := eig.Values(nil)

	maxLambda := values[0]
	for _, v := range values {
		if v > maxLambda {
			maxLambda = v
		}
	}
	floor := eigenFloor * maxLambda
	if floor <= 0 {
		floor = eigenFloor
	}
	eigenvalues := make([]float64, d)
	for i, v := range values {
		eigenvalues[i] = math.Max(v, floor)
	}

	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// The raw sample-covariance shape is not itself a bounding ellipsoid:
	// a typical point sits near one Mahalanobis unit from center, and
	// roughly half the sample sits beyond it. Rescale every eigenvalue by
	// kf, the largest squared Mahalanobis distance among the points that
	// produced this covariance but never less than 1, so the f=1
	// ellipsoid bounds them (with equality for the most extreme point
	// whenever kf > 1).
	e := &Ellipsoid{
		D:            d,
		Center:       center,
		Cov:          cov,
		Eigenvalues:  eigenvalues,
		Eigenvectors: &vectors,
		F:            1,
	}
	kf := 1.0
	for _, p := range points {
		if m := e.mahalanobisSq(p); m > kf {
			kf = m
		}
	}
	for i := range eigenvalues {
		eigenvalues[i] *= kf
	}
	e.Eigenvalues = eigenvalues

	semiAxes := make([]float64, d)
	for i, lambda := range eigenvalues {
		semiAxes[i] = f * math.Sqrt(lambda)
	}
	e.F = f
	e.SemiAxes = semiAxes
	e.Volume = e.hyperVolume()
	return e, nil
}

func (e *Ellipsoid) hyperVolume() float64 {
	prod := 1.0
	for _, a := range e.SemiAxes {
		prod *= a
	}
	d := float64(e.D)
	return (math.Pow(math.Pi, d/2) / math.Gamma(d/2+1)) * prod
}

// principalCoords returns y = R^T (theta - center), the coordinates of
// theta in the ellipsoid's principal frame.
func (e *Ellipsoid) principalCoords(theta []float64) []float64 {
	diff := make([]float64, e.D)
	for i := range diff {
		diff[i] = theta[i] - e.Center[i]
	}
	y := make([]float64, e.D)
	for j := 0; j < e.D; j++ {
		var sum float64
		for i := 0; i < e.D; i++ {
			sum += e.Eigenvectors.At(i, j) * diff[i]
		}
		y[j] = sum
	}
	return y
}

// mahalanobisSq returns sum_i y_i^2/lambda_i, the squared Mahalanobis
// distance at enlargement f=1. ContainsPoint compares this against F^2.
func (e *Ellipsoid) mahalanobisSq(theta []float64) float64 {
	y := e.principalCoords(theta)
	var sum float64
	for i, yi := range y {
		sum += (yi * yi) / e.Eigenvalues[i]
	}
	return sum
}

// ContainsPoint reports whether theta lies within the enlarged ellipsoid.
func (e *Ellipsoid) ContainsPoint(theta []float64) bool {
	return e.mahalanobisSq(theta) <= e.F*e.F
}

// ContainsPointUnenlarged reports containment at enlargement f=1; used by
// the build invariant that every source point is inside the unenlarged
// ellipsoid.
func (e *Ellipsoid) ContainsPointUnenlarged(theta []float64) bool {
	return e.mahalanobisSq(theta) <= 1.0
}

// UniformInteriorSample draws a point uniformly from the interior of the
// enlarged ellipsoid: a uniform direction on the unit sphere, scaled by
// u^(1/D) for a uniform-in-volume radius, then mapped through the
// principal frame back to parameter space.
func (e *Ellipsoid) UniformInteriorSample(rng *rand.Rand) []float64 {
	z := make([]float64, e.D)
	var normSq float64
	for i := range z {
		z[i] = rng.NormFloat64()
		normSq += z[i] * z[i]
	}
	norm := math.Sqrt(normSq)
	u := rng.Float64()
	radius := math.Pow(u, 1.0/float64(e.D))

	y := make([]float64, e.D)
	for i := range z {
		y[i] = radius * (z[i] / norm) * e.SemiAxes[i]
	}

	theta := make([]float64, e.D)
	for i := 0; i < e.D; i++ {
		var sum float64
		for j := 0; j < e.D; j++ {
			sum += e.Eigenvectors.At(i, j) * y[j]
		}
		theta[i] = e.Center[i] + sum
	}
	return theta
}

// Overlaps reports whether e and other's enlarged ellipsoids intersect.
// Exact overlap of two general ellipsoids requires a generalized
// eigenvalue criterion; this uses a cheaper sufficient test instead:
// either center inside the other ellipsoid, or any of the other's
// principal-axis endpoints inside this one.
func (e *Ellipsoid) Overlaps(other *Ellipsoid) bool {
	if e.ContainsPoint(other.Center) || other.ContainsPoint(e.Center) {
		return true
	}
	for _, axisPoint := range e.axisEndpoints() {
		if other.ContainsPoint(axisPoint) {
			return true
		}
	}
	for _, axisPoint := range other.axisEndpoints() {
		if e.ContainsPoint(axisPoint) {
			return true
		}
	}
	return false
}

// axisEndpoints returns the 2D points where the enlarged ellipsoid meets
// its own principal axes: center ± a_i * eigenvector_i.
func (e *Ellipsoid) axisEndpoints() [][]float64 {
	points := make([][]float64, 0, 2*e.D)
	for j := 0; j < e.D; j++ {
		pos := make([]float64, e.D)
		neg := make([]float64, e.D)
		for i := 0; i < e.D; i++ {
			offset := e.SemiAxes[j] * e.Eigenvectors.At(i, j)
			pos[i] = e.Center[i] + offset
			neg[i] = e.Center[i] - offset
		}
		points = append(points, pos, neg)
	}
	return points
}
