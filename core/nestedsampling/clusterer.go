package nestedsampling

import (
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// ClustererConfig configures the k-means model-selection clusterer.
type ClustererConfig struct {
	// KMin, KMax bound the candidate cluster count range.
	KMin, KMax int

	// NTrials is the number of random restarts per candidate k; the
	// trial with lowest total within-cluster cost is kept.
	NTrials int

	// RelTolerance is the relative-improvement convergence threshold for
	// a single k-means trial's Lloyd iterations.
	RelTolerance float64

	// MaxIterations bounds Lloyd iterations per trial.
	MaxIterations int

	// CostRatioTolerance selects k*: candidate k is accepted over k-1
	// only while S(k)/S(k-1) <= CostRatioTolerance, i.e. while adding a
	// cluster still meaningfully reduces cost. Each S(k) is the best of
	// NTrials local optima, so S(k) is not guaranteed to be below
	// S(k-1); a ratio above the tolerance simply ends the scan, and a
	// zero S(k-1) accepts k without computing a ratio.
	CostRatioTolerance float64
}

// Validate checks ClustererConfig for construction-time errors.
func (c ClustererConfig) Validate() error {
	if c.KMin < 1 || c.KMax < c.KMin {
		return newEngineError(KindInvalidConfig, "clusterer requires 1 <= KMin <= KMax", nil)
	}
	if c.NTrials < 1 {
		return newEngineError(KindInvalidConfig, "clusterer requires NTrials >= 1", nil)
	}
	if c.RelTolerance <= 0 {
		return newEngineError(KindInvalidConfig, "clusterer requires RelTolerance > 0", nil)
	}
	if c.MaxIterations < 1 {
		return newEngineError(KindInvalidConfig, "clusterer requires MaxIterations >= 1", nil)
	}
	if c.CostRatioTolerance <= 0 || c.CostRatioTolerance > 1 {
		return newEngineError(KindInvalidConfig, "clusterer requires 0 < CostRatioTolerance <= 1", nil)
	}
	return nil
}

// Clusterer partitions the live set into clusters via model-selected
// k-means, following the BLAS-vectorized assignment/update structure of
// core/vectorgraphdb/quantization/kmeans_optimal.go (GEMM dot products,
// k-means++ seeding, multi-restart best-of-N, empty-cluster reseeding
// from the farthest point).
type Clusterer struct {
	cfg    ClustererConfig
	metric Metric
	logger *slog.Logger
}

// NewClusterer builds a Clusterer, or returns KindInvalidConfig.
func NewClusterer(cfg ClustererConfig, metric Metric, logger *slog.Logger) (*Clusterer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Clusterer{cfg: cfg, metric: metric, logger: logger}, nil
}

// Cluster partitions points into N_clusters groups, returning a
// per-point cluster id and per-cluster sizes.
func (c *Clusterer) Cluster(rng *rand.Rand, points [][]float64, verbose bool) (int, []int, []int, error) {
	n := len(points)
	if n == 0 {
		return 0, nil, nil, newEngineError(KindInvalidConfig, "cannot cluster an empty point set", nil)
	}
	d := len(points[0])

	kMax := c.cfg.KMax
	if maxFeasible := n / (d + 1); maxFeasible < kMax {
		kMax = maxFeasible
	}
	if kMax < 1 {
		kMax = 1
	}
	kMin := c.cfg.KMin
	if kMin > kMax {
		kMin = kMax
	}

	type trial struct {
		assignments []int
		cost        float64
	}

	best := map[int]trial{}
	for k := kMin; k <= kMax; k++ {
		bestCost := math.Inf(1)
		var bestAssign []int
		for t := 0; t < c.cfg.NTrials; t++ {
			assign, cost := runKMeans(rng, points, d, k, c.cfg.RelTolerance, c.cfg.MaxIterations)
			if cost < bestCost {
				bestCost = cost
				bestAssign = assign
			}
		}
		best[k] = trial{assignments: bestAssign, cost: bestCost}
		if verbose {
			c.logger.Debug("kmeans candidate", "k", k, "cost", bestCost)
		}
	}

	kStar := kMin
	for k := kMin + 1; k <= kMax; k++ {
		prevCost := best[k-1].cost
		if prevCost <= 0 {
			kStar = k
			continue
		}
		ratio := best[k].cost / prevCost
		if ratio > c.cfg.CostRatioTolerance {
			break
		}
		kStar = k
	}

	assignments := best[kStar].assignments
	nClusters, assignments, sizes := mergeUndersizedClusters(assignments, points, d, c.metric)

	if verbose {
		c.logger.Info("clustering tick", "n_clusters", nClusters, "n_points", n)
	}
	return nClusters, assignments, sizes, nil
}

// runKMeans performs one k-means++-seeded Lloyd run with BLAS-vectorized
// assignment, returning the final assignment vector and total cost.
func runKMeans(rng *rand.Rand, points [][]float64, d, k int, relTolerance float64, maxIterations int) ([]int, float64) {
	n := len(points)
	if k >= n {
		assign := make([]int, n)
		for i := range assign {
			assign[i] = i % k
		}
		return assign, 0
	}

	vectors := make([]float64, n*d)
	for i, p := range points {
		copy(vectors[i*d:(i+1)*d], p)
	}
	vectorNorms := make([]float64, n)
	for i := 0; i < n; i++ {
		vectorNorms[i] = dotSelf(vectors[i*d : (i+1)*d])
	}

	centroids := initKMeansPlusPlus(rng, vectors, vectorNorms, n, d, k)

	assignments := make([]int, n)
	counts := make([]int, k)
	dots := make([]float64, n*k)
	centroidNorms := make([]float64, k)

	prevObjective := math.Inf(1)
	var objective float64

	for iter := 0; iter < maxIterations; iter++ {
		for j := 0; j < k; j++ {
			centroidNorms[j] = dotSelf(centroids[j*d : (j+1)*d])
		}

		blas64.Gemm(blas.NoTrans, blas.Trans, 1.0,
			blas64.General{Rows: n, Cols: d, Stride: d, Data: vectors},
			blas64.General{Rows: k, Cols: d, Stride: d, Data: centroids},
			0.0,
			blas64.General{Rows: n, Cols: k, Stride: k, Data: dots})

		for j := range counts {
			counts[j] = 0
		}
		objective = 0
		for i := 0; i < n; i++ {
			minDist := math.MaxFloat64
			minJ := 0
			row := i * k
			for j := 0; j < k; j++ {
				dist := vectorNorms[i] + centroidNorms[j] - 2*dots[row+j]
				if dist < 0 {
					dist = 0
				}
				if dist < minDist {
					minDist = dist
					minJ = j
				}
			}
			assignments[i] = minJ
			counts[minJ]++
			objective += minDist
		}

		newCentroids := make([]float64, k*d)
		for i := 0; i < n; i++ {
			c := assignments[i]
			blas64.Axpy(1.0,
				blas64.Vector{N: d, Inc: 1, Data: vectors[i*d : (i+1)*d]},
				blas64.Vector{N: d, Inc: 1, Data: newCentroids[c*d : (c+1)*d]})
		}
		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				blas64.Scal(1.0/float64(counts[j]), blas64.Vector{N: d, Inc: 1, Data: newCentroids[j*d : (j+1)*d]})
			} else {
				reseedEmptyCentroid(newCentroids, vectors, vectorNorms, centroidNorms, assignments, dots, n, d, k, j)
			}
		}
		centroids = newCentroids

		if !math.IsInf(prevObjective, 1) {
			denom := objective
			if denom == 0 {
				denom = 1
			}
			if math.Abs(prevObjective-objective)/denom < relTolerance {
				break
			}
		}
		prevObjective = objective
	}

	return assignments, objective
}

func dotSelf(v []float64) float64 {
	return blas64.Dot(blas64.Vector{N: len(v), Inc: 1, Data: v}, blas64.Vector{N: len(v), Inc: 1, Data: v})
}

func initKMeansPlusPlus(rng *rand.Rand, vectors, vectorNorms []float64, n, d, k int) []float64 {
	centroids := make([]float64, k*d)
	first := rng.Intn(n)
	copy(centroids[0:d], vectors[first*d:(first+1)*d])

	distances := make([]float64, n)
	for i := range distances {
		distances[i] = math.MaxFloat64
	}
	dotProducts := make([]float64, n)

	for c := 1; c < k; c++ {
		prevOffset := (c - 1) * d
		prevNorm := dotSelf(centroids[prevOffset : prevOffset+d])

		blas64.Gemv(blas.NoTrans, 1.0,
			blas64.General{Rows: n, Cols: d, Stride: d, Data: vectors},
			blas64.Vector{N: d, Inc: 1, Data: centroids[prevOffset : prevOffset+d]},
			0.0,
			blas64.Vector{N: n, Inc: 1, Data: dotProducts})

		var total float64
		for i := 0; i < n; i++ {
			dist := vectorNorms[i] + prevNorm - 2*dotProducts[i]
			if dist < 0 {
				dist = 0
			}
			if dist < distances[i] {
				distances[i] = dist
			}
			total += distances[i]
		}

		if total == 0 {
			idx := rng.Intn(n)
			copy(centroids[c*d:(c+1)*d], vectors[idx*d:(idx+1)*d])
			continue
		}

		target := rng.Float64() * total
		var cumulative float64
		selected := n - 1
		for i, dist := range distances {
			cumulative += dist
			if cumulative >= target {
				selected = i
				break
			}
		}
		copy(centroids[c*d:(c+1)*d], vectors[selected*d:(selected+1)*d])
	}
	return centroids
}

// reseedEmptyCentroid reinitializes centroid j from the member of the
// largest cluster that lies farthest from that cluster's centroid.
func reseedEmptyCentroid(newCentroids, vectors, vectorNorms, centroidNorms []float64, assignments []int, dots []float64, n, d, k, j int) {
	sizes := make([]int, k)
	for _, a := range assignments {
		sizes[a]++
	}
	largest := 0
	for c := 1; c < k; c++ {
		if sizes[c] > sizes[largest] {
			largest = c
		}
	}
	maxDist := -1.0
	maxIdx := -1
	for i := 0; i < n; i++ {
		if assignments[i] != largest {
			continue
		}
		dist := vectorNorms[i] + centroidNorms[largest] - 2*dots[i*k+largest]
		if dist < 0 {
			dist = 0
		}
		if dist > maxDist {
			maxDist = dist
			maxIdx = i
		}
	}
	if maxIdx >= 0 {
		copy(newCentroids[j*d:(j+1)*d], vectors[maxIdx*d:(maxIdx+1)*d])
	}
}

// mergeUndersizedClusters folds any cluster with fewer than D+1 members
// into its nearest neighbor by centroid distance: a cluster that small
// cannot support a well-conditioned covariance estimate, so it cannot
// stand on its own. Returns a renumbered, contiguous clustering.
func mergeUndersizedClusters(assignments []int, points [][]float64, d int, metric Metric) (int, []int, []int) {
	k := renumber(assignments)

	for {
		sizes := make([]int, k)
		for _, a := range assignments {
			sizes[a]++
		}
		centroids := clusterCentroids(assignments, points, d, k)

		undersized := -1
		for c := 0; c < k; c++ {
			if sizes[c] > 0 && sizes[c] < d+1 {
				undersized = c
				break
			}
		}
		if undersized < 0 || k <= 1 {
			break
		}

		nearest := -1
		nearestDist := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == undersized || sizes[c] == 0 {
				continue
			}
			dist := squaredEuclidean(centroids[undersized], centroids[c])
			if metric != nil {
				dist = metric.Distance(centroids[undersized], centroids[c])
			}
			if dist < nearestDist {
				nearestDist = dist
				nearest = c
			}
		}
		if nearest < 0 {
			break
		}
		for i, a := range assignments {
			if a == undersized {
				assignments[i] = nearest
			}
		}
		k = renumber(assignments)
	}

	sizes := make([]int, k)
	for _, a := range assignments {
		sizes[a]++
	}
	return k, assignments, sizes
}

func clusterCentroids(assignments []int, points [][]float64, d, k int) [][]float64 {
	centroids := make([][]float64, k)
	counts := make([]int, k)
	for c := range centroids {
		centroids[c] = make([]float64, d)
	}
	for i, a := range assignments {
		counts[a]++
		for j := 0; j < d; j++ {
			centroids[a][j] += points[i][j]
		}
	}
	for c := range centroids {
		if counts[c] > 0 {
			for j := 0; j < d; j++ {
				centroids[c][j] /= float64(counts[c])
			}
		}
	}
	return centroids
}

// renumber compacts cluster ids to [0, k) in place, preserving relative
// order of first appearance, and returns the new cluster count.
func renumber(assignments []int) int {
	remap := map[int]int{}
	next := 0
	for i, a := range assignments {
		id, ok := remap[a]
		if !ok {
			id = next
			remap[a] = id
			next++
		}
		assignments[i] = id
	}
	return next
}
