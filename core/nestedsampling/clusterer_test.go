package nestedsampling

import (
	"math/rand"
	"testing"
)

func twoBlobPoints(n, d int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	points := make([][]float64, n)
	for i := range points {
		center := -10.0
		if i%2 == 1 {
			center = 10.0
		}
		p := make([]float64, d)
		for j := range p {
			p[j] = center + rng.NormFloat64()*0.2
		}
		points[i] = p
	}
	return points
}

func TestClustererFindsTwoWellSeparatedBlobs(t *testing.T) {
	cfg := ClustererConfig{KMin: 1, KMax: 4, NTrials: 5, RelTolerance: 1e-4, MaxIterations: 100, CostRatioTolerance: 0.5}
	c, err := NewClusterer(cfg, EuclideanMetric{}, nil)
	if err != nil {
		t.Fatalf("NewClusterer: %v", err)
	}
	points := twoBlobPoints(60, 2, 1)
	rng := rand.New(rand.NewSource(100))
	nClusters, assignments, sizes, err := c.Cluster(rng, points, false)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if nClusters != 2 {
		t.Fatalf("nClusters = %d, want 2", nClusters)
	}
	if len(assignments) != len(points) {
		t.Fatalf("len(assignments) = %d, want %d", len(assignments), len(points))
	}
	total := 0
	for _, s := range sizes {
		total += s
	}
	if total != len(points) {
		t.Fatalf("cluster sizes sum to %d, want %d", total, len(points))
	}
}

func TestMergeUndersizedClustersFoldsSmallClusterIntoNeighbor(t *testing.T) {
	// D=2 requires clusters of at least 3 points; cluster 1 here has only
	// 2 members and must be folded into its nearest neighbor.
	points := [][]float64{
		{0, 0}, {0.1, 0}, {0.2, 0}, {0.1, 0.1}, // cluster 0, size 4
		{10, 10}, {10.1, 10}, // cluster 1, size 2 (< D+1)
	}
	assignments := []int{0, 0, 0, 0, 1, 1}
	nClusters, merged, sizes := mergeUndersizedClusters(assignments, points, 2, EuclideanMetric{})
	if nClusters != 1 {
		t.Fatalf("nClusters = %d, want 1 after merging the undersized cluster", nClusters)
	}
	for _, a := range merged {
		if a != 0 {
			t.Fatalf("expected every point folded into cluster 0, got assignment %d", a)
		}
	}
	if sizes[0] != len(points) {
		t.Fatalf("merged cluster size = %d, want %d", sizes[0], len(points))
	}
}

func TestMergeUndersizedClustersLeavesValidClusteringAlone(t *testing.T) {
	points := twoBlobPoints(20, 2, 3)
	assignments := make([]int, 20)
	for i := range assignments {
		assignments[i] = i % 2
	}
	nClusters, _, sizes := mergeUndersizedClusters(assignments, points, 2, EuclideanMetric{})
	if nClusters != 2 {
		t.Fatalf("nClusters = %d, want 2 for two size-10 clusters", nClusters)
	}
	for _, s := range sizes {
		if s != 10 {
			t.Fatalf("cluster size = %d, want 10", s)
		}
	}
}

func TestClustererRejectsBadConfig(t *testing.T) {
	bad := ClustererConfig{KMin: 0, KMax: 5, NTrials: 1, RelTolerance: 1e-3, MaxIterations: 10, CostRatioTolerance: 0.5}
	if _, err := NewClusterer(bad, EuclideanMetric{}, nil); err == nil {
		t.Fatal("expected error for KMin < 1")
	}
}
