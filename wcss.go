package wardsweep

import (
	"fmt"
	"math"
)

// WCSS returns the within-cluster sum of squares: for every label, the sum of
// squared Euclidean distances from its members to their centroid, summed
// over labels. points is flat row-major with dims columns and one row per
// label. The result is zero only when every cluster's members coincide.
func WCSS(points []float64, dims int, labels []int) (float64, error) {
	cs, err := summarize(points, dims, labels)
	if err != nil {
		return 0, err
	}
	return finite(MetricWCSS, cs.withinSS(points, labels))
}

// clusterSummary holds per-cluster sizes and centroids for a labeling.
// Clusters are indexed densely in order of first appearance.
type clusterSummary struct {
	n, dims   int
	index     map[int]int // label -> dense cluster index
	sizes     []int
	centroids []float64 // flat k * dims
}

func (cs *clusterSummary) k() int { return len(cs.sizes) }

func (cs *clusterSummary) centroid(c int) []float64 {
	return row(cs.centroids, cs.dims, c)
}

// summarize groups points by label and computes centroids.
func summarize(points []float64, dims int, labels []int) (*clusterSummary, error) {
	if dims <= 0 || len(points) != len(labels)*dims {
		return nil, fmt.Errorf("%w: %d values for %d labels of %d dims", ErrShapeMismatch, len(points), len(labels), dims)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrEmptyInput)
	}

	cs := &clusterSummary{n: len(labels), dims: dims, index: make(map[int]int)}
	for i, l := range labels {
		c, ok := cs.index[l]
		if !ok {
			c = len(cs.sizes)
			cs.index[l] = c
			cs.sizes = append(cs.sizes, 0)
			cs.centroids = append(cs.centroids, make([]float64, dims)...)
		}
		cs.sizes[c]++
		cent := cs.centroid(c)
		for d, v := range row(points, dims, i) {
			cent[d] += v
		}
	}
	for c, size := range cs.sizes {
		cent := cs.centroid(c)
		for d := range cent {
			cent[d] /= float64(size)
		}
	}
	return cs, nil
}

// withinSS sums squared distances of points to their cluster centroid.
func (cs *clusterSummary) withinSS(points []float64, labels []int) float64 {
	var sum float64
	for i, l := range labels {
		sum += sqEuclidean(row(points, cs.dims, i), cs.centroid(cs.index[l]))
	}
	return sum
}

// finite turns NaN and Inf into ErrNonFiniteResult.
func finite(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s = %v", ErrNonFiniteResult, name, v)
	}
	return v, nil
}
