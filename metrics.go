package wardsweep

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MetricFunc scores a labeling of flat row-major points with dims columns.
// It returns an error wrapping ErrMetricUndefined when the score does not
// exist for that labeling.
type MetricFunc func(points []float64, dims int, labels []int) (float64, error)

// Metric names used in diagnostics and rendered output.
const (
	MetricWCSS             = "wcss"
	MetricSilhouette       = "silhouette"
	MetricCalinskiHarabasz = "calinski_harabasz"
	MetricDaviesBouldin    = "davies_bouldin"
)

// Silhouette returns the mean silhouette coefficient under Euclidean
// distance. A sample alone in its cluster scores 0. Undefined unless the
// number of distinct labels is in [2, n-1]. Higher is better.
func Silhouette(points []float64, dims int, labels []int) (float64, error) {
	if dims <= 0 || len(points) != len(labels)*dims {
		return 0, fmt.Errorf("%w: %d values for %d labels of %d dims", ErrShapeMismatch, len(points), len(labels), dims)
	}
	n := len(labels)
	return SilhouetteFromDistances(PairwiseDistances(points, n, dims), n, labels)
}

// SilhouetteFromDistances is Silhouette over a precomputed flat n*n distance
// matrix, so a sweep can share one matrix across many labelings.
func SilhouetteFromDistances(dist []float64, n int, labels []int) (float64, error) {
	if len(labels) != n || len(dist) != n*n {
		return 0, fmt.Errorf("%w: %d labels, %d distances for n=%d", ErrShapeMismatch, len(labels), len(dist), n)
	}

	index := make(map[int]int)
	var sizes []int
	dense := make([]int, n)
	for i, l := range labels {
		c, ok := index[l]
		if !ok {
			c = len(sizes)
			index[l] = c
			sizes = append(sizes, 0)
		}
		sizes[c]++
		dense[i] = c
	}
	k := len(sizes)
	if k < 2 || k > n-1 {
		return 0, fmt.Errorf("%w: silhouette needs 2 <= clusters <= n-1, got %d clusters for %d samples",
			ErrMetricUndefined, k, n)
	}

	scores := make([]float64, n)
	sums := make([]float64, k)
	for i := 0; i < n; i++ {
		own := dense[i]
		if sizes[own] == 1 {
			continue // singletons score 0
		}
		for c := range sums {
			sums[c] = 0
		}
		for j := 0; j < n; j++ {
			sums[dense[j]] += dist[i*n+j]
		}

		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c, s := range sums {
			if c != own {
				b = math.Min(b, s/float64(sizes[c]))
			}
		}
		if m := math.Max(a, b); m > 0 {
			scores[i] = (b - a) / m
		}
	}
	return finite(MetricSilhouette, floats.Sum(scores)/float64(n))
}

// CalinskiHarabasz returns the variance ratio criterion: between-cluster
// dispersion over within-cluster dispersion, each normalized by its degrees
// of freedom. Undefined for fewer than 2 clusters, for one cluster per
// sample, or when every cluster has zero spread. Higher is better.
func CalinskiHarabasz(points []float64, dims int, labels []int) (float64, error) {
	cs, err := summarize(points, dims, labels)
	if err != nil {
		return 0, err
	}
	n, k := cs.n, cs.k()
	if k < 2 || k >= n {
		return 0, fmt.Errorf("%w: calinski-harabasz needs 2 <= clusters < n, got %d clusters for %d samples",
			ErrMetricUndefined, k, n)
	}

	mean := make([]float64, dims)
	for i := 0; i < n; i++ {
		floats.Add(mean, row(points, dims, i))
	}
	floats.Scale(1/float64(n), mean)

	var between float64
	for c := 0; c < k; c++ {
		between += float64(cs.sizes[c]) * sqEuclidean(cs.centroid(c), mean)
	}
	within := cs.withinSS(points, labels)
	if within == 0 {
		return 0, fmt.Errorf("%w: calinski-harabasz has zero within-cluster dispersion", ErrMetricUndefined)
	}
	return finite(MetricCalinskiHarabasz, between*float64(n-k)/(within*float64(k-1)))
}

// DaviesBouldin returns the average, over clusters, of the worst ratio of
// summed cluster scatter to centroid separation. Scatter is the mean
// Euclidean distance of members to their centroid. Undefined for fewer than
// 2 clusters, for any single-member cluster, or for coincident centroids.
// Lower is better.
func DaviesBouldin(points []float64, dims int, labels []int) (float64, error) {
	cs, err := summarize(points, dims, labels)
	if err != nil {
		return 0, err
	}
	k := cs.k()
	if k < 2 {
		return 0, fmt.Errorf("%w: davies-bouldin needs at least 2 clusters, got %d", ErrMetricUndefined, k)
	}
	for c, size := range cs.sizes {
		if size < 2 {
			return 0, fmt.Errorf("%w: davies-bouldin cluster %d has a single member", ErrMetricUndefined, c)
		}
	}

	scatter := make([]float64, k)
	for i, l := range labels {
		c := cs.index[l]
		scatter[c] += euclidean(row(points, dims, i), cs.centroid(c))
	}
	for c := range scatter {
		scatter[c] /= float64(cs.sizes[c])
	}

	var total float64
	for i := 0; i < k; i++ {
		worst := 0.0
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			sep := euclidean(cs.centroid(i), cs.centroid(j))
			if sep == 0 {
				return 0, fmt.Errorf("%w: davies-bouldin clusters %d and %d share a centroid", ErrMetricUndefined, i, j)
			}
			worst = math.Max(worst, (scatter[i]+scatter[j])/sep)
		}
		total += worst
	}
	return finite(MetricDaviesBouldin, total/float64(k))
}
