package wardsweep

import "fmt"

// Labeling assigns every sample to a cluster.
type Labeling struct {
	// Labels[i] is the cluster of sample i. Ids are dense, 0..Clusters-1,
	// numbered in order of each cluster's lowest sample index.
	Labels []int

	// Clusters is the number of distinct labels actually produced.
	Clusters int
}

// Cut returns the flat clustering with k clusters: the state after the
// first N-k merges of the tree. k must lie in [1, N]. When the tree stopped
// early because the connectivity graph is disconnected, k below
// MinClusters fails with ErrDisconnectedConstraint.
func (t *Tree) Cut(k int) (Labeling, error) {
	if k < 1 || k > t.N {
		return Labeling{}, fmt.Errorf("%w: k=%d for %d samples", ErrInvalidClusterCount, k, t.N)
	}
	if k < t.MinClusters() {
		return Labeling{}, fmt.Errorf("%w: k=%d but the graph only merges down to %d clusters",
			ErrDisconnectedConstraint, k, t.MinClusters())
	}

	// Replay merges with the same id scheme as the linkage rows so that
	// row operands resolve to union-find elements directly.
	uf := NewUnionFind(t.N)
	for _, r := range t.Linkage[:t.N-k] {
		uf.Merge(int(r[0]), int(r[1]))
	}

	labels, clusters := relabel(t.N, uf.Find)
	return Labeling{Labels: labels, Clusters: clusters}, nil
}
