package wardsweep

import (
	"fmt"
	"slices"
)

// DefaultNeighbors is the neighbor count used for the connectivity graph.
const DefaultNeighbors = 10

// defaultLeafSize bounds the points per spatial tree leaf.
const defaultLeafSize = 40

// Connectivity is a k-nearest-neighbor graph over N samples used to restrict
// which clusters may merge.
type Connectivity struct {
	N         int
	Neighbors int

	// Directed[i] lists the Neighbors samples nearest to i (self excluded),
	// nearest first, ties broken by lower index. The relation need not be
	// symmetric.
	Directed [][]int

	// Adjacent is the union of directed edges in both directions: j is in
	// Adjacent[i] iff i lists j or j lists i. Each list is sorted.
	Adjacent [][]int
}

// ConnectivityOptions tunes how neighbors are searched. The zero value uses
// automatic algorithm selection, the default leaf size and one goroutine.
type ConnectivityOptions struct {
	Algorithm NeighborAlgorithm
	LeafSize  int
	Workers   int
}

// BuildConnectivity computes the k-nearest-neighbor connectivity graph of
// data under Euclidean distance. It fails with ErrInsufficientSamples when
// there are not more samples than requested neighbors.
func BuildConnectivity(data [][]float64, neighbors int, opts ConnectivityOptions) (*Connectivity, error) {
	if neighbors < 1 {
		return nil, fmt.Errorf("wardsweep: neighbors must be >= 1, got %d", neighbors)
	}
	if len(data) <= neighbors {
		return nil, fmt.Errorf("%w: %d neighbors requested for %d samples", ErrInsufficientSamples, neighbors, len(data))
	}
	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	return buildConnectivityFlat(flat, n, dims, neighbors, opts)
}

func buildConnectivityFlat(flat []float64, n, dims, neighbors int, opts ConnectivityOptions) (*Connectivity, error) {
	if n <= neighbors {
		return nil, fmt.Errorf("%w: %d neighbors requested for %d samples", ErrInsufficientSamples, neighbors, n)
	}
	leafSize := opts.LeafSize
	if leafSize <= 0 {
		leafSize = defaultLeafSize
	}
	algo, err := selectNeighborAlgorithm(opts.Algorithm, n, dims, leafSize)
	if err != nil {
		return nil, err
	}

	searcher := newNeighborSearcher(algo, flat, n, dims, leafSize)
	directed := neighborsParallel(searcher, flat, n, dims, neighbors, opts.Workers)

	return &Connectivity{
		N:         n,
		Neighbors: neighbors,
		Directed:  directed,
		Adjacent:  symmetrize(directed),
	}, nil
}

// symmetrize returns the undirected union of a directed adjacency list.
func symmetrize(directed [][]int) [][]int {
	adj := make([][]int, len(directed))
	for i, nbrs := range directed {
		for _, j := range nbrs {
			adj[i] = append(adj[i], j)
			adj[j] = append(adj[j], i)
		}
	}
	for i := range adj {
		slices.Sort(adj[i])
		adj[i] = slices.Compact(adj[i])
	}
	return adj
}

// HasEdge reports whether samples i and j are adjacent.
func (c *Connectivity) HasEdge(i, j int) bool {
	_, ok := slices.BinarySearch(c.Adjacent[i], j)
	return ok
}

// Components labels the connected components of the undirected graph.
// Component ids are assigned in order of each component's lowest sample
// index. Returns the per-sample component id and the number of components.
func (c *Connectivity) Components() ([]int, int) {
	uf := NewUnionFind(c.N)
	for i, nbrs := range c.Adjacent {
		for _, j := range nbrs {
			uf.Union(i, j)
		}
	}
	return relabel(c.N, uf.Find)
}

// relabel maps each sample's root to a dense id in order of first
// appearance by sample index.
func relabel(n int, root func(int) int) ([]int, int) {
	labels := make([]int, n)
	ids := make(map[int]int)
	for i := 0; i < n; i++ {
		r := root(i)
		id, ok := ids[r]
		if !ok {
			id = len(ids)
			ids[r] = id
		}
		labels[i] = id
	}
	return labels, len(ids)
}
