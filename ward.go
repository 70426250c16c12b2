package wardsweep

import (
	"container/heap"
	"fmt"
	"math"
	"slices"
)

// DisconnectPolicy decides what happens when the connectivity graph has more
// than one connected component.
type DisconnectPolicy string

const (
	// DisconnectBridge joins every pair of components with an edge between
	// their closest samples before clustering.
	DisconnectBridge DisconnectPolicy = "bridge"

	// DisconnectFail leaves the graph as-is. Cutting the tree below the
	// number of components returns ErrDisconnectedConstraint.
	DisconnectFail DisconnectPolicy = "fail"
)

// Tree is a connectivity-constrained Ward merge tree.
type Tree struct {
	// N is the number of samples (leaves).
	N int

	// Linkage holds one row per merge in the order merges happened:
	// [left, right, height, size]. Leaves are 0..N-1 and the cluster created
	// by row i has id N+i. height is the Ward distance sqrt(2*deltaSSE).
	// With DisconnectFail the tree may stop before N-1 merges.
	Linkage [][4]float64

	// Bridges is the number of edges added to join disconnected components.
	Bridges int
}

// MinClusters returns the smallest cluster count the tree can be cut to.
func (t *Tree) MinClusters() int {
	return t.N - len(t.Linkage)
}

// WardTree grows the full constrained Ward merge tree over the standardized
// samples. Clusters may only merge when at least one pair of their samples
// is adjacent in conn. Among permitted merges the one with the smallest
// increase in within-cluster sum of squares wins; ties go to the lowest pair
// of cluster ids, so identical inputs always give identical trees.
func WardTree(std *Standardized, conn *Connectivity, policy DisconnectPolicy) (*Tree, error) {
	if std == nil || conn == nil {
		return nil, fmt.Errorf("wardsweep: WardTree needs standardized data and connectivity")
	}
	if conn.N != std.N {
		return nil, fmt.Errorf("%w: connectivity has %d samples, data has %d", ErrShapeMismatch, conn.N, std.N)
	}
	switch policy {
	case DisconnectBridge, DisconnectFail:
	case "":
		policy = DisconnectBridge
	default:
		return nil, fmt.Errorf("wardsweep: invalid DisconnectPolicy %q", policy)
	}

	n, dims := std.N, std.Dims
	total := max(2*n-1, 1)

	w := &wardState{
		dims:     dims,
		size:     make([]int, total),
		centroid: make([]float64, total*dims),
		active:   make([]bool, total),
		nbrs:     make([]map[int]struct{}, total),
	}
	for i := 0; i < n; i++ {
		w.size[i] = 1
		w.active[i] = true
		copy(w.centroid[i*dims:], std.Row(i))
		w.nbrs[i] = make(map[int]struct{}, len(conn.Adjacent[i]))
		for _, j := range conn.Adjacent[i] {
			if j != i {
				w.nbrs[i][j] = struct{}{}
			}
		}
	}

	tree := &Tree{N: n}
	if policy == DisconnectBridge {
		for _, e := range bridgeEdges(std, conn) {
			w.nbrs[e[0]][e[1]] = struct{}{}
			w.nbrs[e[1]][e[0]] = struct{}{}
			tree.Bridges++
		}
	}

	for i := 0; i < n; i++ {
		for _, j := range sortedKeys(w.nbrs[i]) {
			if i < j {
				heap.Push(&w.queue, w.candidate(i, j))
			}
		}
	}

	tree.Linkage = make([][4]float64, 0, max(n-1, 0))
	for w.queue.Len() > 0 && len(tree.Linkage) < n-1 {
		c := heap.Pop(&w.queue).(mergeCandidate)
		if !w.active[c.a] || !w.active[c.b] {
			continue // stale: one side already merged
		}
		id := n + len(tree.Linkage)
		w.merge(c.a, c.b, id)
		tree.Linkage = append(tree.Linkage, [4]float64{
			float64(c.a), float64(c.b), math.Sqrt(2 * c.cost), float64(w.size[id]),
		})
	}
	return tree, nil
}

// ClusterConstrained runs constrained Ward clustering and cuts the tree into
// k clusters.
func ClusterConstrained(std *Standardized, conn *Connectivity, k int, policy DisconnectPolicy) (Labeling, error) {
	tree, err := WardTree(std, conn, policy)
	if err != nil {
		return Labeling{}, err
	}
	return tree.Cut(k)
}

type wardState struct {
	dims     int
	size     []int
	centroid []float64 // flat (2n-1) * dims
	active   []bool
	nbrs     []map[int]struct{}
	queue    mergeQueue
}

func (w *wardState) centroidOf(id int) []float64 {
	return row(w.centroid, w.dims, id)
}

// candidate prices merging a and b: the increase in within-cluster sum of
// squares, |A||B|/(|A|+|B|) * ||cA - cB||^2.
func (w *wardState) candidate(a, b int) mergeCandidate {
	if a > b {
		a, b = b, a
	}
	na, nb := float64(w.size[a]), float64(w.size[b])
	cost := na * nb / (na + nb) * sqEuclidean(w.centroidOf(a), w.centroidOf(b))
	return mergeCandidate{cost: cost, a: a, b: b}
}

// merge folds a and b into the new cluster id and queues its candidates.
func (w *wardState) merge(a, b, id int) {
	na, nb := float64(w.size[a]), float64(w.size[b])
	w.size[id] = w.size[a] + w.size[b]
	ca, cb, c := w.centroidOf(a), w.centroidOf(b), w.centroidOf(id)
	for d := range c {
		c[d] = (na*ca[d] + nb*cb[d]) / (na + nb)
	}
	w.active[a], w.active[b] = false, false
	w.active[id] = true

	merged := make(map[int]struct{}, len(w.nbrs[a])+len(w.nbrs[b]))
	for _, src := range []int{a, b} {
		for x := range w.nbrs[src] {
			if x != a && x != b {
				merged[x] = struct{}{}
			}
		}
		w.nbrs[src] = nil
	}
	w.nbrs[id] = merged

	for _, x := range sortedKeys(merged) {
		delete(w.nbrs[x], a)
		delete(w.nbrs[x], b)
		w.nbrs[x][id] = struct{}{}
		heap.Push(&w.queue, w.candidate(x, id))
	}
}

// bridgeEdges returns, for every pair of connected components, the closest
// pair of samples between them (lowest indices on ties).
func bridgeEdges(std *Standardized, conn *Connectivity) [][2]int {
	comp, count := conn.Components()
	if count <= 1 {
		return nil
	}
	members := make([][]int, count)
	for i, c := range comp {
		members[c] = append(members[c], i)
	}

	var edges [][2]int
	for ci := 0; ci < count; ci++ {
		for cj := ci + 1; cj < count; cj++ {
			best, bi, bj := math.Inf(1), -1, -1
			for _, i := range members[ci] {
				for _, j := range members[cj] {
					d := sqEuclidean(std.Row(i), std.Row(j))
					if d < best || (d == best && (i < bi || (i == bi && j < bj))) {
						best, bi, bj = d, i, j
					}
				}
			}
			edges = append(edges, [2]int{bi, bj})
		}
	}
	return edges
}

func sortedKeys(m map[int]struct{}) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// --- min-heap of merge candidates ---

type mergeCandidate struct {
	cost float64
	a, b int // a < b
}

type mergeQueue []mergeCandidate

func (q mergeQueue) Len() int { return len(q) }
func (q mergeQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	if q[i].a != q[j].a {
		return q[i].a < q[j].a
	}
	return q[i].b < q[j].b
}
func (q mergeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *mergeQueue) Push(x interface{}) { *q = append(*q, x.(mergeCandidate)) }
func (q *mergeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
