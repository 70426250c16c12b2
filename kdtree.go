package wardsweep

import (
	"container/heap"
	"math"
	"sort"
)

// neighborSearcher answers k-nearest-neighbor queries over a fixed point set.
// nearest returns the indices of the k points closest to query, excluding the
// point with index exclude (pass -1 to exclude nothing), ordered by ascending
// distance with ties broken by ascending index.
type neighborSearcher interface {
	nearest(query []float64, k, exclude int) []int
}

// bruteSearcher scans every point for every query.
type bruteSearcher struct {
	data []float64
	n    int
	dims int
}

func (b bruteSearcher) nearest(query []float64, k, exclude int) []int {
	h := make(neighborHeap, 0, k)
	for i := 0; i < b.n; i++ {
		if i == exclude {
			continue
		}
		h.offer(neighbor{index: i, dist: sqEuclidean(query, row(b.data, b.dims, i))}, k)
	}
	return h.sorted()
}

// kdTree is a KD-tree over flat row-major points. Nodes are stored in a
// slice with explicit child links; each node keeps the bounding box of its
// points so subtrees can be pruned against the current k-th distance.
type kdTree struct {
	data     []float64
	n        int
	dims     int
	leafSize int
	idx      []int // tree-order position -> original point index
	nodes    []kdNode
}

type kdNode struct {
	start, end  int
	leaf        bool
	left, right int
	lo, hi      []float64
}

// newKDTree builds a KD-tree over data (not copied; callers must not mutate
// it while the tree is in use). leafSize bounds the points per leaf.
func newKDTree(data []float64, n, dims, leafSize int) *kdTree {
	if leafSize < 1 {
		leafSize = 1
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	t := &kdTree{data: data, n: n, dims: dims, leafSize: leafSize, idx: idx}
	if n > 0 {
		t.build(0, n)
	}
	return t
}

// build creates the node for idx[start:end] and returns its position.
func (t *kdTree) build(start, end int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, kdNode{start: start, end: end})
	lo, hi := t.bounds(start, end)
	t.nodes[id].lo, t.nodes[id].hi = lo, hi

	if end-start <= t.leafSize {
		t.nodes[id].leaf = true
		return id
	}

	// Split on the dimension with the greatest spread, at the median.
	splitDim, maxSpread := 0, -1.0
	for d := 0; d < t.dims; d++ {
		if spread := hi[d] - lo[d]; spread > maxSpread {
			maxSpread, splitDim = spread, d
		}
	}
	sub := t.idx[start:end]
	sort.SliceStable(sub, func(a, b int) bool {
		return t.data[sub[a]*t.dims+splitDim] < t.data[sub[b]*t.dims+splitDim]
	})
	mid := start + (end-start)/2

	left := t.build(start, mid)
	right := t.build(mid, end)
	t.nodes[id].left, t.nodes[id].right = left, right
	return id
}

// bounds returns the per-dimension min and max of idx[start:end].
func (t *kdTree) bounds(start, end int) (lo, hi []float64) {
	lo = make([]float64, t.dims)
	hi = make([]float64, t.dims)
	for d := range lo {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for _, p := range t.idx[start:end] {
		for d, v := range row(t.data, t.dims, p) {
			lo[d] = math.Min(lo[d], v)
			hi[d] = math.Max(hi[d], v)
		}
	}
	return lo, hi
}

// minSqDist is a lower bound on the squared distance from query to any point
// inside the node's bounding box.
func (t *kdTree) minSqDist(node int, query []float64) float64 {
	nd := &t.nodes[node]
	var sum float64
	for d, q := range query {
		var diff float64
		if q < nd.lo[d] {
			diff = nd.lo[d] - q
		} else if q > nd.hi[d] {
			diff = q - nd.hi[d]
		}
		sum += diff * diff
	}
	return sum
}

func (t *kdTree) nearest(query []float64, k, exclude int) []int {
	h := make(neighborHeap, 0, k)
	if t.n > 0 && k > 0 {
		t.search(0, query, k, exclude, &h)
	}
	return h.sorted()
}

func (t *kdTree) search(node int, query []float64, k, exclude int, h *neighborHeap) {
	nd := &t.nodes[node]
	if nd.leaf {
		for _, p := range t.idx[nd.start:nd.end] {
			if p == exclude {
				continue
			}
			h.offer(neighbor{index: p, dist: sqEuclidean(query, row(t.data, t.dims, p))}, k)
		}
		return
	}

	near, far := nd.left, nd.right
	nearDist, farDist := t.minSqDist(near, query), t.minSqDist(far, query)
	if farDist < nearDist {
		near, far = far, near
		farDist = nearDist
	}

	t.search(near, query, k, exclude, h)

	// Visit the far child on equality too: a tied point there may have a
	// lower index than the current worst.
	if h.Len() < k || farDist <= (*h)[0].dist {
		t.search(far, query, k, exclude, h)
	}
}

// --- bounded max-heap for KNN queries ---

type neighbor struct {
	index int
	dist  float64 // squared Euclidean distance
}

// closer orders neighbors by distance, then by index.
func closer(a, b neighbor) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.index < b.index
}

// neighborHeap is a max-heap with the farthest kept neighbor on top.
type neighborHeap []neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return closer(h[j], h[i]) }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// offer keeps c if the heap holds fewer than k items or c is closer than
// the current farthest.
func (h *neighborHeap) offer(c neighbor, k int) {
	if k <= 0 {
		return
	}
	if h.Len() < k {
		heap.Push(h, c)
		return
	}
	if closer(c, (*h)[0]) {
		(*h)[0] = c
		heap.Fix(h, 0)
	}
}

// sorted drains the heap and returns indices nearest first.
func (h *neighborHeap) sorted() []int {
	out := make([]int, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(neighbor).index
	}
	return out
}
