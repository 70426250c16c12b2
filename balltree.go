package wardsweep

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ballTree is a ball tree over flat row-major points. Each node keeps the
// centroid of its points and the radius of the smallest centroid-centered
// ball containing them. It is the auto choice above kdTreeMaxDims.
type ballTree struct {
	data     []float64
	n        int
	dims     int
	leafSize int
	idx      []int // tree-order position -> original point index
	nodes    []ballNode
}

type ballNode struct {
	start, end  int
	leaf        bool
	left, right int
	centroid    []float64
	radius      float64
}

// ballSlack widens every pruning bound by a relative margin so rounding in
// the centroid distance never hides a point that ties the current worst.
const ballSlack = 1e-12

// newBallTree builds a ball tree over data (not copied; callers must not
// mutate it while the tree is in use). leafSize bounds the points per leaf.
func newBallTree(data []float64, n, dims, leafSize int) *ballTree {
	if leafSize < 1 {
		leafSize = 1
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	t := &ballTree{data: data, n: n, dims: dims, leafSize: leafSize, idx: idx}
	if n > 0 {
		t.build(0, n)
	}
	return t
}

// build creates the node for idx[start:end] and returns its position.
func (t *ballTree) build(start, end int) int {
	id := len(t.nodes)
	centroid := make([]float64, t.dims)
	for _, p := range t.idx[start:end] {
		floats.Add(centroid, row(t.data, t.dims, p))
	}
	floats.Scale(1/float64(end-start), centroid)

	var radius float64
	for _, p := range t.idx[start:end] {
		radius = math.Max(radius, euclidean(centroid, row(t.data, t.dims, p)))
	}
	t.nodes = append(t.nodes, ballNode{start: start, end: end, centroid: centroid, radius: radius})

	if end-start <= t.leafSize {
		t.nodes[id].leaf = true
		return id
	}

	splitDim := t.spreadDim(start, end)
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

// spreadDim returns the dimension with the greatest spread among
// idx[start:end].
func (t *ballTree) spreadDim(start, end int) int {
	best, bestSpread := 0, -1.0
	for d := 0; d < t.dims; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range t.idx[start:end] {
			v := t.data[p*t.dims+d]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi-lo > bestSpread {
			best, bestSpread = d, hi-lo
		}
	}
	return best
}

// minSqDist is a lower bound on the squared distance from query to any
// point inside the node's ball.
func (t *ballTree) minSqDist(node int, query []float64) float64 {
	nd := &t.nodes[node]
	d := euclidean(query, nd.centroid)
	gap := d - nd.radius - ballSlack*(d+nd.radius)
	if gap <= 0 {
		return 0
	}
	return gap * gap
}

func (t *ballTree) nearest(query []float64, k, exclude int) []int {
	h := make(neighborHeap, 0, k)
	if t.n > 0 && k > 0 {
		t.search(0, query, k, exclude, &h)
	}
	return h.sorted()
}

func (t *ballTree) search(node int, query []float64, k, exclude int, h *neighborHeap) {
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
	if h.Len() < k || farDist <= (*h)[0].dist {
		t.search(far, query, k, exclude, h)
	}
}
