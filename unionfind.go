package wardsweep

// UnionFind is a disjoint-set structure with path compression. It has room
// for 2*n - 1 elements so that a merge tree over n samples can give every
// merged cluster its own id (samples 0..n-1, merged clusters n..2n-2).
type UnionFind struct {
	parent []int
	size   []int
	// nextLabel is the id handed out by the next Merge, starting at n.
	nextLabel int
}

// NewUnionFind creates a UnionFind for n initial elements.
func NewUnionFind(n int) *UnionFind {
	total := max(2*n-1, 1)
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &UnionFind{parent: parent, size: size, nextLabel: n}
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Union merges the sets containing x and y by attaching the smaller tree
// under the larger. Returns the new root.
func (uf *UnionFind) Union(x, y int) int {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return rootX
	}
	if uf.size[rootX] < uf.size[rootY] {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	uf.size[rootX] += uf.size[rootY]
	return rootX
}

// Merge joins the roots of x and y under a fresh id, the way linkage rows
// number new clusters. Returns the new id.
func (uf *UnionFind) Merge(x, y int) int {
	rx, ry := uf.Find(x), uf.Find(y)
	id := uf.nextLabel
	uf.size[id] = uf.size[rx] + uf.size[ry]
	uf.parent[rx] = id
	uf.parent[ry] = id
	uf.nextLabel++
	return id
}

// Size returns the number of elements in the set rooted at root.
func (uf *UnionFind) Size(root int) int {
	return uf.size[root]
}
