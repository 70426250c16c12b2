package wardsweep

import "fmt"

// NeighborAlgorithm selects how k-nearest neighbors are found when building
// the connectivity graph. Every choice returns the same neighbor lists.
type NeighborAlgorithm string

const (
	NeighborAuto     NeighborAlgorithm = "auto"
	NeighborBrute    NeighborAlgorithm = "brute"
	NeighborKDTree   NeighborAlgorithm = "kdtree"
	NeighborBallTree NeighborAlgorithm = "balltree"
)

// kdTreeMaxDims is the dimensionality above which KD-tree pruning stops
// paying for itself and auto selection switches to a ball tree.
const kdTreeMaxDims = 60

// selectNeighborAlgorithm resolves NeighborAuto into a concrete choice based
// on the data shape, and rejects unknown values.
func selectNeighborAlgorithm(algo NeighborAlgorithm, n, dims, leafSize int) (NeighborAlgorithm, error) {
	switch algo {
	case NeighborAuto, "":
		if n <= leafSize {
			return NeighborBrute, nil
		}
		if dims <= kdTreeMaxDims {
			return NeighborKDTree, nil
		}
		return NeighborBallTree, nil
	case NeighborBrute, NeighborKDTree, NeighborBallTree:
		return algo, nil
	default:
		return "", fmt.Errorf("wardsweep: invalid NeighborAlgorithm %q", algo)
	}
}

// newNeighborSearcher builds the searcher for a resolved algorithm.
func newNeighborSearcher(algo NeighborAlgorithm, data []float64, n, dims, leafSize int) neighborSearcher {
	switch algo {
	case NeighborKDTree:
		return newKDTree(data, n, dims, leafSize)
	case NeighborBallTree:
		return newBallTree(data, n, dims, leafSize)
	default:
		return bruteSearcher{data: data, n: n, dims: dims}
	}
}
