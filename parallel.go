package wardsweep

import "sync"

// PairwiseDistancesParallel computes the full n×n distance matrix using
// multiple goroutines. numWorkers controls the degree of parallelism; if
// <= 1, it falls back to single-threaded PairwiseDistances.
//
// The result is bitwise identical to PairwiseDistances.
func PairwiseDistancesParallel(data []float64, n, dims, numWorkers int) []float64 {
	if numWorkers <= 1 || n <= 1 {
		return PairwiseDistances(data, n, dims)
	}

	result := make([]float64, n*n)

	// Each worker owns a contiguous block of source rows and writes
	// dist(i,j) and dist(j,i) for j > i. Writes never overlap.
	var wg sync.WaitGroup
	forEachRowBlock(n, numWorkers, func(start, end int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				for j := i + 1; j < n; j++ {
					d := euclidean(row(data, dims, i), row(data, dims, j))
					result[i*n+j] = d
					result[j*n+i] = d
				}
			}
		}()
	})
	wg.Wait()
	return result
}

// neighborsParallel runs one k-nearest-neighbor query per point across
// numWorkers goroutines. Queries only read the shared searcher.
func neighborsParallel(s neighborSearcher, data []float64, n, dims, k, numWorkers int) [][]int {
	out := make([][]int, n)
	if numWorkers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			out[i] = s.nearest(row(data, dims, i), k, i)
		}
		return out
	}

	var wg sync.WaitGroup
	forEachRowBlock(n, numWorkers, func(start, end int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = s.nearest(row(data, dims, i), k, i)
			}
		}()
	})
	wg.Wait()
	return out
}

// forEachRowBlock splits [0, n) into at most numWorkers contiguous blocks and
// calls fn for each.
func forEachRowBlock(n, numWorkers int, fn func(start, end int)) {
	rowsPerWorker := (n + numWorkers - 1) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * rowsPerWorker
		if start >= n {
			break
		}
		end := min(start+rowsPerWorker, n)
		fn(start, end)
	}
}
