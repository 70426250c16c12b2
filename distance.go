package wardsweep

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// row returns the i-th point of flat row-major data with dims columns.
// The slice is capped so appends cannot spill into the next row.
func row(data []float64, dims, i int) []float64 {
	return data[i*dims : (i+1)*dims : (i+1)*dims]
}

// sqEuclidean returns the squared Euclidean distance between a and b.
// Neighbor ranking and Ward costs work in this reduced space to skip sqrt.
func sqEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// euclidean returns the Euclidean (L2) distance between a and b.
func euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// PairwiseDistances computes the full n*n Euclidean distance matrix.
// data is flat row-major with n rows and dims columns.
// Returns flat []float64 of length n*n.
func PairwiseDistances(data []float64, n, dims int) []float64 {
	result := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(row(data, dims, i), row(data, dims, j))
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}
	return result
}

// flatten copies data into a flat row-major slice after checking that it is
// non-empty, rectangular and finite.
func flatten(data [][]float64) (flat []float64, n, dims int, err error) {
	n = len(data)
	if n == 0 || len(data[0]) == 0 {
		return nil, 0, 0, ErrEmptyInput
	}
	dims = len(data[0])
	flat = make([]float64, n*dims)
	for i, r := range data {
		if len(r) != dims {
			return nil, 0, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRaggedInput, i, len(r), dims)
		}
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, 0, 0, fmt.Errorf("%w: row %d column %d", ErrNonFiniteInput, i, j)
			}
		}
		copy(flat[i*dims:], r)
	}
	return flat, n, dims, nil
}
