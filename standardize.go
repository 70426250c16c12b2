package wardsweep

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// zeroScaleTol is the relative threshold below which a column's standard
// deviation is treated as zero.
const zeroScaleTol = 1e-12

// Standardized is a feature matrix rescaled to zero mean and unit variance
// per column. Data is flat row-major with N rows and Dims columns.
type Standardized struct {
	Data []float64
	N    int
	Dims int

	// Mean and Scale are the per-column statistics that were removed.
	// Scale is the population standard deviation, or 1 for constant columns.
	Mean  []float64
	Scale []float64

	// Constant lists the columns that had zero variance. They standardize
	// to all zeros.
	Constant []int
}

// Standardize returns a standardized copy of data. Statistics are population
// statistics (divisor n). Constant columns become all zeros rather than NaN.
// data is not modified. At least two samples are required.
func Standardize(data [][]float64) (*Standardized, error) {
	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	return standardizeFlat(flat, n, dims)
}

// standardizeFlat standardizes flat in place and wraps it.
func standardizeFlat(flat []float64, n, dims int) (*Standardized, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: standardization needs at least 2 samples, got %d", ErrInsufficientSamples, n)
	}

	s := &Standardized{
		Data:  flat,
		N:     n,
		Dims:  dims,
		Mean:  make([]float64, dims),
		Scale: make([]float64, dims),
	}

	col := make([]float64, n)
	for j := 0; j < dims; j++ {
		for i := 0; i < n; i++ {
			col[i] = flat[i*dims+j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean

		if std <= zeroScaleTol*math.Max(1, math.Abs(mean)) {
			s.Scale[j] = 1
			s.Constant = append(s.Constant, j)
			for i := 0; i < n; i++ {
				flat[i*dims+j] = 0
			}
			continue
		}

		s.Scale[j] = std
		for i := 0; i < n; i++ {
			flat[i*dims+j] = (flat[i*dims+j] - mean) / std
		}
	}
	return s, nil
}

// Row returns the i-th standardized sample. The slice aliases s.Data.
func (s *Standardized) Row(i int) []float64 {
	return row(s.Data, s.Dims, i)
}
