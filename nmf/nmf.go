// Package nmf factorizes non-negative matrices and measures how the
// reconstruction residual falls as components are added.
//
// Factorize approximates X (samples x features) by W*H with W and H
// non-negative, minimizing the Frobenius norm of X - W*H. W and H are
// initialized by non-negative double SVD and refined by coordinate descent
// until the projected gradient has shrunk below Options.Tolerance of its
// initial value.
package nmf

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNegativeInput is returned when X has a negative entry.
	ErrNegativeInput = errors.New("nmf: matrix has negative entries")

	// ErrNonFiniteInput is returned when X has a NaN or Inf entry.
	ErrNonFiniteInput = errors.New("nmf: matrix has NaN or Inf entries")

	// ErrInvalidComponents is returned for a component count outside
	// [1, min(rows, cols)].
	ErrInvalidComponents = errors.New("nmf: invalid number of components")
)

// Options controls the solver.
type Options struct {
	// Tolerance is the stopping threshold on the projected gradient relative
	// to the first iteration. Default: 1e-4.
	Tolerance float64

	// MaxIter bounds the number of coordinate descent sweeps. Default: 2000.
	MaxIter int

	// Workers is the number of component counts Residuals fits at once.
	// Default: 1.
	Workers int

	// Logger receives one debug line per fit. nil discards.
	Logger *zap.Logger
}

// DefaultOptions returns the solver defaults.
func DefaultOptions() Options {
	return Options{Tolerance: 1e-4, MaxIter: 2000, Workers: 1}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Result is a fitted factorization X ~ W*H.
type Result struct {
	W *mat.Dense // rows x components
	H *mat.Dense // components x cols

	Iterations int
	Converged  bool

	// Residual is the Frobenius norm of X - W*H.
	Residual float64
}

// Factorize fits a components-rank non-negative factorization of X.
func Factorize(X mat.Matrix, components int, opts Options) (*Result, error) {
	opts.applyDefaults()
	if err := checkInput(X); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if components < 1 || components > min(r, c) {
		return nil, fmt.Errorf("%w: %d for a %dx%d matrix", ErrInvalidComponents, components, r, c)
	}

	W, H := initNNDSVD(X, components)

	// Coordinate descent works on H transposed so both halves share one
	// update routine.
	Ht := mat.DenseCopyOf(H.T())
	res := &Result{}
	var initial float64
	for iter := 0; iter < opts.MaxIter; iter++ {
		violation := updateCoordinate(W, X, Ht)
		violation += updateCoordinate(Ht, X.T(), W)
		res.Iterations = iter + 1

		if iter == 0 {
			initial = violation
		}
		if initial == 0 || violation/initial <= opts.Tolerance {
			res.Converged = true
			break
		}
	}

	res.W = W
	res.H = mat.DenseCopyOf(Ht.T())
	res.Residual = residualNorm(X, res.Reconstruct())

	opts.Logger.Debug("nmf fitted",
		zap.Int("components", components),
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged),
		zap.Float64("residual", res.Residual))
	return res, nil
}

// Reconstruct returns W*H.
func (r *Result) Reconstruct() *mat.Dense {
	var out mat.Dense
	out.Mul(r.W, r.H)
	return &out
}

func checkInput(X mat.Matrix) error {
	r, c := X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: at (%d, %d)", ErrNonFiniteInput, i, j)
			}
			if v < 0 {
				return fmt.Errorf("%w: %g at (%d, %d)", ErrNegativeInput, v, i, j)
			}
		}
	}
	return nil
}

// updateCoordinate performs one sweep of coordinate descent on W for the
// problem min ||X - W*Ht'|| with Ht fixed, clamping at zero. It returns the
// summed magnitude of the projected gradient seen during the sweep.
func updateCoordinate(W *mat.Dense, X mat.Matrix, Ht *mat.Dense) float64 {
	var hht, xht mat.Dense
	hht.Mul(Ht.T(), Ht)
	xht.Mul(X, Ht)

	n, k := W.Dims()
	var violation float64
	for t := 0; t < k; t++ {
		hess := hht.At(t, t)
		for i := 0; i < n; i++ {
			row := W.RawRowView(i)
			grad := -xht.At(i, t)
			for r := 0; r < k; r++ {
				grad += hht.At(t, r) * row[r]
			}

			pg := grad
			if row[t] == 0 {
				pg = math.Min(0, grad)
			}
			violation += math.Abs(pg)

			if hess != 0 {
				row[t] = math.Max(row[t]-grad/hess, 0)
			}
		}
	}
	return violation
}

// residualNorm is the Frobenius norm of X - approx.
func residualNorm(X, approx mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(X, approx)
	return mat.Norm(&diff, 2)
}
