package nmf

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Residuals fits one factorization per entry of components and returns the
// Frobenius norm of each residual, aligned with components.
func Residuals(X mat.Matrix, components []int, opts Options) ([]float64, error) {
	opts.applyDefaults()
	if err := checkInput(X); err != nil {
		return nil, err
	}

	out := make([]float64, len(components))
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, k := range components {
		g.Go(func() error {
			res, err := Factorize(X, k, opts)
			if err != nil {
				return fmt.Errorf("nmf: %d components: %w", k, err)
			}
			out[i] = res.Residual
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts.Logger.Info("nmf residuals computed", zap.Ints("components", components))
	return out, nil
}
