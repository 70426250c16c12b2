package nmf

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// initNNDSVD builds W and H from the leading singular triplets of X. The
// first factor is the absolute leading pair; each later factor keeps
// whichever of the positive or negative parts of its singular vectors
// carries more mass. Tiny values are zeroed.
func initNNDSVD(X mat.Matrix, k int) (W, H *mat.Dense) {
	r, c := X.Dims()
	W = mat.NewDense(r, k, nil)
	H = mat.NewDense(k, c, nil)

	var svd mat.SVD
	if !svd.Factorize(X, mat.SVDThin) {
		return uniformInit(X, k)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	x := make([]float64, r)
	y := make([]float64, c)
	for j := 0; j < k; j++ {
		mat.Col(x, j, &u)
		mat.Col(y, j, &v)

		if j == 0 {
			root := math.Sqrt(s[0])
			for i, xv := range x {
				W.Set(i, 0, root*math.Abs(xv))
			}
			for i, yv := range y {
				H.Set(0, i, root*math.Abs(yv))
			}
			continue
		}

		xp, xn := split(x)
		yp, yn := split(y)
		xpNorm, xnNorm := floats.Norm(xp, 2), floats.Norm(xn, 2)
		ypNorm, ynNorm := floats.Norm(yp, 2), floats.Norm(yn, 2)

		mp, mn := xpNorm*ypNorm, xnNorm*ynNorm
		wcol, hrow, xNorm, yNorm, sigma := xp, yp, xpNorm, ypNorm, mp
		if mn > mp {
			wcol, hrow, xNorm, yNorm, sigma = xn, yn, xnNorm, ynNorm, mn
		}
		if xNorm == 0 || yNorm == 0 {
			continue
		}

		lambda := math.Sqrt(s[j] * sigma)
		for i, wv := range wcol {
			W.Set(i, j, lambda*wv/xNorm)
		}
		for i, hv := range hrow {
			H.Set(j, i, lambda*hv/yNorm)
		}
	}

	zeroTiny(W)
	zeroTiny(H)
	return W, H
}

// split returns the positive part and the magnitude of the negative part
// of x.
func split(x []float64) (pos, neg []float64) {
	pos = make([]float64, len(x))
	neg = make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			pos[i] = v
		} else {
			neg[i] = -v
		}
	}
	return pos, neg
}

const tiny = 1e-6

func zeroTiny(m *mat.Dense) {
	m.Apply(func(_, _ int, v float64) float64 {
		if v < tiny {
			return 0
		}
		return v
	}, m)
}

// uniformInit fills W and H with sqrt(mean(X)/k), the fallback when the SVD
// does not converge.
func uniformInit(X mat.Matrix, k int) (W, H *mat.Dense) {
	r, c := X.Dims()
	avg := mat.Sum(X) / float64(r*c)
	v := math.Sqrt(avg / float64(k))
	W = mat.NewDense(r, k, nil)
	H = mat.NewDense(k, c, nil)
	W.Apply(func(_, _ int, _ float64) float64 { return v }, W)
	H.Apply(func(_, _ int, _ float64) float64 { return v }, H)
	return W, H
}
