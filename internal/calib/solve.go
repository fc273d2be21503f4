package calib

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
)

// solveMinimumNorm returns the minimum-norm least-squares solution a of
// Mᵀ·a ≈ e, where M is the N x 3 interaction matrix and e the wavefront
// error. Singular values below a rank tolerance are dropped, so a
// rank-deficient or fully singular matrix yields the Moore-Penrose
// minimum-norm adjustment (all zeros in the fully singular case) instead of
// blowing up.
func solveMinimumNorm(m *mat.Dense, e geom.Vec3) []float64 {
	rows, cols := m.Dims()
	a := make([]float64, rows)

	// Mᵀ is the 3 x N forward operator mapping adjustments to wavefront.
	b := mat.NewDense(cols, rows, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b.Set(j, i, m.At(i, j))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(b, mat.SVDThin) {
		return a
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	smax := 0.0
	for _, sv := range s {
		smax = math.Max(smax, sv)
	}
	if smax == 0 {
		return a
	}
	tol := float64(maxInt(rows, cols)) * 2.220446049250313e-16 * smax

	ev := [3]float64{e.X, e.Y, e.Z}
	for k := range s {
		if s[k] <= tol {
			continue
		}
		c := 0.0
		for r := 0; r < cols; r++ {
			c += u.At(r, k) * ev[r]
		}
		c /= s[k]
		for i := 0; i < rows; i++ {
			a[i] += c * v.At(i, k)
		}
	}
	return a
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
