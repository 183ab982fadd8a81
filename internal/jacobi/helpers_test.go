package jacobi

import (
	"math/rand"

	"github.com/gonum/matrix/mat64"
)

// randomSymmetric returns a seeded symmetric n x n matrix with entries in
// [-1, 1) plus shift on the diagonal.
func randomSymmetric(rng *rand.Rand, n int, shift float64) *mat64.Dense {
	m := mat64.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			value := 2*rng.Float64() - 1
			m.Set(i, j, value)
			m.Set(j, i, value)
		}
		m.Set(i, i, m.At(i, i)+shift)
	}
	return m
}

func diag(values []float64) *mat64.Dense {
	n := len(values)
	m := mat64.NewDense(n, n, nil)
	for i, v := range values {
		m.Set(i, i, v)
	}
	return m
}

// congruence returns vᵗ·a·v.
func congruence(v, a mat64.Matrix) *mat64.Dense {
	var av, vtav mat64.Dense
	av.Mul(a, v)
	vtav.Mul(v.T(), &av)
	return &vtav
}

// reconstruct returns v·d·vᵗ.
func reconstruct(v mat64.Matrix, d mat64.Matrix) *mat64.Dense {
	var vd, vdvt mat64.Dense
	vd.Mul(v, d)
	vdvt.Mul(&vd, v.T())
	return &vdvt
}

func gram(v mat64.Matrix) *mat64.Dense {
	var vtv mat64.Dense
	vtv.Mul(v.T(), v)
	return &vtv
}
