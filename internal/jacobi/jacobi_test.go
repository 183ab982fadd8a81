package jacobi

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 1e-10, opts.Tol)
	assert.Equal(t, 100, opts.MaxIterations)
	assert.NoError(t, opts.Validate())
}

func TestZeroTolIsRejected(t *testing.T) {
	a := mat64.NewDense(2, 2, []float64{1, 1e-300, 1e-300, 1})

	_, err := Diagonalize(a, Options{Tol: 0, MaxIterations: 5})
	assert.ErrorIs(t, err, ErrBadOptions)

	res, err := Diagonalize(a, Options{Tol: 1e-10, MaxIterations: 5})
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Zero(t, res.Iterations)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative tol", Options{Tol: -1, MaxIterations: 10}},
		{"zero tol", Options{Tol: 0, MaxIterations: 10}},
		{"nan tol", Options{Tol: math.NaN(), MaxIterations: 10}},
		{"negative cap", Options{Tol: 1e-10, MaxIterations: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.opts.Validate(), ErrBadOptions)

			_, err := Diagonalize(mat64.NewDense(2, 2, nil), tt.opts)
			assert.ErrorIs(t, err, ErrBadOptions)
		})
	}
}

func TestDiagonalizeNotSquare(t *testing.T) {
	_, err := Diagonalize(mat64.NewDense(2, 3, nil), DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotSquare)
}

func TestDiagonalizeEmpty(t *testing.T) {
	res, err := Diagonalize(&mat64.Dense{}, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Values)
	assert.True(t, res.Converged)
	assert.Zero(t, res.Iterations)
}

func TestDiagonalizeScalar(t *testing.T) {
	res, err := Diagonalize(mat64.NewDense(1, 1, []float64{5}), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []float64{5}, res.Values)
	assert.True(t, mat64.Equal(res.Vectors, mat64.NewDense(1, 1, []float64{1})))
	assert.Zero(t, res.Iterations)
	assert.True(t, res.Converged)
}

func TestDiagonalizeDiagonal(t *testing.T) {
	a := diag([]float64{3, -1, 7, 0})

	res, err := Diagonalize(a, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []float64{3, -1, 7, 0}, res.Values)
	assert.True(t, mat64.Equal(res.Vectors, identity(4)))
	assert.Zero(t, res.Iterations)
	assert.Zero(t, res.OffDiag)
	assert.True(t, res.Converged)
}

func TestDiagonalizeIdentity(t *testing.T) {
	res, err := Diagonalize(identity(3), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 1, 1}, res.Values)
	assert.True(t, mat64.Equal(res.Vectors, identity(3)))
	assert.Zero(t, res.Iterations)
	assert.True(t, res.Converged)
}

func TestDiagonalizeTwoByTwo(t *testing.T) {
	a := mat64.NewDense(2, 2, []float64{
		2, 1,
		1, 2,
	})

	res, err := Diagonalize(a, DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)

	// Equal diagonal entries give θ = π/4, so the larger eigenvalue lands in row 0.
	require.Len(t, res.Values, 2)
	assert.InDelta(t, 3, res.Values[0], 1e-12)
	assert.InDelta(t, 1, res.Values[1], 1e-12)

	r := 1 / math.Sqrt2
	want := mat64.NewDense(2, 2, []float64{
		r, -r,
		r, r,
	})
	assert.True(t, mat64.EqualApprox(res.Vectors, want, 1e-12))

	for j, lambda := range res.Values {
		var av mat64.Dense
		av.Mul(a, res.Vectors.ColView(j))
		for i := 0; i < 2; i++ {
			assert.InDelta(t, lambda*res.Vectors.At(i, j), av.At(i, 0), 1e-12)
		}
	}
}

func TestDiagonalizeDoesNotModifyInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := randomSymmetric(rng, 6, 0)
	orig := mat64.DenseCopyOf(a)

	_, err := Diagonalize(a, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, mat64.Equal(a, orig))
}

func TestDiagonalizeOrthogonal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, n := range []int{1, 2, 5, 10, 50} {
		a := randomSymmetric(rng, n, 0)

		res, err := Diagonalize(a, DefaultOptions())
		require.NoError(t, err)

		assert.Truef(t, mat64.EqualApprox(gram(res.Vectors), identity(n), 1e-8), "n=%d: VᵗV is not the identity", n)
		assert.Truef(t, mat64.EqualApprox(congruence(res.Vectors, a), res.Reduced, 1e-8), "n=%d: VᵗAV differs from the reduced matrix", n)
	}
}

func TestDiagonalizeTraceAndDeterminant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	opts := Options{Tol: 1e-12, MaxIterations: 10000}

	for _, n := range []int{2, 3, 5, 8} {
		a := randomSymmetric(rng, n, float64(n))

		res, err := Diagonalize(a, opts)
		require.NoError(t, err)
		require.Truef(t, res.Converged, "n=%d did not converge", n)

		sum, prod := 0.0, 1.0
		for _, v := range res.Values {
			sum += v
			prod *= v
		}
		assert.InDeltaf(t, mat64.Trace(a), sum, 1e-9, "n=%d trace", n)
		det := mat64.Det(a)
		assert.InEpsilonf(t, det, prod, 1e-8, "n=%d determinant", n)
	}
}

func TestDiagonalizeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	opts := Options{Tol: 1e-12, MaxIterations: 20000}

	for _, n := range []int{2, 4, 7, 12, 20} {
		a := randomSymmetric(rng, n, 0)

		res, err := Diagonalize(a, opts)
		require.NoError(t, err)
		require.Truef(t, res.Converged, "n=%d did not converge", n)

		got := reconstruct(res.Vectors, diag(res.Values))
		assert.Truef(t, mat64.EqualApprox(got, a, 1e-6), "n=%d: V·diag(λ)·Vᵗ differs from A", n)
	}
}

func TestDiagonalizeIterationCap(t *testing.T) {
	a := mat64.NewDense(3, 3, []float64{
		4, 1, 2,
		1, 3, 0.5,
		2, 0.5, 1,
	})

	res, err := Diagonalize(a, Options{Tol: 1e-10, MaxIterations: 1})
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Greater(t, math.Abs(res.OffDiag), 1e-10)

	// The first pivot was (0, 2); it must be gone after the single rotation.
	assert.Zero(t, res.Reduced.At(0, 2))
	assert.Zero(t, res.Reduced.At(2, 0))

	assert.True(t, mat64.EqualApprox(gram(res.Vectors), identity(3), 1e-12))
	assert.True(t, mat64.EqualApprox(congruence(res.Vectors, a), res.Reduced, 1e-12))
	assert.True(t, mat64.EqualApprox(reconstruct(res.Vectors, res.Reduced), a, 1e-12))

	for i, v := range res.Values {
		assert.Equal(t, res.Reduced.At(i, i), v)
	}
}

func TestDiagonalizeZeroIterationCap(t *testing.T) {
	a := mat64.NewDense(2, 2, []float64{
		1, 2,
		2, 1,
	})

	res, err := Diagonalize(a, Options{Tol: 1e-10, MaxIterations: 0})
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Zero(t, res.Iterations)
	assert.Equal(t, 2.0, res.OffDiag)
	assert.Equal(t, []float64{1, 1}, res.Values)
	assert.True(t, mat64.Equal(res.Vectors, identity(2)))
}
