// Package solver wraps the LAPACK-backed symmetric eigen-solver of mat64 so
// Jacobi results can be checked against a library implementation.
package solver

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gonum/matrix/mat64"

	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
)

// ErrNoConvergence is returned when the library factorization fails.
var ErrNoConvergence = errors.New("solver: eigen decomposition failed")

// Eigen returns the eigenvalues of the symmetric matrix a in ascending order
// and the matching eigenvectors as columns. Only the upper triangle of a is
// read.
func Eigen(a mat64.Matrix) ([]float64, *mat64.Dense, error) {
	rows, cols := a.Dims()
	if rows != cols {
		return nil, nil, fmt.Errorf("Eigen: %dx%d: %w", rows, cols, jacobi.ErrNotSquare)
	}
	if rows == 0 {
		return []float64{}, &mat64.Dense{}, nil
	}

	sym := mat64.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < cols; j++ {
			sym.SetSym(i, j, a.At(i, j))
		}
	}

	var es mat64.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, ErrNoConvergence
	}

	values := es.Values(nil)
	var vectors mat64.Dense
	vectors.EigenvectorsSym(&es)

	return values, &vectors, nil
}

// Compare returns the largest absolute difference between the two sets of
// eigenvalues after sorting both. Sets of different size differ by +Inf.
func Compare(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	sa := append([]float64(nil), a...)
	sb := append([]float64(nil), b...)
	sort.Float64s(sa)
	sort.Float64s(sb)

	var worst float64
	for i := range sa {
		if d := math.Abs(sa[i] - sb[i]); d > worst || math.IsNaN(d) {
			worst = d
		}
	}
	return worst
}
