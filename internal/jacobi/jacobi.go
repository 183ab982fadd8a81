// Package jacobi diagonalizes real symmetric matrices with the classical
// Jacobi eigenvalue algorithm: every iteration eliminates the largest
// off-diagonal entry with a plane rotation and accumulates the rotations
// into the eigenvector matrix.
package jacobi

import (
	"errors"
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

var (
	// ErrNotSquare is returned when the input matrix is not square.
	ErrNotSquare = errors.New("jacobi: matrix is not square")

	// ErrBadOptions is returned for a tolerance that is not positive or a
	// negative iteration cap.
	ErrBadOptions = errors.New("jacobi: invalid options")
)

// Options controls convergence of Diagonalize.
type Options struct {
	// Tol is the off-diagonal magnitude below which the matrix counts as
	// diagonal. It must be positive: the test is strict, so a zero tolerance
	// could never be met.
	Tol float64 `yaml:"tol"`
	// MaxIterations caps the number of rotations.
	MaxIterations int `yaml:"max_iterations"`
}

// DefaultOptions returns tol 1e-10 and a cap of 100 rotations.
func DefaultOptions() Options {
	return Options{
		Tol:           1e-10,
		MaxIterations: 100,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Tol <= 0 || math.IsNaN(o.Tol) {
		return fmt.Errorf("tol %g: %w", o.Tol, ErrBadOptions)
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("max iterations %d: %w", o.MaxIterations, ErrBadOptions)
	}
	return nil
}

// Result holds the outcome of a diagonalization.
//
// Values[j] is paired with column j of Vectors. Values are the diagonal of
// Reduced in row order and are not sorted. When Converged is false the cap
// was hit first and Values is the best estimate so far; Vectors and Reduced
// still satisfy Vectorsᵗ·A·Vectors = Reduced.
type Result struct {
	Values     []float64
	Vectors    *mat64.Dense
	Reduced    *mat64.Dense
	Iterations int
	OffDiag    float64
	Converged  bool
}

// Diagonalize computes eigenvalues and eigenvectors of the symmetric matrix a.
// Symmetry is assumed, not checked. a is never modified.
//
// Reaching opts.MaxIterations is not an error: the partial result is returned
// with Converged set to false.
func Diagonalize(a mat64.Matrix, opts Options) (Result, error) {
	rows, cols := a.Dims()
	if rows != cols {
		return Result{}, fmt.Errorf("Diagonalize: %dx%d: %w", rows, cols, ErrNotSquare)
	}
	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("Diagonalize: %w", err)
	}

	n := rows
	switch n {
	case 0:
		return Result{Values: []float64{}, Vectors: &mat64.Dense{}, Reduced: &mat64.Dense{}, Converged: true}, nil
	case 1:
		value := a.At(0, 0)
		return Result{
			Values:    []float64{value},
			Vectors:   mat64.NewDense(1, 1, []float64{1}),
			Reduced:   mat64.NewDense(1, 1, []float64{value}),
			Converged: true,
		}, nil
	}

	work := mat64.DenseCopyOf(a)
	vectors := identity(n)

	var (
		iterations int
		pivot      float64
		p, q       int
		converged  bool
	)
	for iterations < opts.MaxIterations {
		pivot, p, q = MaxOffDiag(work)
		if math.Abs(pivot) < opts.Tol {
			converged = true
			break
		}

		theta := 0.5 * math.Atan2(2*work.At(p, q), work.At(p, p)-work.At(q, q))
		s, c := math.Sincos(theta)
		rotate(work, p, q, c, s)
		accumulate(vectors, p, q, c, s)

		iterations++
	}

	if !converged {
		// The cap was reached; report where the off-diagonal stands now.
		pivot, _, _ = MaxOffDiag(work)
		converged = math.Abs(pivot) < opts.Tol
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = work.At(i, i)
	}

	return Result{
		Values:     values,
		Vectors:    vectors,
		Reduced:    work,
		Iterations: iterations,
		OffDiag:    pivot,
		Converged:  converged,
	}, nil
}

// rotate applies A <- PᵗAP in place, where P is the identity except for
// P[p][p] = P[q][q] = c, P[p][q] = -s and P[q][p] = s. Only rows and columns
// p and q change.
func rotate(a *mat64.Dense, p, q int, c, s float64) {
	n, _ := a.Dims()

	app := a.At(p, p)
	aqq := a.At(q, q)
	apq := a.At(p, q)

	for i := 0; i < n; i++ {
		if i == p || i == q {
			continue
		}
		aip := a.At(i, p)
		aiq := a.At(i, q)

		newP := c*aip + s*aiq
		newQ := -s*aip + c*aiq
		a.Set(i, p, newP)
		a.Set(p, i, newP)
		a.Set(i, q, newQ)
		a.Set(q, i, newQ)
	}

	a.Set(p, p, c*c*app+2*c*s*apq+s*s*aqq)
	a.Set(q, q, s*s*app-2*c*s*apq+c*c*aqq)
	// θ is chosen so that this entry vanishes; store the exact zero.
	a.Set(p, q, 0)
	a.Set(q, p, 0)

	return
}

// accumulate applies V <- V·P on columns p and q.
func accumulate(v *mat64.Dense, p, q int, c, s float64) {
	n, _ := v.Dims()

	for i := 0; i < n; i++ {
		vip := v.At(i, p)
		viq := v.At(i, q)
		v.Set(i, p, c*vip+s*viq)
		v.Set(i, q, -s*vip+c*viq)
	}

	return
}

func identity(n int) *mat64.Dense {
	m := mat64.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
