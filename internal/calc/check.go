package calc

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// CheckLaplacian checks whether input matrix satisfies Laplacian matrix or not
func (p *PipeLine) CheckLaplacian(matrix mat64.Matrix, pre float64) bool {
	return p.SymCheck(matrix, pre) && p.RowCheck(matrix, pre)
}

// SymCheck checks symmetry
func (p *PipeLine) SymCheck(matrix mat64.Matrix, pre float64) bool {
	rows, cols := matrix.Dims()
	if rows != cols {
		return false
	}
	pre = math.Abs(pre)

	isSymm := make([]bool, rows)
	p.forEachRow(rows, func(index int) {
		isSymm[index] = true
		for i := index; i < cols; i++ {
			if math.Abs(matrix.At(index, i)-matrix.At(i, index)) >= pre {
				isSymm[index] = false
				break
			}
		}
	})

	return all(isSymm)
}

// RowCheck checks sum of row elements == 0
func (p *PipeLine) RowCheck(matrix mat64.Matrix, pre float64) bool {
	rows, cols := matrix.Dims()
	pre = math.Abs(pre)

	isRowSumZero := make([]bool, rows)
	p.forEachRow(rows, func(index int) {
		var acc float64
		for i := 0; i < cols; i++ {
			acc += matrix.At(index, i)
		}
		isRowSumZero[index] = math.Abs(acc) < pre
	})

	return all(isRowSumZero)
}

// CheckOrthogonal checks VᵗV = I within pre.
func CheckOrthogonal(eigVec mat64.Matrix, pre float64) bool {
	rows, cols := eigVec.Dims()
	if rows != cols {
		return false
	}
	if rows == 0 {
		return true
	}

	var vtv mat64.Dense
	vtv.Mul(eigVec.T(), eigVec)

	return mat64.EqualApprox(&vtv, identity(rows), math.Abs(pre))
}

// CheckEigenQuality check eigenvalue and eigenvector. Column j of eigVec must
// be the eigenvector of eigVal[j].
func CheckEigenQuality(org mat64.Matrix, eigVal []float64, eigVec mat64.Matrix, pre float64) bool {
	rows, cols := org.Dims()
	vecRows, vecCols := eigVec.Dims()
	if rows != cols || vecRows != rows || vecCols != cols || len(eigVal) != rows {
		return false
	}
	if rows == 0 {
		return true
	}
	pre = math.Abs(pre)

	var isReconOK bool
	var isEigvecRight bool

	// Check reconstruction: U * S * U^T
	{
		eigValMat := mat64.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			eigValMat.Set(i, i, eigVal[i])
		}

		us := mat64.NewDense(rows, cols, nil)
		us.Mul(eigVec, eigValMat)

		recon := mat64.NewDense(rows, cols, nil)
		recon.Mul(us, eigVec.T())

		isReconOK = mat64.EqualApprox(recon, org, pre)
	}

	// Check eigenvectors are actually eigenvectors
	{
		isEigvecRight = true
		v := mat64.NewDense(rows, 1, nil)
		av := mat64.NewDense(rows, 1, nil)
		lv := mat64.NewDense(rows, 1, nil)
		for j := 0; j < cols; j++ {
			for i := 0; i < rows; i++ {
				v.Set(i, 0, eigVec.At(i, j))
			}

			av.Mul(org, v)
			for i := 0; i < rows; i++ {
				lv.Set(i, 0, eigVal[j]*v.At(i, 0))
			}

			isEigvecRight = isEigvecRight && mat64.EqualApprox(av, lv, pre)
		}
	}

	return isReconOK && isEigvecRight
}

func identity(n int) *mat64.Dense {
	m := mat64.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func all(flags []bool) bool {
	for _, ok := range flags {
		if !ok {
			return false
		}
	}
	return true
}
