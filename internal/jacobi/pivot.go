package jacobi

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// MaxOffDiag returns the largest-magnitude entry of the strict upper triangle
// of a and its coordinates (p < q). The scan runs row by row with increasing
// column, and only a strictly larger magnitude replaces the current pivot, so
// the first maximal entry wins ties. The returned value keeps its sign.
//
// MaxOffDiag panics if a has fewer than two rows.
func MaxOffDiag(a mat64.Matrix) (float64, int, int) {
	n, _ := a.Dims()
	if n < 2 {
		panic("jacobi: pivot search needs at least a 2x2 matrix")
	}

	maxVal := 0.0
	p, q := 0, 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			value := a.At(i, j)
			if math.Abs(value) > math.Abs(maxVal) {
				maxVal = value
				p, q = i, j
			}
		}
	}

	return maxVal, p, q
}
