package calc

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// Laplacian turns an adjacency matrix into Laplacian matrix (D - W) in place.
func (p *PipeLine) Laplacian(inputMat *mat64.Dense) error {
	inputRows, inputCols := inputMat.Dims()
	if inputRows != inputCols {
		return fmt.Errorf("Laplacian: adjacency matrix is %d by %d", inputRows, inputCols)
	}

	p.forEachRow(inputRows, func(index int) {
		var degree float64

		for i := 0; i < inputCols; i++ {
			degree += inputMat.At(index, i)
		}

		for i := 0; i < inputCols; i++ {
			value := inputMat.At(index, i)
			inputMat.Set(index, i, -value)
		}

		value := inputMat.At(index, index)
		value += degree
		inputMat.Set(index, index, value)
	})

	return nil
}
