package calc

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// Threshold does thresholding: every entry of inputMat that is <= thr becomes
// sub in outputMat. inputMat and outputMat may be the same matrix.
func (p *PipeLine) Threshold(inputMat *mat64.Dense, outputMat *mat64.Dense, thr float64, sub float64) error {
	inputRows, inputCols := inputMat.Dims()
	outputRows, outputCols := outputMat.Dims()

	if inputRows != outputRows || inputCols != outputCols {
		return fmt.Errorf("Threshold: input dims: %d by %d when output dims: %d by %d", inputRows, inputCols, outputRows, outputCols)
	}

	p.forEachRow(inputRows, func(index int) {
		for t := 0; t < inputCols; t++ {
			value := inputMat.At(index, t)
			if thr >= value {
				value = sub
			}

			outputMat.Set(index, t, value)
		}
	})

	return nil
}
