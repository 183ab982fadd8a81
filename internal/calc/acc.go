package calc

import (
	"github.com/gonum/matrix/mat64"
)

// Acc adds in to out element-wise.
func (p *PipeLine) Acc(in, out *mat64.Dense) error {
	if err := sameDims("Acc", in, out); err != nil {
		return err
	}

	rows, cols := in.Dims()
	p.forEachRow(rows, func(index int) {
		for t := 0; t < cols; t++ {
			out.Set(index, t, out.At(index, t)+in.At(index, t))
		}
	})
	return nil
}

// Avg writes in divided by div into out.
func (p *PipeLine) Avg(in, out *mat64.Dense, div float64) error {
	if err := sameDims("Avg", in, out); err != nil {
		return err
	}

	rows, cols := in.Dims()
	p.forEachRow(rows, func(index int) {
		for t := 0; t < cols; t++ {
			out.Set(index, t, in.At(index, t)/div)
		}
	})
	return nil
}
