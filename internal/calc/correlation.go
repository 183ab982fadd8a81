package calc

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

type statistic struct {
	avg float64
	std float64
}

func (p *PipeLine) rowStats(series *mat64.Dense) []statistic {
	rows, cols := series.Dims()
	stats := make([]statistic, rows)

	p.forEachRow(rows, func(index int) {
		var accVal, accSqrVal float64
		for t := 0; t < cols; t++ {
			value := series.At(index, t)
			accVal += value
			accSqrVal += value * value
		}

		avgVal := accVal / float64(cols)
		avgSqrVal := accSqrVal / float64(cols)
		stats[index] = statistic{avg: avgVal, std: math.Sqrt(math.Max(avgSqrVal-avgVal*avgVal, 0))}
	})

	return stats
}

// ZScoring standardizes every row of in into out. Constant rows become zero.
func (p *PipeLine) ZScoring(in, out *mat64.Dense) error {
	if err := sameDims("ZScoring", in, out); err != nil {
		return err
	}

	stats := p.rowStats(in)
	_, cols := in.Dims()
	p.forEachRow(len(stats), func(index int) {
		s := stats[index]
		for t := 0; t < cols; t++ {
			if s.std == 0 {
				out.Set(index, t, 0)
				continue
			}
			out.Set(index, t, (in.At(index, t)-s.avg)/s.std)
		}
	})
	return nil
}

// Sigmoid maps every entry of in to 2/(1+e^-x) - 1 in out.
func (p *PipeLine) Sigmoid(in, out *mat64.Dense) error {
	if err := sameDims("Sigmoid", in, out); err != nil {
		return err
	}

	rows, cols := in.Dims()
	p.forEachRow(rows, func(index int) {
		for t := 0; t < cols; t++ {
			out.Set(index, t, 2/(1+math.Exp(-in.At(index, t)))-1)
		}
	})
	return nil
}

// Pearson writes the Pearson correlation between every pair of rows of series
// into the square matrix out. Worker i fills row i and column i from the
// diagonal onwards, so writes never overlap.
func (p *PipeLine) Pearson(series, out *mat64.Dense) error {
	rows, cols := series.Dims()
	outRows, outCols := out.Dims()
	if outRows != rows || outCols != rows {
		return fmt.Errorf("Pearson: input is %d by %d but output is %d by %d", rows, cols, outRows, outCols)
	}

	stats := p.rowStats(series)
	p.forEachRow(rows, func(from int) {
		for to := from; to < rows; to++ {
			var accProd float64
			for t := 0; t < cols; t++ {
				accProd += series.At(from, t) * series.At(to, t)
			}

			var pearson float64
			if den := stats[from].std * stats[to].std; den > 0 {
				cov := accProd/float64(cols) - stats[from].avg*stats[to].avg
				pearson = cov / den
			}

			out.Set(from, to, pearson)
			out.Set(to, from, pearson)
		}
	})
	return nil
}

func sameDims(op string, in, out *mat64.Dense) error {
	inRows, inCols := in.Dims()
	outRows, outCols := out.Dims()
	if inRows != outRows || inCols != outCols {
		return fmt.Errorf("%s: input dims: %d by %d when output dims: %d by %d", op, inRows, inCols, outRows, outCols)
	}
	return nil
}
