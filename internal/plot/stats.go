package plot

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// bandwidth is Scott's rule, falling back to 1 for constant samples.
func bandwidth(data []float64) float64 {
	if len(data) < 2 {
		return 1
	}
	std := stat.StdDev(data, nil)
	if std == 0 || math.IsNaN(std) {
		return 1
	}
	return std * math.Pow(float64(len(data)), -0.2)
}

// kde evaluates a Gaussian kernel density estimate at x.
func kde(data []float64, x, bw float64) float64 {
	var sum float64
	for _, v := range data {
		sum += distuv.Normal{Mu: v, Sigma: bw}.Prob(x)
	}
	return sum / float64(len(data))
}
