package calc

import (
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZScoring(t *testing.T) {
	pl := testPipeLine()
	in := mat64.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		5, 5, 5, 5,
	})
	out := mat64.NewDense(2, 4, nil)
	require.NoError(t, pl.ZScoring(in, out))

	var sum, sumSqr float64
	for j := 0; j < 4; j++ {
		sum += out.At(0, j)
		sumSqr += out.At(0, j) * out.At(0, j)
	}
	assert.InDelta(t, 0, sum, 1e-12)
	assert.InDelta(t, 4, sumSqr, 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0}, out.RawRowView(1))

	assert.Error(t, pl.ZScoring(in, mat64.NewDense(4, 4, nil)))
}

func TestSigmoid(t *testing.T) {
	pl := testPipeLine()
	in := mat64.NewDense(1, 3, []float64{0, 50, -50})
	out := mat64.NewDense(1, 3, nil)
	require.NoError(t, pl.Sigmoid(in, out))

	assert.Zero(t, out.At(0, 0))
	assert.InDelta(t, 1, out.At(0, 1), 1e-12)
	assert.InDelta(t, -1, out.At(0, 2), 1e-12)
	assert.Error(t, pl.Sigmoid(in, mat64.NewDense(3, 1, nil)))
}

func TestPearson(t *testing.T) {
	pl := testPipeLine()
	series := mat64.NewDense(4, 5, []float64{
		1, 2, 3, 4, 5,
		2, 4, 6, 8, 10,
		5, 4, 3, 2, 1,
		7, 7, 7, 7, 7,
	})
	out := mat64.NewDense(4, 4, nil)
	require.NoError(t, pl.Pearson(series, out))

	assert.InDelta(t, 1, out.At(0, 0), 1e-12)
	assert.InDelta(t, 1, out.At(0, 1), 1e-12)
	assert.InDelta(t, -1, out.At(0, 2), 1e-12)
	assert.InDelta(t, -1, out.At(2, 1), 1e-12)
	assert.Zero(t, out.At(3, 0))
	assert.Zero(t, out.At(3, 3))
	assert.True(t, pl.SymCheck(out, 1e-15))

	assert.Error(t, pl.Pearson(series, mat64.NewDense(4, 5, nil)))
}

func TestAccAvg(t *testing.T) {
	pl := testPipeLine()
	acc := mat64.NewDense(2, 2, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, pl.Acc(mat64.NewDense(2, 2, []float64{1, 2, 3, 4}), acc))
	}
	assert.True(t, mat64.Equal(acc, mat64.NewDense(2, 2, []float64{3, 6, 9, 12})))

	avg := mat64.NewDense(2, 2, nil)
	require.NoError(t, pl.Avg(acc, avg, 3))
	assert.True(t, mat64.EqualApprox(avg, mat64.NewDense(2, 2, []float64{1, 2, 3, 4}), 1e-15))

	assert.Error(t, pl.Acc(acc, mat64.NewDense(1, 2, nil)))
	assert.Error(t, pl.Avg(acc, mat64.NewDense(2, 1, nil), 3))
}
