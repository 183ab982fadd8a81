// Package gen builds seeded random matrices for the matrix database.
package gen

import (
	"fmt"
	"math/rand"

	"github.com/gonum/matrix/mat64"

	"github.com/KyungWonPark/Diagonalization/internal/calc"
)

// Kind selects the family of generated matrices.
type Kind string

const (
	// Uniform entries in [0, 1). Not symmetric.
	Uniform Kind = "uniform"
	// Symmetric is (M + Mᵗ)/2 of a uniform M.
	Symmetric Kind = "symmetric"
	// Laplacian is the graph Laplacian of a thresholded symmetric matrix.
	Laplacian Kind = "laplacian"
	// Diagonal has uniform entries on the diagonal only.
	Diagonal Kind = "diagonal"
	// Correlation is the average Pearson correlation of squashed, z-scored
	// Gaussian series, one series per row.
	Correlation Kind = "correlation"
)

const (
	seriesLength = 64
	subjects     = 4
)

// ParseKind converts a flag value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Uniform, Symmetric, Laplacian, Diagonal, Correlation:
		return k, nil
	}
	return "", fmt.Errorf("gen: unknown matrix kind %q", s)
}

// Generator draws matrices from an explicit random source.
type Generator struct {
	rng *rand.Rand
	pl  *calc.PipeLine
}

// New returns a Generator. The same seed always yields the same sequence.
func New(rng *rand.Rand, pl *calc.PipeLine) *Generator {
	return &Generator{rng: rng, pl: pl}
}

// Matrix returns the next n x n matrix of the given kind. thr is the edge
// threshold for Laplacian and is ignored otherwise.
func (g *Generator) Matrix(kind Kind, n int, thr float64) (*mat64.Dense, error) {
	if n < 1 {
		return nil, fmt.Errorf("gen: matrix dimension %d", n)
	}

	switch kind {
	case Uniform:
		return g.uniform(n), nil
	case Symmetric:
		return g.symmetric(n), nil
	case Laplacian:
		m := g.symmetric(n)
		for i := 0; i < n; i++ {
			m.Set(i, i, 0)
		}
		if err := g.pl.Threshold(m, m, thr, 0); err != nil {
			return nil, err
		}
		if err := g.pl.Laplacian(m); err != nil {
			return nil, err
		}
		return m, nil
	case Diagonal:
		m := mat64.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			m.Set(i, i, g.rng.Float64())
		}
		return m, nil
	case Correlation:
		return g.correlation(n)
	}

	return nil, fmt.Errorf("gen: unknown matrix kind %q", kind)
}

func (g *Generator) uniform(n int) *mat64.Dense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = g.rng.Float64()
	}
	return mat64.NewDense(n, n, data)
}

func (g *Generator) symmetric(n int) *mat64.Dense {
	m := g.uniform(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			value := (m.At(i, j) + m.At(j, i)) / 2
			m.Set(i, j, value)
			m.Set(j, i, value)
		}
	}
	return m
}

func (g *Generator) correlation(n int) (*mat64.Dense, error) {
	series := mat64.NewDense(n, seriesLength, nil)
	scored := mat64.NewDense(n, seriesLength, nil)
	squashed := mat64.NewDense(n, seriesLength, nil)
	pearson := mat64.NewDense(n, n, nil)
	acc := mat64.NewDense(n, n, nil)

	for s := 0; s < subjects; s++ {
		for i := 0; i < n; i++ {
			for t := 0; t < seriesLength; t++ {
				series.Set(i, t, g.rng.NormFloat64())
			}
		}

		if err := g.pl.ZScoring(series, scored); err != nil {
			return nil, err
		}
		if err := g.pl.Sigmoid(scored, squashed); err != nil {
			return nil, err
		}
		if err := g.pl.Pearson(squashed, pearson); err != nil {
			return nil, err
		}
		if err := g.pl.Acc(pearson, acc); err != nil {
			return nil, err
		}
	}

	avg := mat64.NewDense(n, n, nil)
	if err := g.pl.Avg(acc, avg, subjects); err != nil {
		return nil, err
	}
	return avg, nil
}
