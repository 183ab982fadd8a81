// Package cluster reads graph structure out of the eigen decomposition of a
// graph Laplacian.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gonum/matrix/mat64"
)

// ErrTooSmall is returned when a question needs more eigenvalues than given.
var ErrTooSmall = errors.New("cluster: not enough eigenvalues")

// Cluster is a set of node indices, in ascending order.
type Cluster struct {
	Members []int
}

// AddMember adds a member to the cluster
func (c *Cluster) AddMember(idx int) {
	c.Members = append(c.Members, idx)
}

// Smallest returns the indices of the count eigenvalues of smallest magnitude,
// smallest first. Ties keep the lower index.
func Smallest(values []float64, count int) ([]int, error) {
	if count < 1 || count > len(values) {
		return nil, fmt.Errorf("Smallest: %d of %d: %w", count, len(values), ErrTooSmall)
	}

	indices := make([]int, len(values))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return math.Abs(values[indices[i]]) < math.Abs(values[indices[j]])
	})
	return indices[:count], nil
}

// Multiplicity returns how many eigenvalues are zero within tol. For a graph
// Laplacian this is the number of connected components.
func Multiplicity(values []float64, tol float64) int {
	multiplicity := 0
	for _, v := range values {
		if math.Abs(v) <= tol {
			multiplicity++
		}
	}
	return multiplicity
}

// Fiedler returns the index of the eigenvalue with the second smallest
// magnitude (the algebraic connectivity of a Laplacian).
func Fiedler(values []float64) (int, error) {
	if len(values) < 2 {
		return -1, fmt.Errorf("Fiedler: %w", ErrTooSmall)
	}

	indices, err := Smallest(values, 2)
	if err != nil {
		return -1, err
	}
	return indices[1], nil
}

// Bipartition splits the nodes by the sign of column col of vectors.
func Bipartition(vectors mat64.Matrix, col int) (neg, pos Cluster) {
	rows, _ := vectors.Dims()
	for i := 0; i < rows; i++ {
		if vectors.At(i, col) < 0 {
			neg.AddMember(i)
		} else {
			pos.AddMember(i)
		}
	}
	return neg, pos
}

// FromVectors groups the nodes whose entries agree within tol in every one of
// the given columns of vectors. Clusters are ordered by their first member.
func FromVectors(vectors mat64.Matrix, cols []int, tol float64) []Cluster {
	rows, _ := vectors.Dims()

	var (
		clusters []Cluster
		leaders  []int
	)
	for i := 0; i < rows; i++ {
		membership := -1
		for c, leader := range leaders {
			if sameEntries(vectors, cols, i, leader, tol) {
				membership = c
				break
			}
		}

		if membership < 0 {
			leaders = append(leaders, i)
			clusters = append(clusters, Cluster{})
			membership = len(clusters) - 1
		}
		clusters[membership].AddMember(i)
	}

	return clusters
}

func sameEntries(vectors mat64.Matrix, cols []int, i, j int, tol float64) bool {
	for _, c := range cols {
		if math.Abs(vectors.At(i, c)-vectors.At(j, c)) > tol {
			return false
		}
	}
	return true
}

// Components returns the connected components of the graph whose Laplacian
// has the given eigen decomposition. Eigenvectors of the zero eigenvalue are
// constant on every component, so nodes sharing their entries share a
// component.
func Components(values []float64, vectors mat64.Matrix, tol float64) ([]Cluster, error) {
	m := Multiplicity(values, tol)
	if m == 0 {
		return nil, fmt.Errorf("Components: no zero eigenvalue within %g: %w", tol, ErrTooSmall)
	}

	null, err := Smallest(values, m)
	if err != nil {
		return nil, err
	}
	return FromVectors(vectors, null, math.Sqrt(tol)), nil
}
