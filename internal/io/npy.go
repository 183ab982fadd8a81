package io

import (
	"bytes"
	"errors"
	"fmt"
	stdio "io"
	"math"

	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
)

// ErrShape is returned when an npy array cannot be read as a matrix.
var ErrShape = errors.New("io: unsupported array shape")

// Mat64toNpy writes mat64 matrix to Python numpy npy binary file
func Mat64toNpy(path string, matrix *mat64.Dense) error {
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("[Mat64toNpy] failed to open %s: %w", path, err)
	}
	return writeNpy(w, matrix)
}

// WriteNpy writes matrix to w in npy format and closes w.
func WriteNpy(w stdio.WriteCloser, matrix *mat64.Dense) error {
	nw, err := gonpy.NewWriter(w)
	if err != nil {
		return fmt.Errorf("[WriteNpy] %w", err)
	}
	return writeNpy(nw, matrix)
}

func writeNpy(w *gonpy.NpyWriter, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()

	w.Shape = []int{rows, cols}
	w.Version = 2
	if err := w.WriteFloat64(rowMajor(matrix)); err != nil {
		return fmt.Errorf("failed to write npy data: %w", err)
	}

	return nil
}

// NpytoMat64 reads Python numpy npy binary file as mat64 matrix
func NpytoMat64(path string) (*mat64.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to open %s: %w", path, err)
	}

	matrix, err := readNpy(r)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] %s: %w", path, err)
	}
	return matrix, nil
}

// ReadNpy reads an npy stream as mat64 matrix.
func ReadNpy(r stdio.Reader) (*mat64.Dense, error) {
	nr, err := gonpy.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("[ReadNpy] %w", err)
	}
	return readNpy(nr)
}

// readNpy accepts 2-D arrays and 1-D arrays whose length is a perfect square;
// the latter are reshaped row by row into a square matrix.
func readNpy(r *gonpy.NpyReader) (*mat64.Dense, error) {
	data, err := r.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("failed to read npy data: %w", err)
	}

	var rows, cols int
	switch len(r.Shape) {
	case 2:
		rows, cols = r.Shape[0], r.Shape[1]
	case 1:
		side := int(math.Sqrt(float64(len(data))))
		if side*side != len(data) {
			return nil, fmt.Errorf("1-D array of length %d is not a square matrix: %w", len(data), ErrShape)
		}
		rows, cols = side, side
	default:
		return nil, fmt.Errorf("%d-D array: %w", len(r.Shape), ErrShape)
	}
	if rows == 0 || cols == 0 {
		return &mat64.Dense{}, nil
	}

	if len(r.Shape) == 2 && r.ColumnMajor {
		colMajor := mat64.NewDense(cols, rows, data)
		return mat64.DenseCopyOf(colMajor.T()), nil
	}
	return mat64.NewDense(rows, cols, data), nil
}

// EncodeNpy returns the npy encoding of matrix.
func EncodeNpy(matrix *mat64.Dense) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteNpy(nopCloser{&buf}, matrix); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeNpy parses an npy encoding produced by EncodeNpy or numpy.save.
func DecodeNpy(blob []byte) (*mat64.Dense, error) {
	return ReadNpy(bytes.NewReader(blob))
}

type nopCloser struct {
	stdio.Writer
}

func (nopCloser) Close() error { return nil }

// rowMajor returns the matrix entries row by row, copying only when the
// backing storage has padding.
func rowMajor(matrix *mat64.Dense) []float64 {
	rows, cols := matrix.Dims()
	raw := matrix.RawMatrix()
	if raw.Stride == cols {
		return raw.Data[:rows*cols]
	}

	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, raw.Data[i*raw.Stride:i*raw.Stride+cols]...)
	}
	return data
}
