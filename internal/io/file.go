package io

import (
	"path/filepath"
	"strings"

	"github.com/gonum/matrix/mat64"
)

// FiletoMat64 loads a matrix from a .csv file or, for any other extension,
// an npy file.
func FiletoMat64(path string) (*mat64.Dense, error) {
	if isCSV(path) {
		return CSVtoMat64(path)
	}
	return NpytoMat64(path)
}

// Mat64toFile saves a matrix as csv or npy depending on the extension of path.
func Mat64toFile(path string, matrix *mat64.Dense) error {
	if isCSV(path) {
		return Mat64toCSV(path, matrix)
	}
	return Mat64toNpy(path, matrix)
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
