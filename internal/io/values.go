package io

import (
	"bufio"
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteValues writes one value per line.
func WriteValues(w stdio.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		if _, err := fmt.Fprintln(bw, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadValues reads one value per line. Lines that are not a number are skipped.
func ReadValues(r stdio.Reader) ([]float64, error) {
	var values []float64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		value, err := strconv.ParseFloat(strings.TrimSpace(scanner.Text()), 64)
		if err != nil {
			continue
		}
		values = append(values, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return values, nil
}

// ValuestoFile writes values to path, one per line.
func ValuestoFile(path string, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[ValuestoFile] failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteValues(f, values); err != nil {
		return fmt.Errorf("[ValuestoFile] failed to write %s: %w", path, err)
	}
	return f.Close()
}

// FiletoValues reads a file written by ValuestoFile.
func FiletoValues(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[FiletoValues] failed to open %s: %w", path, err)
	}
	defer f.Close()

	values, err := ReadValues(f)
	if err != nil {
		return nil, fmt.Errorf("[FiletoValues] failed to read %s: %w", path, err)
	}
	return values, nil
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValuesFileName returns "<stem>-eigvals.txt" for a matrix file.
func ValuesFileName(path string) string {
	return Stem(path) + "-eigvals.txt"
}
