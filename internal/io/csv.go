package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// Mat64toCSV saves Mat64 as a csv file
func Mat64toCSV(path string, matrix *mat64.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to create %s: %w", path, err)
	}
	defer f.Close()

	rows, _ := matrix.Dims()

	stride := runtime.NumCPU()
	parsed := make([]string, stride)

	for row := 0; row < rows; row += stride {
		var wg sync.WaitGroup
		jobMark := stride

		if row+stride >= rows {
			jobMark = rows - row
		}

		wg.Add(jobMark)
		for offset := 0; offset < jobMark; offset++ {
			go formatLine(matrix, parsed, offset, row, &wg)
		}
		wg.Wait()

		for i := 0; i < jobMark; i++ {
			if _, err := fmt.Fprintf(f, "%s\n", parsed[i]); err != nil {
				return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
			}
		}
	}

	return f.Close()
}

func formatLine(matrix *mat64.Dense, parsed []string, offset int, row int, wg *sync.WaitGroup) {
	defer wg.Done()
	_, cols := matrix.Dims()

	fields := make([]string, cols)
	for i := 0; i < cols; i++ {
		fields[i] = strconv.FormatFloat(matrix.At(row+offset, i), 'g', -1, 64)
	}
	parsed[offset] = strings.Join(fields, ", ")

	return
}

// CSVtoMat64 converts csv file to mat64
func CSVtoMat64(path string) (*mat64.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[CSVtoMat64] failed to open %s: %w", path, err)
	}
	defer f.Close()

	csvReader := csv.NewReader(f)
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("[CSVtoMat64] failed to parse %s: %w", path, err)
	}

	rows := len(records)
	if rows == 0 {
		return &mat64.Dense{}, nil
	}
	cols := len(records[0])
	matrix := mat64.NewDense(rows, cols, nil)

	workers := runtime.NumCPU()
	order := make(chan int, workers)
	errs := make([]error, rows)
	var wg sync.WaitGroup

	wg.Add(rows)

	for i := 0; i < workers; i++ {
		go parseLine(records, matrix, errs, order, &wg)
	}

	for i := 0; i < rows; i++ {
		order <- i
	}

	wg.Wait()
	close(order)

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("[CSVtoMat64] %s line %d: %w", path, i+1, err)
		}
	}

	return matrix, nil
}

func parseLine(records [][]string, matrix *mat64.Dense, errs []error, order <-chan int, wg *sync.WaitGroup) {
	_, cols := matrix.Dims()

	for index := range order {
		for i := 0; i < cols; i++ {
			str := strings.TrimSpace(records[index][i])
			value, err := strconv.ParseFloat(str, 64)
			if err != nil {
				errs[index] = err
				break
			}

			matrix.Set(index, i, value)
		}

		wg.Done()
	}

	return
}
