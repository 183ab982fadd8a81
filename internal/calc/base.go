// Package calc holds the row-parallel matrix helpers and the batch
// diagonalization pipeline.
package calc

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// PipeLine represents a compute pipeline
type PipeLine struct {
	numWorkers int
	log        zerolog.Logger
}

// Init returns a compute PipeLine. numWorkers below 1 means one worker per CPU.
func Init(numWorkers int, log zerolog.Logger) *PipeLine {
	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}

	return &PipeLine{
		numWorkers: numWorkers,
		log:        log,
	}
}

// NumWorkers returns the number of goroutines used per fan-out.
func (p *PipeLine) NumWorkers() int {
	return p.numWorkers
}

// forEachRow calls work once for every row index in [0, rows), spread over the
// pipeline workers. work must only touch its own row.
func (p *PipeLine) forEachRow(rows int, work func(index int)) {
	order := make(chan int, p.numWorkers)
	var wg sync.WaitGroup

	wg.Add(rows)

	for i := 0; i < p.numWorkers; i++ {
		go func() {
			for index := range order {
				work(index)
				wg.Done()
			}
		}()
	}

	for i := 0; i < rows; i++ {
		order <- i
	}

	wg.Wait()
	close(order)
	return
}
