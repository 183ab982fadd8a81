package calc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/google/uuid"

	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
	"github.com/KyungWonPark/Diagonalization/internal/metrics"
)

// Source loads matrices by primary key.
type Source interface {
	Get(ctx context.Context, pk int) (*mat64.Dense, error)
}

// ResultCache keeps results between runs.
type ResultCache interface {
	Load(ctx context.Context, pk int, opts jacobi.Options) (jacobi.Result, bool, error)
	Store(ctx context.Context, pk int, opts jacobi.Options, res jacobi.Result) error
}

// Outcome is the result for one matrix of a batch.
type Outcome struct {
	PK     int
	Result jacobi.Result
	Err    error
	Cached bool
}

// Batch is the result of Run. Outcomes follow the order of the keys.
type Batch struct {
	ID        uuid.UUID
	Outcomes  []Outcome
	Converged int
	Failed    int
	Cached    int
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	cache   ResultCache
	metrics *metrics.Metrics
}

// WithCache serves results from c and stores fresh ones into it.
func WithCache(c ResultCache) RunOption {
	return func(rc *runConfig) { rc.cache = c }
}

// WithMetrics records every diagonalization in m.
func WithMetrics(m *metrics.Metrics) RunOption {
	return func(rc *runConfig) { rc.metrics = m }
}

// Run diagonalizes the matrices named by keys. Each worker owns the matrix it
// is working on, so the Jacobi loop itself stays sequential. Once ctx is done
// no further keys are handed out and the remaining outcomes carry ctx.Err().
func (p *PipeLine) Run(ctx context.Context, src Source, keys []int, opts jacobi.Options, options ...RunOption) Batch {
	var rc runConfig
	for _, o := range options {
		o(&rc)
	}

	b := Batch{
		ID:       uuid.New(),
		Outcomes: make([]Outcome, len(keys)),
	}
	log := p.log.With().Str("batch", b.ID.String()).Logger()
	log.Info().Int("matrices", len(keys)).Int("workers", p.numWorkers).Msg("Starting batch")

	order := make(chan int, p.numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < p.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range order {
				b.Outcomes[index] = p.diagonalize(ctx, src, keys[index], opts, &rc)
			}
		}()
	}

	cancelFrom := -1
feed:
	for i := range keys {
		if ctx.Err() != nil {
			cancelFrom = i
			break
		}
		select {
		case <-ctx.Done():
			cancelFrom = i
			break feed
		case order <- i:
		}
	}
	if cancelFrom >= 0 {
		for j := cancelFrom; j < len(keys); j++ {
			b.Outcomes[j] = Outcome{PK: keys[j], Err: ctx.Err()}
		}
	}

	close(order)
	wg.Wait()

	for _, o := range b.Outcomes {
		switch {
		case o.Err != nil:
			b.Failed++
			log.Error().Err(o.Err).Int("pk", o.PK).Msg("Diagonalization failed")
		case o.Result.Converged:
			b.Converged++
		default:
			log.Warn().Int("pk", o.PK).Int("iterations", o.Result.Iterations).Float64("off_diag", o.Result.OffDiag).Msg("Iteration cap reached before convergence")
		}
		if o.Cached {
			b.Cached++
		}
	}

	log.Info().Int("converged", b.Converged).Int("failed", b.Failed).Int("cached", b.Cached).Msg("Batch finished")
	return b
}

func (p *PipeLine) diagonalize(ctx context.Context, src Source, pk int, opts jacobi.Options, rc *runConfig) Outcome {
	if rc.cache != nil {
		res, ok, err := rc.cache.Load(ctx, pk, opts)
		if err != nil {
			p.log.Warn().Err(err).Int("pk", pk).Msg("Cache lookup failed")
		} else if ok {
			rc.metrics.CacheHit()
			return Outcome{PK: pk, Result: res, Cached: true}
		}
	}

	matrix, err := src.Get(ctx, pk)
	if err != nil {
		return Outcome{PK: pk, Err: fmt.Errorf("load %d: %w", pk, err)}
	}

	start := time.Now()
	res, err := jacobi.Diagonalize(matrix, opts)
	if err != nil {
		return Outcome{PK: pk, Err: fmt.Errorf("diagonalize %d: %w", pk, err)}
	}
	rc.metrics.ObserveJacobi(res, time.Since(start))

	if rc.cache != nil {
		if err := rc.cache.Store(ctx, pk, opts, res); err != nil {
			p.log.Warn().Err(err).Int("pk", pk).Msg("Cache store failed")
		}
	}

	return Outcome{PK: pk, Result: res}
}
