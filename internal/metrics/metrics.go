// Package metrics exposes Prometheus collectors for diagonalization runs.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
)

// Method labels.
const (
	MethodJacobi  = "jacobi"
	MethodLibrary = "library"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	diagonalizations *prometheus.CounterVec
	iterations       prometheus.Histogram
	duration         *prometheus.HistogramVec
	cacheHits        prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		diagonalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diag_diagonalizations_total",
			Help: "Number of diagonalizations by method and convergence.",
		}, []string{"method", "converged"}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diag_iterations",
			Help:    "Jacobi rotations applied per diagonalization.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diag_duration_seconds",
			Help:    "Wall time of one diagonalization.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"method"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diag_cache_hits_total",
			Help: "Results served from the result cache.",
		}),
	}

	reg.MustRegister(m.diagonalizations, m.iterations, m.duration, m.cacheHits)
	return m
}

// ObserveJacobi records one Jacobi run.
func (m *Metrics) ObserveJacobi(res jacobi.Result, d time.Duration) {
	if m == nil {
		return
	}
	m.diagonalizations.WithLabelValues(MethodJacobi, strconv.FormatBool(res.Converged)).Inc()
	m.iterations.Observe(float64(res.Iterations))
	m.duration.WithLabelValues(MethodJacobi).Observe(d.Seconds())
}

// ObserveLibrary records one library solver run.
func (m *Metrics) ObserveLibrary(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.diagonalizations.WithLabelValues(MethodLibrary, strconv.FormatBool(ok)).Inc()
	m.duration.WithLabelValues(MethodLibrary).Observe(d.Seconds())
}

// CacheHit counts a cached result.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
