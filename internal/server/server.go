// Package server exposes the matrix database and its diagonalizations over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/KyungWonPark/Diagonalization/internal/calc"
	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
	"github.com/KyungWonPark/Diagonalization/internal/metrics"
	"github.com/KyungWonPark/Diagonalization/internal/solver"
	"github.com/KyungWonPark/Diagonalization/internal/store"
)

// Matrices is the read side of the matrix database.
type Matrices interface {
	calc.Source
	Keys(ctx context.Context) ([]int, error)
}

// Server answers matrix and eigen queries.
type Server struct {
	matrices Matrices
	cache    calc.ResultCache
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	opts     jacobi.Options
	log      zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCache serves Jacobi results from c.
func WithCache(c calc.ResultCache) Option {
	return func(s *Server) { s.cache = c }
}

// WithMetrics records diagonalizations in m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New returns a Server diagonalizing with opts.
func New(matrices Matrices, opts jacobi.Options, log zerolog.Logger, options ...Option) *Server {
	s := &Server{
		matrices: matrices,
		opts:     opts,
		log:      log,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/matrices", s.listMatrices).Methods(http.MethodGet)
	r.HandleFunc("/matrices/{pk}", s.getMatrix).Methods(http.MethodGet)
	r.HandleFunc("/matrices/{pk}/eigen", s.getEigen).Methods(http.MethodGet)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return r
}

// MatrixResponse is the body of GET /matrices/{pk}.
type MatrixResponse struct {
	PK   int         `json:"pk"`
	Rows int         `json:"rows"`
	Cols int         `json:"cols"`
	Data [][]float64 `json:"data"`
}

// EigenResponse is the body of GET /matrices/{pk}/eigen.
type EigenResponse struct {
	PK         int         `json:"pk"`
	Method     string      `json:"method"`
	Values     []float64   `json:"values"`
	Vectors    [][]float64 `json:"vectors,omitempty"`
	Iterations int         `json:"iterations"`
	Converged  bool        `json:"converged"`
	Cached     bool        `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listMatrices(w http.ResponseWriter, r *http.Request) {
	keys, err := s.matrices.Keys(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if keys == nil {
		keys = []int{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]int{"keys": keys})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (int, *mat64.Dense, bool) {
	pk, err := strconv.Atoi(mux.Vars(r)["pk"])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "pk must be an integer"})
		return 0, nil, false
	}

	matrix, err := s.matrices.Get(r.Context(), pk)
	if err != nil {
		s.fail(w, err)
		return 0, nil, false
	}
	return pk, matrix, true
}

func (s *Server) getMatrix(w http.ResponseWriter, r *http.Request) {
	pk, matrix, ok := s.load(w, r)
	if !ok {
		return
	}

	rows, cols := matrix.Dims()
	s.writeJSON(w, http.StatusOK, MatrixResponse{PK: pk, Rows: rows, Cols: cols, Data: toRows(matrix)})
}

func (s *Server) getEigen(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("method")
	if method == "" {
		method = metrics.MethodJacobi
	}
	if method != metrics.MethodJacobi && method != metrics.MethodLibrary {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "method must be jacobi or library"})
		return
	}
	withVectors := r.URL.Query().Get("vectors") == "true"

	pk, err := strconv.Atoi(mux.Vars(r)["pk"])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "pk must be an integer"})
		return
	}

	if method == metrics.MethodJacobi && s.cache != nil {
		res, hit, err := s.cache.Load(r.Context(), pk, s.opts)
		if err != nil {
			s.log.Warn().Err(err).Int("pk", pk).Msg("Cache lookup failed")
		} else if hit {
			s.metrics.CacheHit()
			s.writeJSON(w, http.StatusOK, eigenResponse(pk, method, res, withVectors, true))
			return
		}
	}

	_, matrix, ok := s.load(w, r)
	if !ok {
		return
	}

	start := time.Now()
	switch method {
	case metrics.MethodLibrary:
		values, vectors, err := solver.Eigen(matrix)
		s.metrics.ObserveLibrary(err == nil, time.Since(start))
		if err != nil {
			s.fail(w, err)
			return
		}
		res := jacobi.Result{Values: values, Vectors: vectors, Converged: true}
		s.writeJSON(w, http.StatusOK, eigenResponse(pk, method, res, withVectors, false))
	default:
		res, err := jacobi.Diagonalize(matrix, s.opts)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.metrics.ObserveJacobi(res, time.Since(start))
		if s.cache != nil {
			if err := s.cache.Store(r.Context(), pk, s.opts, res); err != nil {
				s.log.Warn().Err(err).Int("pk", pk).Msg("Cache store failed")
			}
		}
		s.writeJSON(w, http.StatusOK, eigenResponse(pk, method, res, withVectors, false))
	}
}

func eigenResponse(pk int, method string, res jacobi.Result, withVectors, cached bool) EigenResponse {
	resp := EigenResponse{
		PK:         pk,
		Method:     method,
		Values:     res.Values,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Cached:     cached,
	}
	if withVectors && res.Vectors != nil {
		resp.Vectors = toRows(res.Vectors)
	}
	return resp
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, jacobi.ErrNotSquare):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		s.log.Error().Err(err).Msg("Request failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func toRows(m *mat64.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// writeJSON encodes body before writing the header; a body that cannot be
// encoded (NaN in a result) is answered with a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		s.log.Error().Err(err).Int("status", status).Msg("Encoding response failed")
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"internal error"}` + "\n")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Debug().Err(err).Msg("Writing response failed")
	}
}
