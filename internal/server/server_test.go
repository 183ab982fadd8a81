package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
	"github.com/KyungWonPark/Diagonalization/internal/metrics"
	"github.com/KyungWonPark/Diagonalization/internal/store"
)

type fakeMatrices map[int]*mat64.Dense

func (f fakeMatrices) Get(_ context.Context, pk int) (*mat64.Dense, error) {
	matrix, ok := f[pk]
	if !ok {
		return nil, fmt.Errorf("no matrix with pk %d: %w", pk, store.ErrNotFound)
	}
	return matrix, nil
}

func (f fakeMatrices) Keys(context.Context) ([]int, error) {
	keys := make([]int, 0, len(f))
	for pk := 0; pk < len(f); pk++ {
		if _, ok := f[pk]; ok {
			keys = append(keys, pk)
		}
	}
	return keys, nil
}

type memCache struct {
	entries map[int]jacobi.Result
}

func (c *memCache) Load(_ context.Context, pk int, _ jacobi.Options) (jacobi.Result, bool, error) {
	res, ok := c.entries[pk]
	return res, ok, nil
}

func (c *memCache) Store(_ context.Context, pk int, _ jacobi.Options, res jacobi.Result) error {
	c.entries[pk] = res
	return nil
}

func testMatrices() fakeMatrices {
	return fakeMatrices{
		0: mat64.NewDense(2, 2, []float64{2, 1, 1, 2}),
		1: mat64.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
	}
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h := New(testMatrices(), jacobi.DefaultOptions(), zerolog.Nop()).Handler()

	rec := do(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListMatrices(t *testing.T) {
	h := New(testMatrices(), jacobi.DefaultOptions(), zerolog.Nop()).Handler()

	rec := do(t, h, "/matrices")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"keys":[0,1]}`, rec.Body.String())
}

func TestGetMatrix(t *testing.T) {
	h := New(testMatrices(), jacobi.DefaultOptions(), zerolog.Nop()).Handler()

	rec := do(t, h, "/matrices/1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MatrixResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Rows)
	assert.Equal(t, 3, resp.Cols)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, resp.Data)

	assert.Equal(t, http.StatusNotFound, do(t, h, "/matrices/7").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "/matrices/abc").Code)
}

func TestGetEigen(t *testing.T) {
	h := New(testMatrices(), jacobi.DefaultOptions(), zerolog.Nop()).Handler()

	for _, method := range []string{"", "?method=jacobi", "?method=library"} {
		rec := do(t, h, "/matrices/0/eigen"+method)
		require.Equal(t, http.StatusOK, rec.Code, method)

		var resp EigenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Converged)
		assert.False(t, resp.Cached)
		assert.Nil(t, resp.Vectors)
		require.Len(t, resp.Values, 2)
		assert.InDelta(t, 4, resp.Values[0]+resp.Values[1], 1e-12)
		assert.InDelta(t, 3, resp.Values[0]*resp.Values[1], 1e-12)
	}

	rec := do(t, h, "/matrices/0/eigen?vectors=true")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp EigenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Vectors, 2)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "/matrices/0/eigen?method=qr").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "/matrices/9/eigen").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, "/matrices/1/eigen").Code)
}

func TestGetEigenUsesCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cache := &memCache{entries: map[int]jacobi.Result{}}
	h := New(testMatrices(), jacobi.DefaultOptions(), zerolog.Nop(), WithCache(cache), WithMetrics(m, reg)).Handler()

	first := do(t, h, "/matrices/0/eigen")
	require.Equal(t, http.StatusOK, first.Code)
	require.Contains(t, cache.entries, 0)

	second := do(t, h, "/matrices/0/eigen")
	require.Equal(t, http.StatusOK, second.Code)
	var resp EigenResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)

	rec := do(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "diag_cache_hits_total 1"))
}

func TestUnencodableResultIsServerError(t *testing.T) {
	matrices := fakeMatrices{0: mat64.NewDense(1, 1, []float64{math.NaN()})}
	h := New(matrices, jacobi.DefaultOptions(), zerolog.Nop()).Handler()

	for _, target := range []string{"/matrices/0", "/matrices/0/eigen"} {
		rec := do(t, h, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String(), target)
	}
}
