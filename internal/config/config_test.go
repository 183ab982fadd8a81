package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1e-10, cfg.Jacobi.Tol)
	assert.Equal(t, 100, cfg.Jacobi.MaxIterations)
	assert.Equal(t, 30*time.Second, cfg.Database.QueryTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 100, cfg.Generator.Count)
	assert.Equal(t, 50, cfg.Generator.Dim)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
jacobi:
  tol: 1.0e-8
  max_iterations: 5000
redis:
  enabled: true
  ttl: 90m
batch:
  workers: 8
generator:
  seed: 7
  kind: laplacian
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-8, cfg.Jacobi.Tol)
	assert.Equal(t, 5000, cfg.Jacobi.MaxIterations)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 90*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, int64(7), cfg.Generator.Seed)
	assert.Equal(t, "laplacian", cfg.Generator.Kind)
	assert.Equal(t, 50, cfg.Generator.Dim)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"negative tol":       "jacobi: {tol: -1}",
		"negative cap":       "jacobi: {max_iterations: -3}",
		"negative workers":   "batch: {workers: -1}",
		"zero dim":           "generator: {dim: 0}",
		"redis without addr": "redis: {enabled: true, addr: \"\"}",
		"zero tol":           "jacobi: {tol: 0}",
		"empty dsn":          "database: {dsn: \"\"}",
		"empty server addr":  "server: {addr: \"\"}",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "jacobi: [not, a, map]"))
	assert.Error(t, err)
}
