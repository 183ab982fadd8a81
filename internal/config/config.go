// Package config loads the YAML configuration shared by the commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the full configuration file.
type Config struct {
	Jacobi    jacobi.Options `yaml:"jacobi"`
	Database  Database       `yaml:"database"`
	Redis     Redis          `yaml:"redis"`
	Batch     Batch          `yaml:"batch"`
	Generator Generator      `yaml:"generator"`
	Server    Server         `yaml:"server"`
	Log       Log            `yaml:"log"`
}

// Database holds the matrix database connection.
type Database struct {
	DSN          string        `yaml:"dsn"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// Redis holds the result cache connection.
type Redis struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	DB      int           `yaml:"db"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
}

// Batch configures whole-database runs.
type Batch struct {
	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`
}

// Generator configures database creation.
type Generator struct {
	Seed      int64   `yaml:"seed"`
	Count     int     `yaml:"count"`
	Dim       int     `yaml:"dim"`
	Kind      string  `yaml:"kind"`
	Threshold float64 `yaml:"threshold"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `yaml:"addr"`
}

// Log configures zerolog output.
type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Jacobi: jacobi.DefaultOptions(),
		Database: Database{
			DSN:          "postgres://localhost:5432/matrices?sslmode=disable",
			QueryTimeout: 30 * time.Second,
		},
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "diag:",
			TTL:    24 * time.Hour,
		},
		Batch: Batch{
			Workers:   4,
			OutputDir: "output",
		},
		Generator: Generator{
			Count:     100,
			Dim:       50,
			Kind:      "symmetric",
			Threshold: 0.5,
		},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info", Pretty: true},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := c.Jacobi.Validate(); err != nil {
		return fmt.Errorf("%w: jacobi: %v", ErrInvalid, err)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn is required", ErrInvalid)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("%w: batch.workers %d", ErrInvalid, c.Batch.Workers)
	}
	if c.Generator.Count < 0 || c.Generator.Dim < 1 {
		return fmt.Errorf("%w: generator count %d dim %d", ErrInvalid, c.Generator.Count, c.Generator.Dim)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalid)
	}
	return nil
}
