// Package store persists matrices in a PostgreSQL table, one npy blob per row.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/KyungWonPark/Diagonalization/internal/io"
)

// ErrNotFound is returned when no matrix has the requested primary key.
var ErrNotFound = errors.New("store: no such matrix")

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS matrices (
	pk INTEGER NOT NULL PRIMARY KEY,
	arr BYTEA NOT NULL,
	arr_rows INTEGER NOT NULL,
	arr_cols INTEGER NOT NULL)`
	insertSQL = `INSERT INTO matrices (pk, arr, arr_rows, arr_cols) VALUES ($1, $2, $3, $4)`
	selectSQL = `SELECT pk, arr, arr_rows, arr_cols FROM matrices WHERE pk = $1`
	keysSQL   = `SELECT pk FROM matrices ORDER BY pk`
)

type row struct {
	PK   int    `db:"pk"`
	Arr  []byte `db:"arr"`
	Rows int    `db:"arr_rows"`
	Cols int    `db:"arr_cols"`
}

// Store is the matrix table.
type Store struct {
	db      *sqlx.DB
	name    string
	timeout time.Duration
}

// Open connects to the database at dsn and pings it.
func Open(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return New(db, databaseName(dsn), timeout), nil
}

// databaseName returns the database part of a URL dsn, so credentials never
// end up in error messages.
func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Path == "" || u.Path == "/" {
		return "matrices"
	}
	return strings.TrimPrefix(u.Path, "/")
}

// New wraps an open connection. name identifies the database in errors.
// A zero timeout disables per-query deadlines.
func New(db *sqlx.DB, name string, timeout time.Duration) *Store {
	return &Store{db: db, name: name, timeout: timeout}
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// CreateSchema creates the matrices table if it does not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// Put inserts matrix under pk.
func (s *Store) Put(ctx context.Context, pk int, matrix *mat64.Dense) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return put(ctx, s.db, pk, matrix)
}

func put(ctx context.Context, ex sqlx.ExecerContext, pk int, matrix *mat64.Dense) error {
	blob, err := io.EncodeNpy(matrix)
	if err != nil {
		return fmt.Errorf("store: encode matrix %d: %w", pk, err)
	}

	rows, cols := matrix.Dims()
	if _, err := ex.ExecContext(ctx, insertSQL, pk, blob, rows, cols); err != nil {
		return fmt.Errorf("store: insert matrix %d: %w", pk, err)
	}
	return nil
}

// Get returns the matrix stored under pk.
func (s *Store) Get(ctx context.Context, pk int) (*mat64.Dense, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var r row
	err := s.db.GetContext(ctx, &r, selectSQL, pk)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no matrix with pk %d is available in database %s: %w", pk, s.name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: query matrix %d: %w", pk, err)
	}

	matrix, err := io.DecodeNpy(r.Arr)
	if err != nil {
		return nil, fmt.Errorf("store: decode matrix %d: %w", pk, err)
	}
	if rows, cols := matrix.Dims(); rows != r.Rows || cols != r.Cols {
		return nil, fmt.Errorf("store: matrix %d is %dx%d but recorded as %dx%d", pk, rows, cols, r.Rows, r.Cols)
	}
	return matrix, nil
}

// Keys returns all primary keys in ascending order.
func (s *Store) Keys(ctx context.Context) ([]int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var keys []int
	if err := s.db.SelectContext(ctx, &keys, keysSQL); err != nil {
		return nil, fmt.Errorf("store: list keys: %w", err)
	}
	return keys, nil
}

// Populate inserts count matrices with keys 0..count-1 in one transaction.
// next is called once per key.
func (s *Store) Populate(ctx context.Context, count int, next func(pk int) (*mat64.Dense, error)) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for pk := 0; pk < count; pk++ {
		matrix, err := next(pk)
		if err != nil {
			return fmt.Errorf("store: generate matrix %d: %w", pk, err)
		}
		if err := put(ctx, tx, pk, matrix); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
