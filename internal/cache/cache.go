// Package cache keeps Jacobi results in Redis, keyed by matrix and options.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gonum/matrix/mat64"

	"github.com/KyungWonPark/Diagonalization/internal/io"
	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
)

// RedisCache stores diagonalization results. The reduced matrix is not kept,
// so cached results come back with a nil Reduced.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type entry struct {
	Values     []float64 `json:"values"`
	Vectors    []byte    `json:"vectors"`
	Iterations int       `json:"iterations"`
	OffDiag    float64   `json:"off_diag"`
	Converged  bool      `json:"converged"`
}

// New wraps an existing client. A zero ttl keeps entries forever.
func New(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string, db int, prefix string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", addr, err)
	}
	return New(client, prefix, ttl), nil
}

// Key returns the cache key of matrix pk diagonalized with opts.
func (c *RedisCache) Key(pk int, opts jacobi.Options) string {
	return c.prefix + "eig:" + strconv.Itoa(pk) + ":" +
		strconv.FormatFloat(opts.Tol, 'g', -1, 64) + ":" + strconv.Itoa(opts.MaxIterations)
}

// Load returns the cached result. A miss is (Result{}, false, nil).
func (c *RedisCache) Load(ctx context.Context, pk int, opts jacobi.Options) (jacobi.Result, bool, error) {
	key := c.Key(pk, opts)

	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return jacobi.Result{}, false, nil
	}
	if err != nil {
		return jacobi.Result{}, false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	res, err := decode(payload)
	if err != nil {
		return jacobi.Result{}, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return res, true, nil
}

// Store saves res under the key of pk and opts.
func (c *RedisCache) Store(ctx context.Context, pk int, opts jacobi.Options, res jacobi.Result) error {
	key := c.Key(pk, opts)

	payload, err := encode(res)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func encode(res jacobi.Result) (string, error) {
	e := entry{
		Values:     res.Values,
		Iterations: res.Iterations,
		OffDiag:    res.OffDiag,
		Converged:  res.Converged,
	}
	if res.Vectors != nil {
		if rows, _ := res.Vectors.Dims(); rows > 0 {
			blob, err := io.EncodeNpy(res.Vectors)
			if err != nil {
				return "", err
			}
			e.Vectors = blob
		}
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func decode(payload []byte) (jacobi.Result, error) {
	var e entry
	if err := json.Unmarshal(payload, &e); err != nil {
		return jacobi.Result{}, err
	}

	res := jacobi.Result{
		Values:     e.Values,
		Vectors:    &mat64.Dense{},
		Iterations: e.Iterations,
		OffDiag:    e.OffDiag,
		Converged:  e.Converged,
	}
	if res.Values == nil {
		res.Values = []float64{}
	}
	if len(e.Vectors) > 0 {
		vectors, err := io.DecodeNpy(e.Vectors)
		if err != nil {
			return jacobi.Result{}, err
		}
		res.Vectors = vectors
	}
	return res, nil
}
