// Package catalog is the durable store for the exercise catalog and user
// state: languages, chapters, exercises, test cases, fixture metadata,
// users, progress and achievements. Queries are hand-written against pgx
// rather than generated, since this module has no code-generation step.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool. All exported methods are safe for
// concurrent use; the pool itself manages connection-level concurrency.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres using connString and verifies connectivity
// with a retried ping before returning, tolerating the database still
// starting up in the same compose/k8s rollout as this service.
func NewStore(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	retrier := retry.NewRetrier(5, 200*time.Millisecond, 5*time.Second)
	if err := retrier.RunContext(ctx, pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases all pooled connections.
func (s *Store) Close() {
	s.pool.Close()
}

// Healthy reports whether the pool can currently reach Postgres.
func (s *Store) Healthy(ctx context.Context) bool {
	return s.pool.Ping(ctx) == nil
}
