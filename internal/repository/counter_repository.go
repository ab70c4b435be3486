package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/klausurgen/internal/allocator"
)

// CounterRepository is the PostgreSQL-backed KaSuSId allocator used by the server.
type CounterRepository struct {
	pool *pgxpool.Pool
	mu   sync.Mutex
}

var _ allocator.Allocator = (*CounterRepository)(nil)

// NewCounterRepository creates a new CounterRepository.
func NewCounterRepository(pool *pgxpool.Pool) *CounterRepository {
	return &CounterRepository{pool: pool}
}

// Next allocates the next KaSuSId. The first call ever returns allocator.Start+1.
func (r *CounterRepository) Next(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.next(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", allocator.ErrStorageUnavailable, err)
	}
	return id, nil
}

func (r *CounterRepository) next(ctx context.Context) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO kasusid_counter (id, last_value) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`,
		allocator.Start,
	); err != nil {
		return 0, err
	}

	var current int64
	if err := tx.QueryRow(ctx,
		`SELECT last_value FROM kasusid_counter WHERE id = 1 FOR UPDATE`,
	).Scan(&current); err != nil {
		return 0, err
	}

	next := current + 1
	if _, err := tx.Exec(ctx,
		`UPDATE kasusid_counter SET last_value = $1, updated_at = NOW() WHERE id = 1`, next,
	); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return next, nil
}
