package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meeplebar/internal/ports/output"
)

// stateLockKey is the session advisory lock held around every mutation.
const stateLockKey int64 = 0x6d65_6570_6c65

var (
	_ output.KVStore = (*KVRepository)(nil)
	_ output.Locker  = (*KVRepository)(nil)
)

// KVRepository implements output.KVStore on the kv_entries table.
type KVRepository struct {
	pool *pgxpool.Pool
}

func NewKVRepository(pool *pgxpool.Pool) *KVRepository {
	return &KVRepository{pool: pool}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, output.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kv entry: %w", err)
	}
	return value, nil
}

func (r *KVRepository) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("put kv entry: %w", err)
	}
	return nil
}

// Lock holds a session-level advisory lock on a dedicated pool connection.
// Postgres releases it if the process dies with the session.
func (r *KVRepository) Lock(ctx context.Context) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, stateLockKey); err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	return func() {
		ctx := context.Background()
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, stateLockKey); err != nil {
			// Closing the session is the only other way to drop the lock.
			_ = conn.Hijack().Close(ctx)
			return
		}
		conn.Release()
	}, nil
}
