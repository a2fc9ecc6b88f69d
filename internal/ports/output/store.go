package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by KVStore.Get when nothing was saved under the key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore persists opaque blobs by key. Each Put replaces the whole value.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Locker guards the stored collections across every process sharing a store.
// Lock blocks until the lock is held or ctx is done; the returned func
// releases it.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// Load decodes the value stored under key, or returns def when the key is absent.
func Load[T any](ctx context.Context, store KVStore, key string, def T) (T, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("load %s: %w", key, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return def, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// Save encodes value and writes it under key.
func Save[T any](ctx context.Context, store KVStore, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
