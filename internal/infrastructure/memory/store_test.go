package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeplebar/internal/ports/output"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, output.ErrKeyNotFound)

	value := []byte(`[1]`)
	require.NoError(t, s.Put(ctx, "k", value))
	value[0] = 'x'
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got, "stored value is isolated from the caller")
	assert.Equal(t, 1, s.Puts())

	boom := errors.New("boom")
	s.FailPut("k", boom)
	assert.ErrorIs(t, s.Put(ctx, "k", []byte(`[2]`)), boom)
	s.FailPut("k", nil)
	require.NoError(t, s.Put(ctx, "k", []byte(`[2]`)))
	assert.Equal(t, 2, s.Puts())
}

func TestStore_Lock(t *testing.T) {
	s := NewStore()
	unlock, err := s.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Lock(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	unlock()
	unlock, err = s.Lock(context.Background())
	require.NoError(t, err)
	unlock()
}
