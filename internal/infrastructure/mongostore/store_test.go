package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeplebar/internal/ports/output"
)

func TestStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	store, err := Connect(ctx, uri, "meeplebar_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.coll.Database().Drop(context.Background())
		_ = store.Close(context.Background())
	})

	_, err = store.Get(ctx, "events")
	assert.ErrorIs(t, err, output.ErrKeyNotFound)

	require.NoError(t, store.Put(ctx, "events", []byte(`[]`)))
	require.NoError(t, store.Put(ctx, "events", []byte(`[{"id":3}]`)))

	got, err := store.Get(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":3}]`, string(got))

	unlock, err := store.Lock(ctx)
	require.NoError(t, err)
	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = store.Lock(waitCtx)
	assert.Error(t, err, "the lease is held")

	unlock()
	unlock, err = store.Lock(ctx)
	require.NoError(t, err)
	unlock()
}
