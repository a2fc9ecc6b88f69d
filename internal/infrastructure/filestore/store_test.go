package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeplebar/internal/ports/output"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	s, err := Open(dir)
	require.NoError(t, err)

	_, err = s.Get(ctx, "events")
	assert.ErrorIs(t, err, output.ErrKeyNotFound)

	require.NoError(t, s.Put(ctx, "events", []byte(`[{"id":1}]`)))
	require.NoError(t, s.Put(ctx, "events", []byte(`[{"id":2}]`)))

	got, err := s.Get(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2}]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files are cleaned up")
	assert.Equal(t, "events.json", entries[0].Name())

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, err = reopened.Get(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2}]`, string(got))
}

func TestStore_RejectsBadKeys(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		assert.Error(t, s.Put(context.Background(), key, []byte("{}")), key)
	}

	_, err = Open("  ")
	assert.Error(t, err)
}

func TestStore_LockIsSharedThroughTheDirectory(t *testing.T) {
	dir := t.TempDir()
	first, err := Open(dir)
	require.NoError(t, err)
	second, err := Open(dir)
	require.NoError(t, err)

	unlock, err := first.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock, err = second.Lock(context.Background())
	require.NoError(t, err)
	unlock()
}

func TestFileLock_CreatesParentDirectory(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "nested", "s3.lock"))
	unlock, err := lock.Lock(context.Background())
	require.NoError(t, err)
	unlock()
}
