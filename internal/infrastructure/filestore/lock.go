package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"meeplebar/internal/ports/output"
)

const lockRetry = 20 * time.Millisecond

var _ output.Locker = (*FileLock)(nil)

// FileLock is an advisory lock on a file, shared by every process on the
// host that opens the same path. The OS drops it when the holder exits.
type FileLock struct {
	f *flock.Flock
}

func NewFileLock(path string) *FileLock {
	return &FileLock{f: flock.New(path)}
}

func (l *FileLock) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.f.Path()), 0o755); err != nil {
		return nil, fmt.Errorf("filestore: lock dir: %w", err)
	}
	ok, err := l.f.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("filestore: lock %s: %w", l.f.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("filestore: lock %s: not acquired", l.f.Path())
	}
	return func() { _ = l.f.Unlock() }, nil
}
