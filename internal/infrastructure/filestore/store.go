// Package filestore persists each key as a JSON file in a directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"meeplebar/internal/ports/output"
)

const lockFile = ".lock"

var (
	_ output.KVStore = (*Store)(nil)
	_ output.Locker  = (*Store)(nil)
)

type Store struct {
	mu   sync.Mutex
	dir  string
	lock *FileLock
}

// Open creates dir when missing and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("filestore: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create %s: %w", dir, err)
	}
	return &Store{dir: dir, lock: NewFileLock(filepath.Join(dir, lockFile))}, nil
}

// Lock takes the directory lock, so processes sharing dir mutate one at a time.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	return s.lock.Lock(ctx)
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("filestore: invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, output.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", key, err)
	}
	return b, nil
}

// Put writes to a temporary file and renames it over the previous value.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("filestore: rename %s: %w", key, err)
	}
	return nil
}
