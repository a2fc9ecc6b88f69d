package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"meeplebar/internal/config"
	"meeplebar/internal/infrastructure/database"
	"meeplebar/internal/infrastructure/filestore"
	"meeplebar/internal/infrastructure/memory"
	"meeplebar/internal/infrastructure/mongostore"
	"meeplebar/internal/infrastructure/s3store"
	"meeplebar/internal/ports/output"
)

type lockedStore struct {
	output.KVStore
	output.Locker
}

// openStore builds the persistence adapter selected by cfg. The returned
// close function releases its connections.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (output.KVStore, func(), error) {
	noop := func() {}
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewStore(), noop, nil
	case config.DriverFile:
		store, err := filestore.Open(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case config.DriverPostgres:
		if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return nil, nil, err
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return database.NewKVRepository(pool), pool.Close, nil
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		}, nil
	case config.DriverS3:
		store, err := s3store.New(cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, nil, err
		}
		// S3 has no lock of its own; writers on this host share a lock file.
		return lockedStore{
			KVStore: store,
			Locker:  filestore.NewFileLock(filepath.Join(cfg.DataDir, "s3.lock")),
		}, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
