// Package mongostore persists keyed blobs in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meeplebar/internal/ports/output"
)

const (
	collectionName = "kv_entries"
	lockCollection = "kv_locks"
	stateLockID    = "state"
	lockLease      = 30 * time.Second
	lockRetry      = 50 * time.Millisecond
)

var (
	_ output.KVStore = (*Store)(nil)
	_ output.Locker  = (*Store)(nil)
)

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// lockDocument is a lease: it is free once expiresAt has passed.
type lockDocument struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	locks  *mongo.Collection
}

// Connect dials uri and checks the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	db := client.Database(database)
	return &Store{
		client: client,
		coll:   db.Collection(collectionName),
		locks:  db.Collection(lockCollection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, output.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: find %s: %w", key, err)
	}
	return doc.Value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongostore: replace %s: %w", key, err)
	}
	return nil
}

// Lock takes the state lease. The upsert only matches an expired lease, so
// while another owner holds it the insert fails on the duplicate _id and the
// caller retries.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	owner := uuid.NewString()
	for {
		now := time.Now().UTC()
		lease := lockDocument{ID: stateLockID, Owner: owner, ExpiresAt: now.Add(lockLease)}
		_, err := s.locks.ReplaceOne(ctx,
			bson.M{"_id": stateLockID, "expiresAt": bson.M{"$lt": now}},
			lease,
			options.Replace().SetUpsert(true),
		)
		if err == nil {
			return func() {
				// An undeleted lease expires on its own.
				_, _ = s.locks.DeleteOne(context.Background(), bson.M{"_id": stateLockID, "owner": owner})
			}, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("mongostore: lock: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}
