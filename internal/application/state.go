package application

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"meeplebar/internal/domain"
	"meeplebar/internal/domain/entities"
	"meeplebar/internal/ports/output"
)

// Keys under which the two collections are persisted.
const (
	EventsKey        = "events"
	SubscriptionsKey = "event_subscriptions"
)

type collections uint8

const (
	touchEvents collections = 1 << iota
	touchSubscriptions
)

// State holds the in-memory events and subscriptions and writes them back
// through the store after every mutation. It is safe for concurrent use: all
// mutations run under a single writer lock, from the admission decision to the
// final save. When a Locker is configured, every mutation also holds it and
// reloads both collections first, so processes sharing the store serialize too.
type State struct {
	mu            sync.RWMutex
	store         output.KVStore
	locker        output.Locker
	logger        *zap.Logger
	now           func() time.Time
	seed          []entities.Event
	events        []entities.Event
	subscriptions []entities.Subscription
}

type Option func(*State)

func WithLogger(logger *zap.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp subscriptions.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSeed sets the events used when the store holds no event collection yet.
func WithSeed(events []entities.Event) Option {
	return func(s *State) {
		s.seed = events
	}
}

// WithLocker sets the cross-process lock. It defaults to the store itself
// when the store implements output.Locker.
func WithLocker(locker output.Locker) Option {
	return func(s *State) {
		s.locker = locker
	}
}

// NewState loads both collections from store.
func NewState(ctx context.Context, store output.KVStore, opts ...Option) (*State, error) {
	s := &State{
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	if locker, ok := store.(output.Locker); ok {
		s.locker = locker
	}
	for _, opt := range opts {
		opt(s)
	}

	seed, err := cloneEvents(s.seed)
	if err != nil {
		return nil, fmt.Errorf("copy seed events: %w", err)
	}
	s.seed = seed

	if err := s.load(ctx); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	s.logger.Info("state loaded",
		zap.Int("events", len(s.events)),
		zap.Int("subscriptions", len(s.subscriptions)),
		zap.Bool("locked", s.locker != nil),
	)
	return s, nil
}

// load replaces both collections with the stored ones. Nothing changes on error.
func (s *State) load(ctx context.Context) error {
	seed, err := cloneEvents(s.seed)
	if err != nil {
		return fmt.Errorf("copy seed events: %w", err)
	}

	var (
		events []entities.Event
		subs   []entities.Subscription
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = output.Load(gctx, s.store, EventsKey, seed)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = output.Load(gctx, s.store, SubscriptionsKey, []entities.Subscription{})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.events = events
	s.subscriptions = subs
	return nil
}

func (s *State) opLogger(operation string, fields ...zap.Field) *zap.Logger {
	base := []zap.Field{
		zap.String("operation", operation),
		zap.String("op_id", uuid.NewString()),
	}
	return s.logger.With(append(base, fields...)...)
}

type snapshot struct {
	events        []entities.Event
	subscriptions []entities.Subscription
}

// mutate runs fn under the writer lock, and under the store lock on the freshly
// loaded collections when there is one. It persists the collections fn reports
// as touched. Any failure restores the pre-mutation state.
func (s *State) mutate(ctx context.Context, log *zap.Logger, fn func() (collections, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx)
		if err != nil {
			log.Error("lock store", zap.Error(err))
			return fmt.Errorf("%w: lock: %w", domain.ErrPersistence, err)
		}
		defer unlock()
		if err := s.load(ctx); err != nil {
			log.Error("reload state", zap.Error(err))
			return fmt.Errorf("%w: reload: %w", domain.ErrPersistence, err)
		}
	}

	snap, err := s.snapshot()
	if err != nil {
		return fmt.Errorf("snapshot state: %w", err)
	}

	touched, err := fn()
	if err != nil {
		s.restore(snap)
		log.Debug("operation rejected", zap.String("code", domain.Code(err)), zap.Error(err))
		return err
	}

	if err := s.persist(ctx, log, touched, snap); err != nil {
		log.Error("operation rolled back", zap.String("code", domain.Code(err)), zap.Error(err))
		return err
	}
	return nil
}

func (s *State) persist(ctx context.Context, log *zap.Logger, touched collections, snap snapshot) error {
	var written collections
	if touched&touchEvents != 0 {
		if err := output.Save(ctx, s.store, EventsKey, s.events); err != nil {
			return s.rollback(ctx, log, snap, written, err)
		}
		written |= touchEvents
	}
	if touched&touchSubscriptions != 0 {
		if err := output.Save(ctx, s.store, SubscriptionsKey, s.subscriptions); err != nil {
			return s.rollback(ctx, log, snap, written, err)
		}
	}
	return nil
}

// rollback restores snap in memory and rewrites any collection that already
// reached the store, so memory and storage agree on the pre-mutation state.
func (s *State) rollback(ctx context.Context, log *zap.Logger, snap snapshot, written collections, cause error) error {
	s.restore(snap)
	if written&touchEvents != 0 {
		if err := output.Save(ctx, s.store, EventsKey, s.events); err != nil {
			log.Error("restore persisted events", zap.Error(err))
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, cause)
}

func (s *State) snapshot() (snapshot, error) {
	events, err := cloneEvents(s.events)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{
		events:        events,
		subscriptions: slices.Clone(s.subscriptions),
	}, nil
}

func (s *State) restore(snap snapshot) {
	s.events = snap.events
	s.subscriptions = snap.subscriptions
}

func cloneEvents(events []entities.Event) ([]entities.Event, error) {
	out := make([]entities.Event, 0, len(events))
	if len(events) == 0 {
		return out, nil
	}
	if err := copier.CopyWithOption(&out, &events, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneEvent(e *entities.Event) *entities.Event {
	out := *e
	out.Tags = slices.Clone(e.Tags)
	return &out
}

// eventIndex returns the position of the event with id, or -1.
func (s *State) eventIndex(id int) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

// activeSubscriptionIndex returns the position of the non-cancelled
// subscription for (eventID, userID), or -1.
func (s *State) activeSubscriptionIndex(eventID int, userID string) int {
	for i := range s.subscriptions {
		sub := &s.subscriptions[i]
		if sub.EventID == eventID && sub.UserID == userID && sub.Active() {
			return i
		}
	}
	return -1
}

func (s *State) nextEventID() int {
	maxID := 0
	for i := range s.events {
		maxID = max(maxID, s.events[i].ID)
	}
	return maxID + 1
}

func (s *State) nextSubscriptionID() int {
	maxID := 0
	for i := range s.subscriptions {
		maxID = max(maxID, s.subscriptions[i].ID)
	}
	return maxID + 1
}

// subscriptionsWhere returns copies of the subscriptions matching keep, in
// storage (id) order. Callers must hold at least the read lock.
func (s *State) subscriptionsWhere(keep func(*entities.Subscription) bool) []entities.Subscription {
	out := []entities.Subscription{}
	for i := range s.subscriptions {
		if keep(&s.subscriptions[i]) {
			out = append(out, s.subscriptions[i])
		}
	}
	return out
}
