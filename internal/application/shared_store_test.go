package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeplebar/internal/domain"
	"meeplebar/internal/domain/entities"
	"meeplebar/internal/infrastructure/filestore"
	"meeplebar/internal/infrastructure/memory"
	"meeplebar/internal/ports/input"
	"meeplebar/internal/ports/output"
)

func TestSharedStore_EnginesSeeEachOthersWrites(t *testing.T) {
	ctx := context.Background()
	a := newFixture(t)
	event := a.createEvent(t, 1)
	b := newFixtureWithStore(t, a.store)

	alice := a.subscribe(t, event.ID, "alice")
	assert.Equal(t, entities.StatusConfirmed, alice.Status)

	// b loaded before alice subscribed; it must not admit bob into her seat.
	bob := b.subscribe(t, event.ID, "bob")
	assert.Equal(t, entities.StatusWaitlist, bob.Status)
	assert.Equal(t, 2, bob.ID)

	reloaded := newFixtureWithStore(t, a.store)
	got, err := reloaded.subs.GetSubscription(ctx, event.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusConfirmed, got.Status)
	assertConsistent(t, reloaded)

	// a never saw bob, yet cancelling alice through it promotes him.
	result, err := a.subs.Unsubscribe(ctx, event.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, result.Promoted)
	assert.Equal(t, "bob", result.Promoted.UserID)
	assertConsistent(t, a)
}

func TestSharedStore_EventIDsStayUnique(t *testing.T) {
	ctx := context.Background()
	a := newFixture(t)
	b := newFixtureWithStore(t, a.store)

	first := a.createEvent(t, 2)
	second := b.createEvent(t, 2)
	assert.NotEqual(t, first.ID, second.ID)

	events, err := newFixtureWithStore(t, a.store).events.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

// subscribeStorm runs users subscriptions spread over one engine per store.
func subscribeStorm(t *testing.T, engines []*fixture, eventID, users int) {
	t.Helper()
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f := engines[i%len(engines)]
			_, err := f.subs.Subscribe(context.Background(), eventID, fmt.Sprintf("user-%02d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestSharedStore_ConcurrentEnginesNeverOverbook(t *testing.T) {
	store := memory.NewStore()
	first := newFixtureWithStore(t, store)
	event := first.createEvent(t, 5)

	engines := []*fixture{first}
	for i := 0; i < 3; i++ {
		engines = append(engines, newFixtureWithStore(t, store))
	}
	subscribeStorm(t, engines, event.ID, 24)

	reloaded := newFixtureWithStore(t, store)
	after := reloaded.event(t, event.ID)
	assert.Equal(t, 5, after.CurrentAttendees)
	assert.Equal(t, 19, after.WaitlistCount)
	assertConsistent(t, reloaded)

	ids := map[int]bool{}
	for _, sub := range reloaded.state.subscriptions {
		assert.False(t, ids[sub.ID], "duplicate subscription id %d", sub.ID)
		ids[sub.ID] = true
	}
	assert.Len(t, ids, 24)
}

func newFileEngine(t *testing.T, dir string) *fixture {
	t.Helper()
	store, err := filestore.Open(dir)
	require.NoError(t, err)
	state, err := NewState(context.Background(), store, WithClock(newStepClock().Now))
	require.NoError(t, err)
	return &fixture{
		state:  state,
		events: NewEventService(state),
		subs:   NewSubscriptionService(state),
	}
}

func TestSharedStore_FileStoresInOneDirectory(t *testing.T) {
	dir := t.TempDir()
	first := newFileEngine(t, dir)
	event, err := first.events.CreateEvent(context.Background(), input.EventDraft{Title: "Root", Capacity: 3})
	require.NoError(t, err)

	engines := []*fixture{first, newFileEngine(t, dir), newFileEngine(t, dir)}
	subscribeStorm(t, engines, event.ID, 12)

	reloaded := newFileEngine(t, dir)
	after := reloaded.event(t, event.ID)
	assert.Equal(t, 3, after.CurrentAttendees)
	assert.Equal(t, 9, after.WaitlistCount)
	assertConsistent(t, reloaded)
}

type failingLocker struct{ err error }

func (l failingLocker) Lock(context.Context) (func(), error) { return nil, l.err }

var _ output.Locker = failingLocker{}

func TestMutate_LockFailureWritesNothing(t *testing.T) {
	store := memory.NewStore()
	seed := []entities.Event{{ID: 1, Title: "Seeded", Capacity: 2, Status: entities.EventUpcoming, Tags: []string{}}}
	boom := errors.New("lock timeout")
	f := newFixtureWithStore(t, store, WithSeed(seed), WithLocker(failingLocker{err: boom}))

	_, err := f.subs.Subscribe(context.Background(), 1, "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Puts())
	assert.Equal(t, 0, f.event(t, 1).CurrentAttendees)
}
