package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeplebar/internal/domain/entities"
	"meeplebar/internal/infrastructure/memory"
	"meeplebar/internal/ports/input"
)

var referenceTime = time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)

// stepClock advances one second on every call so subscription order is total.
type stepClock struct {
	mu      sync.Mutex
	current time.Time
}

func newStepClock() *stepClock {
	return &stepClock{current: referenceTime}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(time.Second)
	return c.current
}

type fixture struct {
	store  *memory.Store
	state  *State
	events *EventService
	subs   *SubscriptionService
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.NewStore(), opts...)
}

func newFixtureWithStore(t *testing.T, store *memory.Store, opts ...Option) *fixture {
	t.Helper()
	opts = append([]Option{WithClock(newStepClock().Now)}, opts...)
	state, err := NewState(context.Background(), store, opts...)
	require.NoError(t, err)
	return &fixture{
		store:  store,
		state:  state,
		events: NewEventService(state),
		subs:   NewSubscriptionService(state),
	}
}

func (f *fixture) createEvent(t *testing.T, capacity int) *entities.Event {
	t.Helper()
	event, err := f.events.CreateEvent(context.Background(), input.EventDraft{
		Title:    "Catan night",
		Date:     "2026-11-07",
		Time:     "19:00",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return event
}

func (f *fixture) event(t *testing.T, id int) *entities.Event {
	t.Helper()
	event, err := f.events.GetEvent(context.Background(), id)
	require.NoError(t, err)
	return event
}

func (f *fixture) subscribe(t *testing.T, eventID int, user string) *entities.Subscription {
	t.Helper()
	sub, err := f.subs.Subscribe(context.Background(), eventID, user)
	require.NoError(t, err)
	return sub
}

// assertConsistent checks the counter, capacity and one-per-user invariants
// for every event in the state.
func assertConsistent(t *testing.T, f *fixture) {
	t.Helper()
	f.state.mu.RLock()
	defer f.state.mu.RUnlock()
	for _, event := range f.state.events {
		confirmed, waitlist := 0, 0
		active := map[string]int{}
		for _, sub := range f.state.subscriptions {
			if sub.EventID != event.ID {
				continue
			}
			switch sub.Status {
			case entities.StatusConfirmed:
				confirmed++
			case entities.StatusWaitlist:
				waitlist++
			}
			if sub.Active() {
				active[sub.UserID]++
			}
		}
		assert.Equal(t, confirmed, event.CurrentAttendees, "confirmed counter of event %d", event.ID)
		assert.Equal(t, waitlist, event.WaitlistCount, "waitlist counter of event %d", event.ID)
		assert.LessOrEqual(t, event.CurrentAttendees, event.Capacity, "capacity of event %d", event.ID)
		for user, n := range active {
			assert.Equal(t, 1, n, "active subscriptions of %s on event %d", user, event.ID)
		}
	}
}
