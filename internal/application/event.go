package application

import (
	"context"
	"slices"
	"sort"

	"go.uber.org/zap"

	"meeplebar/internal/domain"
	"meeplebar/internal/domain/entities"
	"meeplebar/internal/ports/input"
)

var _ input.EventUseCase = (*EventService)(nil)

type EventService struct {
	state *State
}

func NewEventService(state *State) *EventService {
	return &EventService{state: state}
}

func (s *EventService) CreateEvent(ctx context.Context, draft input.EventDraft) (*entities.Event, error) {
	log := s.state.opLogger("create_event", zap.String("title", draft.Title))
	var created *entities.Event
	err := s.state.mutate(ctx, log, func() (collections, error) {
		event := entities.Event{
			ID:          s.state.nextEventID(),
			Title:       draft.Title,
			Description: draft.Description,
			Date:        draft.Date,
			Time:        draft.Time,
			Location:    draft.Location,
			Tags:        slices.Clone(draft.Tags),
			Type:        draft.Type,
			Capacity:    max(draft.Capacity, 0),
			Status:      draft.Status,
		}
		if event.Tags == nil {
			event.Tags = []string{}
		}
		if event.Status == "" {
			event.Status = entities.EventUpcoming
		}
		s.state.events = append(s.state.events, event)
		created = cloneEvent(&event)
		return touchEvents, nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("event created", zap.Int("event_id", created.ID), zap.Int("capacity", created.Capacity))
	return created, nil
}

// UpdateEvent merges the non-nil fields of patch into the event. Counter
// overrides are applied as given; use Recount to reconcile them.
func (s *EventService) UpdateEvent(ctx context.Context, id int, patch input.EventPatch) (*entities.Event, error) {
	log := s.state.opLogger("update_event", zap.Int("event_id", id))
	var updated *entities.Event
	err := s.state.mutate(ctx, log, func() (collections, error) {
		i := s.state.eventIndex(id)
		if i < 0 {
			return 0, domain.ErrEventNotFound
		}
		event := &s.state.events[i]
		applyPatch(event, patch)
		updated = cloneEvent(event)
		return touchEvents, nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("event updated")
	return updated, nil
}

func applyPatch(event *entities.Event, patch input.EventPatch) {
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Date != nil {
		event.Date = *patch.Date
	}
	if patch.Time != nil {
		event.Time = *patch.Time
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.Tags != nil {
		event.Tags = slices.Clone(*patch.Tags)
	}
	if patch.Type != nil {
		event.Type = *patch.Type
	}
	if patch.Capacity != nil {
		event.Capacity = max(*patch.Capacity, 0)
	}
	if patch.CurrentAttendees != nil {
		event.CurrentAttendees = *patch.CurrentAttendees
	}
	if patch.WaitlistCount != nil {
		event.WaitlistCount = *patch.WaitlistCount
	}
	if patch.Status != nil {
		event.Status = *patch.Status
	}
}

// DeleteEvent removes the event and every subscription referencing it.
func (s *EventService) DeleteEvent(ctx context.Context, id int) error {
	log := s.state.opLogger("delete_event", zap.Int("event_id", id))
	removed := 0
	err := s.state.mutate(ctx, log, func() (collections, error) {
		i := s.state.eventIndex(id)
		if i < 0 {
			return 0, domain.ErrEventNotFound
		}
		s.state.events = slices.Delete(slices.Clone(s.state.events), i, i+1)
		kept := s.state.subscriptionsWhere(func(sub *entities.Subscription) bool {
			return sub.EventID != id
		})
		removed = len(s.state.subscriptions) - len(kept)
		s.state.subscriptions = kept
		return touchEvents | touchSubscriptions, nil
	})
	if err != nil {
		return err
	}
	log.Info("event deleted", zap.Int("subscriptions_removed", removed))
	return nil
}

// Recount recomputes the event counters from the subscription states. It is
// only run on explicit request.
func (s *EventService) Recount(ctx context.Context, id int) (*entities.Event, error) {
	log := s.state.opLogger("recount_event", zap.Int("event_id", id))
	var recounted *entities.Event
	err := s.state.mutate(ctx, log, func() (collections, error) {
		i := s.state.eventIndex(id)
		if i < 0 {
			return 0, domain.ErrEventNotFound
		}
		event := &s.state.events[i]
		confirmed, waitlist := 0, 0
		for j := range s.state.subscriptions {
			sub := &s.state.subscriptions[j]
			if sub.EventID != id {
				continue
			}
			switch sub.Status {
			case entities.StatusConfirmed:
				confirmed++
			case entities.StatusWaitlist:
				waitlist++
			}
		}
		event.CurrentAttendees = confirmed
		event.WaitlistCount = waitlist
		recounted = cloneEvent(event)
		return touchEvents, nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("event recounted",
		zap.Int("current_attendees", recounted.CurrentAttendees),
		zap.Int("waitlist_count", recounted.WaitlistCount),
	)
	return recounted, nil
}

func (s *EventService) GetEvent(_ context.Context, id int) (*entities.Event, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	i := s.state.eventIndex(id)
	if i < 0 {
		return nil, domain.ErrEventNotFound
	}
	return cloneEvent(&s.state.events[i]), nil
}

// ListEvents returns every event ordered by id.
func (s *EventService) ListEvents(_ context.Context) ([]entities.Event, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	out := make([]entities.Event, 0, len(s.state.events))
	for i := range s.state.events {
		out = append(out, *cloneEvent(&s.state.events[i]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Upcoming returns upcoming events sorted by date and time. A positive limit
// truncates the result.
func (s *EventService) Upcoming(_ context.Context, limit int) ([]entities.Event, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	out := []entities.Event{}
	for i := range s.state.events {
		if s.state.events[i].Status == entities.EventUpcoming {
			out = append(out, *cloneEvent(&s.state.events[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := out[i].SortKey(), out[j].SortKey()
		if ki == kj {
			return out[i].ID < out[j].ID
		}
		return ki < kj
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
