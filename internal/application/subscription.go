package application

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"meeplebar/internal/domain"
	"meeplebar/internal/domain/entities"
	"meeplebar/internal/ports/input"
)

var _ input.SubscriptionUseCase = (*SubscriptionService)(nil)

type SubscriptionService struct {
	state *State
}

func NewSubscriptionService(state *State) *SubscriptionService {
	return &SubscriptionService{state: state}
}

// Subscribe admits userID to the event, or puts them on the waitlist when the
// event is full. An existing active subscription is returned unchanged.
func (s *SubscriptionService) Subscribe(ctx context.Context, eventID int, userID string) (*entities.Subscription, error) {
	log := s.state.opLogger("subscribe", zap.Int("event_id", eventID), zap.String("user_id", userID))
	var (
		result   *entities.Subscription
		existing bool
	)
	err := s.state.mutate(ctx, log, func() (collections, error) {
		ei := s.state.eventIndex(eventID)
		if ei < 0 {
			return 0, domain.ErrEventNotFound
		}
		if si := s.state.activeSubscriptionIndex(eventID, userID); si >= 0 {
			sub := s.state.subscriptions[si]
			result, existing = &sub, true
			return 0, nil
		}

		event := &s.state.events[ei]
		now := s.state.now()
		sub := entities.Subscription{
			ID:           s.state.nextSubscriptionID(),
			EventID:      eventID,
			UserID:       userID,
			SubscribedAt: now,
			UpdatedAt:    now,
		}
		if event.IsFull() {
			sub.Status = entities.StatusWaitlist
			event.WaitlistCount++
		} else {
			sub.Status = entities.StatusConfirmed
			event.CurrentAttendees++
		}
		s.state.subscriptions = append(s.state.subscriptions, sub)
		result = &sub
		return touchEvents | touchSubscriptions, nil
	})
	if err != nil {
		return nil, err
	}
	if existing {
		log.Debug("already subscribed", zap.Int("subscription_id", result.ID))
	} else {
		log.Info("subscribed", zap.Int("subscription_id", result.ID), zap.String("status", string(result.Status)))
	}
	return result, nil
}

// Unsubscribe cancels the active subscription of userID. Freeing a confirmed
// seat promotes the longest-waiting subscriber. Without an active subscription
// it does nothing and returns a zero result.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, eventID int, userID string) (input.UnsubscribeResult, error) {
	log := s.state.opLogger("unsubscribe", zap.Int("event_id", eventID), zap.String("user_id", userID))
	var result input.UnsubscribeResult
	err := s.state.mutate(ctx, log, func() (collections, error) {
		si := s.state.activeSubscriptionIndex(eventID, userID)
		if si < 0 {
			return 0, nil
		}
		now := s.state.now()
		sub := &s.state.subscriptions[si]
		prior := sub.Status
		sub.Status = entities.StatusCancelled
		sub.UpdatedAt = now
		cancelled := *sub
		result.Cancelled = &cancelled

		ei := s.state.eventIndex(eventID)
		if ei < 0 {
			return touchSubscriptions, nil
		}
		event := &s.state.events[ei]
		switch prior {
		case entities.StatusConfirmed:
			event.CurrentAttendees = max(event.CurrentAttendees-1, 0)
			result.Promoted = s.state.promote(event, now)
		case entities.StatusWaitlist:
			event.WaitlistCount = max(event.WaitlistCount-1, 0)
		}
		return touchEvents | touchSubscriptions, nil
	})
	if err != nil {
		return input.UnsubscribeResult{}, err
	}
	switch {
	case result.Cancelled == nil:
		log.Debug("no active subscription")
	case result.Promoted != nil:
		log.Info("unsubscribed",
			zap.Int("subscription_id", result.Cancelled.ID),
			zap.Int("promoted_subscription_id", result.Promoted.ID),
			zap.String("promoted_user_id", result.Promoted.UserID),
		)
	default:
		log.Info("unsubscribed", zap.Int("subscription_id", result.Cancelled.ID))
	}
	return result, nil
}

// promote confirms the longest-waiting subscriber of event. It runs once per
// freed confirmed seat and does not look at capacity, so admin counter
// overrides carry through unchanged. Callers hold the writer lock.
func (s *State) promote(event *entities.Event, now time.Time) *entities.Subscription {
	head := -1
	for i := range s.subscriptions {
		sub := &s.subscriptions[i]
		if sub.EventID != event.ID || sub.Status != entities.StatusWaitlist {
			continue
		}
		if head < 0 || sub.WaitsBefore(&s.subscriptions[head]) {
			head = i
		}
	}
	if head < 0 {
		return nil
	}
	sub := &s.subscriptions[head]
	sub.Status = entities.StatusConfirmed
	sub.UpdatedAt = now
	event.CurrentAttendees++
	event.WaitlistCount = max(event.WaitlistCount-1, 0)
	promoted := *sub
	return &promoted
}

func (s *SubscriptionService) GetSubscription(_ context.Context, eventID int, userID string) (*entities.Subscription, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	si := s.state.activeSubscriptionIndex(eventID, userID)
	if si < 0 {
		return nil, domain.ErrSubscriptionNotFound
	}
	sub := s.state.subscriptions[si]
	return &sub, nil
}

// ListByUser returns the active subscriptions of userID across all events.
func (s *SubscriptionService) ListByUser(_ context.Context, userID string) ([]entities.Subscription, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.subscriptionsWhere(func(sub *entities.Subscription) bool {
		return sub.UserID == userID && sub.Active()
	}), nil
}

// History returns every subscription of userID, cancelled ones included.
func (s *SubscriptionService) History(_ context.Context, userID string) ([]entities.Subscription, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.subscriptionsWhere(func(sub *entities.Subscription) bool {
		return sub.UserID == userID
	}), nil
}

func (s *SubscriptionService) Confirmed(_ context.Context, eventID int) ([]entities.Subscription, error) {
	return s.byStatus(eventID, entities.StatusConfirmed)
}

// Waitlist returns the waitlisted subscriptions of the event in promotion order.
func (s *SubscriptionService) Waitlist(_ context.Context, eventID int) ([]entities.Subscription, error) {
	return s.byStatus(eventID, entities.StatusWaitlist)
}

// WaitlistPosition returns the 1-based promotion rank of userID.
func (s *SubscriptionService) WaitlistPosition(ctx context.Context, eventID int, userID string) (int, error) {
	waitlist, err := s.Waitlist(ctx, eventID)
	if err != nil {
		return 0, err
	}
	for i := range waitlist {
		if waitlist[i].UserID == userID {
			return i + 1, nil
		}
	}
	return 0, domain.ErrSubscriptionNotFound
}

func (s *SubscriptionService) byStatus(eventID int, status entities.SubscriptionStatus) ([]entities.Subscription, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	if s.state.eventIndex(eventID) < 0 {
		return nil, domain.ErrEventNotFound
	}
	out := s.state.subscriptionsWhere(func(sub *entities.Subscription) bool {
		return sub.EventID == eventID && sub.Status == status
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].WaitsBefore(&out[j]) })
	return out, nil
}
