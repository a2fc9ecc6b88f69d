package entities

import "time"

// Subscription represents a user's sign-up for an event.
type Subscription struct {
	ID           int                `json:"id"`
	EventID      int                `json:"eventId"`
	UserID       string             `json:"userId"`
	Status       SubscriptionStatus `json:"status"`
	SubscribedAt time.Time          `json:"subscribedAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type SubscriptionStatus string

const (
	StatusConfirmed SubscriptionStatus = "confirmed"
	StatusWaitlist  SubscriptionStatus = "waitlist"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// Active reports whether the subscription still holds a seat or a waitlist spot.
func (s *Subscription) Active() bool {
	return s.Status != StatusCancelled
}

// WaitsBefore reports whether s is ahead of other in the waitlist.
// Ties on SubscribedAt fall back to the lower id.
func (s *Subscription) WaitsBefore(other *Subscription) bool {
	if s.SubscribedAt.Equal(other.SubscribedAt) {
		return s.ID < other.ID
	}
	return s.SubscribedAt.Before(other.SubscribedAt)
}
