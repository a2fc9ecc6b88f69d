package input

import (
	"context"

	"meeplebar/internal/domain/entities"
)

// UnsubscribeResult describes what an unsubscribe changed. Both fields are nil
// when there was no active subscription to cancel.
type UnsubscribeResult struct {
	Cancelled *entities.Subscription
	Promoted  *entities.Subscription
}

type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, eventID int, userID string) (*entities.Subscription, error)
	Unsubscribe(ctx context.Context, eventID int, userID string) (UnsubscribeResult, error)
	GetSubscription(ctx context.Context, eventID int, userID string) (*entities.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]entities.Subscription, error)
	History(ctx context.Context, userID string) ([]entities.Subscription, error)
	Confirmed(ctx context.Context, eventID int) ([]entities.Subscription, error)
	Waitlist(ctx context.Context, eventID int) ([]entities.Subscription, error)
	WaitlistPosition(ctx context.Context, eventID int, userID string) (int, error)
}
