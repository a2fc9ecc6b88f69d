package domain

import "errors"

// Domain errors.
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPersistence          = errors.New("persistence failure")
)

// Code maps a domain error to a stable code used for logs and translated messages.
// It returns "" for nil and "unexpected" for errors outside the domain taxonomy.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, ErrSubscriptionNotFound):
		return "subscription_not_found"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	}
	return "unexpected"
}

// IsNotFound reports whether err belongs to the NotFound kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrSubscriptionNotFound)
}
