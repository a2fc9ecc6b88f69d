package input

import (
	"context"

	"meeplebar/internal/domain/entities"
)

// EventDraft carries the fields of a new event. Zero values get defaults.
type EventDraft struct {
	Title       string
	Description string
	Date        string
	Time        string
	Location    string
	Tags        []string
	Type        string
	Capacity    int
	Status      entities.EventStatus
}

// EventPatch is a field-level update; nil fields are left untouched.
// The counter fields exist for admin overrides and are not reconciled.
type EventPatch struct {
	Title            *string
	Description      *string
	Date             *string
	Time             *string
	Location         *string
	Tags             *[]string
	Type             *string
	Capacity         *int
	CurrentAttendees *int
	WaitlistCount    *int
	Status           *entities.EventStatus
}

type EventUseCase interface {
	CreateEvent(ctx context.Context, draft EventDraft) (*entities.Event, error)
	UpdateEvent(ctx context.Context, id int, patch EventPatch) (*entities.Event, error)
	DeleteEvent(ctx context.Context, id int) error
	GetEvent(ctx context.Context, id int) (*entities.Event, error)
	ListEvents(ctx context.Context) ([]entities.Event, error)
	Upcoming(ctx context.Context, limit int) ([]entities.Event, error)
	Recount(ctx context.Context, id int) (*entities.Event, error)
}
