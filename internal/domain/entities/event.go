package entities

// Event is a bar event that users can subscribe to.
type Event struct {
	ID               int         `json:"id" toml:"id"`
	Title            string      `json:"title" toml:"title"`
	Description      string      `json:"description" toml:"description"`
	Date             string      `json:"date" toml:"date"` // YYYY-MM-DD
	Time             string      `json:"time" toml:"time"` // HH:MM
	Location         string      `json:"location" toml:"location"`
	Tags             []string    `json:"tags" toml:"tags"`
	Type             string      `json:"type" toml:"type"`
	Capacity         int         `json:"capacity" toml:"capacity"`
	CurrentAttendees int         `json:"currentAttendees" toml:"current_attendees"`
	WaitlistCount    int         `json:"waitlistCount" toml:"waitlist_count"`
	Status           EventStatus `json:"status" toml:"status"`
}

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventFinished  EventStatus = "finished"
	EventCancelled EventStatus = "cancelled"
)

// Valid reports whether s is one of the known event statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventOngoing, EventFinished, EventCancelled:
		return true
	}
	return false
}

// IsFull reports whether admission would put a new subscriber on the waitlist.
func (e *Event) IsFull() bool {
	return e.CurrentAttendees >= e.Capacity
}

func (e *Event) Remaining() int {
	if e.CurrentAttendees >= e.Capacity {
		return 0
	}
	return e.Capacity - e.CurrentAttendees
}

// AcceptsSubscriptions is the status policy callers apply before subscribing.
// The engine itself does not enforce it.
func (e *Event) AcceptsSubscriptions() bool {
	return e.Status != EventFinished && e.Status != EventCancelled
}

// SortKey orders events chronologically by date then time.
func (e *Event) SortKey() string {
	return e.Date + " " + e.Time
}
