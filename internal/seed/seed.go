// Package seed holds the events a fresh store starts with.
package seed

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"meeplebar/internal/domain/entities"
)

//go:embed events.toml
var eventsTOML []byte

type file struct {
	Events []entities.Event `toml:"events"`
}

// Events parses the embedded seed events. Counters always start at zero since
// seeds carry no subscriptions.
func Events() ([]entities.Event, error) {
	return Parse(eventsTOML)
}

// Parse decodes a seed document. Events without a status are upcoming.
func Parse(data []byte) ([]entities.Event, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: decode events: %w", err)
	}
	seen := make(map[int]bool, len(f.Events))
	for i := range f.Events {
		e := &f.Events[i]
		if e.ID <= 0 || seen[e.ID] {
			return nil, fmt.Errorf("seed: event %q has missing or duplicate id %d", e.Title, e.ID)
		}
		seen[e.ID] = true
		if e.Status == "" {
			e.Status = entities.EventUpcoming
		}
		if !e.Status.Valid() {
			return nil, fmt.Errorf("seed: event %d has unknown status %q", e.ID, e.Status)
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		e.CurrentAttendees = 0
		e.WaitlistCount = 0
	}
	return f.Events, nil
}
