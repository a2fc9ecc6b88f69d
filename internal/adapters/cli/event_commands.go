package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"meeplebar/internal/domain/entities"
	"meeplebar/internal/ports/input"
	"meeplebar/pkg/eventtime"
)

func writeEvents(w io.Writer, events []entities.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tTITLE\tSTATUS\tSEATS\tWAITLIST")
	for _, e := range events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d/%d\t%d\n",
			e.ID, e.Date, e.Time, e.Title, e.Status, e.CurrentAttendees, e.Capacity, e.WaitlistCount)
	}
	return tw.Flush()
}

func (h *Handler) printEvents(events []entities.Event) error {
	if len(events) == 0 {
		h.say("event.empty", nil)
		return nil
	}
	return writeEvents(h.out, events)
}

func (h *Handler) listEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := h.events.ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			return h.printEvents(events)
		},
	}
}

func (h *Handler) upcomingCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List upcoming events in date order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := h.events.Upcoming(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return h.printEvents(events)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events (0 = all)")
	return cmd
}

func (h *Handler) showEventCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show an event with its attendees and waitlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			event, err := h.events.GetEvent(cmd.Context(), id)
			if err != nil {
				return err
			}
			confirmed, err := h.subscriptions.Confirmed(cmd.Context(), id)
			if err != nil {
				return err
			}
			waitlist, err := h.subscriptions.Waitlist(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := writeEvents(h.out, []entities.Event{*event}); err != nil {
				return err
			}
			if when := eventtime.Format(event.Date, event.Time); when != "" {
				fmt.Fprintln(h.out, when)
			}
			if event.Description != "" {
				fmt.Fprintln(h.out, event.Description)
			}
			fmt.Fprintf(h.out, "location: %s  type: %s  tags: %s\n", event.Location, event.Type, strings.Join(event.Tags, ", "))
			fmt.Fprintf(h.out, "seats left: %d\n", event.Remaining())
			fmt.Fprintln(h.out, "confirmed:")
			for _, sub := range confirmed {
				fmt.Fprintf(h.out, "  %s\n", sub.UserID)
			}
			fmt.Fprintln(h.out, "waitlist:")
			for i, sub := range waitlist {
				fmt.Fprintf(h.out, "  %d. %s\n", i+1, sub.UserID)
			}
			return nil
		},
	}
}

type eventFlags struct {
	title, description, date, clock, location, kind, status string
	tags                                                     []string
	capacity, attendees, waitlist                            int
}

func (f *eventFlags) bind(cmd *cobra.Command, admin bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "event title")
	fl.StringVar(&f.description, "description", "", "event description")
	fl.StringVar(&f.date, "date", "", "date (YYYY-MM-DD)")
	fl.StringVar(&f.clock, "time", "", "start time (HH:MM)")
	fl.StringVar(&f.location, "location", "", "location in the bar")
	fl.StringVar(&f.kind, "type", "", "event type")
	fl.StringVar(&f.status, "status", "", "upcoming, ongoing, finished or cancelled")
	fl.StringSliceVar(&f.tags, "tags", nil, "comma separated tags")
	fl.IntVar(&f.capacity, "capacity", 0, "maximum confirmed attendees")
	if admin {
		fl.IntVar(&f.attendees, "attendees", 0, "override the confirmed counter")
		fl.IntVar(&f.waitlist, "waitlist", 0, "override the waitlist counter")
	}
}

func (f *eventFlags) validate() error {
	if err := eventtime.ValidateDate(f.date); err != nil {
		return err
	}
	return eventtime.ValidateTime(f.clock)
}

func parseStatus(raw string) (entities.EventStatus, error) {
	status := entities.EventStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return status, nil
}

func (h *Handler) createEventCommand() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.validate(); err != nil {
				return err
			}
			draft := input.EventDraft{
				Title:       f.title,
				Description: f.description,
				Date:        f.date,
				Time:        f.clock,
				Location:    f.location,
				Tags:        f.tags,
				Type:        f.kind,
				Capacity:    f.capacity,
			}
			if f.status != "" {
				status, err := parseStatus(f.status)
				if err != nil {
					return err
				}
				draft.Status = status
			}
			event, err := h.events.CreateEvent(cmd.Context(), draft)
			if err != nil {
				return err
			}
			h.say("event.saved", map[string]any{"ID": event.ID, "Title": event.Title})
			return nil
		},
	}
	f.bind(cmd, false)
	return cmd
}

func (h *Handler) updateEventCommand() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "update <event-id>",
		Short: "Update the given fields of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			event, err := h.events.UpdateEvent(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			h.say("event.saved", map[string]any{"ID": event.ID, "Title": event.Title})
			return nil
		},
	}
	f.bind(cmd, true)
	return cmd
}

// patch keeps only the flags set on the command line.
func (f *eventFlags) patch(cmd *cobra.Command) (input.EventPatch, error) {
	var p input.EventPatch
	if err := f.validate(); err != nil {
		return p, err
	}
	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = &f.title
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("date") {
		p.Date = &f.date
	}
	if changed("time") {
		p.Time = &f.clock
	}
	if changed("location") {
		p.Location = &f.location
	}
	if changed("type") {
		p.Type = &f.kind
	}
	if changed("tags") {
		p.Tags = &f.tags
	}
	if changed("capacity") {
		p.Capacity = &f.capacity
	}
	if changed("attendees") {
		p.CurrentAttendees = &f.attendees
	}
	if changed("waitlist") {
		p.WaitlistCount = &f.waitlist
	}
	if changed("status") {
		status, err := parseStatus(f.status)
		if err != nil {
			return input.EventPatch{}, err
		}
		p.Status = &status
	}
	return p, nil
}

func (h *Handler) deleteEventCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event and all its subscriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := h.events.DeleteEvent(cmd.Context(), id); err != nil {
				return err
			}
			h.say("event.deleted", map[string]any{"ID": id})
			return nil
		},
	}
}

func (h *Handler) recountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recount <event-id>",
		Short: "Recompute attendee and waitlist counters from subscriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			event, err := h.events.Recount(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeEvents(h.out, []entities.Event{*event})
		},
	}
}
