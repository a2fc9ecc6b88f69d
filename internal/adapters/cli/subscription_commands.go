package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"meeplebar/internal/domain"
	"meeplebar/internal/domain/entities"
)

func (h *Handler) subscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <event-id> <user>",
		Short: "Subscribe a user to an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eventID, err := parseID(args[0])
			if err != nil {
				return err
			}
			user := args[1]

			event, err := h.events.GetEvent(ctx, eventID)
			if err != nil {
				return err
			}
			if !event.AcceptsSubscriptions() {
				h.say("subscription.closed", map[string]any{"Title": event.Title, "Status": event.Status})
				return nil
			}

			existing, err := h.subscriptions.GetSubscription(ctx, eventID, user)
			if err != nil && !domain.IsNotFound(err) {
				return err
			}
			if existing != nil {
				h.say("subscription.existing", map[string]any{"User": user, "Title": event.Title, "Status": existing.Status})
				return nil
			}

			sub, err := h.subscriptions.Subscribe(ctx, eventID, user)
			if err != nil {
				return err
			}
			if sub.Status == entities.StatusWaitlist {
				position, err := h.subscriptions.WaitlistPosition(ctx, eventID, user)
				if err != nil {
					return err
				}
				h.say("subscription.waitlist", map[string]any{"User": user, "Title": event.Title, "Position": position})
				return nil
			}
			updated, err := h.events.GetEvent(ctx, eventID)
			if err != nil {
				return err
			}
			h.say("subscription.confirmed", map[string]any{
				"User":      user,
				"Title":     updated.Title,
				"Attendees": updated.CurrentAttendees,
				"Capacity":  updated.Capacity,
			})
			return nil
		},
	}
}

func (h *Handler) unsubscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <event-id> <user>",
		Short: "Cancel a user's subscription and promote the waitlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eventID, err := parseID(args[0])
			if err != nil {
				return err
			}
			user := args[1]

			result, err := h.subscriptions.Unsubscribe(ctx, eventID, user)
			if err != nil {
				return err
			}
			if result.Cancelled == nil {
				h.say("unsubscribe.noop", map[string]any{"User": user, "EventID": eventID})
				return nil
			}
			title := fmt.Sprintf("#%d", eventID)
			if event, err := h.events.GetEvent(ctx, eventID); err == nil {
				title = event.Title
			}
			h.say("unsubscribe.done", map[string]any{"User": user, "Title": title})
			if result.Promoted != nil {
				h.say("unsubscribe.promoted", map[string]any{"User": result.Promoted.UserID, "Title": title})
			}
			return nil
		},
	}
}

func (h *Handler) writeSubscriptions(subs []entities.Subscription) error {
	tw := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tSTATUS\tSUBSCRIBED\tUPDATED")
	for _, sub := range subs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", sub.ID, sub.EventID, sub.Status,
			sub.SubscribedAt.Format("2006-01-02 15:04"), sub.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (h *Handler) subscriptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subscriptions <user>",
		Short: "List a user's active subscriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := h.subscriptions.ListByUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return h.writeSubscriptions(subs)
		},
	}
}

func (h *Handler) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <user>",
		Short: "List every subscription of a user, cancelled ones included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := h.subscriptions.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return h.writeSubscriptions(subs)
		},
	}
}

func (h *Handler) waitlistCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "waitlist <event-id>",
		Short: "Show an event's waitlist in promotion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseID(args[0])
			if err != nil {
				return err
			}
			waitlist, err := h.subscriptions.Waitlist(cmd.Context(), eventID)
			if err != nil {
				return err
			}
			for i, sub := range waitlist {
				fmt.Fprintf(h.out, "%d. %s (%s)\n", i+1, sub.UserID, sub.SubscribedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
