package cli

import (
	"github.com/spf13/cobra"
)

// RootCommand builds the meeplebar command tree.
func (h *Handler) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "meeplebar",
		Short:         "Manage bar events, subscriptions and waitlists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&h.locale, "locale", h.locale, "message locale (en, fr)")

	events := &cobra.Command{Use: "events", Short: "Manage events"}
	events.AddCommand(
		h.listEventsCommand(),
		h.upcomingCommand(),
		h.showEventCommand(),
		h.createEventCommand(),
		h.updateEventCommand(),
		h.deleteEventCommand(),
		h.recountCommand(),
	)

	root.AddCommand(
		events,
		h.subscribeCommand(),
		h.unsubscribeCommand(),
		h.subscriptionsCommand(),
		h.historyCommand(),
		h.waitlistCommand(),
	)
	return root
}
