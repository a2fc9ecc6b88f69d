// Package cli is the admin command-line adapter over the event use cases.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"meeplebar/internal/ports/input"
	"meeplebar/internal/ports/output"
)

// Handler renders use case results as localized text.
type Handler struct {
	events        input.EventUseCase
	subscriptions input.SubscriptionUseCase
	translator    output.T
	locale        string
	out           io.Writer
}

func NewHandler(
	events input.EventUseCase,
	subscriptions input.SubscriptionUseCase,
	translator output.T,
	locale string,
	out io.Writer,
) *Handler {
	return &Handler{
		events:        events,
		subscriptions: subscriptions,
		translator:    translator,
		locale:        locale,
		out:           out,
	}
}

// Execute runs the command line args and returns the process exit code.
// Failures are printed as translated messages.
func (h *Handler) Execute(ctx context.Context, args []string) int {
	// --locale only applies to this invocation.
	defer func(locale string) { h.locale = locale }(h.locale)

	root := h.RootCommand()
	root.SetArgs(args)
	root.SetOut(h.out)
	root.SetErr(h.out)
	if err := root.ExecuteContext(ctx); err != nil {
		if msg := h.translator.Error(h.locale, err); msg != "" {
			fmt.Fprintln(h.out, msg)
		}
		return 1
	}
	return 0
}

func (h *Handler) say(key string, data map[string]any) {
	fmt.Fprintln(h.out, h.translator.T(h.locale, key, data))
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
