// ABOUTME: Webhook commands: add, list, remove, enable, disable, and test
// ABOUTME: Test sends a sample event through the same retrying dispatcher used for real events
package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/models"
)

// NewWebhookCmd creates the webhook command group
func NewWebhookCmd() *cobra.Command {
	known := make([]string, 0, len(models.KnownEvents))
	for _, e := range models.KnownEvents {
		known = append(known, string(e))
	}

	cmd := &cobra.Command{
		Use:     "webhook",
		Aliases: []string{"webhooks"},
		Short:   "Manage outbound event webhooks",
		Long: `Register HTTP endpoints that receive dashboard events as JSON POSTs.

Events: ` + strings.Join(known, ", ") + `

Failed deliveries are retried on 429 and 5xx responses with
exponential backoff.`,
	}

	cmd.AddCommand(newWebhookAddCmd())
	cmd.AddCommand(newWebhookListCmd())
	cmd.AddCommand(newWebhookRemoveCmd())
	cmd.AddCommand(newWebhookToggleCmd("enable", true))
	cmd.AddCommand(newWebhookToggleCmd("disable", false))
	cmd.AddCommand(newWebhookTestCmd())

	return cmd
}

func newWebhookAddCmd() *cobra.Command {
	var events []string

	cmd := &cobra.Command{
		Use:     "add <name> <url>",
		Short:   "Register a webhook",
		Example: `  esgos webhook add slack https://hooks.example.com/esg --event supplier.assessed --event asset.retired`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := models.ParseEvents(events)
			if err != nil {
				return err
			}
			hook, err := models.NewWebhook(args[0], args[1], parsed)
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateWebhook(hook); err != nil {
				return fmt.Errorf("creating webhook: %w", err)
			}
			return render(cmd, hook, func(w io.Writer) {
				fmt.Fprintf(w, "Added webhook %s (%s)\n", hook.Name, hook.ID)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&events, "event", "e", nil, "Event to subscribe to (repeatable or comma-separated)")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

func newWebhookListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List webhooks and their last delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hooks, err := store.ListWebhooks()
			if err != nil {
				return fmt.Errorf("listing webhooks: %w", err)
			}
			if len(hooks) == 0 && outputFormat == "auto" {
				info(cmd, "No webhooks registered")
				return nil
			}

			return render(cmd, hooks, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "NAME\tURL\tEVENTS\tACTIVE\tLAST\tID\n")
				for _, h := range hooks {
					last := "-"
					if !h.LastDeliveredAt.IsZero() {
						last = fmt.Sprintf("%d %s", h.LastStatus, formatTime(h.LastDeliveredAt))
					}
					events := make([]string, len(h.Events))
					for i, e := range h.Events {
						events[i] = string(e)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
						h.Name, truncate(h.URL, 40), strings.Join(events, ","), h.Active, last, h.ID)
				}
				_ = tw.Flush()
			})
		},
	}
}

func newWebhookRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a webhook",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteWebhook(args[0]); err != nil {
				return fmt.Errorf("removing webhook: %w", err)
			}
			info(cmd, "Removed webhook %s", args[0])
			return nil
		},
	}
}

func newWebhookToggleCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hook, err := store.SetWebhookActive(args[0], active)
			if err != nil {
				return fmt.Errorf("updating webhook: %w", err)
			}
			info(cmd, "Webhook %s %sd", hook.ID, use)
			return nil
		},
	}
}

func newWebhookTestCmd() *cobra.Command {
	var event string

	cmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Send a sample event to a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hook, err := store.GetWebhook(args[0])
			if err != nil {
				return fmt.Errorf("getting webhook: %w", err)
			}

			ev := models.Event(event)
			if ev == "" && len(hook.Events) > 0 {
				ev = hook.Events[0]
			}
			if !ev.Known() {
				return fmt.Errorf("%w: unknown event %q", models.ErrInvalidWebhook, event)
			}

			payload := map[string]any{"test": true, "message": "esgos webhook test"}
			result, err := newDispatcher(store).Deliver(cmd.Context(), hook, ev, payload)
			if renderErr := render(cmd, result, func(w io.Writer) {
				if result.OK() {
					fmt.Fprintf(w, "Delivered %s to %s: HTTP %d after %d attempt(s)\n", ev, hook.Name, result.Status, result.Attempts)
				}
			}); renderErr != nil {
				return renderErr
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&event, "event", "e", "", "Event to send (default: the hook's first event)")

	return cmd
}
