// ABOUTME: Collectible card commands: list the collection and draw new cards
// ABOUTME: Drawing unlocks a weighted-random card and fires card.unlocked webhooks
package commands

import (
	"fmt"
	"io"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/models"
)

// drawIntn is the randomness behind card draws
var drawIntn = rand.IntN

// NewCardsCmd creates the cards command group
func NewCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "Collect sustainability cards",
		Long: `Unlock collectible cards for sustainability milestones. Rarer
cards are harder to draw.`,
	}

	cmd.AddCommand(newCardsListCmd())
	cmd.AddCommand(newCardsDrawCmd())

	return cmd
}

func newCardsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unlocked cards, rarest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cards, err := store.ListCards()
			if err != nil {
				return fmt.Errorf("listing cards: %w", err)
			}
			if len(cards) == 0 && outputFormat == "auto" {
				info(cmd, "No cards yet. Try 'esgos cards draw'")
				return nil
			}

			return render(cmd, cards, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "NAME\tRARITY\tCATEGORY\tUNLOCKED\n")
				for _, c := range cards {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Rarity, c.Category, formatTime(c.UnlockedAt))
				}
				_ = tw.Flush()
			})
		},
	}
}

func newCardsDrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draw",
		Short: "Draw and unlock a card",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			card := models.DrawCard(drawIntn)
			if err := store.GrantCard(&card); err != nil {
				return fmt.Errorf("saving card: %w", err)
			}

			if err := render(cmd, card, func(w io.Writer) {
				fmt.Fprintf(w, "Unlocked %s card: %s (%s)\n", card.Rarity, card.Name, card.Category)
			}); err != nil {
				return err
			}
			notify(cmd, store, models.EventCardUnlocked, card)
			return nil
		},
	}
}
