// ABOUTME: CLI command for the research hub
// ABOUTME: Generates a structured ESG brief and notifies report webhooks
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/models"
)

// NewResearchCmd creates the research command
func NewResearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "research <topic>",
		Short: "Generate an ESG research brief",
		Long: `Generate a research brief on an ESG topic: a short summary, key
findings, relevant frameworks, and material risks. Webhooks subscribed
to esg.report.generated receive the brief.

Examples:
  esgos research "CSRD double materiality"
  esgos research TNFD --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResearch,
	}
}

func runResearch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	assistant, err := newAssistant(cmd, store, isTerminal())
	if err != nil {
		return err
	}

	brief, err := assistant.Research(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	if err := render(cmd, brief, func(w io.Writer) { printBrief(w, brief) }); err != nil {
		return err
	}
	notify(cmd, store, models.EventReportGenerated, brief)
	return nil
}

func printBrief(w io.Writer, brief *models.ResearchBrief) {
	fmt.Fprintf(w, "# %s\n\n%s\n", brief.Topic, brief.Summary)
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s:\n", title)
		for _, item := range items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	section("Key findings", brief.KeyFindings)
	section("Frameworks", brief.Frameworks)
	section("Risks", brief.Risks)
}
