// ABOUTME: Supplier CRM commands: add, list, assess, and remove
// ABOUTME: Assessments are scored by the assistant and fire supplier.assessed webhooks
package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/models"
)

// NewSupplierCmd creates the supplier command group
func NewSupplierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "supplier",
		Aliases: []string{"suppliers"},
		Short:   "Manage suppliers and ESG assessments",
		Long: `Track supply-chain partners and score them on environmental,
social, and governance risk.`,
	}

	cmd.AddCommand(newSupplierAddCmd())
	cmd.AddCommand(newSupplierListCmd())
	cmd.AddCommand(newSupplierAssessCmd())
	cmd.AddCommand(newSupplierRemoveCmd())

	return cmd
}

func newSupplierAddCmd() *cobra.Command {
	var country, category, contact string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a supplier",
		Example: `  esgos supplier add "Acme Textiles" --country BD --category apparel
  esgos supplier add Northwind --contact esg@northwind.example`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := models.NewSupplier(strings.Join(args, " "), country, category, contact)
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.AddSupplier(sup); err != nil {
				return fmt.Errorf("adding supplier: %w", err)
			}
			return render(cmd, sup, func(w io.Writer) {
				fmt.Fprintf(w, "Added supplier %s (%s)\n", sup.Name, sup.ID)
			})
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "Country of operation")
	cmd.Flags().StringVar(&category, "category", "", "Sector or spend category")
	cmd.Flags().StringVar(&contact, "contact", "", "Contact email or name")

	return cmd
}

func newSupplierListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List suppliers with their latest assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			suppliers, err := store.ListSuppliers()
			if err != nil {
				return fmt.Errorf("listing suppliers: %w", err)
			}
			if len(suppliers) == 0 && outputFormat == "auto" {
				info(cmd, "No suppliers yet. Add one with 'esgos supplier add <name>'")
				return nil
			}

			return render(cmd, suppliers, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "NAME\tCOUNTRY\tCATEGORY\tE/S/G\tRISK\tID\n")
				for _, s := range suppliers {
					scores, risk := "-", "-"
					if a := s.Assessment; a != nil {
						scores = fmt.Sprintf("%d/%d/%d", a.Environmental, a.Social, a.Governance)
						risk = string(a.Risk)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						truncate(s.Name, 30), s.Country, s.Category, scores, risk, s.ID)
				}
				_ = tw.Flush()
			})
		},
	}
}

func newSupplierAssessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assess <id>",
		Short: "Score a supplier with the assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sup, err := store.GetSupplier(args[0])
			if err != nil {
				return fmt.Errorf("getting supplier: %w", err)
			}

			assistant, err := newAssistant(cmd, store, isTerminal())
			if err != nil {
				return err
			}
			logger.Debug("assessing supplier", "id", sup.ID, "name", sup.Name)

			assessment, err := assistant.AssessSupplier(cmd.Context(), sup)
			if err != nil {
				return fmt.Errorf("assessment failed: %w", err)
			}
			sup, err = store.SaveAssessment(sup.ID, assessment)
			if err != nil {
				return fmt.Errorf("saving assessment: %w", err)
			}

			if err := render(cmd, sup, func(w io.Writer) { printAssessment(w, sup) }); err != nil {
				return err
			}
			notify(cmd, store, models.EventSupplierAssessed, sup)
			return nil
		},
	}
}

func newSupplierRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a supplier",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteSupplier(args[0]); err != nil {
				return fmt.Errorf("removing supplier: %w", err)
			}
			info(cmd, "Removed supplier %s", args[0])
			return nil
		},
	}
}

func printAssessment(w io.Writer, sup *models.Supplier) {
	a := sup.Assessment
	fmt.Fprintf(w, "%s: %s risk (overall %.0f)\n", sup.Name, strings.ToUpper(string(a.Risk)), a.Overall())
	fmt.Fprintf(w, "  Environmental %3d\n  Social        %3d\n  Governance    %3d\n", a.Environmental, a.Social, a.Governance)
	if a.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", a.Summary)
	}
	if len(a.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, r := range a.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}
