// ABOUTME: Carbon wallet commands: add, list, retire, and balance
// ABOUTME: Retiring an asset fires asset.retired webhooks
package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/models"
)

// NewWalletCmd creates the wallet command group
func NewWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage carbon credits",
		Long: `Track verified carbon credits by project and vintage, and retire
them against emissions. Retirement is permanent.`,
	}

	cmd.AddCommand(newWalletAddCmd())
	cmd.AddCommand(newWalletListCmd())
	cmd.AddCommand(newWalletRetireCmd())
	cmd.AddCommand(newWalletBalanceCmd())

	return cmd
}

func newWalletAddCmd() *cobra.Command {
	var (
		standard string
		vintage  int
		tonnes   float64
	)

	cmd := &cobra.Command{
		Use:     "add <project>",
		Short:   "Add carbon credits to the wallet",
		Example: `  esgos wallet add "Kasigau Corridor REDD+" --vintage 2021 --tonnes 50 --standard VCS`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := models.NewCarbonAsset(strings.Join(args, " "), standard, vintage, tonnes)
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.AddAsset(asset); err != nil {
				return fmt.Errorf("adding asset: %w", err)
			}
			return render(cmd, asset, func(w io.Writer) {
				fmt.Fprintf(w, "Added %.2f t from %s (%s)\n", asset.Tonnes, asset.Project, asset.ID)
			})
		},
	}

	cmd.Flags().StringVar(&standard, "standard", "VCS", "Certification standard (VCS, Gold Standard, ...)")
	cmd.Flags().IntVar(&vintage, "vintage", time.Now().Year(), "Vintage year")
	cmd.Flags().Float64Var(&tonnes, "tonnes", 0, "Tonnes of CO2e")
	_ = cmd.MarkFlagRequired("tonnes")

	return cmd
}

func newWalletListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List carbon assets, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			assets, err := store.ListAssets()
			if err != nil {
				return fmt.Errorf("listing assets: %w", err)
			}
			if len(assets) == 0 && outputFormat == "auto" {
				info(cmd, "Wallet is empty")
				return nil
			}

			return render(cmd, assets, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "PROJECT\tSTANDARD\tVINTAGE\tTONNES\tSTATUS\tID\n")
				for _, a := range assets {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%s\t%s\n",
						truncate(a.Project, 30), a.Standard, a.Vintage, a.Tonnes, a.Status, a.ID)
				}
				_ = tw.Flush()
			})
		},
	}
}

func newWalletRetireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retire <id>",
		Short: "Retire a carbon asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			asset, err := store.RetireAsset(args[0])
			if err != nil {
				return fmt.Errorf("retiring asset: %w", err)
			}

			if err := render(cmd, asset, func(w io.Writer) {
				fmt.Fprintf(w, "Retired %.2f t from %s\n", asset.Tonnes, asset.Project)
			}); err != nil {
				return err
			}
			notify(cmd, store, models.EventAssetRetired, asset)
			return nil
		},
	}
}

func newWalletBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show active and retired tonnes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			balance, err := store.WalletBalance()
			if err != nil {
				return fmt.Errorf("computing balance: %w", err)
			}
			return render(cmd, balance, func(w io.Writer) {
				fmt.Fprintf(w, "Active:  %.2f t\nRetired: %.2f t\nAssets:  %d\n", balance.ActiveTonnes, balance.RetiredTonnes, balance.Assets)
			})
		},
	}
}
