// ABOUTME: Root command and global flags for the esgos CLI
// ABOUTME: Configures logging level and output format before any subcommand runs
package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "esgos"})
)

const banner = `
 ███████╗███████╗ ██████╗  ██████╗ ███████╗
 ██╔════╝██╔════╝██╔════╝ ██╔═══██╗██╔════╝
 █████╗  ███████╗██║  ███╗██║   ██║███████╗
 ██╔══╝  ╚════██║██║   ██║██║   ██║╚════██║
 ███████╗███████║╚██████╔╝╚██████╔╝███████║
 ╚══════╝╚══════╝ ╚═════╝  ╚═════╝ ╚══════╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "esgos",
		Short: "ESG operations from the terminal",
		Long: banner + `

ESG OS: sustainability operations from the terminal.

Ask the ESG assistant, research reporting frameworks, score suppliers,
manage a carbon credit wallet, collect cards, and push events to
webhooks. Data syncs across devices through Charm.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			switch {
			case verbose:
				logger.SetLevel(log.DebugLevel)
			case quiet:
				logger.SetLevel(log.ErrorLevel)
			default:
				logger.SetLevel(log.InfoLevel)
			}

			switch outputFormat {
			case "auto", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unknown --format %q (want auto, json, or yaml)", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output, including retry attempts")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only show errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json, or yaml")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewResearchCmd())
	cmd.AddCommand(NewSupplierCmd())
	cmd.AddCommand(NewWebhookCmd())
	cmd.AddCommand(NewWalletCmd())
	cmd.AddCommand(NewCardsCmd())
	cmd.AddCommand(NewAuthCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
