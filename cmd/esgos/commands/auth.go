// ABOUTME: Credential commands for the Gemini API key
// ABOUTME: Shows where the active key comes from, selects a new one, or clears it
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/credentials"
)

// NewAuthCmd creates the auth command group
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Gemini API key",
		Long: `Manage the Gemini API key used by the assistant.

A selected key is stored in the synced Charm KV. Without one, esgos
falls back to GEMINI_API_KEY, then GOOGLE_API_KEY. When Gemini rejects
the key, interactive commands prompt for a new one.`,
	}

	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthSelectCmd())
	cmd.AddCommand(newAuthClearCmd())

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which API key is active",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			status, err := credentials.NewStore(store.KV(), nil).Status()
			if err != nil {
				return err
			}
			return render(cmd, status, func(w io.Writer) {
				if status.Source == credentials.SourceNone {
					fmt.Fprintln(w, "No API key selected. Run 'esgos auth select' or set GEMINI_API_KEY.")
					return
				}
				fmt.Fprintf(w, "Source: %s\nKey:    %s\n", status.Source, status.Masked)
			})
		},
	}
}

func newAuthSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Select and store a new API key",
		Long: `Prompt for a Gemini API key and store it. The key is read from
stdin, so it can also be piped in.`,
		Example: `  esgos auth select
  echo "$GEMINI_API_KEY" | esgos auth select`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			prompter := &credentials.ReaderPrompter{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
			creds := credentials.NewStore(store.KV(), prompter)
			if err := creds.SelectCredential(cmd.Context()); err != nil {
				return err
			}

			status, err := creds.Status()
			if err != nil {
				return err
			}
			info(cmd, "Stored key %s", status.Masked)
			return nil
		},
	}
}

func newAuthClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := credentials.NewStore(store.KV(), nil).Clear(); err != nil {
				return fmt.Errorf("clearing key: %w", err)
			}
			info(cmd, "Stored key cleared")
			return nil
		},
	}
}
