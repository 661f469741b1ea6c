// ABOUTME: Export command that snapshots all dashboard data to YAML or JSON
// ABOUTME: Writes to the XDG data directory by default, or stdout with --output -
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/esgos/internal/config"
	"github.com/harper/esgos/internal/storage"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data to YAML or JSON",
		Long: `Export suppliers, webhooks, wallet assets, and cards as one document.

YAML is the default; pass --format json for JSON. Without --output the
file goes to $XDG_DATA_HOME/esgos/exports/.

Examples:
  esgos export
  esgos export --format json --output backup.json
  esgos export --output -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := store.Snapshot()
			if err != nil {
				return fmt.Errorf("collecting data: %w", err)
			}

			ext := "yaml"
			if outputFormat == "json" {
				ext = "json"
			}

			if output == "-" {
				return writeSnapshot(cmd.OutOrStdout(), snap, ext)
			}
			if output == "" {
				output = filepath.Join(config.DataDir(), "exports",
					fmt.Sprintf("esgos-%s.%s", time.Now().Format("20060102-150405"), ext))
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("creating export directory: %w", err)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if err := writeSnapshot(f, snap, ext); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing export file: %w", err)
			}

			info(cmd, "Exported %d supplier(s), %d webhook(s), %d asset(s), %d card(s) to %s",
				len(snap.Suppliers), len(snap.Webhooks), len(snap.Assets), len(snap.Cards), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout)")

	return cmd
}

func writeSnapshot(w io.Writer, snap *storage.Snapshot, ext string) error {
	if ext == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
