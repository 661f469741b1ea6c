// ABOUTME: Shared wiring for CLI commands: storage, assistant, dispatcher, and output
// ABOUTME: Factories are package variables so tests can swap in in-memory fakes
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/esgos/internal/charm"
	"github.com/harper/esgos/internal/config"
	"github.com/harper/esgos/internal/credentials"
	"github.com/harper/esgos/internal/llm"
	esgmcp "github.com/harper/esgos/internal/mcp"
	"github.com/harper/esgos/internal/storage"
	"github.com/harper/esgos/internal/webhook"
)

// openStore opens the charm-backed store described by the environment
var openStore = func() (*storage.Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	store, err := storage.NewStorage(charmConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

// newAssistant builds the Gemini client. When interactive, a rejected or
// missing key prompts on the terminal; otherwise it fails fast.
var newAssistant = func(cmd *cobra.Command, store *storage.Storage, interactive bool) (esgmcp.Assistant, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var prompter credentials.Prompter
	if interactive {
		prompter = &credentials.ReaderPrompter{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	}
	creds := credentials.NewStore(store.KV(), prompter)

	clientCfg := llm.ConfigFrom(cfg, creds, nil)
	if interactive {
		clientCfg.Selector = creds
	}
	clientCfg.Logger = logger

	client, err := llm.NewGeminiClient(clientCfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// newDispatcher builds the webhook dispatcher that records outcomes in store
var newDispatcher = func(store *storage.Storage) *webhook.Dispatcher {
	return webhook.NewDispatcher(store, webhook.Config{Logger: logger})
}

func charmConfig(cfg *config.Config) *charm.Config {
	return &charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	}
}

// render writes v as JSON or YAML when --format asks for it, otherwise calls table
func render(cmd *cobra.Command, v any, table func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		table(out)
		return nil
	}
}

// info prints a status line unless --quiet is set
func info(cmd *cobra.Command, format string, args ...any) {
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}

// isTerminal reports whether stdin is an interactive terminal
func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
