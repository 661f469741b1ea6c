// ABOUTME: Standalone ESG OS MCP server with stdio transport
// ABOUTME: Wires storage, the Gemini assistant, and the webhook dispatcher into the tool set
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/harper/esgos/internal/charm"
	"github.com/harper/esgos/internal/config"
	"github.com/harper/esgos/internal/credentials"
	"github.com/harper/esgos/internal/llm"
	"github.com/harper/esgos/internal/mcp"
	"github.com/harper/esgos/internal/storage"
	"github.com/harper/esgos/internal/webhook"
)

var version = "dev"

func main() {
	// stdout carries the protocol; everything else goes to stderr
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "esgos-mcp", ReportTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	store, err := storage.NewStorage(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage", "err", err)
	}
	defer func() { _ = store.Close() }()

	// No prompter: the server must never read a key from stdin
	creds := credentials.NewStore(store.KV(), nil)
	if status, err := creds.Status(); err == nil && status.Source == credentials.SourceNone {
		logger.Warn("no Gemini API key selected; AI tools will fail until one is set")
	}

	clientCfg := llm.ConfigFrom(cfg, creds, nil)
	clientCfg.Logger = logger

	var assistant mcp.Assistant
	if client, err := llm.NewGeminiClient(clientCfg); err != nil {
		logger.Warn("AI tools disabled", "err", err)
	} else {
		assistant = client
	}

	dispatcher := webhook.NewDispatcher(store, webhook.Config{Logger: logger})
	server, handlers := mcp.NewServer(version, store, assistant, dispatcher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("ESG OS MCP server starting on stdio...")
	if err := mcp.ServeStdio(ctx, server, handlers); err != nil {
		logger.Error("server error", "err", err)
		stop()
		_ = store.Close()
		os.Exit(1)
	}
}
