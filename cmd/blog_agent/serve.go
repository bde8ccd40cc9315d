package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/marcus/blog-pipeline/internal/agents"
	"github.com/marcus/blog-pipeline/internal/config"
	"github.com/marcus/blog-pipeline/internal/db"
	"github.com/marcus/blog-pipeline/internal/fetch"
	"github.com/marcus/blog-pipeline/internal/llm"
	"github.com/marcus/blog-pipeline/internal/pipeline"
	"github.com/marcus/blog-pipeline/internal/search"
	"github.com/marcus/blog-pipeline/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start the HTTP server exposing the blog generation pipeline, along with the background janitor.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	authCfg, err := config.LoadAuth()
	if err != nil {
		return err
	}

	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	var researcher agents.Researcher
	if cfg.SearchAPIKey != "" && cfg.SearchEngineID != "" {
		engine, err := search.NewGoogleEngine(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
		if err != nil {
			return fmt.Errorf("failed to create search engine: %w", err)
		}
		var opts []search.ResearcherOption
		if cfg.EnrichSnippets {
			opts = append(opts, search.WithEnricher(fetch.NewEnricher(cfg.UseBrowser)))
		}
		researcher = search.NewResearcher(engine, opts...)
	} else {
		log.Println("[SERVER] search credentials not configured, topic generation runs without research")
	}

	steps := agents.New(client, researcher)
	orch := pipeline.New(store, steps, pipeline.WithStatusDelay(cfg.StatusDelay))

	janitor, err := pipeline.NewJanitor(store, orch, cfg.JanitorSchedule, cfg.StaleAfter, cfg.SweepOnJanitor)
	if err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	return server.New(cfg, authCfg, store, orch).Start()
}
