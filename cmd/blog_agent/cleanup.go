package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/blog-pipeline/internal/config"
	"github.com/marcus/blog-pipeline/internal/db"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete abandoned jobs",
	Long:  "Delete every job that never produced a topic list. Same sweep the cleanup endpoint and the janitor run.",
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	cleaned, preserved, err := store.DeleteAbandonedJobs(ctx)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleaned up %d abandoned blogs (%d preserved)\n", cleaned, preserved)
	return nil
}
