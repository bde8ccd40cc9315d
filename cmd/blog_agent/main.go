// Package main provides the entry point for the blog pipeline HTTP API
// server and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blog-agent",
	Short: "Automated blog generation pipeline",
	Long:  "blog-agent researches trending topics and drives a multi-stage pipeline (topics, planning, writing, editing, SEO) behind a resumable REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
