// Package main provides the entry point for the calendar agent CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "calendar_agent",
	Short: "Natural-language calendar request agent",
	Long:  "Calendar agent turns natural-language requests into executed calendar actions through a confidence-gated pipeline, as a CLI, an HTTP API or a queue worker.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
