package main

import (
	"context"
	"fmt"

	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/jonathan/calendar-agent/internal/db"
	"github.com/jonathan/calendar-agent/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that accepts calendar requests for queued processing
and serves back their outcomes. Run "work" alongside it to drain the queue.`,
	RunE: runServe,
}

var (
	servePort       int
	serveConfigPath string
	serveMemory     bool
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Execute against an in-memory calendar instead of Google Calendar")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(serveConfigPath, func(c *config.Config) {
		if cmd.Flags().Changed("port") {
			c.Port = servePort
		}
	})
	if err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	backend, err := newBackend(ctx, cfg, serveMemory)
	if err != nil {
		return err
	}

	// The synchronous route runs the pipeline in-request; async submissions
	// are only queued here and drained by the worker pool.
	p, cleanup, err := newPipeline(ctx, cfg, backend, false)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := server.New(server.Config{Port: cfg.Port}, database, p)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
