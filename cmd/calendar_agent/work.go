package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/jonathan/calendar-agent/internal/db"
	"github.com/jonathan/calendar-agent/internal/worker"
	"github.com/spf13/cobra"
)

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Run the queue worker pool",
	Long: `Claim pending requests from the database queue and process them through
the pipeline. Runs until interrupted; in-flight requests finish and their
outcomes persist before exit.`,
	RunE: runWork,
}

var (
	workConfigPath   string
	workWorkers      int
	workPollInterval time.Duration
	workMemory       bool
)

func init() {
	workCmd.Flags().StringVar(&workConfigPath, "config", "", "Path to config.json file")
	workCmd.Flags().IntVar(&workWorkers, "workers", 0, "Concurrent workers (default 4)")
	workCmd.Flags().DurationVar(&workPollInterval, "poll-interval", 0, "Idle wait between empty queue polls (default 2s)")
	workCmd.Flags().BoolVar(&workMemory, "memory", false, "Execute against an in-memory calendar instead of Google Calendar")

	rootCmd.AddCommand(workCmd)
}

func runWork(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(workConfigPath, func(c *config.Config) {
		if cmd.Flags().Changed("workers") {
			c.Workers = workWorkers
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

	// Interrupt cancels the context; the pool drains in-flight requests
	// before Run returns.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	backend, err := newBackend(ctx, cfg, workMemory)
	if err != nil {
		return err
	}

	p, cleanup, err := newPipeline(ctx, cfg, backend, false)
	if err != nil {
		return err
	}
	defer cleanup()

	pool := worker.New(database, p, worker.Options{
		Workers:      cfg.Workers,
		PollInterval: workPollInterval,
	})

	log.Printf("worker pool starting: %d workers", cfg.Workers)
	return pool.Run(ctx)
}
