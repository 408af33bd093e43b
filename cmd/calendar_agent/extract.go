package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/calendar-agent/internal/calendar"
	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/jonathan/calendar-agent/internal/pipeline"
	"github.com/jonathan/calendar-agent/internal/types"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract \"text\"",
	Short: "Run only the create-event extraction stage",
	Long: `Draft the normalized event field set a create request would execute with
and print it as JSON. A field set the stage judges unusable is printed as a
rejection, not reported as a command error.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var (
	extractConfigPath string
	extractAPIKey     string
	extractModel      string
	extractRef        string
	extractTimezone   string
)

func init() {
	extractCmd.Flags().StringVar(&extractConfigPath, "config", "", "Path to config.json file")
	extractCmd.Flags().StringVar(&extractAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "Model name forced for every tier")
	extractCmd.Flags().StringVar(&extractRef, "ref", "", "Reference instant for relative times (RFC 3339, default: now)")
	extractCmd.Flags().StringVar(&extractTimezone, "tz", "", "IANA timezone anchoring the reference instant")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(extractConfigPath, func(c *config.Config) {
		if cmd.Flags().Changed("api-key") {
			c.APIKey = extractAPIKey
		}
		if cmd.Flags().Changed("model") {
			c.Model = extractModel
		}
		if cmd.Flags().Changed("tz") {
			c.Timezone = extractTimezone
		}
	})
	if err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	ref, err := referenceFromFlags(extractRef, cfg.Timezone)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, cleanup, err := newPipeline(ctx, cfg, calendar.NewMemoryBackend(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	details, rej, err := p.ExtractCreate(ctx, args[0], ref)
	if err != nil {
		return fmt.Errorf("extraction stage failed: %w", err)
	}

	out := struct {
		Details   *types.CreateEventDetails `json:"details,omitempty"`
		Rejection *pipeline.Rejection       `json:"rejection,omitempty"`
	}{details, rej}

	return printJSON(os.Stdout, out)
}
