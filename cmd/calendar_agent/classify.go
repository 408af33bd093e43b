package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/calendar-agent/internal/calendar"
	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify \"text\"",
	Short: "Run only the classification stage",
	Long:  "Ask the model to name one request's intent (create, update, delete or lookup) and print the classification as JSON. No confidence gate is applied.",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var (
	classifyConfigPath string
	classifyAPIKey     string
	classifyModel      string
)

func init() {
	classifyCmd.Flags().StringVar(&classifyConfigPath, "config", "", "Path to config.json file")
	classifyCmd.Flags().StringVar(&classifyAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	classifyCmd.Flags().StringVar(&classifyModel, "model", "", "Model name forced for every tier")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(classifyConfigPath, func(c *config.Config) {
		if cmd.Flags().Changed("api-key") {
			c.APIKey = classifyAPIKey
		}
		if cmd.Flags().Changed("model") {
			c.Model = classifyModel
		}
	})
	if err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	ctx := context.Background()
	p, cleanup, err := newPipeline(ctx, cfg, calendar.NewMemoryBackend(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := p.Classify(ctx, args[0])
	if err != nil {
		return fmt.Errorf("classification stage failed: %w", err)
	}

	return printJSON(os.Stdout, res)
}
