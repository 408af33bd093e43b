package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/calendar-agent/internal/calendar"
	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate \"text\"",
	Short: "Run only the validation stage",
	Long:  "Ask the model for the safety and well-formedness judgment on one request and print it as JSON. No confidence gate is applied.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var (
	validateConfigPath string
	validateAPIKey     string
	validateModel      string
)

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "", "Path to config.json file")
	validateCmd.Flags().StringVar(&validateAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	validateCmd.Flags().StringVar(&validateModel, "model", "", "Model name forced for every tier")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(validateConfigPath, func(c *config.Config) {
		if cmd.Flags().Changed("api-key") {
			c.APIKey = validateAPIKey
		}
		if cmd.Flags().Changed("model") {
			c.Model = validateModel
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

	res, err := p.Validate(ctx, args[0])
	if err != nil {
		return fmt.Errorf("validation stage failed: %w", err)
	}

	return printJSON(os.Stdout, res)
}
