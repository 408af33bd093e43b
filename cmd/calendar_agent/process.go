package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/jonathan/calendar-agent/internal/types"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process \"text\"",
	Short: "Run one request through the full pipeline",
	Long: `Run one natural-language request through validation, classification,
extraction and execution, and print the terminal outcome as JSON.

The request always reaches a terminal state: judged-bad input is reported as
a rejected outcome, not as a command error.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var (
	processConfigPath     string
	processAPIKey         string
	processModel          string
	processRef            string
	processTimezone       string
	processCalendarID     string
	processCredentials    string
	processAttendeeDomain string
	processThreshold      float64
	processTimeout        int
	processMemory         bool
	processVerbose        bool
)

func init() {
	processCmd.Flags().StringVar(&processConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	processCmd.Flags().StringVar(&processAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	processCmd.Flags().StringVar(&processModel, "model", "", "Model name forced for every tier")
	processCmd.Flags().StringVar(&processRef, "ref", "", "Reference instant for relative times (RFC 3339, default: now)")
	processCmd.Flags().StringVar(&processTimezone, "tz", "", "IANA timezone anchoring the reference instant")
	processCmd.Flags().StringVar(&processCalendarID, "calendar-id", "", "Target calendar ID")
	processCmd.Flags().StringVar(&processCredentials, "credentials", "", "Path to Google service account credentials JSON")
	processCmd.Flags().StringVar(&processAttendeeDomain, "attendee-domain", "", "Email domain for bare attendee names")
	processCmd.Flags().Float64Var(&processThreshold, "threshold", 0, "Confidence gate for validation and classification")
	processCmd.Flags().IntVar(&processTimeout, "timeout", 0, "Whole-request deadline in seconds")
	processCmd.Flags().BoolVar(&processMemory, "memory", false, "Execute against an in-memory calendar instead of Google Calendar")
	processCmd.Flags().BoolVarP(&processVerbose, "verbose", "v", false, "Print each stage's artifact as it is produced")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(processConfigPath, func(c *config.Config) {
		if cmd.Flags().Changed("api-key") {
			c.APIKey = processAPIKey
		}
		if cmd.Flags().Changed("model") {
			c.Model = processModel
		}
		if cmd.Flags().Changed("tz") {
			c.Timezone = processTimezone
		}
		if cmd.Flags().Changed("calendar-id") {
			c.CalendarID = processCalendarID
		}
		if cmd.Flags().Changed("credentials") {
			c.CredentialsFile = processCredentials
		}
		if cmd.Flags().Changed("attendee-domain") {
			c.AttendeeDomain = processAttendeeDomain
		}
		if cmd.Flags().Changed("threshold") {
			c.ConfidenceThreshold = processThreshold
		}
		if cmd.Flags().Changed("timeout") {
			c.PipelineTimeoutSeconds = processTimeout
		}
	})
	if err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	ref, err := referenceFromFlags(processRef, cfg.Timezone)
	if err != nil {
		return err
	}

	ctx := context.Background()

	backend, err := newBackend(ctx, cfg, processMemory)
	if err != nil {
		return err
	}

	p, cleanup, err := newPipeline(ctx, cfg, backend, processVerbose)
	if err != nil {
		return err
	}
	defer cleanup()

	rec := types.RequestRecord{
		ID:         uuid.New(),
		RawText:    args[0],
		ReceivedAt: time.Now().UTC(),
	}
	outcome := p.Run(ctx, rec, ref)

	return printJSON(os.Stdout, outcome)
}
