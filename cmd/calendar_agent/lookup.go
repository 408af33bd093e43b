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

var lookupCmd = &cobra.Command{
	Use:   "lookup \"text\"",
	Short: "Run only the lookup-criteria extraction stage",
	Long: `Draft the criteria for finding existing events (an event ID or a time
window plus context terms) and print them as JSON. Use --type update to also
draft the changes patch an update request would apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var (
	lookupConfigPath string
	lookupAPIKey     string
	lookupModel      string
	lookupRef        string
	lookupTimezone   string
	lookupType       string
	lookupBulk       bool
)

func init() {
	lookupCmd.Flags().StringVar(&lookupConfigPath, "config", "", "Path to config.json file")
	lookupCmd.Flags().StringVar(&lookupAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	lookupCmd.Flags().StringVar(&lookupModel, "model", "", "Model name forced for every tier")
	lookupCmd.Flags().StringVar(&lookupRef, "ref", "", "Reference instant for relative times (RFC 3339, default: now)")
	lookupCmd.Flags().StringVar(&lookupTimezone, "tz", "", "IANA timezone anchoring the reference instant")
	lookupCmd.Flags().StringVar(&lookupType, "type", "lookup", "Request type to extract as: lookup, update or delete")
	lookupCmd.Flags().BoolVar(&lookupBulk, "bulk", false, "Extract as a bulk operation addressing the whole window")

	rootCmd.AddCommand(lookupCmd)
}

// lookupRequestType maps the --type flag to a request type that routes to the
// lookup extractor.
func lookupRequestType(flag string) (types.RequestType, error) {
	switch flag {
	case "lookup":
		return types.RequestTypeLookup, nil
	case "update":
		return types.RequestTypeUpdate, nil
	case "delete":
		return types.RequestTypeDelete, nil
	default:
		return "", fmt.Errorf("invalid --type %q: must be lookup, update or delete", flag)
	}
}

func runLookup(cmd *cobra.Command, args []string) error {
	requestType, err := lookupRequestType(lookupType)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(lookupConfigPath, func(c *config.Config) {
		if cmd.Flags().Changed("api-key") {
			c.APIKey = lookupAPIKey
		}
		if cmd.Flags().Changed("model") {
			c.Model = lookupModel
		}
		if cmd.Flags().Changed("tz") {
			c.Timezone = lookupTimezone
		}
	})
	if err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	ref, err := referenceFromFlags(lookupRef, cfg.Timezone)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, cleanup, err := newPipeline(ctx, cfg, calendar.NewMemoryBackend(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	criteria, rej, err := p.ExtractLookup(ctx, args[0], ref, requestType, lookupBulk)
	if err != nil {
		return fmt.Errorf("extraction stage failed: %w", err)
	}

	out := struct {
		Criteria  *types.LookupCriteria `json:"criteria,omitempty"`
		Rejection *pipeline.Rejection   `json:"rejection,omitempty"`
	}{criteria, rej}

	return printJSON(os.Stdout, out)
}
