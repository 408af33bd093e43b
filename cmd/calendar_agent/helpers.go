package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonathan/calendar-agent/internal/calendar"
	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/jonathan/calendar-agent/internal/llm"
	"github.com/jonathan/calendar-agent/internal/observability"
	"github.com/jonathan/calendar-agent/internal/pipeline"
	"github.com/jonathan/calendar-agent/internal/types"
)

// resolveConfig loads the optional config file, applies the caller's flag
// overrides, fills remaining fields from built-in defaults and falls back to
// environment variables for credentials. Required-field checks stay with the
// individual commands since each needs a different subset.
func resolveConfig(configPath string, applyFlags func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	if applyFlags != nil {
		applyFlags(&cfg)
	}

	merged := cfg.MergeWithDefaults(config.Defaults())

	if merged.APIKey == "" {
		merged.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if merged.DatabaseURL == "" {
		merged.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// requireAPIKey rejects a configuration that resolved no model credential.
func requireAPIKey(cfg config.Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	return nil
}

// modelConfig forces one model for every tier when set; otherwise the
// provider's per-tier defaults apply.
func modelConfig(model string) *llm.Config {
	cfg := llm.DefaultConfig()
	if model == "" {
		return cfg
	}
	return &llm.Config{
		Provider: cfg.Provider,
		Models: map[llm.ModelTier]string{
			llm.TierLite:     model,
			llm.TierStandard: model,
			llm.TierAdvanced: model,
		},
	}
}

// newPipeline wires a pipeline from the merged configuration. The returned
// cleanup releases the model client.
func newPipeline(ctx context.Context, cfg config.Config, backend calendar.Backend, verbose bool) (*pipeline.Pipeline, func(), error) {
	client, err := llm.NewClient(ctx, modelConfig(cfg.Model), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	completer := llm.NewCompleter(client, cfg.MaxAttempts, cfg.InitialBackoff())
	opts := pipeline.Options{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		DefaultDuration:     cfg.DefaultDuration(),
		Timezone:            cfg.Timezone,
		AttendeeDomain:      cfg.AttendeeDomain,
		Deadline:            cfg.PipelineTimeout(),
	}
	if verbose {
		opts.Verbose = true
		opts.Printer = observability.NewPrinter(os.Stdout)
	}

	return pipeline.New(completer, backend, opts), func() { _ = client.Close() }, nil
}

// newBackend builds the calendar backend: Google Calendar by default, the
// in-memory backend when asked for a dry run.
func newBackend(ctx context.Context, cfg config.Config, memory bool) (calendar.Backend, error) {
	if memory {
		return calendar.NewMemoryBackend(), nil
	}
	backend, err := calendar.NewGoogleBackend(ctx, cfg.CalendarID, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar backend: %w", err)
	}
	return backend, nil
}

// referenceFromFlags builds the reference anchoring relative time expressions.
// An empty --ref with an empty --tz yields the zero reference, which the
// pipeline replaces with now in its configured system zone.
func referenceFromFlags(refStr, tz string) (types.Reference, error) {
	if refStr == "" {
		return types.ReferenceAt(nil, tz), nil
	}
	instant, err := time.Parse(time.RFC3339, refStr)
	if err != nil {
		return types.Reference{}, fmt.Errorf("invalid --ref %q: must be an RFC 3339 timestamp", refStr)
	}
	return types.ReferenceAt(&instant, tz), nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
