package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/spf13/cobra"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key",
	Short: "Hash a service API key for SERVICE_API_KEY_HASH",
	Long: `Read an API key and print its bcrypt hash, the value the server expects in
the SERVICE_API_KEY_HASH environment variable. The key is read from --key or,
preferably, from stdin so it stays out of shell history. BCRYPT_COST and
API_KEY_PEPPER environment variables apply the same way they do in the server.`,
	RunE: runHashKey,
}

var hashKeyValue string

func init() {
	hashKeyCmd.Flags().StringVar(&hashKeyValue, "key", "", "API key to hash (default: read from stdin)")

	rootCmd.AddCommand(hashKeyCmd)
}

func runHashKey(_ *cobra.Command, _ []string) error {
	key := hashKeyValue
	if key == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read key from stdin: %w", err)
		}
		key = strings.TrimSpace(string(data))
	}
	if key == "" {
		return fmt.Errorf("API key is empty")
	}

	cost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cost = parsed
	}
	if cost < 10 || cost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cost)
	}

	keyConfig := &config.APIKeyConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("API_KEY_PEPPER"),
	}
	hash, err := keyConfig.HashKey(key)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, hash)
	return nil
}
