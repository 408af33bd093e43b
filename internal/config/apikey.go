// Package config provides service API key hashing and verification.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyConfig holds configuration for verifying the service API key that
// callers exchange for a JWT. The key itself is never stored; only its
// bcrypt hash is.
type APIKeyConfig struct {
	StoredHash string
	BcryptCost int
	Pepper     string // optional global secret for additional security
}

// NewAPIKeyConfig creates a new API key configuration from environment
// variables. It reads SERVICE_API_KEY_HASH (required), BCRYPT_COST
// (default: 12) and optionally API_KEY_PEPPER.
func NewAPIKeyConfig() (*APIKeyConfig, error) {
	hash := os.Getenv("SERVICE_API_KEY_HASH")
	if hash == "" {
		return nil, fmt.Errorf("SERVICE_API_KEY_HASH is required but not set")
	}

	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &APIKeyConfig{
		StoredHash: hash,
		BcryptCost: cost,
		Pepper:     os.Getenv("API_KEY_PEPPER"), // empty if not set
	}

	if err := config.normalizeKey(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalizeKey validates the configuration.
func (c *APIKeyConfig) normalizeKey() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashKey hashes an API key using bcrypt (with optional pepper). Used by the
// hash-key helper command to mint SERVICE_API_KEY_HASH values.
func (c *APIKeyConfig) HashKey(key string) (string, error) {
	material := key
	if c.Pepper != "" {
		material = key + c.Pepper
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(material), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}

	return string(hash), nil
}

// VerifyKey verifies a presented API key against the stored hash (with
// optional pepper).
func (c *APIKeyConfig) VerifyKey(key string) bool {
	material := key
	if c.Pepper != "" {
		material = key + c.Pepper
	}

	err := bcrypt.CompareHashAndPassword([]byte(c.StoredHash), []byte(material))
	return err == nil
}
