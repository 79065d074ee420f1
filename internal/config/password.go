package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// SecretConfig holds configuration for hashing and verifying API client secrets.
type SecretConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewSecretConfig creates a secret configuration from environment variables.
// It reads BCRYPT_COST (default: 12) and optionally SECRET_PEPPER.
func NewSecretConfig() (*SecretConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &SecretConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("SECRET_PEPPER"),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *SecretConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashSecret hashes a client secret using bcrypt (with optional pepper).
func (c *SecretConfig) HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret reports whether secret matches a stored hash (with optional pepper).
func (c *SecretConfig) VerifySecret(secret, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret+c.Pepper))
	return err == nil
}
