package config

import (
	"fmt"
	"os"
	"time"
)

// DefaultJWTExpiration is the lifetime of issued access tokens.
const DefaultJWTExpiration = 24 * time.Hour

// DefaultJWTIssuer is the iss claim of issued tokens.
const DefaultJWTIssuer = "talent-match"

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// NewJWTConfig creates a JWT configuration from environment variables.
// It reads JWT_SECRET, JWT_EXPIRATION (default: 24h) and JWT_ISSUER.
// An unset JWT_SECRET disables authentication and returns a nil config.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, nil
	}

	expiration := DefaultJWTExpiration
	if s := os.Getenv("JWT_EXPIRATION"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION: %v", err)
		}
		expiration = d
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = DefaultJWTIssuer
	}

	config := &JWTConfig{
		Secret:     secret,
		Expiration: expiration,
		Issuer:     issuer,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if len(c.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got: %d", len(c.Secret))
	}
	if c.Expiration < time.Minute {
		return fmt.Errorf("JWT_EXPIRATION must be at least 1m, got: %s", c.Expiration)
	}
	return nil
}
