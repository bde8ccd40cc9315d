package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds the optional admin authentication settings. When no
// ADMIN_PASSWORD_HASH is configured, auth is disabled and destructive
// endpoints are open, matching the zero-configuration development setup.
type AuthConfig struct {
	PasswordHash    string // bcrypt hash of the admin password; empty disables auth
	Pepper          string // optional global secret appended before hashing
	BcryptCost      int
	JWTSecret       string
	ExpirationHours int
}

// LoadAuth reads the admin auth settings from the environment.
// JWT_SECRET is required only when a password hash is configured.
func LoadAuth() (*AuthConfig, error) {
	cfg := &AuthConfig{
		PasswordHash:    os.Getenv("ADMIN_PASSWORD_HASH"),
		Pepper:          os.Getenv("ADMIN_PASSWORD_PEPPER"),
		BcryptCost:      12,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ExpirationHours: 24,
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cfg.BcryptCost = cost
	}

	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		cfg.ExpirationHours = hours
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AuthConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.Enabled() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_PASSWORD_HASH is set")
	}
	return nil
}

// Enabled reports whether admin auth is configured.
func (c *AuthConfig) Enabled() bool {
	return c.PasswordHash != ""
}

// HashPassword hashes a password with bcrypt, applying the pepper if set.
func (c *AuthConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a password against the configured hash.
func (c *AuthConfig) VerifyPassword(pw string) bool {
	if !c.Enabled() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(pw+c.Pepper)) == nil
}
