package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAuthDisabledByDefault(t *testing.T) {
	cfg, err := LoadAuth()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled())
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 24, cfg.ExpirationHours)
}

func TestLoadAuthRequiresSecretWhenEnabled(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$12$notarealhashbutnonempty")

	_, err := LoadAuth()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "test-secret")
	cfg, err := LoadAuth()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
}

func TestLoadAuthValidatesRanges(t *testing.T) {
	t.Setenv("BCRYPT_COST", "9")
	_, err := LoadAuth()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "15")
	_, err = LoadAuth()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	_, err = LoadAuth()
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	cfg := &AuthConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	cfg.PasswordHash = hash
	assert.True(t, cfg.VerifyPassword("correct horse battery staple"))
	assert.False(t, cfg.VerifyPassword("wrong password"))
}

func TestPasswordPepperChangesHash(t *testing.T) {
	plain := &AuthConfig{BcryptCost: 10}
	hash, err := plain.HashPassword("pw")
	require.NoError(t, err)

	peppered := &AuthConfig{BcryptCost: 10, Pepper: "side-secret", PasswordHash: hash}
	assert.False(t, peppered.VerifyPassword("pw"))

	plain.PasswordHash = hash
	assert.True(t, plain.VerifyPassword("pw"))
}

func TestVerifyPasswordDisabled(t *testing.T) {
	cfg := &AuthConfig{BcryptCost: 12}
	assert.False(t, cfg.VerifyPassword("anything"))
}
