package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, "WIZ", cfg.Pricing.DiscountCodePrefix)
	assert.Equal(t, "0 30 3 * * *", cfg.Jobs.CartRuleJanitorSchedule)
	assert.Equal(t, 72*time.Hour, cfg.Jobs.CartRuleRetention())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTLDuration())
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/health")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PRICING_DISCOUNTCODEPREFIX", "CFG")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "CFG", cfg.Pricing.DiscountCodePrefix)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

type stubSource map[string]string

func (s stubSource) GetSecretOrEnv(ctx context.Context, secretName, envVar string) (string, error) {
	if value, ok := s[secretName]; ok {
		return value, nil
	}
	return "", errors.New("not found")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "localhost", Password: "local"},
		Auth:     AuthConfig{APIKey: "kept"},
	}

	applySecrets(context.Background(), cfg, stubSource{
		"POSTGRES-MAIN-PASSWORD": "vault-password",
		"jwt-secret":             "vault-jwt",
		"admin-api-key":          "",
	})

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "vault-password", cfg.Database.Password)
	assert.Equal(t, "vault-jwt", cfg.Auth.JWTSecret)
	assert.Equal(t, "kept", cfg.Auth.APIKey, "empty secrets keep the configured value")
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	d := &DatabaseConfig{Host: "db", Port: 5432, Name: "configurator", User: "u", Password: "p", SSLMode: "require"}
	dsn := d.ConnectionString()
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "sslmode=require")
}
