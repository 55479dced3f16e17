// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "agency_platform", cfg.Database.Database)
	assert.Equal(t, float64(1000), cfg.Commission.DefaultMinBet)
	assert.Equal(t, 50, cfg.Commission.MaxChainLength)
	assert.Equal(t, float64(10000), cfg.Payout.MinimumPayout)
	assert.Equal(t, "usd", cfg.Payout.Currency)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("COMMISSION_MAX_CHAIN_LENGTH", "10")
	t.Setenv("MINIMUM_PAYOUT", "2500.50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Commission.MaxChainLength)
	assert.Equal(t, 2500.50, cfg.Payout.MinimumPayout)
}

func TestLoadIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("COMMISSION_MAX_CHAIN_LENGTH", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Commission.MaxChainLength)
}

func TestValidateProductionGuards(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	_, err = Load()
	assert.Error(t, err, "missing database password should still fail")

	t.Setenv("DB_PASSWORD", "a-real-password")
	_, err = Load()
	assert.Error(t, err, "missing webhook secret should still fail")

	t.Setenv("WEBHOOK_SHARED_SECRET", "relay-secret")
	_, err = Load()
	assert.NoError(t, err)
}
