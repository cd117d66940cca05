package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED",
		"CHECKOUT_TOKEN_SECRET", "DEDUPE_WINDOW_MS", "SESSION_TTL_HOURS", "SECURE_COOKIES",
		"SHIPPING_CONFIG_FILE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 800*time.Millisecond, cfg.DedupeWindow)
	assert.Equal(t, 48*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.TemporalDisabled)
	assert.True(t, cfg.UsingDevSecret())
	assert.Empty(t, cfg.PostgresDSN)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	t.Setenv("CHECKOUT_TOKEN_SECRET", "s3cret")
	t.Setenv("DEDUPE_WINDOW_MS", "250")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("SHIPPING_CONFIG_FILE", " shipping.yaml ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.TemporalDisabled)
	assert.False(t, cfg.UsingDevSecret())
	assert.Equal(t, 250*time.Millisecond, cfg.DedupeWindow)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "shipping.yaml", cfg.ShippingConfigFile)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"DEDUPE_WINDOW_MS":  "0",
		"SESSION_TTL_HOURS": "0",
		"PORT":              "http",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
