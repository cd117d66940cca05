package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

const (
	defaultDedupeWindow = 800 * time.Millisecond
	defaultSessionTTL   = 48 * time.Hour
	devTokenSecret      = "dev-only-checkout-secret"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port               string
	PostgresDSN        string
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	TokenSecret        string
	DedupeWindow       time.Duration
	SessionTTL         time.Duration
	SecureCookies      bool
	ShippingConfigFile string
	LogLevel           string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:               envDefault("PORT", "8080"),
		PostgresDSN:        strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		TokenSecret:        envDefault("CHECKOUT_TOKEN_SECRET", devTokenSecret),
		DedupeWindow:       defaultDedupeWindow,
		SessionTTL:         defaultSessionTTL,
		SecureCookies:      isTruthy(os.Getenv("SECURE_COOKIES")),
		ShippingConfigFile: strings.TrimSpace(os.Getenv("SHIPPING_CONFIG_FILE")),
		LogLevel:           envDefault("LOG_LEVEL", "info"),
	}
	if raw := strings.TrimSpace(os.Getenv("DEDUPE_WINDOW_MS")); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return Config{}, errors.New("DEDUPE_WINDOW_MS must be a positive integer")
		}
		cfg.DedupeWindow = time.Duration(ms) * time.Millisecond
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, errors.New("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric: %q", cfg.Port)
	}
	return cfg, nil
}

// UsingDevSecret reports whether tokens are signed with the built-in development secret.
func (c Config) UsingDevSecret() bool {
	return c.TokenSecret == devTokenSecret
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
