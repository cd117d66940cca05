package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	selpostgres "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/go-gin-carrier-checkout/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-carrier-checkout/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: platformobservability.ParseLevel(os.Getenv("LOG_LEVEL"))}))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger, platformpostgres.WithApplicationName("carrier-checkout-session-purger"))
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge checkout sessions")
	}

	store := selpostgres.NewSessionStore(db, sessionTTLFromEnv())
	purged, err := store.PurgeExpired(ctx, time.Now())
	if err != nil {
		log.Fatalf("failed to purge checkout sessions: %v", err)
	}
	logger.Info("checkout session purge completed", slog.Int64("purged", purged))
}

func sessionTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS"))
	if raw == "" {
		return selpostgres.DefaultSessionTTL
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return selpostgres.DefaultSessionTTL
	}
	return time.Duration(hours) * time.Hour
}
