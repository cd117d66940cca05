package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	ordersmemory "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	selmemory "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/adapters/memory"
	selobs "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/adapters/observability"
	selpostgres "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/adapters/token"
	selapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/application"
	selports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/ports"
	shipmemory "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/adapters/memory"
	shipobs "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/adapters/observability"
	shippostgres "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/adapters/seed"
	shipapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/application"
	shipports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
	"github.com/Apurer/go-gin-carrier-checkout/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-carrier-checkout/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-carrier-checkout/internal/platform/postgres"
)

// Stack holds the decorated services of every bounded context.
type Stack struct {
	Shipping  shipports.Service
	Selection selports.Service
	Orders    ordersports.Service
	// Durable is true when state lives in PostgreSQL and is shared across processes.
	Durable bool
}

// BuildStack wires repositories and services. PostgreSQL is used when the
// DSN is set and reachable; otherwise every context runs in memory.
func BuildStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Stack, func(), error) {
	logger := effectiveLogger(instruments)
	applicationName := ""
	if instruments != nil {
		applicationName = instruments.ServiceName
	}
	db, cleanup := openDatabase(ctx, cfg, applicationName, logger)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	var (
		registry shipports.Registry
		sessions selports.SessionStore
		orders   ordersports.Repository
	)
	if db != nil {
		registry = shippostgres.NewRegistry(db)
		sessions = selpostgres.NewSessionStore(db, cfg.SessionTTL)
		orders = orderspostgres.NewRepository(db)
	} else {
		registry = shipmemory.NewRegistry()
		sessions = selmemory.NewSessionStore(selmemory.WithTTL(cfg.SessionTTL))
		orders = ordersmemory.NewRepository()
	}

	shipping := shipobs.New(
		shipapp.NewService(registry),
		shipobs.WithLogger(logger),
		shipobs.WithTracer(instruments.Tracer("internal.shipping.application")),
		shipobs.WithMeter(instruments.Meter("internal.shipping.application")),
	)
	if cfg.UsingDevSecret() {
		logger.Warn("CHECKOUT_TOKEN_SECRET not set, signing checkout tokens with the development secret")
	}
	selection := selobs.New(
		selapp.NewService(sessions, token.NewVerifier([]byte(cfg.TokenSecret)), selapp.WithDedupeWindow(cfg.DedupeWindow)),
		selobs.WithLogger(logger),
		selobs.WithTracer(instruments.Tracer("internal.selection.application")),
		selobs.WithMeter(instruments.Meter("internal.selection.application")),
	)
	orderService := ordersobs.New(
		ordersapp.NewService(orders, selection, registry),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	if cfg.ShippingConfigFile != "" {
		file, err := seed.Load(cfg.ShippingConfigFile)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to load shipping config: %w", err)
		}
		applied, err := seed.Apply(ctx, shipping, file)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to apply shipping config: %w", err)
		}
		logger.Info("shipping instances seeded", slog.String("file", cfg.ShippingConfigFile), slog.Int("instances", len(applied)))
	}

	return &Stack{Shipping: shipping, Selection: selection, Orders: orderService, Durable: db != nil}, cleanup, nil
}

func openDatabase(ctx context.Context, cfg Config, applicationName string, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, platformpostgres.WithApplicationName(applicationName))
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("repositories configured with postgres")
	return db, func() { _ = sqlDB.Close() }
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
