package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	carrierserver "github.com/Apurer/go-gin-carrier-checkout/go"

	ordersworkflows "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-gin-carrier-checkout/internal/platform/observability"
)

const serviceName = "carrier-checkout-api"

// Run boots the checkout HTTP API with observability, repositories, and workflows wired.
// It returns once ctx is cancelled and the server has drained.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.WithLogLevel(platformobservability.ParseLevel(cfg.LogLevel)))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, cleanup, err := BuildStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	var commits ordersports.CommitOrchestrator = ordersworkflows.NewInlineCommitWorkflows(stack.Orders)
	switch {
	case !stack.Durable:
		logger.Warn("in-memory state cannot be shared with a worker, committing carriers inline")
	default:
		temporalClient, err := ConnectTemporalClient(cfg, instruments, "temporal-client")
		if err != nil {
			logger.Warn("Temporal workflows unavailable, committing carriers inline", slog.String("error", err.Error()))
			break
		}
		defer temporalClient.Close()
		commits = ordersworkflows.NewTemporalCommitWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := carrierserver.ApiHandleFunctions{
		CheckoutAPI:      carrierserver.NewCheckoutAPI(stack.Selection, stack.Shipping, stack.Orders, commits, logger),
		OrdersAPI:        carrierserver.NewOrdersAPI(stack.Orders),
		ShippingAdminAPI: carrierserver.NewShippingAdminAPI(stack.Shipping),
		MetricsAPI:       carrierserver.NewMetricsAPI(instruments),
		SessionCookie: carrierserver.SessionCookieOptions{
			MaxAge: int(cfg.SessionTTL.Seconds()),
			Secure: cfg.SecureCookies,
		},
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router := carrierserver.NewRouterWithGinEngine(engine, handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("checkout API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("checkout API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("checkout API shutdown failed", slog.String("error", err.Error()))
		return err
	}
	logger.Info("checkout API stopped")
	return nil
}
