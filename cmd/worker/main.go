package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-carrier-checkout/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-carrier-checkout/internal/platform/observability"
	orderactivities "github.com/Apurer/go-gin-carrier-checkout/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-carrier-checkout/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "carrier-checkout-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.WithLogLevel(platformobservability.ParseLevel(cfg.LogLevel)))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, cleanup, err := api.BuildStack(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	if !stack.Durable {
		logger.Warn("worker running on in-memory repositories, commits will not see API state")
	}
	commitActivities := orderactivities.NewActivities(stack.Orders)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.CarrierCommitTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.CarrierCommitWorkflow, workflow.RegisterOptions{Name: orderworkflows.CarrierCommitWorkflowName})
	w.RegisterActivityWithOptions(commitActivities.CommitCarriers, activity.RegisterOptions{Name: orderactivities.CommitCarriersActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.CarrierCommitTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
