package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-carrier-checkout/internal/platform/temporal/activities/orders"
)

// RunCarrierCommitSequence executes the commit activity once. A failed
// attempt is not retried; the next lifecycle trigger commits instead.
func RunCarrierCommitSequence(ctx workflow.Context, req ordersports.CommitRequest) (ordersports.CommitResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("carrier commit sequence started", "orderId", req.OrderID, "trigger", req.Trigger)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	var result ordersports.CommitResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.CommitCarriersActivityName, req).Get(ctx, &result)
	if err != nil {
		logger.Error("carrier commit sequence failed", "orderId", req.OrderID, "error", err)
		return ordersports.CommitResult{}, err
	}
	logger.Info("carrier commit sequence completed", "orderId", req.OrderID, "committed", result.Committed)
	return result, nil
}
