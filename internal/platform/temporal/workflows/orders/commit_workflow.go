package orders

import (
	"go.temporal.io/sdk/workflow"

	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-carrier-checkout/internal/platform/temporal/sequences"
)

const (
	// CarrierCommitWorkflowName is the public identifier for registering the workflow.
	CarrierCommitWorkflowName = "orders.workflows.CarrierCommit"
	// CarrierCommitTaskQueue is the queue consumed by the worker processing commits.
	CarrierCommitTaskQueue = "ORDER_CARRIER_COMMIT"
)

// CarrierCommitWorkflowInput captures one post-persist commit trigger.
type CarrierCommitWorkflowInput struct {
	Request ordersports.CommitRequest
	TraceID string
}

// CarrierCommitWorkflow freezes the customer's carrier choice onto an order.
func CarrierCommitWorkflow(ctx workflow.Context, input CarrierCommitWorkflowInput) (ordersports.CommitResult, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Request.OrderID
	logger.Info("CarrierCommitWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	result, err := sequences.RunCarrierCommitSequence(ctx, input.Request)
	if err != nil {
		logger.Error("CarrierCommitWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return ordersports.CommitResult{}, err
	}
	logger.Info("CarrierCommitWorkflow completed", withTraceID(input.TraceID, "orderId", orderID, "committed", result.Committed)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
