package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
)

// CommitCarriersActivityName resolves and freezes the carriers of a stored order.
const CommitCarriersActivityName = "orders.activities.CommitCarriers"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ordersports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ordersports.Service) *Activities {
	return &Activities{service: service}
}

// CommitCarriers runs one commit trigger. An order that already carries a
// record completes with Committed false.
func (a *Activities) CommitCarriers(ctx context.Context, req ordersports.CommitRequest) (ordersports.CommitResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("commit carriers activity not initialized", "orderId", req.OrderID)
		return ordersports.CommitResult{}, errors.New("commit carriers activity not initialized")
	}
	logger.Info("CommitCarriers activity started", "orderId", req.OrderID, "trigger", req.Trigger)
	result, err := a.service.Commit(ctx, req)
	if err != nil {
		logger.Error("CommitCarriers activity failed", "orderId", req.OrderID, "error", err)
		return ordersports.CommitResult{}, err
	}
	logger.Info("CommitCarriers activity completed", "orderId", req.OrderID, "committed", result.Committed)
	return result, nil
}
