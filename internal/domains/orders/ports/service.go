package ports

import (
	"context"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// CommitRequest asks for the carrier record of an order to be resolved
// from the order's checkout session and an optional form submission. Session
// may be left empty; when set it must name the session that placed the order.
type CommitRequest struct {
	OrderID    int64                    `json:"orderId"`
	Trigger    domain.Trigger           `json:"trigger"`
	Session    seldomain.SessionID      `json:"session"`
	Submission seldomain.FormSubmission `json:"submission"`
}

// CommitResult reports whether a trigger wrote the record.
type CommitResult struct {
	Committed bool                             `json:"committed"`
	Carriers  map[shipdomain.InstanceID]string `json:"carriers,omitempty"`
}

// PlaceOrderInput is a checkout submission.
type PlaceOrderInput struct {
	Session    seldomain.SessionID
	Submission seldomain.FormSubmission
}

// CarrierDescription is one committed carrier ready for display.
type CarrierDescription struct {
	Instance shipdomain.InstanceID
	Title    string
	Carrier  string
}

// Service exposes the order commit use cases to adapters.
type Service interface {
	Validate(ctx context.Context, session seldomain.SessionID, submission seldomain.FormSubmission) ([]domain.Notice, error)
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error)
	Commit(ctx context.Context, req CommitRequest) (CommitResult, error)
	ThankYou(ctx context.Context, orderID int64) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	DescribeCarriers(ctx context.Context, order *domain.Order) ([]CarrierDescription, error)
}

// CommitOrchestrator runs post-persist commits, durably or inline.
type CommitOrchestrator interface {
	Commit(ctx context.Context, req CommitRequest) (CommitResult, error)
}
