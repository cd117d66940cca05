package ports

import (
	"context"

	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// SessionReader loads the checkout session a commit resolves from.
type SessionReader interface {
	Session(ctx context.Context, id seldomain.SessionID) (*seldomain.CheckoutSession, error)
}

// InstanceLookup returns the configuration of a shipping instance.
type InstanceLookup interface {
	Get(ctx context.Context, id shipdomain.InstanceID) (*shipdomain.Instance, error)
}
