package ports

import (
	"context"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// Service exposes shipping configuration and quoting to adapters.
type Service interface {
	Instance(ctx context.Context, id domain.InstanceID) (*domain.Instance, error)
	Instances(ctx context.Context) ([]*domain.Instance, error)
	Configure(ctx context.Context, id domain.InstanceID, methodID string, settings domain.Settings) (*domain.Instance, error)
	Quote(ctx context.Context, pkg domain.Package, selections map[domain.InstanceID]domain.Selection) ([]domain.Rate, error)
}
