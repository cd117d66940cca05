package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

var ErrNotFound = errors.New("shipping instance not found")

// Registry stores shipping instance configuration.
type Registry interface {
	Save(ctx context.Context, instance *domain.Instance) (*domain.Instance, error)
	Get(ctx context.Context, id domain.InstanceID) (*domain.Instance, error)
	List(ctx context.Context) ([]*domain.Instance, error)
	Delete(ctx context.Context, id domain.InstanceID) error
}
