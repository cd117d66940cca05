package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository persists orders.
type Repository interface {
	// Create assigns an id when the order has none and stores it.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	// Update applies fn to the order atomically and persists the result
	// only when fn returns nil.
	Update(ctx context.Context, id int64, fn func(*domain.Order) error) (*domain.Order, error)
}
