package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

func newOrder() *domain.Order {
	return domain.NewOrder("sess", []domain.ShippingLine{
		{ID: 1, MethodID: shipdomain.MethodCustomCarrier, InstanceID: 5, MethodTitle: "Envío"},
	}, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestCreate_AssignsIDsAndIsolatesCopies(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, newOrder())
	require.NoError(t, err)
	second, err := repo.Create(ctx, newOrder())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	first.ShippingLines[0].MethodTitle = "mutated"
	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Envío", stored.ShippingLines[0].MethodTitle)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpdate_AppliesOnceAndDiscardsFailures(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	order, err := repo.Create(ctx, newOrder())
	require.NoError(t, err)

	record := domain.CarrierRecord{Carriers: map[shipdomain.InstanceID]string{5: "OCA"}, Trigger: domain.TriggerOrderProcessed}
	updated, err := repo.Update(ctx, order.ID, func(o *domain.Order) error { return o.CommitCarriers(record) })
	require.NoError(t, err)
	assert.Equal(t, "Envío - OCA", updated.ShippingLines[0].MethodTitle)

	_, err = repo.Update(ctx, order.ID, func(o *domain.Order) error { return o.CommitCarriers(record) })
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)

	boom := errors.New("boom")
	_, err = repo.Update(ctx, order.ID, func(o *domain.Order) error {
		o.ShippingLines[0].MethodTitle = "lost"
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Envío - OCA", stored.ShippingLines[0].MethodTitle)
}

func TestMissingOrders(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 7)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.Update(ctx, 7, func(*domain.Order) error { return nil })
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, 7), ports.ErrNotFound)
}
