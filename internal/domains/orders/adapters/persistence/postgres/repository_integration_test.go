//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/platform/postgres/pgtest"
)

func newOrder() *domain.Order {
	return domain.NewOrder("sess-1", []domain.ShippingLine{{
		ID:          1,
		MethodID:    shipdomain.MethodCustomCarrier,
		InstanceID:  5,
		MethodTitle: "Envío a domicilio",
		Total:       1200,
	}}, time.Now().UTC())
}

func record(trigger domain.Trigger) domain.CarrierRecord {
	return domain.CarrierRecord{
		Carriers:     map[shipdomain.InstanceID]string{5: "Andreani"},
		MethodTitles: map[shipdomain.InstanceID]string{5: "Envío a domicilio"},
		Trigger:      trigger,
		ResolvedAt:   time.Now().UTC(),
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newOrder())
	require.NoError(t, err)
	require.Positive(t, created.ID)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", fetched.SessionID)
	require.Len(t, fetched.ShippingLines, 1)
	assert.Equal(t, shipdomain.InstanceID(5), fetched.ShippingLines[0].InstanceID)
	assert.False(t, fetched.HasCarriers())

	_, err = repo.GetByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateCommitsOnce(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	created, err := repo.Create(ctx, newOrder())
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, func(o *domain.Order) error {
		return o.CommitCarriers(record(domain.TriggerOrderCreated))
	})
	require.NoError(t, err)
	assert.Equal(t, "Envío a domicilio - Andreani", updated.ShippingLines[0].MethodTitle)

	_, err = repo.Update(ctx, created.ID, func(o *domain.Order) error {
		return o.CommitCarriers(record(domain.TriggerThankYou))
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TriggerOrderCreated, fetched.Carriers.Trigger)
	assert.Equal(t, "Andreani", fetched.Carriers.Carriers[5])
}

func TestRepository_ConcurrentCommitsWriteOnce(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	created, err := repo.Create(ctx, newOrder())
	require.NoError(t, err)

	triggers := []domain.Trigger{domain.TriggerOrderCreated, domain.TriggerOrderProcessed, domain.TriggerThankYou}
	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, trigger := range triggers {
		wg.Add(1)
		go func(trigger domain.Trigger) {
			defer wg.Done()
			_, err := repo.Update(ctx, created.ID, func(o *domain.Order) error {
				return o.CommitCarriers(record(trigger))
			})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrAlreadyResolved):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(trigger)
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Envío a domicilio - Andreani", fetched.ShippingLines[0].MethodTitle)
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, newOrder())
		require.NoError(t, err)
	}
	orders, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}
