//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/platform/postgres/pgtest"
)

func TestSessionStore_UpdateAndLoad(t *testing.T) {
	store := NewSessionStore(pgtest.Start(t), time.Hour)
	ctx := context.Background()
	id := domain.SessionID("sess-a")

	_, err := store.Load(ctx, id)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, store.Update(ctx, id, func(s *domain.CheckoutSession) error {
		s.Apply(5, "custom", "Vía Cargo")
		s.SetChosenMethods([]string{"mobapp_envio_personalizado:5"})
		return nil
	}))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	sel := loaded.Selection(5)
	assert.Equal(t, "custom", sel.Carrier)
	assert.Equal(t, "Vía Cargo", sel.CustomText)
	assert.Equal(t, []string{"mobapp_envio_personalizado:5"}, loaded.ChosenMethods)
}

func TestSessionStore_NoChangeKeepsState(t *testing.T) {
	store := NewSessionStore(pgtest.Start(t), time.Hour)
	ctx := context.Background()
	id := domain.SessionID("sess-b")

	require.NoError(t, store.Update(ctx, id, func(s *domain.CheckoutSession) error {
		s.Apply(5, "OCA", "")
		return nil
	}))
	require.NoError(t, store.Update(ctx, id, func(s *domain.CheckoutSession) error {
		s.Apply(5, "Andreani", "")
		return ports.ErrNoChange
	}))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "OCA", loaded.Selection(5).Carrier)
}

func TestSessionStore_ConcurrentUpdatesSerialize(t *testing.T) {
	store := NewSessionStore(pgtest.Start(t), time.Hour)
	ctx := context.Background()
	id := domain.SessionID("sess-c")
	require.NoError(t, store.Update(ctx, id, func(*domain.CheckoutSession) error { return nil }))

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(instance int) {
			defer wg.Done()
			assert.NoError(t, store.Update(ctx, id, func(s *domain.CheckoutSession) error {
				s.Apply(shipdomain.InstanceID(instance), "OCA", "")
				return nil
			}))
		}(i)
	}
	wg.Wait()

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, loaded.Selections, 8)
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	store := NewSessionStore(pgtest.Start(t), time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, "sess-old", func(s *domain.CheckoutSession) error {
		s.Apply(1, "OCA", "")
		return nil
	}))

	purged, err := store.PurgeExpired(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
	_, err = store.Load(ctx, "sess-old")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
