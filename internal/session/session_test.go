package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisans-corner/storefront/internal/checkout"
	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/kvstore"
	"github.com/artisans-corner/storefront/internal/money"
	"github.com/artisans-corner/storefront/internal/payment"
)

func newTestManager(kv kvstore.Store) *Manager {
	return NewManager(kv, &payment.Sandbox{}, nil, checkout.Config{
		TaxRate: money.RateFromBasisPoints(1000),
	})
}

func TestGuestCartsIsolatedAcrossSessions(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(kvstore.NewMemory())

	a := m.Get(ctx, "visitor-a")
	require.NoError(t, a.Cart.Add(ctx, entity.CartLineItem{ID: "prod-001", Name: "Ceramic Vase", UnitPrice: 250000}))

	b := m.Get(ctx, "visitor-b")
	assert.Empty(t, b.Cart.Items(), "a fresh guest session must start with an empty cart")

	require.NoError(t, b.Cart.Add(ctx, entity.CartLineItem{ID: "prod-002", Name: "Silk Scarf", UnitPrice: 100000}))
	items := a.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "prod-001", items[0].ID, "sessions must not overwrite each other's snapshots")
}

func TestGetReturnsSameSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(kvstore.NewMemory())

	assert.Same(t, m.Get(ctx, "s1"), m.Get(ctx, "s1"))
	assert.NotSame(t, m.Get(ctx, "s1"), m.Get(ctx, "s2"))
}

func TestGuestCartSurvivesRestartWithSameSessionID(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()

	m1 := newTestManager(kv)
	s := m1.Get(ctx, "visitor-a")
	require.NoError(t, s.Cart.Add(ctx, entity.CartLineItem{ID: "prod-001", UnitPrice: 250000}))

	// A new manager over the same kv store models a process restart.
	m2 := newTestManager(kv)
	restored := m2.Get(ctx, "visitor-a")
	require.Len(t, restored.Cart.Items(), 1)
	assert.Equal(t, "prod-001", restored.Cart.Items()[0].ID)
}

func TestEvictsLeastRecentlyUsedAtCap(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(kvstore.NewMemory())
	m.maxSessions = 2

	m.Get(ctx, "s1")
	m.Get(ctx, "s2")
	m.sessions["s1"].lastSeen = time.Now().Add(-time.Hour)
	m.sessions["s2"].lastSeen = time.Now().Add(-time.Minute)

	m.Get(ctx, "s3")

	assert.Len(t, m.sessions, 2)
	assert.NotContains(t, m.sessions, "s1", "the least recently used session is evicted first")
	assert.Contains(t, m.sessions, "s2")
	assert.Contains(t, m.sessions, "s3")
}

func TestEvictedGuestSessionRehydratesCart(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(kvstore.NewMemory())
	m.maxSessions = 1

	s := m.Get(ctx, "visitor-a")
	require.NoError(t, s.Cart.Add(ctx, entity.CartLineItem{ID: "prod-001", UnitPrice: 250000}))

	m.Get(ctx, "visitor-b") // evicts visitor-a

	restored := m.Get(ctx, "visitor-a")
	require.Len(t, restored.Cart.Items(), 1)
	assert.Equal(t, "prod-001", restored.Cart.Items()[0].ID, "the snapshot outlives the in-memory session")
}
