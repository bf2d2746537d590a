// Package session holds the per-session application state: the active
// identity, the cart and the checkout flow. State lives in an explicit
// container handed to the HTTP layer, never in package-level variables.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/artisans-corner/storefront/internal/auth"
	"github.com/artisans-corner/storefront/internal/cart"
	"github.com/artisans-corner/storefront/internal/checkout"
	"github.com/artisans-corner/storefront/internal/kvstore"
	"github.com/artisans-corner/storefront/internal/payment"
)

// Session is one browser session's state.
type Session struct {
	ID       string
	Auth     *auth.Notifier
	Cart     *cart.Store
	Checkout *checkout.Flow

	lastSeen time.Time
}

// defaultMaxSessions bounds the in-memory session cache. Cart snapshots
// live in the kv store, so an evicted session rehydrates its cart on the
// next request.
const defaultMaxSessions = 10000

// Manager creates and caches sessions by id, evicting the least recently
// used session once the cap is reached.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	maxSessions int

	kv       kvstore.Store
	provider payment.Provider
	orders   checkout.OrderPlacer
	cfg      checkout.Config
}

func NewManager(kv kvstore.Store, provider payment.Provider, orders checkout.OrderPlacer, cfg checkout.Config) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxSessions: defaultMaxSessions,
		kv:          kv,
		provider:    provider,
		orders:      orders,
		cfg:         cfg,
	}
}

// Get returns the session for the id, creating it on first use. A new
// session starts as a guest with its own session-scoped cart snapshot,
// and its cart follows the session's identity changes.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.lastSeen = time.Now()
		return s
	}

	if len(m.sessions) >= m.maxSessions {
		m.evictOldest()
	}

	s := &Session{
		ID:       id,
		Auth:     auth.NewNotifier(),
		Cart:     cart.NewStore(ctx, m.kv, auth.GuestCartKey(id)),
		lastSeen: time.Now(),
	}
	s.Cart.Subscribe(s.Auth)
	s.Checkout = checkout.NewFlow(s.Cart, m.provider, m.orders, m.cfg)

	m.sessions[id] = s
	return s
}

// evictOldest drops the least recently used session. Callers must hold
// m.mu.
func (m *Manager) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range m.sessions {
		if oldestID == "" || s.lastSeen.Before(oldest) {
			oldestID = id
			oldest = s.lastSeen
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
	}
}
