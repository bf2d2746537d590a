// Package cart implements the per-session shopping cart: an in-memory
// ordered list of line items mirrored to a durable key-value snapshot
// after every mutation, keyed by the active identity.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/artisans-corner/storefront/internal/auth"
	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/kvstore"
)

// Store maintains the authoritative in-memory cart for the active identity.
// The durable snapshot is best-effort: write failures are logged and
// swallowed, and the in-memory cart stays the source of truth for the rest
// of the session.
type Store struct {
	mu       sync.Mutex
	identity auth.Identity
	guestKey string
	items    []entity.CartLineItem
	kv       kvstore.Store
}

// NewStore creates a cart owned by the guest identity, hydrated from the
// snapshot persisted under guestKey if one exists. guestKey scopes the
// anonymous cart to a single session; authenticated snapshots are keyed
// by identity instead.
func NewStore(ctx context.Context, kv kvstore.Store, guestKey string) *Store {
	s := &Store{kv: kv, guestKey: guestKey}
	s.items = s.load(ctx, guestKey)
	return s
}

// Subscribe wires the cart to identity changes: login replaces the live
// cart with the new identity's snapshot, logout resets to an empty guest
// cart.
func (s *Store) Subscribe(n *auth.Notifier) {
	n.Subscribe(func(id auth.Identity) {
		if id.IsGuest() {
			s.ResetToGuest()
			return
		}
		s.SwitchIdentity(context.Background(), id)
	})
}

// Identity returns the identity that currently owns the cart.
func (s *Store) Identity() auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Items returns a copy of the cart's line items in insertion order.
func (s *Store) Items() []entity.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Add puts a product into the cart. The quantity on the incoming item is
// ignored: each call adds exactly one unit, matching the storefront's
// add-to-cart behavior, and new lines always start at quantity 1. Callers
// needing a specific quantity follow up with SetQuantity. A negative unit
// price is treated as 0.
func (s *Store) Add(ctx context.Context, item entity.CartLineItem) error {
	if item.ID == "" {
		return fmt.Errorf("cart: line item must have an id")
	}
	if item.UnitPrice < 0 {
		item.UnitPrice = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity++
			s.persist(ctx)
			return nil
		}
	}

	item.Quantity = 1
	s.items = append(s.items, item)
	s.persist(ctx)
	return nil
}

// Remove deletes the line with the given id. Removing an absent id is a
// no-op; the snapshot is persisted either way.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persist(ctx)
}

// SetQuantity sets the matching line's quantity. The store accepts any
// integer, including non-positive values; clamping to >= 1 is the caller's
// responsibility.
func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.persist(ctx)
}

// Clear empties the cart and deletes the persisted snapshot entirely, so a
// later read finds it absent rather than an empty list.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	key := s.keyFor(s.identity)
	if err := s.kv.Delete(ctx, key); err != nil {
		slog.Error("Failed to delete cart snapshot", "key", key, "err", err)
	}
}

// SwitchIdentity hands the cart to a new identity, replacing the live
// items with whatever snapshot is stored under the new identity's key.
// The previous identity's cart is never merged in.
func (s *Store) SwitchIdentity(ctx context.Context, id auth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = id
	s.items = s.load(ctx, s.keyFor(id))
}

// ResetToGuest returns the cart to an empty guest cart. The persisted
// guest snapshot is deliberately not restored on logout.
func (s *Store) ResetToGuest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = auth.Guest()
	s.items = nil
}

// keyFor resolves the snapshot key for an identity: the session-scoped
// guest key for anonymous carts, the identity-derived key otherwise.
func (s *Store) keyFor(id auth.Identity) string {
	if id.IsGuest() {
		return s.guestKey
	}
	return id.CartKey()
}

// persist mirrors the full cart to the durable store under the active
// identity's key. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	key := s.keyFor(s.identity)

	snapshot, err := json.Marshal(s.items)
	if err != nil {
		slog.Error("Failed to marshal cart snapshot", "key", key, "err", err)
		return
	}

	if err := s.kv.Set(ctx, key, string(snapshot)); err != nil {
		slog.Error("Failed to persist cart snapshot", "key", key, "err", err)
	}
}

// load reads the snapshot under a key. A missing key or a snapshot that
// fails to decode both count as an empty cart.
func (s *Store) load(ctx context.Context, key string) []entity.CartLineItem {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if err != kvstore.ErrNotFound {
			slog.Error("Failed to read cart snapshot", "key", key, "err", err)
		}
		return nil
	}

	var items []entity.CartLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Error("Failed to decode cart snapshot, starting empty", "key", key, "err", err)
		return nil
	}
	return items
}
