package auth

import (
	"fmt"
	"sync"
)

// Identity is the guest or authenticated-user context that scopes which
// persisted cart snapshot is live. The zero value is the guest.
type Identity struct {
	UserID string
}

// Guest returns the guest identity.
func Guest() Identity {
	return Identity{}
}

// User returns the identity of an authenticated user.
func User(id string) Identity {
	return Identity{UserID: id}
}

func (i Identity) IsGuest() bool {
	return i.UserID == ""
}

// CartKey derives the persistence key for an authenticated user's cart
// snapshot. Guest snapshots are keyed per session with GuestCartKey, never
// through this method, so anonymous visitors cannot share a cart.
func (i Identity) CartKey() string {
	return "cart_" + i.UserID
}

// GuestCartKey derives the snapshot key for an anonymous session's cart.
// The session id scopes the key: two concurrent visitors get two keys.
func GuestCartKey(sessionID string) string {
	return "cart_guest_" + sessionID
}

func (i Identity) String() string {
	if i.IsGuest() {
		return "guest"
	}
	return "user:" + i.UserID
}

// Notifier tracks the active identity for a session and tells subscribers
// when it changes. Subscribers are invoked synchronously, in registration
// order, while the change is applied.
type Notifier struct {
	mu      sync.Mutex
	current Identity
	subs    []func(Identity)
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Current returns the active identity.
func (n *Notifier) Current() Identity {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Subscribe registers a callback invoked on every identity change.
func (n *Notifier) Subscribe(fn func(Identity)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Login switches the active identity to the given user.
func (n *Notifier) Login(userID string) error {
	if userID == "" {
		return fmt.Errorf("auth: user id must not be empty")
	}
	n.set(User(userID))
	return nil
}

// Logout switches the active identity back to the guest.
func (n *Notifier) Logout() {
	n.set(Guest())
}

func (n *Notifier) set(id Identity) {
	n.mu.Lock()
	n.current = id
	subs := make([]func(Identity), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}
