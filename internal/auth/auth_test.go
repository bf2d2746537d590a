package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartKeyDerivation(t *testing.T) {
	assert.Equal(t, "cart_alice", User("alice").CartKey())
	assert.Equal(t, "cart_bob", User("bob").CartKey())
}

func TestGuestCartKeyScopedBySession(t *testing.T) {
	assert.Equal(t, "cart_guest_s1", GuestCartKey("s1"))
	assert.NotEqual(t, GuestCartKey("s1"), GuestCartKey("s2"))
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "guest", Guest().String())
	assert.Equal(t, "user:alice", User("alice").String())
}

func TestNotifierLoginLogout(t *testing.T) {
	n := NewNotifier()
	assert.True(t, n.Current().IsGuest())

	var seen []Identity
	n.Subscribe(func(id Identity) { seen = append(seen, id) })

	require.NoError(t, n.Login("alice"))
	assert.Equal(t, User("alice"), n.Current())

	n.Logout()
	assert.True(t, n.Current().IsGuest())

	assert.Equal(t, []Identity{User("alice"), Guest()}, seen)
}

func TestLoginRejectsEmptyUserID(t *testing.T) {
	n := NewNotifier()
	assert.Error(t, n.Login(""))
	assert.True(t, n.Current().IsGuest())
}

func TestAllSubscribersNotified(t *testing.T) {
	n := NewNotifier()
	var a, b int
	n.Subscribe(func(Identity) { a++ })
	n.Subscribe(func(Identity) { b++ })

	require.NoError(t, n.Login("alice"))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
