package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_Switch(t *testing.T) {
	session := NewSession("alice")
	assert.Equal(t, "alice", session.CurrentUserID())

	var changes [][2]string
	unsubscribe := session.Subscribe(func(previous, current string) {
		changes = append(changes, [2]string{previous, current})
	})

	t.Run("switch to another user notifies listeners", func(t *testing.T) {
		previous := session.Switch("bob")
		assert.Equal(t, "alice", previous)
		assert.Equal(t, "bob", session.CurrentUserID())
		assert.Equal(t, [][2]string{{"alice", "bob"}}, changes)
	})

	t.Run("switch to same user is silent", func(t *testing.T) {
		session.Switch("bob")
		assert.Len(t, changes, 1)
	})

	t.Run("sign out clears identity", func(t *testing.T) {
		previous := session.SignOut()
		assert.Equal(t, "bob", previous)
		assert.Equal(t, "", session.CurrentUserID())
		assert.Len(t, changes, 2)
	})

	t.Run("unsubscribed listener is not called", func(t *testing.T) {
		unsubscribe()
		session.Switch("carol")
		assert.Len(t, changes, 2)
	})
}
