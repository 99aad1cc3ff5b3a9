package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeOwnershipOnlyOnce(t *testing.T) {
	s, _ := newTestSession(t, 4)
	require.True(t, s.TakeOwnership("alice", 0, time.Now()))
	assert.False(t, s.TakeOwnership("bob", 0, time.Now()))
	assert.Equal(t, "alice", s.OwnerName())
}

func TestTickOwnershipReleasesAfterTimeout(t *testing.T) {
	s, _ := newTestSession(t, 4)
	now := time.Now()
	s.cfg.ReleaseOwnerSeconds = 10
	s.TakeOwnership("alice", 0, now)

	s.tickOwnership(now.Add(5 * time.Second))
	assert.True(t, s.HasOwner())

	s.tickOwnership(now.Add(11 * time.Second))
	assert.False(t, s.HasOwner())
}

func TestTickOwnershipDestroysOrphanLobby(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.cfg.DeleteOrphanLobbySeconds = 10
	s.createdAt = time.Now().Add(-20 * time.Second)

	s.tickOwnership(time.Now())
	assert.Equal(t, StateDestroyed, s.State)
}
