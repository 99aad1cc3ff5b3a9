package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoteSyncCounterMarksAndClearsLaggers(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.cfg.SyncLimit = 10
	s.cfg.SyncLimitSafe = 2
	s.syncCounter = 20

	s.NoteSyncCounter(1, 5) // behind 15 >= 10
	assert.True(t, s.laggers[1])

	s.NoteSyncCounter(1, 19) // behind 1 <= 2
	assert.False(t, s.laggers[1])
}

func TestVoteDropKicksLaggersOnMajority(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.Table.Occupy(0, 1)
	s.Table.Occupy(1, 2)
	s.Table.Occupy(2, 3)
	s.Players[1] = nil
	s.laggers = map[byte]bool{3: true}

	active := []byte{1, 2, 3}
	s.VoteDrop(1, active)
	assert.True(t, s.laggers[3]) // only 1 of 2 non-lagging voted, not yet majority

	s.VoteDrop(2, active)
	assert.False(t, s.laggers[3])
}

func TestTickLagScreenOpensOnFirstLagger(t *testing.T) {
	s, _ := newTestSession(t, 4)
	now := time.Now()
	s.laggers = map[byte]bool{1: true}

	s.tickLagScreen(now)
	assert.True(t, s.lagScreenOn)

	s.laggers = map[byte]bool{}
	s.tickLagScreen(now)
	assert.False(t, s.lagScreenOn)
}
