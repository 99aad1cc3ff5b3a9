package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wc3aura/aura/internal/player"
	"github.com/wc3aura/aura/internal/slot"
	"github.com/wc3aura/aura/internal/wire"
)

func seatTwoTeams(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.Table.Occupy(0, 1))
	require.NoError(t, s.Table.Occupy(1, 2))
	require.NoError(t, s.Table.SetTeam(0, 0))
	require.NoError(t, s.Table.SetTeam(1, 1))
	require.NoError(t, s.Table.SetDownloadProgress(0, 100))
	require.NoError(t, s.Table.SetDownloadProgress(1, 100))
}

func TestCanStartCountdownBlocksOnSingleTeam(t *testing.T) {
	s, _ := newTestSession(t, 4)
	require.NoError(t, s.Table.Occupy(0, 1))
	require.NoError(t, s.Table.SetDownloadProgress(0, 100))

	ok, reason := s.CanStartCountdown(false)
	assert.False(t, ok)
	assert.Equal(t, blockSingleTeam, reason)
}

func TestCanStartCountdownBlocksOnDownloadIncomplete(t *testing.T) {
	s, _ := newTestSession(t, 4)
	seatTwoTeams(t, s)
	require.NoError(t, s.Table.SetDownloadProgress(0, 40))

	ok, reason := s.CanStartCountdown(false)
	assert.False(t, ok)
	assert.Equal(t, blockDownloadIncomplete, reason)
}

func TestCanStartCountdownBlocksOnMissingPingSamples(t *testing.T) {
	s, _ := newTestSession(t, 4)
	seatTwoTeams(t, s)

	ok, reason := s.CanStartCountdown(false)
	assert.False(t, ok)
	assert.Equal(t, blockNoPingSamples, reason)
}

func TestCanStartCountdownSkipsReservedPlayerPingCheck(t *testing.T) {
	s, _ := newTestSession(t, 4)
	seatTwoTeams(t, s)

	s.Players[1] = &player.Player{UID: 1, SID: 0, Reserved: true}
	s.Players[2] = &player.Player{UID: 2, SID: 1}
	for i := 0; i < minPingSamples; i++ {
		s.Players[2].RecordPing(10 * time.Millisecond)
	}

	ok, reason := s.CanStartCountdown(false)
	assert.True(t, ok, reason)
}

func TestForceSkipsAllButChatOnlyChecks(t *testing.T) {
	s, _ := newTestSession(t, 4)
	ok, _ := s.CanStartCountdown(true)
	assert.True(t, ok)

	s.chatOnly = true
	ok, reason := s.CanStartCountdown(true)
	assert.False(t, ok)
	assert.Equal(t, blockChatOnly, reason)
}

func TestCountdownRunsDownAndTransitionsToLoading(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.cfg.CountdownStart = 2
	s.cfg.CountdownStepMS = 500
	ok, reason := s.StartCountdown(true)
	require.True(t, ok, reason)

	now := time.Now()
	s.tickCountdown(now)
	assert.Equal(t, StateLobby, s.State)

	now = now.Add(600 * time.Millisecond)
	s.tickCountdown(now)
	assert.Equal(t, StateLobby, s.State)

	now = now.Add(600 * time.Millisecond)
	s.tickCountdown(now)
	assert.Equal(t, StateLoading, s.State)
}

func TestFinishCountdownInjectsHCLAndDropsVirtualHost(t *testing.T) {
	s, sink := newTestSession(t, 4)
	s.VirtualHostUID = 99
	require.NoError(t, s.Table.Occupy(0, 99))
	s.SetHCL("ab")
	require.NoError(t, s.Table.Occupy(1, 1))

	s.finishCountdown(time.Now())

	assert.Equal(t, byte(0), s.VirtualHostUID)
	assert.Equal(t, StateLoading, s.State)
	sl, err := s.Table.Get(1)
	require.NoError(t, err)
	assert.False(t, slot.IsValidHandicap(sl.Handicap))

	require.Len(t, sink.broadcast, 2)
	assert.Equal(t, byte(wire.MsgCountdownStart), readFrameType(t, sink.broadcast[0]))
	assert.Equal(t, byte(wire.MsgCountdownEnd), readFrameType(t, sink.broadcast[1]))
}
