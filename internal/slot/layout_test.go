package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occupyN(t *testing.T, tbl *Table, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, tbl.Occupy(i, byte(i+1)))
	}
}

func TestApplyLayoutOneVsAll(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	occupyN(t, tbl, 4)

	require.NoError(t, tbl.ApplyLayout(PresetOneVsAll, 0))

	anchor, _ := tbl.Get(0)
	assert.Equal(t, byte(0), anchor.Team)
	for i := 1; i < 4; i++ {
		s, _ := tbl.Get(i)
		assert.Equal(t, byte(1), s.Team)
	}
}

func TestApplyLayoutFFAAssignsDistinctTeams(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	occupyN(t, tbl, 4)

	require.NoError(t, tbl.ApplyLayout(PresetFFA, 0))

	seen := map[byte]bool{}
	for i := 0; i < 4; i++ {
		s, _ := tbl.Get(i)
		assert.False(t, seen[s.Team], "team %d reused", s.Team)
		seen[s.Team] = true
	}
}

func TestApplyLayoutHumansVsAI(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))
	require.NoError(t, tbl.Occupy(1, 2))
	require.NoError(t, tbl.SetComputer(2, DifficultyNormal))
	require.NoError(t, tbl.SetComputer(3, DifficultyHard))

	require.NoError(t, tbl.ApplyLayout(PresetHumansVsAI, 0))

	h0, _ := tbl.Get(0)
	h1, _ := tbl.Get(1)
	c0, _ := tbl.Get(2)
	c1, _ := tbl.Get(3)
	assert.Equal(t, h0.Team, h1.Team)
	assert.Equal(t, c0.Team, c1.Team)
	assert.NotEqual(t, h0.Team, c0.Team)
}

func TestApplyLayoutDraftRequiresObservers(t *testing.T) {
	s := freeSettings()
	s.ObserversAllowed = false
	tbl := NewTable(4, s)
	occupyN(t, tbl, 4)

	err := tbl.ApplyLayout(PresetDraft, 0)
	assert.ErrorIs(t, err, ErrLockedByFixedPlayerSettings)
}

func TestApplyLayoutDraftRejectedOnCustomForces(t *testing.T) {
	s := freeSettings()
	s.CustomForces = true
	tbl := NewTable(4, s)
	occupyN(t, tbl, 4)

	err := tbl.ApplyLayout(PresetDraft, 0)
	assert.ErrorIs(t, err, ErrLockedByCustomForces)
}

func TestApplyLayoutAnyIsNoop(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	occupyN(t, tbl, 4)
	require.NoError(t, tbl.SetTeam(0, 3))

	require.NoError(t, tbl.ApplyLayout(PresetAny, 0))

	s, _ := tbl.Get(0)
	assert.Equal(t, byte(3), s.Team)
}

func TestApplyLayoutIsoPlayersSplitsEvenly(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	occupyN(t, tbl, 4)

	require.NoError(t, tbl.ApplyLayout(PresetIsoPlayers, 0))

	counts := map[byte]int{}
	for i := 0; i < 4; i++ {
		s, _ := tbl.Get(i)
		counts[s.Team]++
	}
	assert.Len(t, counts, 2)
	for _, c := range counts {
		assert.Equal(t, 2, c)
	}
}

func TestApplyLayoutOnCustomForcesUsesSwap(t *testing.T) {
	s := freeSettings()
	s.CustomForces = true
	tbl := NewTable(4, s)
	// Two physical teams fixed to slots: {0,1}=team0, {2,3}=team1.
	tbl.slots[0].Team, tbl.slots[1].Team = 0, 0
	tbl.slots[2].Team, tbl.slots[3].Team = 1, 1
	occupyN(t, tbl, 4)
	// Slot 2 (team 1) becomes a computer; the human in slot 3 sits on team 1
	// with it, so humans-vs-AI has to move occupants by Swap.
	require.NoError(t, tbl.SetComputer(2, DifficultyNormal))

	err := tbl.ApplyLayout(PresetHumansVsAI, 0)
	assert.NoError(t, err)
}
