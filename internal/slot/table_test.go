package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeSettings() MapSettings {
	return MapSettings{Version: 29, ObserversAllowed: true, MapCommSlot: -1}
}

func fixedSettings() MapSettings {
	s := freeSettings()
	s.FixedPlayerSettings = true
	return s
}

func TestOccupyVacateRoundTrip(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 5))
	require.NoError(t, tbl.SetColor(0, 0))

	got, err := tbl.FindByUID(5)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	require.NoError(t, tbl.Vacate(0))
	_, err = tbl.FindByUID(5)
	assert.ErrorIs(t, err, ErrNoSuchUID)
}

func TestCloseIsIdempotent(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Close(1))
	tbl.ClearDirty()

	require.NoError(t, tbl.Close(1)) // second close: no-op, no error
	assert.False(t, tbl.Dirty())
}

func TestSetColorRejectsDuplicate(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))
	require.NoError(t, tbl.Occupy(1, 2))
	require.NoError(t, tbl.SetColor(0, 3))

	err := tbl.SetColor(1, 3)
	assert.ErrorIs(t, err, ErrWouldDuplicateColor)
}

func TestSetTeamLockedByFixedPlayerSettings(t *testing.T) {
	tbl := NewTable(4, fixedSettings())
	require.NoError(t, tbl.Occupy(0, 1))

	err := tbl.SetTeam(0, 1)
	assert.ErrorIs(t, err, ErrLockedByFixedPlayerSettings)
}

func TestVacateRefusesToOrphanLastController(t *testing.T) {
	tbl := NewTable(2, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))

	err := tbl.Vacate(0)
	assert.ErrorIs(t, err, ErrWouldOrphanLastController)
}

func TestOutOfRangeSlotIndex(t *testing.T) {
	tbl := NewTable(2, freeSettings())
	assert.ErrorIs(t, tbl.Open(5), ErrSlotOutOfRange)
	assert.ErrorIs(t, tbl.Close(-1), ErrSlotOutOfRange)
}

func TestSwapExchangesOccupants(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))
	require.NoError(t, tbl.Occupy(1, 2))

	require.NoError(t, tbl.Swap(0, 1))

	a, err := tbl.FindByUID(2)
	require.NoError(t, err)
	assert.Equal(t, 0, a)

	b, err := tbl.FindByUID(1)
	require.NoError(t, err)
	assert.Equal(t, 1, b)
}

func TestShuffleRejectedOnFixedPlayerSettings(t *testing.T) {
	tbl := NewTable(4, fixedSettings())
	err := tbl.Shuffle()
	assert.ErrorIs(t, err, ErrLockedByFixedPlayerSettings)
}

func TestShufflePreservesTeamComposition(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))
	require.NoError(t, tbl.SetTeam(0, 0))
	require.NoError(t, tbl.Occupy(1, 2))
	require.NoError(t, tbl.SetTeam(1, 0))
	require.NoError(t, tbl.Occupy(2, 3))
	require.NoError(t, tbl.SetTeam(2, 1))

	require.NoError(t, tbl.Shuffle())

	teamCounts := map[byte]int{}
	for _, s := range tbl.Slots() {
		if s.Status == StatusOccupied {
			teamCounts[s.Team]++
		}
	}
	assert.Equal(t, 2, teamCounts[0])
	assert.Equal(t, 1, teamCounts[1])
}

func TestAllDownloadsComplete(t *testing.T) {
	tbl := NewTable(2, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))
	require.NoError(t, tbl.Occupy(1, 2))
	assert.False(t, tbl.AllDownloadsComplete())

	require.NoError(t, tbl.SetDownloadProgress(0, 100))
	require.NoError(t, tbl.SetDownloadProgress(1, 100))
	assert.True(t, tbl.AllDownloadsComplete())
}

func TestFindOpenByRole(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.SetTeam(2, ObserverTeam(tbl.Settings().Version)))

	sid := tbl.FindOpen(RoleAny)
	assert.GreaterOrEqual(t, sid, 0)

	obsSID := tbl.FindOpen(RoleObserver)
	assert.Equal(t, 2, obsSID)
}
