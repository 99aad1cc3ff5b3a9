package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidHCLString(t *testing.T) {
	assert.True(t, ValidHCLString("abc123 -=,."))
	assert.False(t, ValidHCLString("ABC")) // uppercase not in the alphabet
	assert.False(t, ValidHCLString("#"))
}

func TestEncodeHCLRewritesOccupiedHandicaps(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))
	require.NoError(t, tbl.Occupy(1, 2))
	require.NoError(t, tbl.SetHandicap(0, 100))
	require.NoError(t, tbl.SetHandicap(1, 100))

	ok := tbl.EncodeHCL("ab")
	require.True(t, ok)

	s0, _ := tbl.Get(0)
	s1, _ := tbl.Get(1)
	assert.False(t, IsValidHandicap(s0.Handicap))
	assert.False(t, IsValidHandicap(s1.Handicap))
	assert.Equal(t, "ab", string([]byte{decodeHCLChar(s0.Handicap), decodeHCLChar(s1.Handicap)}))
}

func TestEncodeHCLRejectsOverflow(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))

	ok := tbl.EncodeHCL("toolong")
	assert.False(t, ok)

	s0, _ := tbl.Get(0)
	assert.Equal(t, byte(0), s0.Handicap) // untouched
}

func TestEncodeHCLRejectsInvalidCharacters(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))

	assert.False(t, tbl.EncodeHCL("HELLO"))
}

func TestEncodeHCLEmptyIsNoop(t *testing.T) {
	tbl := NewTable(4, freeSettings())
	require.NoError(t, tbl.Occupy(0, 1))
	assert.False(t, tbl.EncodeHCL(""))
}
