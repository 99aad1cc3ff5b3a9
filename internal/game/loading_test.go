package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGameLoadedTransitionsOnceEveryoneReports(t *testing.T) {
	s, _ := newTestSession(t, 4)
	require.NoError(t, s.Table.Occupy(0, 1))
	require.NoError(t, s.Table.Occupy(1, 2))
	s.State = StateLoading
	s.loadStart = time.Now()

	s.RecordGameLoaded(1, time.Now().Add(time.Second))
	assert.Equal(t, StateLoading, s.State)

	s.RecordGameLoaded(2, time.Now().Add(2*time.Second))
	assert.Equal(t, StatePlaying, s.State)

	longest, ok := s.LongestLoadTime()
	require.True(t, ok)
	shortest, ok := s.ShortestLoadTime()
	require.True(t, ok)
	assert.GreaterOrEqual(t, longest, shortest)
}

func TestRecordGameLoadedIgnoredOutsideLoadingState(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.State = StateLobby
	s.RecordGameLoaded(1, time.Now())
	_, ok := s.LongestLoadTime()
	assert.False(t, ok)
}
