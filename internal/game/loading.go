package game

import (
	"time"

	"github.com/wc3aura/aura/internal/slot"
)

// RecordGameLoaded marks uid as finished loading (on receipt of
// GAMELOADED_SELF) and, once every occupied user slot has reported in,
// transitions the session into the playing state.
func (s *Session) RecordGameLoaded(uid byte, now time.Time) {
	if s.State != StateLoading {
		return
	}
	if _, ok := s.loadTimes[uid]; ok {
		return
	}
	s.loadTimes[uid] = now.Sub(s.loadStart)

	for _, sl := range s.Table.Slots() {
		if sl.Status != slot.StatusOccupied || sl.Type != slot.TypeUser {
			continue
		}
		if _, done := s.loadTimes[sl.UID]; !done {
			return
		}
	}

	s.State = StatePlaying
	s.nextFlushAt = now
}

// LongestLoadTime and ShortestLoadTime summarize the recorded per-player
// load durations; ok is false if nobody has finished loading yet.
func (s *Session) LongestLoadTime() (d time.Duration, ok bool) {
	for _, v := range s.loadTimes {
		if !ok || v > d {
			d, ok = v, true
		}
	}
	return
}

func (s *Session) ShortestLoadTime() (d time.Duration, ok bool) {
	for _, v := range s.loadTimes {
		if !ok || v < d {
			d, ok = v, true
		}
	}
	return
}
