package game

// SavePolicy governs when a leaving player's SAVE/SAVE_ENDED pair is
// emitted.
type SavePolicy int

const (
	SaveNever SavePolicy = iota
	SaveAlways
	SaveAfterThreshold
)

// pauseState tracks in-game pause bookkeeping.
type pauseState struct {
	pausedBy   byte
	refereePauses int // unlimited for a referee; tracked only for reporting
}

// CanPause reports whether uid may pause the game: uid must hold a slot, a
// full observer may only if it is the referee, and in every case the game
// must not already be paused.
func (s *Session) CanPause(uid byte) bool {
	sid, err := s.Table.FindByUID(uid)
	if err != nil {
		return false
	}
	sl := s.Table.Slots()[sid]
	if s.isObserverSlot(sl) && !s.isReferee(uid) {
		return false
	}
	return s.pause == nil
}

func (s *Session) isReferee(uid byte) bool {
	return s.refereeUID == uid
}

// Pause marks the game paused by uid when CanPause allows it. The pause
// record holds uid as given; no fake-user UID is substituted.
func (s *Session) Pause(uid byte) bool {
	if !s.CanPause(uid) {
		return false
	}
	s.pause = &pauseState{pausedBy: uid}
	return true
}

// Resume clears the current pause, if any, and reports whether one was
// active.
func (s *Session) Resume() bool {
	if s.pause == nil {
		return false
	}
	s.pause = nil
	return true
}

// Paused reports whether the game is currently paused.
func (s *Session) Paused() bool { return s.pause != nil }

// CanSave reports whether uid may trigger a save: a full observer may not,
// per the same rule as pausing.
func (s *Session) CanSave(uid byte) bool {
	sid, err := s.Table.FindByUID(uid)
	if err != nil {
		return false
	}
	sl := s.Table.Slots()[sid]
	return !s.isObserverSlot(sl) || s.isReferee(uid)
}

// LeaveSaveDecision reports whether a SAVE/SAVE_ENDED pair should be
// emitted for a leaving player, given the session's configured SavePolicy
// and how many players remain after the leave.
func (s *Session) LeaveSaveDecision(policy SavePolicy, remainingAfterLeave int) bool {
	switch policy {
	case SaveAlways:
		return true
	case SaveAfterThreshold:
		return remainingAfterLeave <= s.cfg.MaxLobbyMembers/2
	default:
		return false
	}
}
