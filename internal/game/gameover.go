package game

import "time"

// ArmGameOver starts the shutdown-tolerance timer. authoritative extends the
// tolerance window (a stats collector declaring winners is trusted further
// than a simple "everyone left" heuristic).
func (s *Session) ArmGameOver(now time.Time, authoritative bool) {
	if s.gameOverArmed {
		return
	}
	s.gameOverArmed = true
	s.gameOverArmedAt = now
	s.gameOverAuthoritative = authoritative
}

// DisarmGameOver cancels a pending shutdown, used when players rejoin or an
// operator command calls it off before the tolerance window expires.
func (s *Session) DisarmGameOver() {
	s.gameOverArmed = false
	s.gameOverAuthoritative = false
}

// tickGameOver destroys the session once the armed tolerance window has
// elapsed. GameOverToleranceSeconds governs the plain case; an
// authoritative arming (stats collector declared winners) gets 5x that
// tolerance so a brief partial disconnect doesn't cut the window short.
func (s *Session) tickGameOver(now time.Time) {
	if len(s.Players) == 0 && !s.gameOverArmed {
		s.ArmGameOver(now, false)
	}
	if !s.gameOverArmed {
		return
	}
	tolerance := time.Duration(s.cfg.GameOverToleranceSeconds) * time.Second
	if s.gameOverAuthoritative {
		tolerance *= 5
	}
	if now.Sub(s.gameOverArmedAt) >= tolerance {
		s.State = StateDestroyed
	}
}
