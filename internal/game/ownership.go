package game

import "time"

// TakeOwnership claims ownership when none is set. Returns false
// if an owner is already present.
func (s *Session) TakeOwnership(name string, realm int, now time.Time) bool {
	if s.owner.set {
		return false
	}
	s.owner = owner{name: name, realm: realm, lastSeen: now, set: true}
	return true
}

// TouchOwner records the owner being seen (present in the lobby), resetting
// the release-owner timer.
func (s *Session) TouchOwner(now time.Time) {
	if s.owner.set {
		s.owner.lastSeen = now
	}
}

// HasOwner reports whether an owner is currently set.
func (s *Session) HasOwner() bool { return s.owner.set }

// OwnerName returns the current owner's name, or "" if unset.
func (s *Session) OwnerName() string { return s.owner.name }

// tickOwnership clears an absent owner after ReleaseOwnerSeconds, and
// destroys an orphan lobby after DeleteOrphanLobbySeconds with no owner.
func (s *Session) tickOwnership(now time.Time) {
	if s.owner.set {
		if now.Sub(s.owner.lastSeen) >= time.Duration(s.cfg.ReleaseOwnerSeconds)*time.Second {
			s.owner = owner{lastSeen: now}
		}
		return
	}
	orphanSince := s.createdAt
	if !s.owner.lastSeen.IsZero() {
		orphanSince = s.owner.lastSeen
	}
	if now.Sub(orphanSince) >= time.Duration(s.cfg.DeleteOrphanLobbySeconds)*time.Second {
		s.State = StateDestroyed
	}
}
