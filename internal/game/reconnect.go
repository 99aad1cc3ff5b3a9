package game

import "time"

// NoteDisconnect marks uid as disconnected-but-not-yet-left, starting its
// reconnect-wait timer. The caller announces "player may reconnect" exactly
// once, tracked via pendingReconnect.announced.
func (s *Session) NoteDisconnect(uid byte, now time.Time) {
	p := s.Players[uid]
	if p == nil {
		return
	}
	s.disconnectedPending[uid] = &pendingReconnect{player: p, disconnectAt: now}
}

// ShouldAnnounceReconnect reports whether uid's "may reconnect" chat message
// still needs to be sent, and marks it sent.
func (s *Session) ShouldAnnounceReconnect(uid byte) bool {
	pr, ok := s.disconnectedPending[uid]
	if !ok || pr.announced {
		return false
	}
	pr.announced = true
	return true
}

// Reconnect rebinds a GPS RECONNECT to its pending player, replaying every
// buffered outbound frame since lastReceived, provided it arrives within
// ReconnectWaitSeconds of the disconnect.
func (s *Session) Reconnect(uid byte, lastReceived uint32, now time.Time) ([][]byte, bool) {
	pr, ok := s.disconnectedPending[uid]
	if !ok {
		return nil, false
	}
	if now.Sub(pr.disconnectAt) > time.Duration(s.cfg.ReconnectWaitSeconds)*time.Second {
		delete(s.disconnectedPending, uid)
		return nil, false
	}
	delete(s.disconnectedPending, uid)
	replay := pr.player.ReplayFrom(lastReceived)
	out := make([][]byte, len(replay))
	for i, pkt := range replay {
		out[i] = pkt.Data
	}
	return out, true
}

// tickReconnectExpiry drops any pending reconnect whose ReconnectWaitSeconds
// window has elapsed, freeing its slot and recording the leave so chat can
// announce it.
func (s *Session) tickReconnectExpiry(now time.Time) {
	deadline := time.Duration(s.cfg.ReconnectWaitSeconds) * time.Second
	for uid, pr := range s.disconnectedPending {
		if now.Sub(pr.disconnectAt) <= deadline {
			continue
		}
		delete(s.disconnectedPending, uid)
		s.removePlayer(uid, "reconnect window expired")
	}
}
