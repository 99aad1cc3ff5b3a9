package game

import (
	"time"

	"github.com/wc3aura/aura/internal/wire"
)

// reconnectPadFrames is the number of empty-action frames injected ahead of
// a flush to keep a basic (non-extended) reconnect-proxy client's
// action-sequence expectations satisfied while it is mid-reconnect, capped
// at 9 regardless of configuration.
func (s *Session) reconnectPadFrames() int {
	n := s.cfg.ReconnectWaitSeconds - 1
	if n > 9 {
		n = 9
	}
	if n < 0 {
		n = 0
	}
	return n
}

// QueueAction buffers uid's action for the next flush.
func (s *Session) QueueAction(uid byte, data []byte) {
	s.pendingActions = append(s.pendingActions, actionEntry{uid: uid, data: data})
}

// tickActionRelay flushes the pending action queue every LatencyMS, wrapping
// it in wire.BuildActionBatch so oversized batches split across
// INCOMING_ACTION2 frames with a final INCOMING_ACTION carrying the pacing
// interval, and pads basic reconnect-proxy clients with empty actions so
// their sequence counters stay aligned while reconnecting.
func (s *Session) tickActionRelay(now time.Time) {
	if s.nextFlushAt.IsZero() {
		s.nextFlushAt = now
	}
	if now.Before(s.nextFlushAt) {
		return
	}
	s.nextFlushAt = now.Add(s.expectedInterval)

	actions := make([]wire.ActionData, 0, len(s.pendingActions))
	for _, a := range s.pendingActions {
		actions = append(actions, wire.ActionData{UID: a.uid, Data: a.data})
	}
	for _, pr := range s.disconnectedPending {
		if pr.player.ReconnectExtended {
			continue
		}
		for i := 0; i < s.reconnectPadFrames(); i++ {
			actions = append(actions, wire.ActionData{})
		}
	}
	s.pendingActions = nil

	frames := wire.BuildActionBatch(actions, uint16(s.cfg.LatencyMS))
	for _, f := range frames {
		s.sink.Broadcast(f, 0)
	}
	s.syncCounter++
}

// RecordKeepAlive pairs uid's checksum against every other active player's
// most recent checksum for this tick; on a mismatch it mutates the
// sync-partner adjacency for both sides symmetrically. If uid's surviving
// sync-partner count drops below a majority of active players, uid is
// declared desynced and dispatched per DesyncPolicy.
func (s *Session) RecordKeepAlive(uid byte, checksum uint32, activeUIDs []byte, checksums map[byte]uint32) {
	if s.syncPartners[uid] == nil {
		s.syncPartners[uid] = make(map[byte]bool)
		for _, other := range activeUIDs {
			if other != uid {
				s.syncPartners[uid][other] = true
			}
		}
	}
	for _, other := range activeUIDs {
		if other == uid {
			continue
		}
		if checksums[other] != checksum {
			delete(s.syncPartners[uid], other)
			if s.syncPartners[other] != nil {
				delete(s.syncPartners[other], uid)
			}
		}
	}

	majority := len(activeUIDs) / 2
	if len(s.syncPartners[uid]) < majority {
		s.declareDesync(uid)
	}
}

// declareDesync dispatches a desynced player per the configured policy.
func (s *Session) declareDesync(uid byte) {
	switch s.desyncPolicy {
	case DesyncDrop:
		s.removePlayer(uid, "desynced")
	case DesyncNotify:
		// leave the player connected; the UI layer surfaces the warning.
	}
}

// Leave removes uid from the session on an externally observed departure: a
// graceful LEAVEREQ, a closed socket with no reconnect capability, or an
// expired vote-kick. Connection-layer code outside this package has no other
// way to free a player's slot.
func (s *Session) Leave(uid byte, reason string) {
	s.removePlayer(uid, reason)
}

// removePlayer frees uid's slot and drops their connection state. The reason
// is informational only, used by callers that announce the leave in chat.
func (s *Session) removePlayer(uid byte, reason string) {
	if sid, err := s.Table.FindByUID(uid); err == nil {
		_ = s.Table.Vacate(sid)
	}
	delete(s.Players, uid)
	delete(s.syncPartners, uid)
	for _, partners := range s.syncPartners {
		delete(partners, uid)
	}
	s.lastLeaveAt = time.Now()
}
