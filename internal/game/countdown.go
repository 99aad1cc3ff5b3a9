package game

import (
	"time"

	"github.com/wc3aura/aura/internal/slot"
	"github.com/wc3aura/aura/internal/wire"
)

// minPingSamples is the number of ping samples a non-reserved, non-observer
// player must have accumulated before a countdown can start against them.
const minPingSamples = 3

// countdownBlocker enumerates why a countdown cannot begin; force overrides
// every check except the already-counting and chat-only guards.
type countdownBlocker string

const (
	blockAlreadyCounting   countdownBlocker = "already counting down"
	blockChatOnly          countdownBlocker = "chat-only lobby"
	blockHCLTooLong        countdownBlocker = "HCL string longer than occupied slots"
	blockDownloadIncomplete countdownBlocker = "not all players finished downloading"
	blockSingleTeam        countdownBlocker = "need at least two non-observer teams"
	blockNoPingSamples     countdownBlocker = "a player has fewer than three ping samples"
	blockRecentLeave       countdownBlocker = "a player left within the last two seconds"
)

// CanStartCountdown reports whether a countdown may begin, and if not, why.
// force skips every check but blockAlreadyCounting and blockChatOnly.
func (s *Session) CanStartCountdown(force bool) (bool, countdownBlocker) {
	if s.countingDown {
		return false, blockAlreadyCounting
	}
	if s.chatOnly {
		return false, blockChatOnly
	}
	if force {
		return true, ""
	}
	if len(s.hclString) > s.Table.OccupiedControllerCount() {
		return false, blockHCLTooLong
	}
	if !s.Table.AllDownloadsComplete() {
		return false, blockDownloadIncomplete
	}
	if len(s.Table.OccupiedNonObserverTeams()) < 2 {
		return false, blockSingleTeam
	}
	for _, sl := range s.Table.Slots() {
		if sl.Status != slot.StatusOccupied || sl.Type != slot.TypeUser || s.isObserverSlot(sl) {
			continue
		}
		p := s.Players[sl.UID]
		if p == nil || p.Reserved {
			continue
		}
		if p.PingSampleCount() < minPingSamples {
			return false, blockNoPingSamples
		}
	}
	if !s.lastLeaveAt.IsZero() && time.Since(s.lastLeaveAt) < 2*time.Second {
		return false, blockRecentLeave
	}
	return true, ""
}

// SetHCL stages a host-command-line string to be smuggled into slot
// handicaps the moment the countdown reaches zero.
func (s *Session) SetHCL(hcl string) { s.hclString = hcl }

// SetChatOnly toggles whether the lobby is in chat-only mode, which blocks
// every countdown attempt regardless of force.
func (s *Session) SetChatOnly(v bool) { s.chatOnly = v }

// StartCountdown begins the countdown if CanStartCountdown allows it.
func (s *Session) StartCountdown(force bool) (bool, countdownBlocker) {
	if ok, reason := s.CanStartCountdown(force); !ok {
		return false, reason
	}
	s.countingDown = true
	s.countdownTicksLeft = s.cfg.CountdownStart
	return true, ""
}

// tickCountdown advances the countdown by one CountdownStepMS-sized step per
// call and, on reaching zero, injects HCL, tears down the virtual host, and
// transitions the session into the loading state.
func (s *Session) tickCountdown(now time.Time) {
	if !s.countingDown {
		return
	}
	if s.nextCountdownStepAt.IsZero() {
		s.nextCountdownStepAt = now
	}
	if now.Before(s.nextCountdownStepAt) {
		return
	}
	s.nextCountdownStepAt = now.Add(time.Duration(s.cfg.CountdownStepMS) * time.Millisecond)

	if s.countdownTicksLeft > 0 {
		s.countdownTicksLeft--
		return
	}

	s.finishCountdown(now)
}

// finishCountdown performs the zero-reached transition: signal clients the
// countdown is over, inject HCL, tear down the virtual host, and move into
// the loading state.
func (s *Session) finishCountdown(now time.Time) {
	s.countingDown = false

	if startFrame, err := wire.EncodeFrame(wire.MsgCountdownStart, wire.CountdownStart{}.Encode()); err == nil {
		s.sink.Broadcast(startFrame, 0)
	}
	if endFrame, err := wire.EncodeFrame(wire.MsgCountdownEnd, wire.CountdownEnd{}.Encode()); err == nil {
		s.sink.Broadcast(endFrame, 0)
	}

	if s.hclString != "" {
		s.Table.EncodeHCL(s.hclString)
	}
	s.destroyVirtualHost()
	s.State = StateLoading
	s.loadStart = now
}
