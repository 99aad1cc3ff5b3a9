package game

import (
	"context"

	"github.com/wc3aura/aura/internal/command"
	"github.com/wc3aura/aura/internal/slot"
)

// ChatRecipient selects who a chat message reaches.
type ChatRecipient int

const (
	RecipientAll ChatRecipient = iota
	RecipientAllies
	RecipientObservers
	RecipientPrivate
)

// IsMuted reports whether uid has been silenced by the lobby owner/admins.
func (s *Session) IsMuted(uid byte) bool { return s.muted != nil && s.muted[uid] }

// SetMuted toggles uid's mute state.
func (s *Session) SetMuted(uid byte, muted bool) {
	if s.muted == nil {
		s.muted = make(map[byte]bool)
	}
	if muted {
		s.muted[uid] = true
	} else {
		delete(s.muted, uid)
	}
}

// RouteChat decides who sender's message reaches. In the lobby it always
// reaches every non-muted player. In-game it honors the requested
// recipient mask, with an observer sending to "All" redirected to the
// observer channel only when the map hides players from each other,
// matching what a map's HidePlayers flag implies about visibility.
func (s *Session) RouteChat(sender byte, recipient ChatRecipient, hidePlayers bool) []byte {
	if s.IsMuted(sender) {
		return nil
	}
	if s.State == StateLobby {
		return s.lobbyRecipients(sender)
	}

	senderSlot, err := s.Table.FindByUID(sender)
	isObserver := err == nil && s.isObserverSlot(s.Table.Slots()[senderSlot])

	if isObserver && recipient == RecipientAll && hidePlayers {
		recipient = RecipientObservers
	}

	switch recipient {
	case RecipientObservers:
		return s.observerRecipients()
	case RecipientAllies:
		return s.allyRecipients(sender)
	default:
		return s.lobbyRecipients(sender)
	}
}

func (s *Session) lobbyRecipients(sender byte) []byte {
	var out []byte
	for uid := range s.Players {
		if uid != sender && !s.IsMuted(uid) {
			out = append(out, uid)
		}
	}
	return out
}

func (s *Session) observerRecipients() []byte {
	var out []byte
	for _, sl := range s.Table.Slots() {
		if sl.Status != slot.StatusOccupied {
			continue
		}
		if s.isObserverSlot(sl) && !s.IsMuted(sl.UID) {
			out = append(out, sl.UID)
		}
	}
	return out
}

func (s *Session) allyRecipients(sender byte) []byte {
	sid, err := s.Table.FindByUID(sender)
	if err != nil {
		return nil
	}
	team := s.Table.Slots()[sid].Team
	var out []byte
	for _, sl := range s.Table.Slots() {
		if sl.Status == slot.StatusOccupied && sl.Team == team && sl.UID != sender && !s.IsMuted(sl.UID) {
			out = append(out, sl.UID)
		}
	}
	return out
}

// DispatchCommand forwards a chat line that begins with the dispatcher's
// token into the command subsystem.
func (s *Session) DispatchCommand(ctx context.Context, d *command.Dispatcher, cmdCtx command.Context, line string) (string, error) {
	return d.Dispatch(ctx, cmdCtx, line)
}
