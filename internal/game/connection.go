package game

import (
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/wc3aura/aura/internal/player"
	"github.com/wc3aura/aura/internal/slot"
	"github.com/wc3aura/aura/internal/wire"
)

// fakeUserNamePattern matches the "User[N]" pseudonym this session assigns
// its own fake users, so a real joiner can't spoof one.
var fakeUserNamePattern = regexp.MustCompile(`^User\[\d+\]$`)

// JoinRequest carries everything an admission check needs about an
// incoming REQJOIN.
type JoinRequest struct {
	Name       string
	InternalIP net.IP
	ExternalIP net.IP
	Reserved   bool
	Banned     bool

	// LAN is true when the host counter's realm index is 0x00; such a
	// joiner must echo EntryKey or be rejected with RejectWrongPassword.
	LAN      bool
	EntryKey uint32
}

// Bans and reservations are resolved by the caller (internal/store) before
// calling Admit; Session itself only knows about slots, names, and UIDs.

// validJoinName reports whether name is an acceptable join name: non-empty,
// at most 15 bytes, and not usable to impersonate the virtual host, a fake
// user, or the map's host-to-map-communication pseudonym.
func (s *Session) validJoinName(name string) bool {
	if name == "" || len(name) > 15 {
		return false
	}
	if name == s.virtualHostName {
		return false
	}
	if fakeUserNamePattern.MatchString(name) {
		return false
	}
	if s.hmcName != "" && name == s.hmcName {
		return false
	}
	return true
}

// Admit runs the admission protocol in order (entry key, name validity,
// name collision, ban, reservation-vs-full, slot selection) and either
// seats the joiner or returns a RejectReason. On success it sends, through
// the session's sink and in order: SLOTINFOJOIN to the joiner,
// PLAYERINFO(joiner) to everyone else, a PLAYERINFO backfill of every
// existing player to the joiner, MAPCHECK, then SLOTINFO to everyone; the
// returned bytes are the SLOTINFOJOIN frame alone.
func (s *Session) Admit(req JoinRequest, mapCheck wire.MapCheck, now time.Time) ([]byte, []wire.RejectReason, error) {
	if req.LAN && req.EntryKey != s.entryKey {
		return s.rejectFrame(wire.RejectWrongPassword)
	}
	if !s.validJoinName(req.Name) {
		return s.rejectFrame(wire.RejectFull)
	}
	for _, p := range s.Players {
		if p.Name == req.Name {
			return s.rejectFrame(wire.RejectFull)
		}
	}
	if req.Banned {
		return s.rejectFrame(wire.RejectFull)
	}

	sid, err := s.selectSlot(req.Reserved)
	if err != nil {
		return s.rejectFrame(wire.RejectFull)
	}

	uid, err := s.AllocateUID()
	if err != nil {
		return s.rejectFrame(wire.RejectFull)
	}

	if s.VirtualHostUID != 0 {
		s.destroyVirtualHost()
	}

	if err := s.Table.Occupy(sid, uid); err != nil {
		return nil, nil, fmt.Errorf("game: admit: %w", err)
	}

	p := player.New(req.Name, uid, sid, &net.IPAddr{IP: req.ExternalIP}, now)
	p.Reserved = req.Reserved
	s.Players[uid] = p
	s.internalIPs[uid] = req.InternalIP
	s.externalIPs[uid] = req.ExternalIP

	var out []byte

	joinFrame, err := wire.EncodeFrame(wire.MsgSlotInfoJoin, wire.SlotInfoJoin{
		UID:        uid,
		Slots:      s.Table.Slots(),
		RandomSeed: s.randomSeed(),
		NumPlayers: byte(len(s.Players)),
	}.Encode())
	if err != nil {
		return nil, nil, err
	}
	if err := s.sink.SendTo(uid, joinFrame); err != nil {
		return nil, nil, err
	}

	newInfo := wire.PlayerInfo{UID: uid, Name: req.Name, InternalIP: req.InternalIP, ExternalIP: req.ExternalIP}
	newInfoFrame, err := wire.EncodeFrame(wire.MsgPlayerInfo, newInfo.Encode())
	if err != nil {
		return nil, nil, err
	}
	s.sink.Broadcast(newInfoFrame, uid)

	for otherUID, other := range s.Players {
		if otherUID == uid {
			continue
		}
		backfill := wire.PlayerInfo{UID: otherUID, Name: other.Name, InternalIP: s.internalIPs[otherUID], ExternalIP: s.externalIPs[otherUID]}
		frame, err := wire.EncodeFrame(wire.MsgPlayerInfo, backfill.Encode())
		if err != nil {
			return nil, nil, err
		}
		if err := s.sink.SendTo(uid, frame); err != nil {
			return nil, nil, err
		}
	}

	mapFrame, err := wire.EncodeFrame(wire.MsgMapCheck, mapCheck.Encode())
	if err != nil {
		return nil, nil, err
	}
	if err := s.sink.SendTo(uid, mapFrame); err != nil {
		return nil, nil, err
	}

	slotFrame, err := wire.EncodeFrame(wire.MsgSlotInfo, wire.SlotInfo{Slots: s.Table.Slots(), RandomSeed: s.randomSeed()}.Encode())
	if err != nil {
		return nil, nil, err
	}
	s.sink.Broadcast(slotFrame, 0)
	if err := s.sink.SendTo(uid, slotFrame); err != nil {
		return nil, nil, err
	}

	out = append(out, joinFrame...)
	return out, nil, nil
}

func (s *Session) rejectFrame(reason wire.RejectReason) ([]byte, []wire.RejectReason, error) {
	frame, err := wire.EncodeFrame(wire.MsgRejectJoin, wire.RejectJoin{Reason: reason}.Encode())
	if err != nil {
		return nil, nil, err
	}
	return frame, []wire.RejectReason{reason}, nil
}

// selectSlot picks the slot a joiner should occupy: the first open slot, or
// if the lobby is full and the joiner holds a reservation, the slot of the
// least-downloaded non-reserved, non-owner occupant (who is evicted).
func (s *Session) selectSlot(reserved bool) (int, error) {
	if sid := s.Table.FindOpen(slot.RoleAny); sid >= 0 {
		return sid, nil
	}
	if !reserved {
		return -1, fmt.Errorf("game: lobby full")
	}
	victim := -1
	var lowestProgress byte = 255
	for i, sl := range s.Table.Slots() {
		if sl.Status != slot.StatusOccupied || sl.Type != slot.TypeUser {
			continue
		}
		if sl.UID == s.ownerUID() {
			continue
		}
		if p := s.Players[sl.UID]; p != nil && p.Reserved {
			continue
		}
		if sl.DownloadProgress <= lowestProgress {
			lowestProgress = sl.DownloadProgress
			victim = i
		}
	}
	if victim < 0 {
		return -1, fmt.Errorf("game: lobby full, no evictable slot")
	}
	s.removePlayer(s.Table.Slots()[victim].UID, "evicted for a reserved player")
	_ = s.Table.Vacate(victim)
	return victim, nil
}

// ownerUID returns the UID of the player whose name matches the claimed
// owner, or 0 if there is no match (0 never collides with a real UID).
func (s *Session) ownerUID() byte {
	if !s.owner.set {
		return 0
	}
	for uid, p := range s.Players {
		if p.Name == s.owner.name {
			return uid
		}
	}
	return 0
}

// destroyVirtualHost removes the virtual host slot ahead of a real join, as
// the protocol requires the virtual host gone before a real player can take
// its UID range.
func (s *Session) destroyVirtualHost() {
	if sid, err := s.Table.FindByUID(s.VirtualHostUID); err == nil {
		_ = s.Table.Vacate(sid)
	}
	s.VirtualHostUID = 0
}

// randomSeed is a fixed per-session seed handed to clients in SLOTINFOJOIN
// and SLOTINFO so every client resolves random map events identically.
func (s *Session) randomSeed() uint32 {
	return uint32(s.createdAt.UnixNano())
}

// RandomSeed exposes randomSeed to connection-layer code outside this
// package building informational SLOTINFOJOIN replies outside the normal
// admission path (e.g. an information-probe reply).
func (s *Session) RandomSeed() uint32 { return s.randomSeed() }
