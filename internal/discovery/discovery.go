// Package discovery implements LAN broadcast/unicast game advertisement.
// It maintains an encoded GAMEINFO template per supported version; each send
// decodes the template, updates the slot counts, uptime and port, and
// re-encodes the whole structure.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/wc3aura/aura/internal/wire"
)

// PacketConn is the subset of net.PacketConn the Service needs; tests
// substitute an in-memory fake so no real socket is bound.
type PacketConn interface {
	WriteTo(p []byte, addr net.Addr) (int, error)
}

// template holds a pre-built GAMEINFO encoding for one supported version.
// Every refresh decodes it, patches the two mutable fields (open slots and
// the dynamic uptime/port trailer), and re-encodes — cheaper than
// reconstructing the whole structure field-by-field per send.
type template struct {
	version byte
	encoded []byte
}

// Service advertises a single game session on the LAN and to explicit
// unicast peers.
type Service struct {
	conn PacketConn

	lanEnabled     bool
	broadcastAddr  net.Addr
	loopbackAddr   net.Addr
	extraAddrs     []net.Addr

	templates map[byte]*template

	hostCounter uint32
	entryKey    uint32
	gameName    string
	startedAt   time.Time
}

// NewService builds a Service bound to conn, advertising to broadcastAddr
// (if lanEnabled), always to loopbackAddr, and to every address in extras.
func NewService(conn PacketConn, lanEnabled bool, broadcastAddr, loopbackAddr net.Addr, extras []net.Addr) *Service {
	return &Service{
		conn:          conn,
		lanEnabled:    lanEnabled,
		broadcastAddr: broadcastAddr,
		loopbackAddr:  loopbackAddr,
		extraAddrs:    extras,
		templates:     make(map[byte]*template),
		startedAt:     time.Now(),
	}
}

// SetTemplate (re)builds the cached encoding for one supported version from
// a fully-populated GameInfo. Call this once per version at game creation,
// and again whenever the map/name/host-counter changes (not per-tick).
func (s *Service) SetTemplate(gi wire.GameInfo) {
	encoded := gi.Encode()
	s.templates[gi.Version] = &template{
		version: gi.Version,
		encoded: encoded,
	}
	s.hostCounter = gi.HostCounter
	s.entryKey = gi.EntryKey
	s.gameName = gi.GameName
}

func (s *Service) upTimeSec() uint32 {
	return uint32(time.Since(s.startedAt).Seconds())
}

// refreshGameInfo rebuilds one version's frame with current slotsOpen,
// slotsTotal, and uptime, without touching the cached static fields.
func (s *Service) refreshGameInfo(version byte, slotsOpen, slotsTotal byte, port uint16) ([]byte, error) {
	tmpl, ok := s.templates[version]
	if !ok {
		return nil, fmt.Errorf("discovery: no template for version %d", version)
	}
	gi, err := wire.DecodeGameInfo(wire.NewReader(tmpl.encoded))
	if err != nil {
		return nil, fmt.Errorf("discovery: decoding cached template: %w", err)
	}
	gi.SlotsOpen = slotsOpen
	gi.SlotsTotal = slotsTotal
	gi.UpTimeSec = s.upTimeSec()
	gi.Port = port
	frame, err := wire.EncodeFrame(wire.MsgGameInfo, gi.Encode())
	if err != nil {
		return nil, fmt.Errorf("discovery: encoding frame: %w", err)
	}
	return frame, nil
}

// BroadcastRefresh emits one GAMEINFO frame per supported version to the
// broadcast address (if LAN is enabled), the loopback address (always), and
// every configured extra peer. REFRESHGAME framing is not used.
func (s *Service) BroadcastRefresh(ctx context.Context, slotsOpen, slotsTotal byte, port uint16) {
	for version := range s.templates {
		frame, err := s.refreshGameInfo(version, slotsOpen, slotsTotal, port)
		if err != nil {
			slog.Error("discovery: building refresh frame", "version", version, "err", err)
			continue
		}
		s.sendTo(frame, s.loopbackAddr)
		if s.lanEnabled && s.broadcastAddr != nil {
			s.sendTo(frame, s.broadcastAddr)
		}
		for _, addr := range s.extraAddrs {
			s.sendTo(frame, addr)
		}
	}
}

func (s *Service) sendTo(frame []byte, addr net.Addr) {
	if addr == nil {
		return
	}
	if _, err := s.conn.WriteTo(frame, addr); err != nil {
		slog.Warn("discovery: send failed", "addr", addr, "err", err)
	}
}

// AnswerSearch replies to one inbound LAN search datagram with a unicast
// GAMEINFO for the version it requested.
func (s *Service) AnswerSearch(from net.Addr, version byte, slotsOpen, slotsTotal byte, port uint16) {
	frame, err := s.refreshGameInfo(version, slotsOpen, slotsTotal, port)
	if err != nil {
		slog.Warn("discovery: answering search", "err", err)
		return
	}
	s.sendTo(frame, from)
}

// CreateGame and DecreateGame bookend a session's lifetime with one frame
// per supported version, sent to every configured peer: CREATEGAME before
// the first GAMEINFO refresh, DECREATEGAME after the last.
func (s *Service) CreateGame(ctx context.Context) {
	s.broadcastLifecycle(wire.MsgCreateGame)
}

func (s *Service) DecreateGame(ctx context.Context) {
	s.broadcastLifecycle(wire.MsgDecreateGame)
}

func (s *Service) broadcastLifecycle(msgType byte) {
	for version := range s.templates {
		var payload []byte
		switch msgType {
		case wire.MsgCreateGame:
			payload = wire.CreateGame{Version: version, HostCounter: s.hostCounter}.Encode()
		case wire.MsgDecreateGame:
			payload = wire.DecreateGame{HostCounter: s.hostCounter}.Encode()
		}
		frame, err := wire.EncodeFrame(msgType, payload)
		if err != nil {
			slog.Error("discovery: encoding lifecycle frame", "err", err)
			continue
		}
		s.sendTo(frame, s.loopbackAddr)
		if s.lanEnabled && s.broadcastAddr != nil {
			s.sendTo(frame, s.broadcastAddr)
		}
		for _, addr := range s.extraAddrs {
			s.sendTo(frame, addr)
		}
	}
}
