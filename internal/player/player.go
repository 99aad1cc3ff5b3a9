// Package player implements the fully-admitted-participant record: a Player
// bound to a slot and a UID once a Connection clears admission.
package player

import (
	"net"
	"time"
)

// pingWindow bounds the sliding window of round-trip samples kept per
// player; the countdown precondition only needs "at least 3 samples"
// so a short window is plenty.
const pingWindow = 8

// OutboundPacket is one frame queued for a reconnect-capable player so it can
// be replayed after a reconnect-proxy rebind.
type OutboundPacket struct {
	Seq  uint32
	Data []byte
}

// Player is a fully admitted participant.
type Player struct {
	Name           string
	JoinedRealm    int // 0 = LAN; realm internal id otherwise
	RemoteAddr     net.Addr
	UID            byte
	SID            int
	ReconnectKey   uint32

	VerifiedByRealm   bool
	Reserved          bool
	Observer          bool
	Referee           bool // power-observer: full chat + pause rights on referee maps
	ReconnectCapable  bool
	ReconnectExtended bool
	Muted             bool
	MapReady          bool
	Ready             bool
	Lagging           bool
	HasLeft           bool

	SyncCounter    uint32
	DownloadBytes  uint64
	PacketsSent    uint64
	PacketsRecv    uint64

	pings      [pingWindow]time.Duration
	pingCount  int
	pingCursor int

	Outbound []OutboundPacket // unacknowledged packets, for reconnect replay

	JoinedAt     time.Time
	LastActivity time.Time
}

// New builds a Player for uid seated at sid.
func New(name string, uid byte, sid int, addr net.Addr, now time.Time) *Player {
	return &Player{
		Name:         name,
		UID:          uid,
		SID:          sid,
		RemoteAddr:   addr,
		JoinedAt:     now,
		LastActivity: now,
	}
}

// Touch records fresh activity, used by idle/timeout checks.
func (p *Player) Touch(now time.Time) {
	p.LastActivity = now
}

// RecordPing appends a round-trip sample to the sliding window.
func (p *Player) RecordPing(d time.Duration) {
	p.pings[p.pingCursor] = d
	p.pingCursor = (p.pingCursor + 1) % pingWindow
	if p.pingCount < pingWindow {
		p.pingCount++
	}
}

// PingSampleCount reports how many samples are in the window (the countdown
// precondition needs >= 3).
func (p *Player) PingSampleCount() int {
	return p.pingCount
}

// AveragePing returns the mean of the current window, or 0 if empty.
func (p *Player) AveragePing() time.Duration {
	if p.pingCount == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < p.pingCount; i++ {
		total += p.pings[i]
	}
	return total / time.Duration(p.pingCount)
}

// QueueOutbound appends a packet to the reconnect-replay buffer.
func (p *Player) QueueOutbound(seq uint32, data []byte) {
	p.Outbound = append(p.Outbound, OutboundPacket{Seq: seq, Data: data})
}

// AckOutbound drops every buffered packet with Seq <= upTo, called when a
// GPS ACK reports received-count-so-far.
func (p *Player) AckOutbound(upTo uint32) {
	i := 0
	for i < len(p.Outbound) && p.Outbound[i].Seq <= upTo {
		i++
	}
	p.Outbound = p.Outbound[i:]
}

// ReplayFrom returns every buffered packet with Seq > lastReceived, for a
// reconnect rebind.
func (p *Player) ReplayFrom(lastReceived uint32) []OutboundPacket {
	var out []OutboundPacket
	for _, pkt := range p.Outbound {
		if pkt.Seq > lastReceived {
			out = append(out, pkt)
		}
	}
	return out
}
