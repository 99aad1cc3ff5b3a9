// Package game implements the game session: lobby formation, admission,
// the countdown-and-load sequence, the in-game action relay with
// lag/desync/reconnect handling, and timed shutdown.
package game

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/wc3aura/aura/internal/player"
	"github.com/wc3aura/aura/internal/slot"
)

// State is the session state machine.
type State int

const (
	StateLobby State = iota
	StateCountingDown
	StateLoading
	StatePlaying
	StateOver
	StateDestroyed
)

// Sink is how a Session emits frames; Connection/Player I/O lives outside
// this package (goroutine-per-connection networking) and is reached only
// through this narrow interface, so session logic stays synchronous and
// testable without real sockets.
type Sink interface {
	SendTo(uid byte, frame []byte) error
	Broadcast(frame []byte, exceptUID byte)
}

// Config holds a session's explicit tunables: countdown step, action
// cadence, lag thresholds, timeouts. Loaded from internal/config.
type Config struct {
	LatencyMS               int // action relay cadence, default 100
	CountdownStepMS         int // default 500
	CountdownStart          int // default 5
	SyncLimit               int // lag threshold
	SyncLimitSafe           int // recovery threshold
	ReleaseOwnerSeconds      int
	DeleteOrphanLobbySeconds int
	ReconnectWaitSeconds     int // the empty-action padding derived from it (wait-1) is capped at 9
	GameOverToleranceSeconds int // 60 default, 300 when stats-authoritative
	MaxLobbyMembers          int
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		LatencyMS:                100,
		CountdownStepMS:          500,
		CountdownStart:           5,
		SyncLimit:                32,
		SyncLimitSafe:            8,
		ReleaseOwnerSeconds:      120,
		DeleteOrphanLobbySeconds: 300,
		ReconnectWaitSeconds:     60,
		GameOverToleranceSeconds: 60,
	}
}

// owner records the claimed lobby owner.
type owner struct {
	name     string
	realm    int
	lastSeen time.Time
	set      bool
}

// Session owns slots, players, pending-join connections, the action queue,
// and all per-game timers.
type Session struct {
	id string

	Table   *slot.Table
	Players map[byte]*player.Player // by UID

	internalIPs map[byte]net.IP
	externalIPs map[byte]net.IP

	VirtualHostUID byte // 0 when none is currently present
	FakeUserUIDs   map[byte]bool

	State State
	cfg   Config
	sink  Sink

	owner     owner
	createdAt time.Time

	entryKey        uint32
	virtualHostName string
	hmcName         string // host-to-map-communication pseudonym; empty disables the check

	// Countdown
	countingDown       bool
	countdownTicksLeft int
	chatOnly           bool
	hclString          string
	nextCountdownStepAt time.Time

	// Loading
	loadStart   time.Time
	loadTimes   map[byte]time.Duration

	// Action relay
	syncCounter      uint32
	pendingActions   []actionEntry
	nextFlushAt      time.Time
	expectedInterval time.Duration

	// Desync / lag
	syncPartners   map[byte]map[byte]bool
	laggers        map[byte]bool
	lagScreenSince time.Time
	lagScreenOn    bool
	dropVotes      map[byte]bool
	desyncPolicy   DesyncPolicy

	// Reconnect proxy
	disconnectedPending map[byte]*pendingReconnect

	// Game over
	gameOverArmedAt  time.Time
	gameOverArmed    bool
	gameOverAuthoritative bool

	lastLeaveAt time.Time

	muted map[byte]bool

	pause      *pauseState
	refereeUID byte // 0 if no referee is set

	nextUID byte
}

type actionEntry struct {
	uid  byte
	data []byte
}

// DesyncPolicy selects how a checksum mismatch is handled.
type DesyncPolicy int

const (
	DesyncNotify DesyncPolicy = iota
	DesyncDrop
)

type pendingReconnect struct {
	player       *player.Player
	disconnectAt time.Time
	announced    bool
}

// defaultVirtualHostName is the placeholder name shown for the virtual host
// slot when the deployment hasn't overridden it with SetVirtualHostName.
const defaultVirtualHostName = "Aura Host"

// NewSession builds a lobby-state Session over a freshly-constructed slot
// table.
func NewSession(id string, table *slot.Table, cfg Config, sink Sink) *Session {
	return &Session{
		id:                   id,
		Table:                table,
		Players:              make(map[byte]*player.Player),
		internalIPs:          make(map[byte]net.IP),
		externalIPs:          make(map[byte]net.IP),
		FakeUserUIDs:         make(map[byte]bool),
		State:                StateLobby,
		cfg:                  cfg,
		sink:                 sink,
		createdAt:            time.Now(),
		loadTimes:            make(map[byte]time.Duration),
		syncPartners:         make(map[byte]map[byte]bool),
		laggers:              make(map[byte]bool),
		dropVotes:            make(map[byte]bool),
		disconnectedPending:  make(map[byte]*pendingReconnect),
		expectedInterval:     time.Duration(cfg.LatencyMS) * time.Millisecond,
		nextUID:              1,
		virtualHostName:      defaultVirtualHostName,
	}
}

// SetEntryKey sets the per-session key a LAN client's REQJOIN must echo.
func (s *Session) SetEntryKey(key uint32) { s.entryKey = key }

// EntryKey returns the per-session key a LAN client's REQJOIN must echo,
// also advertised in the session's discovery GameInfo.
func (s *Session) EntryKey() uint32 { return s.entryKey }

// SetVirtualHostName overrides the name reserved for the virtual host slot;
// a join request using this name is rejected as a spoofing attempt.
func (s *Session) SetVirtualHostName(name string) { s.virtualHostName = name }

// SetHMCName sets the map's host-to-map-communication pseudonym; a join
// request using this name is rejected. An empty name disables the check.
func (s *Session) SetHMCName(name string) { s.hmcName = name }

// AllocateUID returns the next unused UID in 1..254, skipping the virtual
// host, fake users, and active players.
func (s *Session) AllocateUID() (byte, error) {
	inUse := map[byte]bool{0: true, 255: true}
	if s.VirtualHostUID != 0 {
		inUse[s.VirtualHostUID] = true
	}
	for uid := range s.FakeUserUIDs {
		inUse[uid] = true
	}
	for uid := range s.Players {
		inUse[uid] = true
	}
	for uid := byte(1); uid < 255; uid++ {
		if !inUse[uid] {
			return uid, nil
		}
	}
	return 0, fmt.Errorf("game: no free UID")
}

// isObserverSlot reports whether sl is an observer slot under this
// session's map version.
func (s *Session) isObserverSlot(sl slot.Slot) bool {
	return sl.IsObserver(s.Table.Settings().Version)
}

// ID returns the session's identifier — satisfies host.Session.
func (s *Session) ID() string { return s.id }

// InLobby, Started, JoinInProgress satisfy host.Session.
func (s *Session) InLobby() bool        { return s.State == StateLobby }
func (s *Session) Started() bool        { return s.State != StateLobby && s.State != StateDestroyed }
func (s *Session) JoinInProgress() bool { return s.State == StatePlaying && len(s.disconnectedPending) > 0 }

// Update runs one tick of session logic for every subsystem and reports
// whether the session is fully destroyed and should be dropped by the host
// controller. Satisfies host.Session.
func (s *Session) Update(ctx context.Context) bool {
	now := time.Now()
	switch s.State {
	case StateLobby:
		s.tickOwnership(now)
		s.tickCountdown(now)
	case StateLoading:
		// nothing time-driven beyond keep-alive answers, handled inline on receipt
	case StatePlaying:
		s.tickActionRelay(now)
		s.tickLagScreen(now)
		s.tickReconnectExpiry(now)
		s.tickGameOver(now)
	}
	return s.State == StateDestroyed
}
