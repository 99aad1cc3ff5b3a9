// Package host implements the host controller: it creates game sessions,
// enforces global quotas, schedules auto-rehost, and dispatches pending
// actions from the CLI and command contexts into running sessions.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Quotas are the global limits the controller enforces before creating or
// promoting a session.
type Quotas struct {
	MaxLobbies             int
	MaxStartedGames         int
	MaxJoinInProgressGames  int
	MaxTotalGames           int
	AutoRehostCooldownTicks int
}

// Session is the subset of game.Session the controller needs, kept as an
// interface so host doesn't import game (game imports host-facing types
// instead, avoiding an import cycle).
type Session interface {
	// Update runs one tick of session logic and reports whether the
	// session is done and should be removed.
	Update(ctx context.Context) (done bool)
	ID() string
	InLobby() bool
	Started() bool
	JoinInProgress() bool
}

// PendingAction is a `{host, exec}` request queued by the CLI or by a
// command context.
type PendingAction struct {
	Kind     ActionKind
	GameID   string
	Command  string
	Identity string
	SudoAuth string
}

type ActionKind int

const (
	ActionHost ActionKind = iota // turns the current game-setup into a live game
	ActionExec                   // runs a named command with a claimed identity
)

// RehostFunc recreates a lobby with the same settings as before, used by
// auto-rehost.
type RehostFunc func(ctx context.Context, prevGameID string) (Session, error)

// Controller maintains lobbies, started games, and pending-create lobbies
// (buffered so the tick loop never mutates a list it's iterating), and
// drains a pending-actions queue each tick.
type Controller struct {
	quotas Quotas
	rehost RehostFunc

	mu             sync.Mutex
	lobbies        map[string]Session
	started        map[string]Session
	pendingLobbies []Session
	pendingActions []PendingAction

	lastRehostTick map[string]int
	tick           int
}

// NewController builds a Controller enforcing quotas, using rehost to
// recreate lobbies when auto-rehost fires.
func NewController(quotas Quotas, rehost RehostFunc) *Controller {
	return &Controller{
		quotas:         quotas,
		rehost:         rehost,
		lobbies:        make(map[string]Session),
		started:        make(map[string]Session),
		lastRehostTick: make(map[string]int),
	}
}

// quotaError is returned by CreateLobby and Host when a quota would be
// violated; commands that would allocate are refused with an explanatory reply.
type quotaError struct{ kind string }

func (e quotaError) Error() string { return fmt.Sprintf("host: quota exceeded: %s", e.kind) }

// CreateLobby buffers a new lobby into pendingLobbies rather than adding it
// directly, so a command handler invoked mid-tick never mutates the live
// lobby map.
func (c *Controller) CreateLobby(s Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.totalGames() >= c.quotas.MaxTotalGames {
		return quotaError{"max_total_games"}
	}
	if len(c.lobbies)+len(c.pendingLobbies) >= c.quotas.MaxLobbies {
		return quotaError{"max_lobbies"}
	}
	c.pendingLobbies = append(c.pendingLobbies, s)
	return nil
}

func (c *Controller) totalGames() int {
	return len(c.lobbies) + len(c.started) + len(c.pendingLobbies)
}

// drainPendingLobbies moves buffered lobbies into the live map. Must be
// called with c.mu held.
func (c *Controller) drainPendingLobbies() {
	for _, s := range c.pendingLobbies {
		c.lobbies[s.ID()] = s
	}
	c.pendingLobbies = nil
}

// Host promotes a game-setup (lobby) into a live started game, subject to
// the started-games quota; the join-in-progress quota is not checked here.
func (c *Controller) Host(gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.lobbies[gameID]
	if !ok {
		return fmt.Errorf("host: no such lobby %q", gameID)
	}
	if len(c.started) >= c.quotas.MaxStartedGames {
		return quotaError{"max_started_games"}
	}
	delete(c.lobbies, gameID)
	c.started[gameID] = s
	return nil
}

// EnqueueAction buffers a {host, exec} action for the next tick.
func (c *Controller) EnqueueAction(a PendingAction) {
	c.mu.Lock()
	c.pendingActions = append(c.pendingActions, a)
	c.mu.Unlock()
}

// ActionExecutor runs one ActionExec request against its target session;
// the controller has no command-taxonomy knowledge of its own (that lives
// in internal/command) and just forwards.
type ActionExecutor func(ctx context.Context, a PendingAction) (reply string, err error)

// Tick runs one iteration: update every session, drain pending lobbies into
// the live map, and process the pending-actions queue. Returns executor
// replies for exec actions processed this tick.
func (c *Controller) Tick(ctx context.Context, exec ActionExecutor) []string {
	c.mu.Lock()
	c.tick++
	for id, s := range c.lobbies {
		if s.Update(ctx) {
			delete(c.lobbies, id)
			c.maybeRehost(ctx, id)
		}
	}
	for id, s := range c.started {
		if s.Update(ctx) {
			delete(c.started, id)
			c.maybeRehost(ctx, id)
		}
	}
	c.drainPendingLobbies()

	actions := c.pendingActions
	c.pendingActions = nil
	c.mu.Unlock()

	var replies []string
	for _, a := range actions {
		switch a.Kind {
		case ActionHost:
			if err := c.Host(a.GameID); err != nil {
				slog.Warn("host: action failed", "kind", "host", "game", a.GameID, "err", err)
			}
		case ActionExec:
			if exec == nil {
				continue
			}
			reply, err := exec(ctx, a)
			if err != nil {
				slog.Warn("host: exec action failed", "game", a.GameID, "err", err)
				continue
			}
			replies = append(replies, reply)
		}
	}
	return replies
}

// maybeRehost recreates prevGameID's lobby if the controller has a
// RehostFunc configured and the auto-rehost throttle cooldown has elapsed.
// Must be called with c.mu held.
func (c *Controller) maybeRehost(ctx context.Context, prevGameID string) {
	if c.rehost == nil {
		return
	}
	if c.tick-c.lastRehostTick[prevGameID] < c.quotas.AutoRehostCooldownTicks {
		return
	}
	if len(c.lobbies)+len(c.pendingLobbies) >= c.quotas.MaxLobbies {
		return
	}
	s, err := c.rehost(ctx, prevGameID)
	if err != nil {
		slog.Warn("host: auto-rehost failed", "game", prevGameID, "err", err)
		return
	}
	c.lastRehostTick[prevGameID] = c.tick
	c.pendingLobbies = append(c.pendingLobbies, s)
}

// Lobbies and Started return point-in-time read snapshots for CLI/command
// handlers that need to list running games.
func (c *Controller) Lobbies() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Session, 0, len(c.lobbies))
	for _, s := range c.lobbies {
		out = append(out, s)
	}
	return out
}

func (c *Controller) Started() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Session, 0, len(c.started))
	for _, s := range c.started {
		out = append(out, s)
	}
	return out
}

// countJoinInProgress counts started sessions still accepting reconnects,
// against MaxJoinInProgressGames.
func (c *Controller) countJoinInProgress() int {
	n := 0
	for _, s := range c.started {
		if s.JoinInProgress() {
			n++
		}
	}
	return n
}

// sleepUntilNextTick is the minimal cooperative scheduling helper the
// top-level loop uses between Tick calls, mirroring the single-threaded
// cooperative model's "timeout computed as the minimum of every session's
// next-timed-action" without requiring this package to know about
// socket readiness itself.
func sleepUntilNextTick(ctx context.Context, interval time.Duration) {
	t := time.NewTimer(interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run drives Tick on a fixed cadence until ctx is canceled: the idiomatic
// Go rendering of a single event loop — one goroutine, no per-session
// thread, woken by a timer instead of socket readiness because socket I/O
// here is already demultiplexed onto per-connection goroutines feeding
// each session's event queue (see internal/sessionio's Bridge).
func (c *Controller) Run(ctx context.Context, interval time.Duration, exec ActionExecutor, onReplies func([]string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		replies := c.Tick(ctx, exec)
		if onReplies != nil && len(replies) > 0 {
			onReplies(replies)
		}
		sleepUntilNextTick(ctx, interval)
	}
}
