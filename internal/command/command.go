// Package command implements the operator command dispatcher: the
// permission taxonomy, the per-invocation context, and the sudo exec-auth
// challenge channel.
package command

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ServiceType identifies where a command invocation originated.
type ServiceType int

const (
	ServiceGameChat ServiceType = iota
	ServiceRealmWhisper
	ServiceRealmChannel
	ServiceIRC
	ServiceDiscord
	ServiceCLI
)

// Level is the fixed permission taxonomy. New names require a spec
// change, not a code change — this list is closed.
type Level int

const (
	LevelDisabled Level = iota
	LevelSudo
	LevelSudoUnsafe
	LevelRootAdmin
	LevelAdmin
	LevelVerifiedOwner
	LevelOwner
	LevelVerified
	LevelAuto
	LevelPotentialOwner
	LevelUnverified
)

// Context carries everything a handler needs to know about who issued a
// command and how to reply.
type Context struct {
	Service      ServiceType
	SenderName   string
	SenderRealm  int
	Verified     bool
	TargetGameID string
	Level        Level
	Broadcast    bool // true: reply goes to the whole lobby; false: private

	// ExecAuthToken, if set, is a challenge token the sender is claiming to
	// have solved; Dispatch verifies it before allowing a sudo-tier handler
	// to run.
	ExecAuthToken string
}

// Handler runs one command invocation and returns its reply text.
type Handler func(ctx context.Context, cmdCtx Context, args []string) (string, error)

// entry pairs a handler with the minimum Level required to invoke it.
type entry struct {
	minLevel Level
	fn       Handler
}

// challenge is a single pending exec-auth token.
type challenge struct {
	operator  string
	expiresAt time.Time
}

const challengeTTL = 60 * time.Second

// Dispatcher routes chat lines whose text begins with Token to a registered
// handler set, enforcing per-handler permission floors and the one-shot
// sudo elevation rule.
type Dispatcher struct {
	// Token is the per-realm command prefix: each realm context may
	// configure its own, so the same core can be hosted under "!" on one
	// realm and "." on another without a rebuild.
	Token string

	mu       sync.Mutex
	handlers map[string]entry
	pending  map[string]challenge
}

// NewDispatcher builds a Dispatcher that recognizes commands prefixed by
// token (e.g. "!").
func NewDispatcher(token string) *Dispatcher {
	return &Dispatcher{
		Token:    token,
		handlers: make(map[string]entry),
		pending:  make(map[string]challenge),
	}
}

// Register binds name to fn, invokable only by callers whose Level is at
// least minLevel in the taxonomy's ordering (lower enum value = more
// trusted; LevelDisabled never runs).
func (d *Dispatcher) Register(name string, minLevel Level, fn Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[strings.ToLower(name)] = entry{minLevel: minLevel, fn: fn}
}

// IssueChallenge mints a one-shot exec-auth token for operator, valid for
// 60s. The operator is expected to receive it through a private
// channel (e.g. a whisper) distinct from the one they'll invoke the sudo
// command over.
func (d *Dispatcher) IssueChallenge(operator string) string {
	token := uuid.NewString()
	d.mu.Lock()
	d.pending[token] = challenge{operator: operator, expiresAt: time.Now().Add(challengeTTL)}
	d.mu.Unlock()
	return token
}

// VerifyChallenge consumes token if it is live and was issued to operator.
// A token is single-use: whether it succeeds or fails, it is removed.
func (d *Dispatcher) VerifyChallenge(operator, token string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.pending[token]
	delete(d.pending, token)
	if !ok {
		return false
	}
	if time.Now().After(c.expiresAt) {
		return false
	}
	return c.operator == operator
}

// Dispatch parses line as "<token><name> <args...>" and, if name is
// registered and the caller's effective level clears its floor, runs the
// handler. Sudo mode never persists: a verified ExecAuthToken only elevates
// this single invocation.
func (d *Dispatcher) Dispatch(ctx context.Context, cmdCtx Context, line string) (string, error) {
	if !strings.HasPrefix(line, d.Token) {
		return "", fmt.Errorf("command: not a command line")
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, d.Token))
	if rest == "" {
		return "", fmt.Errorf("command: empty command")
	}
	fields := strings.Fields(rest)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	d.mu.Lock()
	e, ok := d.handlers[name]
	d.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("command: unknown command %q", name)
	}

	level := cmdCtx.Level
	if cmdCtx.ExecAuthToken != "" && d.VerifyChallenge(cmdCtx.SenderName, cmdCtx.ExecAuthToken) {
		level = LevelSudo
	}
	if !levelSatisfies(level, e.minLevel) {
		return "", fmt.Errorf("command: %q requires higher permission", name)
	}

	return e.fn(ctx, cmdCtx, args)
}

// levelSatisfies reports whether have clears the floor want requires. The
// taxonomy orders from most to least trusted (LevelSudo first, excluding
// LevelDisabled which never satisfies anything).
func levelSatisfies(have, want Level) bool {
	if have == LevelDisabled {
		return false
	}
	return have <= want
}
