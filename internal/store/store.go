// Package store defines the narrow interfaces the game session consumes
// from external collaborators: ban/reservation lookups, the statistics
// collector, the realm/IRC/Discord chat adapters, and the map-repository
// downloader. Only the edges are specified here, never their
// implementations.
package store

import (
	"context"
	"time"
)

// BanScope distinguishes a ban recorded against the session's origin realm
// from one recorded at LAN/session scope.
type BanScope int

const (
	ScopeSession BanScope = iota
	ScopeRealm
)

// Ban is one admission-time name/IP ban record.
type Ban struct {
	Name   string
	IP     string
	Scope  BanScope
	Reason string
}

// ModerationStore answers admission-time ban and reservation lookups.
type ModerationStore interface {
	// IsBanned reports whether name or ip is banned in the given realm
	// (realmID 0 = LAN).
	IsBanned(ctx context.Context, realmID int, name, ip string) (*Ban, error)
	// IsReserved reports whether name holds a reservation for the session.
	IsReserved(ctx context.Context, sessionID string, name string) (bool, error)
}

// GameOutcome is what the statistics collector reports once it can declare
// winners.
type GameOutcome struct {
	WinnerUIDs []byte
	DeclaredAt time.Time
}

// StatsCollector is the external collaborator that persists per-game
// statistics and can authoritatively declare a winner before all players
// have left.
type StatsCollector interface {
	RecordGameStart(ctx context.Context, sessionID string, players []string) error
	RecordGameEnd(ctx context.Context, sessionID string, outcome *GameOutcome) error
	// Outcome returns nil until the collector has enough data to declare
	// winners; callers poll it rather than block on it.
	Outcome(sessionID string) *GameOutcome
}

// ChatAdapter is the narrow surface a realm, IRC, or Discord client exposes
// to the core: sending an outbound line and reporting its name. It carries no
// inbound command path.
type ChatAdapter interface {
	Send(ctx context.Context, channel, line string) error
	Name() string
}

// DownloadJob is a poll()-based future for the remote map-repository
// downloader: a value with Poll() reporting pending/ready/failed, polled by
// the main loop each tick rather than driven by a callback.
type DownloadJob interface {
	// Poll returns (false, "", nil) while pending, (true, path, nil) once
	// the map file is available locally, or (true, "", err) on failure.
	Poll() (done bool, localPath string, err error)
}

// MapRepository is the external collaborator that resolves a map name to a
// local file, asynchronously, by fetching it from a remote repository.
type MapRepository interface {
	Fetch(ctx context.Context, mapName string) DownloadJob
}
