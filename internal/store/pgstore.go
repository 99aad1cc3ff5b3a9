package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGModerationStore is the one concrete ModerationStore: a thin pgx-backed
// adapter over two tables, `bans` and `reservations`. It does not attempt a
// full persistent statistics schema — only the narrow admission-time
// lookups the session actually calls.
type PGModerationStore struct {
	pool *pgxpool.Pool
}

// NewPGModerationStore wraps an existing pool, built with pgxpool.New and
// a Ping at startup.
func NewPGModerationStore(pool *pgxpool.Pool) *PGModerationStore {
	return &PGModerationStore{pool: pool}
}

func (s *PGModerationStore) IsBanned(ctx context.Context, realmID int, name, ip string) (*Ban, error) {
	var b Ban
	var scope int
	err := s.pool.QueryRow(ctx,
		`SELECT name, ip, scope, reason FROM bans
		 WHERE (realm_id = $1 OR scope = 0) AND (lower(name) = lower($2) OR ip = $3)
		 LIMIT 1`,
		realmID, name, ip,
	).Scan(&b.Name, &b.IP, &scope, &b.Reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: querying ban for %q/%q: %w", name, ip, err)
	}
	b.Scope = BanScope(scope)
	return &b, nil
}

func (s *PGModerationStore) IsReserved(ctx context.Context, sessionID string, name string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM reservations WHERE session_id = $1 AND lower(name) = lower($2)`,
		sessionID, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: querying reservation for %q: %w", name, err)
	}
	return n > 0, nil
}

// AddReservation inserts a reservation, called from the command dispatcher's
// `reserve` handler.
func (s *PGModerationStore) AddReservation(ctx context.Context, sessionID, name string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reservations (session_id, name) VALUES ($1, $2)
		 ON CONFLICT (session_id, name) DO NOTHING`,
		sessionID, name,
	)
	if err != nil {
		return fmt.Errorf("store: reserving %q: %w", name, err)
	}
	return nil
}

// AddBan inserts a ban, called from the command dispatcher's `ban` handler.
func (s *PGModerationStore) AddBan(ctx context.Context, realmID int, name, ip, reason string, scope BanScope) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bans (realm_id, name, ip, scope, reason) VALUES ($1, $2, $3, $4, $5)`,
		realmID, name, ip, int(scope), reason,
	)
	if err != nil {
		return fmt.Errorf("store: banning %q/%q: %w", name, ip, err)
	}
	return nil
}
