package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/magpie/pkg/webhook"
)

// Querier is the part of *pgxpool.Pool used by ReplayGuard.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// An expired row is refreshed in place; a live one makes the insert return nothing.
const seenQuery = `
INSERT INTO magpie_webhook_events (event_id, expires_at)
VALUES ($1, now() + make_interval(secs => $2))
ON CONFLICT (event_id) DO UPDATE SET expires_at = EXCLUDED.expires_at
WHERE magpie_webhook_events.expires_at <= now()
RETURNING event_id`

const forgetQuery = `DELETE FROM magpie_webhook_events WHERE event_id = $1`

const purgeQuery = `DELETE FROM magpie_webhook_events WHERE expires_at <= now()`

// ReplayGuard remembers accepted webhook event IDs in PostgreSQL so that
// several receivers share one view. It implements webhook.ReplayGuard.
type ReplayGuard struct {
	db Querier
}

// NewReplayGuard expects the table created by Migrate.
func NewReplayGuard(db Querier) *ReplayGuard {
	return &ReplayGuard{db: db}
}

// Seen records id for ttl and reports whether a live record already existed.
func (g *ReplayGuard) Seen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	var stored string
	err := g.db.QueryRow(ctx, seenQuery, id, ttl.Seconds()).Scan(&stored)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return true, nil
	case err != nil:
		return false, errors.Join(webhook.ErrReplayStore, err)
	}
	return false, nil
}

// Forget removes the record for id.
func (g *ReplayGuard) Forget(ctx context.Context, id string) error {
	if _, err := g.db.Exec(ctx, forgetQuery, id); err != nil {
		return errors.Join(webhook.ErrReplayStore, err)
	}
	return nil
}

// Purge deletes expired records and returns how many were removed.
func (g *ReplayGuard) Purge(ctx context.Context) (int64, error) {
	tag, err := g.db.Exec(ctx, purgeQuery)
	if err != nil {
		return 0, errors.Join(webhook.ErrReplayStore, err)
	}
	return tag.RowsAffected(), nil
}

var _ webhook.ReplayGuard = (*ReplayGuard)(nil)
