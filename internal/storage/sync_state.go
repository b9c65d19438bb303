package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SyncState records the last archive import for a user.
type SyncState struct {
	UserID       string    `json:"user_id"`
	LastSync     time.Time `json:"last_sync"`
	SessionsSeen int       `json:"sessions_seen"`
}

// LastSync returns the user's last import, or nil if they were never imported.
func (db *DB) LastSync(ctx context.Context, userID string) (*SyncState, error) {
	var s SyncState
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, last_sync, sessions_seen FROM sync_state WHERE user_id = $1`,
		userID).Scan(&s.UserID, &s.LastSync, &s.SessionsSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying sync state: %w", err)
	}
	return &s, nil
}

// RecordSync upserts the user's import marker.
func (db *DB) RecordSync(ctx context.Context, userID string, at time.Time, sessionsSeen int) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO sync_state (user_id, last_sync, sessions_seen)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
			SET last_sync = EXCLUDED.last_sync, sessions_seen = EXCLUDED.sessions_seen
	`, userID, at, sessionsSeen)
	if err != nil {
		return fmt.Errorf("recording sync state: %w", err)
	}
	return nil
}
