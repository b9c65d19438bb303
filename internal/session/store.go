// Package session persists the logged-in user or gym owner between CLI runs.
package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/titanfit/internal/models"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SchemaVersion is bumped whenever the stored AuthSession shape changes incompatibly.
const SchemaVersion = 1

var (
	// ErrNotFound means nobody is logged in.
	ErrNotFound = errors.New("session: not found")
	// ErrSchemaMismatch means a session exists but was written by an incompatible version.
	// It matches ErrNotFound so callers can treat both as "please login again".
	ErrSchemaMismatch = fmt.Errorf("%w: schema version mismatch", ErrNotFound)
)

// Store is a single-row SQLite table holding the current AuthSession.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) dir/session.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "session.db"))
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS auth_session (
		id             INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL,
		role           TEXT NOT NULL,
		payload        TEXT NOT NULL,
		saved_at       TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Save replaces the stored session. The device id of an earlier session is kept so the
// backend sees a stable installation.
func (s *Store) Save(sess models.AuthSession) error {
	if sess.DeviceID == "" {
		if prev, err := s.Load(); err == nil && prev.DeviceID != "" {
			sess.DeviceID = prev.DeviceID
		} else {
			sess.DeviceID = uuid.NewString()
		}
	}
	sess.SavedAt = s.now().UTC()

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO auth_session (id, schema_version, role, payload, saved_at)
		 VALUES (1, ?, ?, ?, ?)`,
		SchemaVersion, string(sess.Role), string(payload), sess.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Load returns the stored session, ErrNotFound, or ErrSchemaMismatch.
func (s *Store) Load() (*models.AuthSession, error) {
	var version int
	var payload string
	err := s.db.QueryRow(`SELECT schema_version, payload FROM auth_session WHERE id = 1`).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if version != SchemaVersion {
		return nil, ErrSchemaMismatch
	}

	var sess models.AuthSession
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &sess, nil
}

// Clear logs out. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM auth_session`); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CurrentUserID returns the logged-in member's id. Gym owners have no workout history, so
// any session without a member user reports ErrNotFound.
func (s *Store) CurrentUserID() (string, error) {
	sess, err := s.Load()
	if err != nil {
		return "", err
	}
	if sess.UserID() == "" {
		return "", ErrNotFound
	}
	return sess.UserID(), nil
}
