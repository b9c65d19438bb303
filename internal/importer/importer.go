// Package importer copies a member's workout history from the backend into the archive.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/titanfit/internal/models"
	"github.com/claude/titanfit/internal/storage"
)

// sessionsPerTx bounds how many sessions go into one archive transaction.
const sessionsPerTx = 200

// Stats tracks import progress.
type Stats struct {
	SessionsFetched  int   `json:"sessions_fetched"`
	SessionsSkipped  int   `json:"sessions_skipped"`
	SessionsInserted int64 `json:"sessions_inserted"`
	SetsInserted     int64 `json:"sets_inserted"`
	RepsInserted     int64 `json:"reps_inserted"`
}

// Fetcher loads a member's full history. api.Client implements it.
type Fetcher interface {
	FetchHistoryAll(ctx context.Context, userID string) ([]models.Session, error)
}

// Archive stores sessions. storage.DB implements it.
type Archive interface {
	InsertSessions(ctx context.Context, userID string, sessions []models.Session) (storage.InsertStats, error)
	RecordSync(ctx context.Context, userID string, at time.Time, sessionsSeen int) error
}

// Importer pulls history from a Fetcher into an Archive.
type Importer struct {
	src     Fetcher
	archive Archive
	log     *slog.Logger
	dryRun  bool
	now     func() time.Time
}

// New creates a new Importer. In dry-run mode nothing is written and the insert counters
// report what would have been sent.
func New(src Fetcher, archive Archive, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{src: src, archive: archive, log: log, dryRun: dryRun, now: time.Now}
}

// Import archives the full history of one user.
func (imp *Importer) Import(ctx context.Context, userID string) (*Stats, error) {
	var stats Stats
	if userID == "" {
		return &stats, fmt.Errorf("importing history: user id is required")
	}

	sessions, err := imp.src.FetchHistoryAll(ctx, userID)
	if err != nil {
		return &stats, fmt.Errorf("fetching history for %s: %w", userID, err)
	}
	stats.SessionsFetched = len(sessions)

	// Session ids are the archive's primary key; drop blanks and repeats up front.
	seen := make(map[string]bool, len(sessions))
	keep := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.ID == "" || seen[s.ID] {
			stats.SessionsSkipped++
			imp.log.Warn("skipping session", "user_id", userID, "session_id", s.ID, "start_time", s.StartTime)
			continue
		}
		seen[s.ID] = true
		keep = append(keep, s)
	}

	if imp.dryRun {
		for _, s := range keep {
			stats.SessionsInserted++
			stats.SetsInserted += int64(len(s.Sets))
			for _, set := range s.Sets {
				stats.RepsInserted += int64(len(set.Reps))
			}
		}
		imp.log.Info("dry run: nothing written", "user_id", userID, "sessions", len(keep))
		return &stats, nil
	}

	for start := 0; start < len(keep); start += sessionsPerTx {
		chunk := keep[start:min(start+sessionsPerTx, len(keep))]
		ins, err := imp.archive.InsertSessions(ctx, userID, chunk)
		if err != nil {
			return &stats, fmt.Errorf("archiving sessions: %w", err)
		}
		stats.SessionsInserted += ins.Sessions
		stats.SetsInserted += ins.Sets
		stats.RepsInserted += ins.Reps
		imp.log.Debug("archived chunk", "user_id", userID, "offset", start, "size", len(chunk), "new", ins.Sessions)
	}

	if err := imp.archive.RecordSync(ctx, userID, imp.now(), stats.SessionsFetched); err != nil {
		return &stats, fmt.Errorf("recording sync for %s: %w", userID, err)
	}
	return &stats, nil
}
