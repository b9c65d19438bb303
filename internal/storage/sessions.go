package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/claude/titanfit/internal/models"
	"github.com/jackc/pgx/v5"
)

// batchRows caps rows per multi-VALUES insert to stay under the bind parameter limit.
const batchRows = 1000

// InsertStats counts rows actually written. Rows that already existed are not counted.
type InsertStats struct {
	Sessions int64
	Sets     int64
	Reps     int64
}

type sessionRow struct {
	UserID        string
	SessionID     string
	Day           string
	StartTime     time.Time
	EndTime       time.Time
	TZOffsetSec   int
	GymName       string
	TotalCalories float64
}

type setRow struct {
	UserID           string
	SessionID        string
	SessionSetNumber int
	ExerciseName     string
	Position         int
	SetNumber        int
	RepsCompleted    int
	AvgFormScore     *float64
}

type repRow struct {
	UserID           string
	SessionID        string
	SessionSetNumber int
	ExerciseName     string
	Position         int
	RepNumber        int
	DurationSeconds  float64
	IsValid          bool
	HasTelemetry     bool
	Velocity         *float64
	StartAngle       *float64
	EndAngle         *float64
	ErrorMargin      *float64
}

// flatten splits a session into its table rows. The start time's UTC offset is stored
// separately so day keys computed after a round trip match the backend's.
func flatten(userID string, s models.Session) (sessionRow, []setRow, []repRow) {
	_, offset := s.StartTime.Zone()
	sr := sessionRow{
		UserID:        userID,
		SessionID:     s.ID,
		Day:           s.StartTime.DayKey(),
		StartTime:     s.StartTime.Time,
		EndTime:       s.EndTime.Time,
		TZOffsetSec:   offset,
		GymName:       s.GymName,
		TotalCalories: s.TotalCalories,
	}

	var sets []setRow
	var reps []repRow
	for pos, set := range s.Sets {
		sets = append(sets, setRow{
			UserID:           userID,
			SessionID:        s.ID,
			SessionSetNumber: set.SessionSetNumber,
			ExerciseName:     set.ExerciseName,
			Position:         pos,
			SetNumber:        set.SetNumber,
			RepsCompleted:    set.RepsCompleted,
			AvgFormScore:     set.AvgFormScore.Ptr(),
		})
		for i, rep := range set.Reps {
			r := repRow{
				UserID:           userID,
				SessionID:        s.ID,
				SessionSetNumber: set.SessionSetNumber,
				ExerciseName:     set.ExerciseName,
				Position:         i,
				RepNumber:        rep.RepNumber,
				DurationSeconds:  rep.DurationSeconds,
				IsValid:          rep.IsValid,
			}
			if tel := rep.Telemetry; tel != nil {
				r.HasTelemetry = true
				r.Velocity = tel.Velocity.Ptr()
				r.StartAngle = tel.StartAngle.Ptr()
				r.EndAngle = tel.EndAngle.Ptr()
				r.ErrorMargin = tel.ErrorMargin.Ptr()
			}
			reps = append(reps, r)
		}
	}
	return sr, sets, reps
}

// assemble rebuilds sessions from rows. Sets are put back in the order the backend sent
// them; reps must already be ordered. Rows whose parent is missing are dropped.
func assemble(sessions []sessionRow, sets []setRow, reps []repRow) []models.Session {
	out := make([]models.Session, len(sessions))
	byID := make(map[string]int, len(sessions))
	for i, r := range sessions {
		loc := time.FixedZone("", r.TZOffsetSec)
		out[i] = models.Session{
			ID:            r.SessionID,
			StartTime:     models.Timestamp{Time: r.StartTime.In(loc)},
			EndTime:       models.Timestamp{Time: r.EndTime.In(loc)},
			GymName:       r.GymName,
			TotalCalories: r.TotalCalories,
			Sets:          []models.Set{},
		}
		byID[r.SessionID] = i
	}

	sets = append([]setRow(nil), sets...)
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].Position < sets[j].Position })

	type setRef struct{ session, set int }
	setIdx := make(map[string]setRef, len(sets))
	for _, r := range sets {
		si, ok := byID[r.SessionID]
		if !ok {
			continue
		}
		out[si].Sets = append(out[si].Sets, models.Set{
			ExerciseName:     r.ExerciseName,
			SetNumber:        r.SetNumber,
			SessionSetNumber: r.SessionSetNumber,
			RepsCompleted:    r.RepsCompleted,
			AvgFormScore:     models.OptFloatFrom(r.AvgFormScore),
			Reps:             []models.Rep{},
		})
		setIdx[setKey(r.SessionID, r.SessionSetNumber, r.ExerciseName)] = setRef{si, len(out[si].Sets) - 1}
	}

	for _, r := range reps {
		ref, ok := setIdx[setKey(r.SessionID, r.SessionSetNumber, r.ExerciseName)]
		if !ok {
			continue
		}
		rep := models.Rep{
			RepNumber:       r.RepNumber,
			DurationSeconds: r.DurationSeconds,
			IsValid:         r.IsValid,
		}
		if r.HasTelemetry {
			rep.Telemetry = &models.Telemetry{
				Velocity:    models.OptFloatFrom(r.Velocity),
				StartAngle:  models.OptFloatFrom(r.StartAngle),
				EndAngle:    models.OptFloatFrom(r.EndAngle),
				ErrorMargin: models.OptFloatFrom(r.ErrorMargin),
			}
		}
		set := &out[ref.session].Sets[ref.set]
		set.Reps = append(set.Reps, rep)
	}
	return out
}

func setKey(sessionID string, ssn int, name string) string {
	return fmt.Sprintf("%s\x00%d\x00%s", sessionID, ssn, name)
}

// InsertSessions archives sessions for a user in one transaction. Sessions already in the
// archive are left untouched, so re-importing the same history is a no-op.
func (db *DB) InsertSessions(ctx context.Context, userID string, sessions []models.Session) (InsertStats, error) {
	var stats InsertStats
	if len(sessions) == 0 {
		return stats, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("beginning archive tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var sets []setRow
	var reps []repRow
	for _, s := range sessions {
		sr, ss, rr := flatten(userID, s)
		tag, err := tx.Exec(ctx,
			`INSERT INTO workout_sessions (user_id, session_id, day, start_time, end_time,
			 tz_offset_sec, gym_name, total_calories)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 ON CONFLICT DO NOTHING`,
			sr.UserID, sr.SessionID, sr.Day, sr.StartTime, sr.EndTime,
			sr.TZOffsetSec, sr.GymName, sr.TotalCalories)
		if err != nil {
			return stats, fmt.Errorf("inserting session %s: %w", s.ID, err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		stats.Sessions++
		sets = append(sets, ss...)
		reps = append(reps, rr...)
	}

	for start := 0; start < len(sets); start += batchRows {
		n, err := insertSets(ctx, tx, sets[start:min(start+batchRows, len(sets))])
		if err != nil {
			return stats, err
		}
		stats.Sets += n
	}
	for start := 0; start < len(reps); start += batchRows {
		n, err := insertReps(ctx, tx, reps[start:min(start+batchRows, len(reps))])
		if err != nil {
			return stats, err
		}
		stats.Reps += n
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("committing archive tx: %w", err)
	}
	return stats, nil
}

func insertSets(ctx context.Context, tx pgx.Tx, rows []setRow) (int64, error) {
	query := `INSERT INTO workout_sets (user_id, session_id, session_set_number, exercise_name,
		position, set_number, reps_completed, avg_form_score) VALUES `
	args := make([]any, 0, len(rows)*8)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, r.UserID, r.SessionID, r.SessionSetNumber, r.ExerciseName,
			r.Position, r.SetNumber, r.RepsCompleted, r.AvgFormScore)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

func insertReps(ctx context.Context, tx pgx.Tx, rows []repRow) (int64, error) {
	query := `INSERT INTO workout_reps (user_id, session_id, session_set_number, exercise_name,
		position, rep_number, duration_seconds, is_valid, has_telemetry,
		velocity, start_angle, end_angle, error_margin) VALUES `
	args := make([]any, 0, len(rows)*13)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 13
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args, r.UserID, r.SessionID, r.SessionSetNumber, r.ExerciseName,
			r.Position, r.RepNumber, r.DurationSeconds, r.IsValid, r.HasTelemetry,
			r.Velocity, r.StartAngle, r.EndAngle, r.ErrorMargin)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout reps: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FetchHistoryByDate returns the archived sessions of one YYYY-MM-DD day, oldest first.
func (db *DB) FetchHistoryByDate(ctx context.Context, userID, day string) ([]models.Session, error) {
	return db.fetchSessions(ctx, `WHERE user_id = $1 AND day = $2`, userID, day)
}

// FetchHistoryAll returns every archived session of a user, oldest first.
func (db *DB) FetchHistoryAll(ctx context.Context, userID string) ([]models.Session, error) {
	return db.fetchSessions(ctx, `WHERE user_id = $1`, userID)
}

func (db *DB) fetchSessions(ctx context.Context, where string, args ...any) ([]models.Session, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, session_id, day, start_time, end_time, tz_offset_sec, gym_name, total_calories
		 FROM workout_sessions `+where+`
		 ORDER BY start_time ASC, session_id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []sessionRow
	for rows.Next() {
		var r sessionRow
		if err := rows.Scan(&r.UserID, &r.SessionID, &r.Day, &r.StartTime, &r.EndTime,
			&r.TZOffsetSec, &r.GymName, &r.TotalCalories); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []models.Session{}, nil
	}

	userID := sessions[0].UserID
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}

	sets, err := db.querySets(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	reps, err := db.queryReps(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	return assemble(sessions, sets, reps), nil
}

func (db *DB) querySets(ctx context.Context, userID string, sessionIDs []string) ([]setRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, session_id, session_set_number, exercise_name, position, set_number,
		 reps_completed, avg_form_score
		 FROM workout_sets
		 WHERE user_id = $1 AND session_id = ANY($2)
		 ORDER BY session_id, position, session_set_number, exercise_name`,
		userID, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var result []setRow
	for rows.Next() {
		var r setRow
		if err := rows.Scan(&r.UserID, &r.SessionID, &r.SessionSetNumber, &r.ExerciseName,
			&r.Position, &r.SetNumber, &r.RepsCompleted, &r.AvgFormScore); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (db *DB) queryReps(ctx context.Context, userID string, sessionIDs []string) ([]repRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, session_id, session_set_number, exercise_name, position, rep_number,
		 duration_seconds, is_valid, has_telemetry, velocity, start_angle, end_angle, error_margin
		 FROM workout_reps
		 WHERE user_id = $1 AND session_id = ANY($2)
		 ORDER BY session_id, session_set_number, exercise_name, position`,
		userID, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("querying reps: %w", err)
	}
	defer rows.Close()

	var result []repRow
	for rows.Next() {
		var r repRow
		if err := rows.Scan(&r.UserID, &r.SessionID, &r.SessionSetNumber, &r.ExerciseName,
			&r.Position, &r.RepNumber, &r.DurationSeconds, &r.IsValid, &r.HasTelemetry,
			&r.Velocity, &r.StartAngle, &r.EndAngle, &r.ErrorMargin); err != nil {
			return nil, fmt.Errorf("scanning rep: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
