// Package dashboard drives the daily view and the insights view from fetched history.
//
// Both views have their own trigger. Loads on the same trigger may overlap; only the most
// recently started one is applied and older results are dropped.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/titanfit/internal/insights"
	"github.com/claude/titanfit/internal/models"
)

var (
	// ErrNoUser means there is no logged-in member to load history for.
	ErrNoUser = errors.New("user not found, please login again")
	// ErrSuperseded is returned by a load whose result was dropped because a newer load on
	// the same trigger was started.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// HistorySource fetches workout sessions. Both api.Client and storage.DB implement it.
type HistorySource interface {
	FetchHistoryByDate(ctx context.Context, userID, day string) ([]models.Session, error)
	FetchHistoryAll(ctx context.Context, userID string) ([]models.Session, error)
}

// UserSource names the member whose history is shown.
type UserSource interface {
	CurrentUserID() (string, error)
}

// StaticUser is a UserSource for a fixed user id.
type StaticUser string

// CurrentUserID returns the id, or ErrNoUser when it is empty.
func (u StaticUser) CurrentUserID() (string, error) {
	if u == "" {
		return "", ErrNoUser
	}
	return string(u), nil
}

// DailyState is a copy of the daily view.
type DailyState struct {
	Day      string
	Sessions []models.Session
	Summary  insights.DailySummary
	Grouping *insights.Grouping
	Exercise string
	SetKey   string
	Err      error
}

// Active returns the selected set, or nil.
func (d DailyState) Active() *insights.SetView {
	if d.Exercise == "" {
		return nil
	}
	return d.Grouping.Find(d.Exercise, d.SetKey)
}

// InsightsState is a copy of the insights view. Snapshot is nil until a load succeeds.
type InsightsState struct {
	Snapshot *insights.Snapshot
	Err      error
}

// Controller owns the state behind both views.
type Controller struct {
	src   HistorySource
	users UserSource
	log   *slog.Logger

	mu          sync.Mutex
	dailyGen    uint64
	insightsGen uint64
	day         string
	sessions    []models.Session
	summary     insights.DailySummary
	grouping    *insights.Grouping
	selector    insights.Selector
	dailyErr    error
	snapshot    *insights.Snapshot
	insightsErr error
}

// New creates a Controller.
func New(src HistorySource, users UserSource, log *slog.Logger) *Controller {
	return &Controller{
		src:      src,
		users:    users,
		log:      log,
		grouping: insights.GroupByExercise(nil),
	}
}

// LoadDaily fetches one YYYY-MM-DD day and rebuilds the daily view.
// It returns the load error, or ErrSuperseded if a newer LoadDaily started meanwhile.
func (c *Controller) LoadDaily(ctx context.Context, day string) error {
	if _, err := time.Parse(models.DayLayout, day); err != nil {
		return fmt.Errorf("invalid day %q: %w", day, err)
	}

	c.mu.Lock()
	c.dailyGen++
	ticket := c.dailyGen
	c.mu.Unlock()

	sessions, err := c.fetchDay(ctx, day)
	var (
		summary  insights.DailySummary
		grouping *insights.Grouping
	)
	if err == nil {
		summary = insights.BuildDaily(sessions)
		grouping = insights.GroupByExercise(sessions)
	} else {
		sessions = nil
		grouping = insights.GroupByExercise(nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket != c.dailyGen {
		c.log.Debug("dropping stale daily result", "day", day, "ticket", ticket, "latest", c.dailyGen)
		return ErrSuperseded
	}

	c.day = day
	c.sessions = sessions
	c.summary = summary
	c.grouping = grouping
	c.dailyErr = err
	c.selector.Sync(grouping)

	if err != nil {
		c.log.Warn("daily load failed", "day", day, "error", err)
		return err
	}
	c.log.Debug("daily loaded", "day", day, "sessions", summary.SessionCount, "sets", summary.SetCount)
	return nil
}

func (c *Controller) fetchDay(ctx context.Context, day string) ([]models.Session, error) {
	userID, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	sessions, err := c.src.FetchHistoryByDate(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("fetching history for %s: %w", day, err)
	}
	return sessions, nil
}

// RefreshDaily reloads the current day, or today when nothing was loaded yet.
func (c *Controller) RefreshDaily(ctx context.Context) error {
	c.mu.Lock()
	day := c.day
	c.mu.Unlock()
	if day == "" {
		day = insights.DayKey(time.Now())
	}
	return c.LoadDaily(ctx, day)
}

// LoadInsights fetches the full history and rebuilds the insights snapshot.
func (c *Controller) LoadInsights(ctx context.Context) error {
	c.mu.Lock()
	c.insightsGen++
	ticket := c.insightsGen
	c.mu.Unlock()

	var snap *insights.Snapshot
	userID, err := c.currentUser()
	if err == nil {
		var sessions []models.Session
		sessions, err = c.src.FetchHistoryAll(ctx, userID)
		if err != nil {
			err = fmt.Errorf("fetching full history: %w", err)
		} else {
			s := insights.BuildSnapshot(sessions)
			snap = &s
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket != c.insightsGen {
		c.log.Debug("dropping stale insights result", "ticket", ticket, "latest", c.insightsGen)
		return ErrSuperseded
	}

	c.snapshot = snap
	c.insightsErr = err
	if err != nil {
		c.log.Warn("insights load failed", "error", err)
		return err
	}
	c.log.Debug("insights loaded", "sessions", snap.Totals.Sessions, "days", len(snap.DayKeys))
	return nil
}

// RefreshInsights is LoadInsights under the name the retry action uses.
func (c *Controller) RefreshInsights(ctx context.Context) error {
	return c.LoadInsights(ctx)
}

func (c *Controller) currentUser() (string, error) {
	id, err := c.users.CurrentUserID()
	if err != nil || id == "" {
		if err != nil {
			c.log.Debug("no current user", "error", err)
		}
		return "", ErrNoUser
	}
	return id, nil
}

// SelectExercise makes name the active exercise. Unknown names are ignored.
func (c *Controller) SelectExercise(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selector.SelectExercise(c.grouping, name)
}

// SelectSet makes key the active set of the active exercise.
func (c *Controller) SelectSet(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selector.SelectSet(c.grouping, key)
}

// Daily returns the daily view.
func (c *Controller) Daily() DailyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DailyState{
		Day:      c.day,
		Sessions: c.sessions,
		Summary:  c.summary,
		Grouping: c.grouping,
		Exercise: c.selector.Exercise(),
		SetKey:   c.selector.SetKey(),
		Err:      c.dailyErr,
	}
}

// Insights returns the insights view.
func (c *Controller) Insights() InsightsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return InsightsState{Snapshot: c.snapshot, Err: c.insightsErr}
}
