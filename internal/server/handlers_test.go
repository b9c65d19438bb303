package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/titanfit/internal/importer"
	"github.com/claude/titanfit/internal/insights"
	"github.com/claude/titanfit/internal/models"
)

const testKey = "test-key"

type fakeSource struct {
	byDay   map[string][]models.Session
	all     []models.Session
	err     error
	gotUser string
}

func (f *fakeSource) FetchHistoryByDate(_ context.Context, userID, day string) ([]models.Session, error) {
	f.gotUser = userID
	return f.byDay[day], f.err
}

func (f *fakeSource) FetchHistoryAll(_ context.Context, userID string) ([]models.Session, error) {
	f.gotUser = userID
	return f.all, f.err
}

type fakeSyncer struct {
	stats *importer.Stats
	err   error
}

func (f *fakeSyncer) Import(_ context.Context, userID string) (*importer.Stats, error) {
	return f.stats, f.err
}

func testSession(t *testing.T) models.Session {
	t.Helper()
	start, err := models.ParseTimestamp("2026-02-10T07:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	return models.Session{
		ID:            "A",
		StartTime:     start,
		EndTime:       models.Timestamp{Time: start.Add(time.Hour)},
		GymName:       "Titan Downtown",
		TotalCalories: 300,
		Sets: []models.Set{
			{ExerciseName: "Bench Press", SetNumber: 1, SessionSetNumber: 1, RepsCompleted: 8},
			{ExerciseName: "Squat", SetNumber: 1, SessionSetNumber: 2, RepsCompleted: 5,
				Reps: []models.Rep{{RepNumber: 1, IsValid: true}}},
			{ExerciseName: "Squat", SetNumber: 2, SessionSetNumber: 3, RepsCompleted: 5},
		},
	}
}

func newTestServer(src *fakeSource) *Server {
	return New(src, testKey, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-API-Key", testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestHandleDaily verifies the daily route returns the rollup, the ordered grouping and the
// default selection.
func TestHandleDaily(t *testing.T) {
	src := &fakeSource{byDay: map[string][]models.Session{"2026-02-10": {testSession(t)}}}
	rec := do(t, newTestServer(src), http.MethodGet, "/api/v1/users/u1/daily/2026-02-10")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if src.gotUser != "u1" {
		t.Errorf("fetched user = %q", src.gotUser)
	}
	var resp dailyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Summary.SessionCount != 1 || resp.Summary.SetCount != 3 || resp.Summary.RepCount != 18 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if len(resp.Exercises) != 2 || resp.Exercises[0].Exercise != "Bench Press" || len(resp.Exercises[1].Sets) != 2 {
		t.Errorf("exercises = %+v", resp.Exercises)
	}
	if resp.Selection.State != "selected" || resp.Selection.SetKey != "A:1:Bench Press" {
		t.Errorf("selection = %+v", resp.Selection)
	}
}

// TestHandleDailyPicks verifies the exercise and set query parameters drive the selector.
func TestHandleDailyPicks(t *testing.T) {
	src := &fakeSource{byDay: map[string][]models.Session{"2026-02-10": {testSession(t)}}}
	rec := do(t, newTestServer(src), http.MethodGet,
		"/api/v1/users/u1/daily/2026-02-10?exercise=Squat&set=A:3:Squat")

	var resp dailyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Selection.Exercise != "Squat" || resp.Selection.SetKey != "A:3:Squat" {
		t.Errorf("selection = %+v", resp.Selection)
	}
	if resp.Selection.Set == nil || resp.Selection.Set.SessionSetNumber != 3 {
		t.Errorf("selected set = %+v", resp.Selection.Set)
	}
}

// TestHandleDailyEmptyDay verifies a day without sessions is a 200 with an empty selection.
func TestHandleDailyEmptyDay(t *testing.T) {
	rec := do(t, newTestServer(&fakeSource{}), http.MethodGet, "/api/v1/users/u1/daily/2026-02-11")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dailyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Selection.State != "empty" || resp.Exercises == nil || len(resp.Exercises) != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

// TestHandleDailyBadDate verifies malformed dates are rejected before fetching.
func TestHandleDailyBadDate(t *testing.T) {
	src := &fakeSource{}
	rec := do(t, newTestServer(src), http.MethodGet, "/api/v1/users/u1/daily/10-02-2026")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if src.gotUser != "" {
		t.Error("source called for bad date")
	}
}

// TestHandleDailyFetchFailure verifies backend failures map to 502 with an error body.
func TestHandleDailyFetchFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	rec := do(t, newTestServer(src), http.MethodGet, "/api/v1/users/u1/daily/2026-02-10")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["error"] == "" {
		t.Error("missing error message")
	}
}

// TestHandleInsights verifies the insights route returns the snapshot.
func TestHandleInsights(t *testing.T) {
	src := &fakeSource{all: []models.Session{testSession(t)}}
	rec := do(t, newTestServer(src), http.MethodGet, "/api/v1/users/u1/insights")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap insights.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if snap.Totals.Sessions != 1 || snap.Totals.Reps != 18 || snap.Totals.Calories != 300 {
		t.Errorf("totals = %+v", snap.Totals)
	}
	if len(snap.TopExerciseLabels) != 2 || snap.TopExerciseLabels[0] != "Squat" {
		t.Errorf("top labels = %v", snap.TopExerciseLabels)
	}
}

// TestHandleSync verifies the sync route reports importer stats and 501 without an archive.
func TestHandleSync(t *testing.T) {
	s := newTestServer(&fakeSource{})
	if rec := do(t, s, http.MethodPost, "/api/v1/users/u1/sync"); rec.Code != http.StatusNotImplemented {
		t.Errorf("status without archive = %d, want 501", rec.Code)
	}

	s.SetSyncer(&fakeSyncer{stats: &importer.Stats{SessionsFetched: 3, SessionsInserted: 2}})
	rec := do(t, s, http.MethodPost, "/api/v1/users/u1/sync")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats importer.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if stats.SessionsInserted != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestHealth verifies /healthz needs no key and reflects the dependency check.
func TestHealth(t *testing.T) {
	s := newTestServer(&fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	s.SetHealthCheck(func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

// TestUserRoutesRequireKey verifies the user routes are behind the API key.
func TestUserRoutesRequireKey(t *testing.T) {
	s := newTestServer(&fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/insights", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
