package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/titanfit/internal/dashboard"
	"github.com/claude/titanfit/internal/insights"
	"github.com/claude/titanfit/internal/models"
	"github.com/go-chi/chi/v5"
)

type selectionResponse struct {
	State    string            `json:"state"`
	Exercise string            `json:"exercise,omitempty"`
	SetKey   string            `json:"set_key,omitempty"`
	Set      *insights.SetView `json:"set,omitempty"`
}

type dailyResponse struct {
	Date      string                    `json:"date"`
	Summary   insights.DailySummary     `json:"summary"`
	Exercises []insights.ExerciseBucket `json:"exercises"`
	Selection selectionResponse         `json:"selection"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(models.DayLayout, date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	ctrl := dashboard.New(s.src, dashboard.StaticUser(userID), s.log)
	if err := ctrl.LoadDaily(r.Context(), date); err != nil {
		s.loadFailed(w, r, err)
		return
	}

	q := r.URL.Query()
	if ex := q.Get("exercise"); ex != "" {
		ctrl.SelectExercise(ex)
	}
	if key := q.Get("set"); key != "" {
		ctrl.SelectSet(key)
	}

	d := ctrl.Daily()
	sel := selectionResponse{State: insights.Empty.String()}
	if d.Exercise != "" {
		sel = selectionResponse{
			State:    insights.Selected.String(),
			Exercise: d.Exercise,
			SetKey:   d.SetKey,
			Set:      d.Active(),
		}
	}
	writeJSON(w, http.StatusOK, dailyResponse{
		Date:      d.Day,
		Summary:   d.Summary,
		Exercises: d.Grouping.Buckets(),
		Selection: sel,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	ctrl := dashboard.New(s.src, dashboard.StaticUser(chi.URLParam(r, "userID")), s.log)
	if err := ctrl.LoadInsights(r.Context()); err != nil {
		s.loadFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Insights().Snapshot)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "archive is not configured"})
		return
	}
	userID := chi.URLParam(r, "userID")
	stats, err := s.sync.Import(r.Context(), userID)
	if err != nil {
		s.log.Error("sync error", "user_id", userID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, dashboard.ErrNoUser) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.log.Warn("history fetch failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
