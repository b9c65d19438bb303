package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/claude/titanfit/internal/dashboard"
	"github.com/claude/titanfit/internal/insights"
	"github.com/claude/titanfit/internal/models"
)

// TestTableAlignsWideRunes verifies columns are padded by display width, not byte length.
func TestTableAlignsWideRunes(t *testing.T) {
	tbl := newTable("NAME", "REPS")
	tbl.add("深蹲", "5")
	tbl.add("Bench", "8")

	var buf bytes.Buffer
	if err := tbl.write(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"NAME   REPS",
		"深蹲   5",
		"Bench  8",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

// TestPrintDailyEmpty verifies a day without sessions prints zeroed cards and a notice.
func TestPrintDailyEmpty(t *testing.T) {
	day := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	state := dashboard.DailyState{Day: "2026-02-10", Grouping: insights.GroupByExercise(nil)}

	var buf bytes.Buffer
	if err := printDaily(&buf, day, state); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Tue, Feb 10") || !strings.Contains(out, "sessions 0") {
		t.Errorf("header missing: %q", out)
	}
	if !strings.Contains(out, "No workouts recorded for this day.") {
		t.Errorf("empty notice missing: %q", out)
	}
}

// TestPrintDailyMarksSelection verifies the selected set is marked and its reps listed.
func TestPrintDailyMarksSelection(t *testing.T) {
	start, err := models.ParseTimestamp("2026-02-10T07:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	sessions := []models.Session{{
		ID:        "A",
		StartTime: start,
		GymName:   "Titan Downtown",
		Sets: []models.Set{{
			ExerciseName: "Squat", SetNumber: 1, SessionSetNumber: 1, RepsCompleted: 1,
			AvgFormScore: models.OptFloat{Value: 0.8, Valid: true},
			Reps:         []models.Rep{{RepNumber: 1, DurationSeconds: 2, IsValid: true}},
		}},
	}}
	g := insights.GroupByExercise(sessions)
	state := dashboard.DailyState{
		Day:      "2026-02-10",
		Summary:  insights.BuildDaily(sessions),
		Grouping: g,
		Exercise: "Squat",
		SetKey:   g.FirstKey("Squat"),
	}

	var buf bytes.Buffer
	if err := printDaily(&buf, start.Time, state); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, ">  Squat") {
		t.Errorf("selection marker missing: %q", out)
	}
	if !strings.Contains(out, "80%") || !strings.Contains(out, "Titan Downtown") {
		t.Errorf("set detail missing: %q", out)
	}
	if !strings.Contains(out, insights.Placeholder) {
		t.Errorf("missing telemetry should print placeholder: %q", out)
	}
}
