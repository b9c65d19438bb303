package insights

import (
	"reflect"
	"testing"

	"github.com/claude/titanfit/internal/models"
)

// TestBuildDailyEndToEnd verifies the two-session day: counts, calories and the valid-rep
// percentage computed against delivered rep records.
func TestBuildDailyEndToEnd(t *testing.T) {
	got := BuildDaily(benchAndSquat())
	want := DailySummary{
		SessionCount:    2,
		SetCount:        2,
		RepCount:        9,
		Calories:        550,
		CaloriesTotal:   550,
		ValidReps:       8,
		TelemetryReps:   9,
		ValidRepPercent: 89,
	}
	if got != want {
		t.Errorf("BuildDaily = %+v, want %+v", got, want)
	}
}

// TestBuildDailyEmpty verifies that a day without sessions is all zeros, not an error.
func TestBuildDailyEmpty(t *testing.T) {
	if got := BuildDaily(nil); got != (DailySummary{}) {
		t.Errorf("BuildDaily(nil) = %+v, want zero value", got)
	}
	if g := GroupByExercise(nil); g.Len() != 0 {
		t.Errorf("grouping len = %d, want 0", g.Len())
	}
}

// TestBuildDailyValidPercent verifies 3 valid reps out of 4 gives 75%.
func TestBuildDailyValidPercent(t *testing.T) {
	sessions := []models.Session{
		session("A", "2026-02-10T07:00:00Z", 0, models.Set{
			ExerciseName: "Deadlift", RepsCompleted: 4, Reps: reps(4, 3),
		}),
	}
	if got := BuildDaily(sessions).ValidRepPercent; got != 75 {
		t.Errorf("ValidRepPercent = %d, want 75", got)
	}
}

// TestBuildDailyReportedVsTelemetry verifies that reps_completed and the number of rep
// records are kept as separate metrics when the backend disagrees with itself.
func TestBuildDailyReportedVsTelemetry(t *testing.T) {
	sessions := []models.Session{
		session("A", "2026-02-10T07:00:00Z", 120.4, models.Set{
			ExerciseName: "Row", RepsCompleted: 10, Reps: reps(2, 1),
		}),
		session("B", "2026-02-10T09:00:00Z", 80.3, models.Set{
			ExerciseName: "Row", RepsCompleted: 6,
		}),
	}
	got := BuildDaily(sessions)
	if got.RepCount != 16 {
		t.Errorf("RepCount = %d, want 16", got.RepCount)
	}
	if got.TelemetryReps != 2 {
		t.Errorf("TelemetryReps = %d, want 2", got.TelemetryReps)
	}
	if got.ValidRepPercent != 50 {
		t.Errorf("ValidRepPercent = %d, want 50", got.ValidRepPercent)
	}
	if got.CaloriesTotal != 201 {
		t.Errorf("CaloriesTotal = %d, want 201", got.CaloriesTotal)
	}
	if got.Calories < 200.69 || got.Calories > 200.71 {
		t.Errorf("Calories = %v, want unrounded 200.7", got.Calories)
	}
}

// TestBuildDailyNoTelemetry verifies there is no division by zero when no rep records exist.
func TestBuildDailyNoTelemetry(t *testing.T) {
	sessions := []models.Session{
		session("A", "2026-02-10T07:00:00Z", 10, models.Set{ExerciseName: "Plank", RepsCompleted: 3}),
	}
	if got := BuildDaily(sessions).ValidRepPercent; got != 0 {
		t.Errorf("ValidRepPercent = %d, want 0", got)
	}
}

// TestBuildDailyIdempotent verifies the same input always yields the same output.
func TestBuildDailyIdempotent(t *testing.T) {
	in := benchAndSquat()
	first := BuildDaily(in)
	second := BuildDaily(in)
	if first != second {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
	if !reflect.DeepEqual(GroupByExercise(in).Buckets(), GroupByExercise(in).Buckets()) {
		t.Error("grouping differs between runs")
	}
}
