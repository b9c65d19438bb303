package insights

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/claude/titanfit/internal/models"
)

// TestBuildSnapshotEmpty verifies an empty history gives zero totals and empty series.
func TestBuildSnapshotEmpty(t *testing.T) {
	snap := BuildSnapshot(nil)
	if snap.Totals != (Totals{}) {
		t.Errorf("totals = %+v", snap.Totals)
	}
	if snap.DayLabels == nil || len(snap.DayLabels) != 0 || len(snap.TopExerciseReps) != 0 || len(snap.TopFormValues) != 0 {
		t.Errorf("series should be empty: %+v", snap)
	}
}

// TestBuildSnapshotDayCap verifies 20 distinct days are capped to the most recent 12,
// oldest first.
func TestBuildSnapshotDayCap(t *testing.T) {
	var sessions []models.Session
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	// Newest first, so the builder cannot rely on input order.
	for i := 19; i >= 0; i-- {
		day := start.AddDate(0, 0, i)
		sessions = append(sessions, session(fmt.Sprintf("s%d", i), day.Format(time.RFC3339), float64(100+i)))
	}
	snap := BuildSnapshot(sessions)
	if len(snap.DayKeys) != 12 || len(snap.DayLabels) != 12 || len(snap.DayCalories) != 12 || len(snap.DaySessions) != 12 {
		t.Fatalf("day series lengths = %d/%d/%d/%d, want 12",
			len(snap.DayKeys), len(snap.DayLabels), len(snap.DayCalories), len(snap.DaySessions))
	}
	if snap.DayKeys[0] != "2026-01-09" || snap.DayKeys[11] != "2026-01-20" {
		t.Errorf("day range = %s..%s, want 2026-01-09..2026-01-20", snap.DayKeys[0], snap.DayKeys[11])
	}
	if snap.DayLabels[0] != "Jan 9" {
		t.Errorf("first label = %q, want Jan 9", snap.DayLabels[0])
	}
	if snap.DayCalories[0] != 108 || snap.DayCalories[11] != 119 {
		t.Errorf("day calories = %v", snap.DayCalories)
	}
	if snap.Totals.Sessions != 20 {
		t.Errorf("total sessions = %d, want 20 (cap is for display only)", snap.Totals.Sessions)
	}
}

// TestBuildSnapshotDayBuckets verifies sessions on the same day share one bucket.
func TestBuildSnapshotDayBuckets(t *testing.T) {
	snap := BuildSnapshot(benchAndSquat())
	if !reflect.DeepEqual(snap.DaySessions, []int{2}) {
		t.Errorf("DaySessions = %v, want [2]", snap.DaySessions)
	}
	if !reflect.DeepEqual(snap.DayCalories, []int{550}) {
		t.Errorf("DayCalories = %v, want [550]", snap.DayCalories)
	}
	want := Totals{Sessions: 2, Sets: 2, Reps: 9, Calories: 550}
	if snap.Totals != want {
		t.Errorf("totals = %+v, want %+v", snap.Totals, want)
	}
}

// TestBuildSnapshotTopVolume verifies the volume ranking is sorted descending and capped at 8.
func TestBuildSnapshotTopVolume(t *testing.T) {
	var sets []models.Set
	// Ascending input so sorting is actually exercised.
	for i := 1; i <= 10; i++ {
		sets = append(sets, models.Set{
			ExerciseName:     fmt.Sprintf("Ex%02d", i),
			SessionSetNumber: i,
			RepsCompleted:    i * 5,
		})
	}
	snap := BuildSnapshot([]models.Session{session("A", "2026-02-10T07:00:00Z", 0, sets...)})
	want := []int{50, 45, 40, 35, 30, 25, 20, 15}
	if !reflect.DeepEqual(snap.TopExerciseReps, want) {
		t.Errorf("TopExerciseReps = %v, want %v", snap.TopExerciseReps, want)
	}
	if snap.TopExerciseLabels[0] != "Ex10" {
		t.Errorf("top label = %q, want Ex10", snap.TopExerciseLabels[0])
	}
	if len(snap.Exercises) != 10 {
		t.Errorf("Exercises = %d rows, want all 10", len(snap.Exercises))
	}
}

// TestBuildSnapshotFormAverage verifies sets without a form score are excluded from the
// average instead of counting as zero.
func TestBuildSnapshotFormAverage(t *testing.T) {
	snap := BuildSnapshot([]models.Session{
		session("A", "2026-02-10T07:00:00Z", 0,
			models.Set{ExerciseName: "Squat", SessionSetNumber: 1, AvgFormScore: models.Some(0.80)},
			models.Set{ExerciseName: "Squat", SessionSetNumber: 2, AvgFormScore: models.Some(0.90)},
			models.Set{ExerciseName: "Squat", SessionSetNumber: 3},
		),
	})
	if len(snap.Exercises) != 1 || snap.Exercises[0].AvgFormPercent != 85 {
		t.Fatalf("Exercises = %+v, want Squat at 85", snap.Exercises)
	}
	if snap.Exercises[0].TotalSets != 3 {
		t.Errorf("TotalSets = %d, want 3", snap.Exercises[0].TotalSets)
	}
	if !reflect.DeepEqual(snap.TopFormValues, []int{85}) {
		t.Errorf("TopFormValues = %v, want [85]", snap.TopFormValues)
	}
}

// TestBuildSnapshotFormExcludesZero verifies exercises without any form data, or with a
// zero average, never show up in the form ranking.
func TestBuildSnapshotFormExcludesZero(t *testing.T) {
	snap := BuildSnapshot([]models.Session{
		session("A", "2026-02-10T07:00:00Z", 0,
			models.Set{ExerciseName: "Plank", SessionSetNumber: 1},
			models.Set{ExerciseName: "Dips", SessionSetNumber: 2, AvgFormScore: models.Some(0)},
			models.Set{ExerciseName: "Press", SessionSetNumber: 3, AvgFormScore: models.Some(0.7)},
		),
	})
	if !reflect.DeepEqual(snap.TopFormLabels, []string{"Press"}) {
		t.Errorf("TopFormLabels = %v, want [Press]", snap.TopFormLabels)
	}
	for _, v := range snap.TopFormValues {
		if v == 0 {
			t.Error("zero form value in ranking")
		}
	}
}

// TestBuildSnapshotTiesKeepInsertionOrder verifies equal values rank in first-seen order.
func TestBuildSnapshotTiesKeepInsertionOrder(t *testing.T) {
	snap := BuildSnapshot([]models.Session{
		session("A", "2026-02-10T07:00:00Z", 0,
			models.Set{ExerciseName: "Row", SessionSetNumber: 1, RepsCompleted: 10, AvgFormScore: models.Some(0.9)},
			models.Set{ExerciseName: "Curl", SessionSetNumber: 2, RepsCompleted: 12, AvgFormScore: models.Some(0.9)},
			models.Set{ExerciseName: "Dip", SessionSetNumber: 3, RepsCompleted: 10, AvgFormScore: models.Some(0.9)},
		),
	})
	if !reflect.DeepEqual(snap.TopExerciseLabels, []string{"Curl", "Row", "Dip"}) {
		t.Errorf("TopExerciseLabels = %v", snap.TopExerciseLabels)
	}
	if !reflect.DeepEqual(snap.TopFormLabels, []string{"Row", "Curl", "Dip"}) {
		t.Errorf("TopFormLabels = %v", snap.TopFormLabels)
	}
}

// TestBuildSnapshotLabelTruncation verifies long names are shortened for labels only.
func TestBuildSnapshotLabelTruncation(t *testing.T) {
	snap := BuildSnapshot([]models.Session{
		session("A", "2026-02-10T07:00:00Z", 0,
			models.Set{ExerciseName: "Romanian Deadlift", SessionSetNumber: 1, RepsCompleted: 8, AvgFormScore: models.Some(0.75)},
		),
	})
	if snap.TopExerciseLabels[0] != "Romania..." {
		t.Errorf("label = %q, want Romania...", snap.TopExerciseLabels[0])
	}
	if snap.TopFormLabels[0] != "Romania..." {
		t.Errorf("form label = %q", snap.TopFormLabels[0])
	}
	if snap.Exercises[0].Name != "Romanian Deadlift" {
		t.Errorf("row name = %q, truncation must not leak into data", snap.Exercises[0].Name)
	}
}
