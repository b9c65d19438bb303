package insights

import (
	"reflect"
	"testing"

	"github.com/claude/titanfit/internal/models"
)

// TestGroupByExerciseOrder verifies exercise names keep first-seen order.
func TestGroupByExerciseOrder(t *testing.T) {
	g := GroupByExercise(benchAndSquat())
	if got := g.Names(); !reflect.DeepEqual(got, []string{"Bench Press", "Squat"}) {
		t.Errorf("Names() = %v", got)
	}
	if g.FirstKey("Bench Press") != "A:1:Bench Press" {
		t.Errorf("FirstKey = %q", g.FirstKey("Bench Press"))
	}
	v := g.Find("Squat", "B:1:Squat")
	if v == nil {
		t.Fatal("expected to find B:1:Squat")
	}
	if v.GymName != "Titan Downtown" || v.TotalCalories != 250 {
		t.Errorf("session context not carried: %+v", v)
	}
	if v.ValidReps() != 5 {
		t.Errorf("ValidReps = %d, want 5", v.ValidReps())
	}
}

// TestGroupByExerciseRepSort verifies reps delivered as [3,1,2] come out as [1,2,3]
// and that the source slice is left untouched.
func TestGroupByExerciseRepSort(t *testing.T) {
	src := []models.Rep{{RepNumber: 3}, {RepNumber: 1}, {RepNumber: 2}}
	sessions := []models.Session{
		session("A", "2026-02-10T07:00:00Z", 0, models.Set{ExerciseName: "Curl", Reps: src}),
	}
	g := GroupByExercise(sessions)
	var got []int
	for _, r := range g.Sets("Curl")[0].Reps {
		got = append(got, r.RepNumber)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("rep order = %v, want [1 2 3]", got)
	}
	if src[0].RepNumber != 3 {
		t.Error("source reps were mutated")
	}
}

// TestGroupByExerciseSetOrder verifies sets are ordered by session start, then by
// session-set number, regardless of input order.
func TestGroupByExerciseSetOrder(t *testing.T) {
	sessions := []models.Session{
		session("late", "2026-02-10T18:00:00Z", 0,
			models.Set{ExerciseName: "Squat", SetNumber: 1, SessionSetNumber: 1}),
		session("early", "2026-02-10T07:00:00Z", 0,
			models.Set{ExerciseName: "Squat", SetNumber: 2, SessionSetNumber: 5},
			models.Set{ExerciseName: "Squat", SetNumber: 1, SessionSetNumber: 2},
		),
	}
	g := GroupByExercise(sessions)
	var keys []string
	for _, v := range g.Sets("Squat") {
		keys = append(keys, v.Key)
	}
	want := []string{"early:2:Squat", "early:5:Squat", "late:1:Squat"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

// TestGroupingNilSafe verifies accessors on a nil grouping behave like an empty one.
func TestGroupingNilSafe(t *testing.T) {
	var g *Grouping
	if g.Len() != 0 || g.Has("x") || g.Sets("x") != nil || g.FirstKey("x") != "" || g.Find("x", "k") != nil {
		t.Error("nil grouping should be empty")
	}
	if b := g.Buckets(); len(b) != 0 {
		t.Errorf("Buckets() = %v", b)
	}
}
