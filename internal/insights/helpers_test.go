package insights

import (
	"time"

	"github.com/claude/titanfit/internal/models"
)

func ts(s string) models.Timestamp {
	t, err := models.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return t
}

// reps builds n reps numbered 1..n with the first `valid` of them valid.
func reps(n, valid int) []models.Rep {
	out := make([]models.Rep, n)
	for i := range out {
		out[i] = models.Rep{RepNumber: i + 1, DurationSeconds: 2, IsValid: i < valid}
	}
	return out
}

func session(id, start string, calories float64, sets ...models.Set) models.Session {
	st := ts(start)
	return models.Session{
		ID:            id,
		StartTime:     st,
		EndTime:       models.Timestamp{Time: st.Add(time.Hour)},
		GymName:       "Titan Downtown",
		TotalCalories: calories,
		Sets:          sets,
	}
}

// benchAndSquat is the two-session day used across the rollup tests.
func benchAndSquat() []models.Session {
	return []models.Session{
		session("A", "2026-02-10T07:00:00Z", 300, models.Set{
			ExerciseName: "Bench Press", SetNumber: 1, SessionSetNumber: 1,
			RepsCompleted: 4, AvgFormScore: models.Some(0.8), Reps: reps(4, 3),
		}),
		session("B", "2026-02-10T18:00:00Z", 250, models.Set{
			ExerciseName: "Squat", SetNumber: 1, SessionSetNumber: 1,
			RepsCompleted: 5, AvgFormScore: models.Some(0.9), Reps: reps(5, 5),
		}),
	}
}
