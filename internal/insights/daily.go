package insights

import "github.com/claude/titanfit/internal/models"

// DailySummary holds the metric cards for one selected day.
//
// RepCount is the backend-reported reps_completed total. TelemetryReps counts the rep
// records actually delivered. The two can legitimately differ and are kept apart.
type DailySummary struct {
	SessionCount    int     `json:"session_count"`
	SetCount        int     `json:"set_count"`
	RepCount        int     `json:"rep_count"`
	Calories        float64 `json:"calories"`
	CaloriesTotal   int     `json:"calories_total"`
	ValidReps       int     `json:"valid_reps"`
	TelemetryReps   int     `json:"telemetry_reps"`
	ValidRepPercent int     `json:"valid_rep_percent"`
}

// BuildDaily rolls up sessions already filtered to one calendar day.
// An empty list is a valid day with no training.
func BuildDaily(sessions []models.Session) DailySummary {
	var sum DailySummary
	sum.SessionCount = len(sessions)
	for _, s := range sessions {
		sum.Calories += s.TotalCalories
		sum.SetCount += len(s.Sets)
		for _, set := range s.Sets {
			sum.RepCount += set.RepsCompleted
			sum.TelemetryReps += len(set.Reps)
			for _, rep := range set.Reps {
				if rep.IsValid {
					sum.ValidReps++
				}
			}
		}
	}
	sum.CaloriesTotal = roundInt(sum.Calories)
	if sum.TelemetryReps > 0 {
		sum.ValidRepPercent = roundInt(100 * float64(sum.ValidReps) / float64(sum.TelemetryReps))
	}
	return sum
}
