package insights

import (
	"sort"

	"github.com/claude/titanfit/internal/models"
)

const (
	// MaxTrendDays caps the trend charts to the most recent active days.
	MaxTrendDays = 12
	// MaxRankedExercises caps each exercise ranking.
	MaxRankedExercises = 8
	// MaxLabelWidth is the display budget for exercise chart labels.
	MaxLabelWidth = 8
)

// Totals are history-wide counts.
type Totals struct {
	Sessions int `json:"sessions"`
	Sets     int `json:"sets"`
	Reps     int `json:"reps"`
	Calories int `json:"calories"`
}

// ExerciseRow is one exercise's aggregate across the whole history.
type ExerciseRow struct {
	Name           string `json:"name"`
	TotalReps      int    `json:"total_reps"`
	TotalSets      int    `json:"total_sets"`
	AvgFormPercent int    `json:"avg_form_percent"`
}

// Snapshot is the insights view model. Day arrays are parallel (one index per day)
// and each label/value pair of the rankings is parallel (one index per exercise).
type Snapshot struct {
	Totals            Totals        `json:"totals"`
	DayKeys           []string      `json:"day_keys"`
	DayLabels         []string      `json:"day_labels"`
	DayCalories       []int         `json:"day_calories"`
	DaySessions       []int         `json:"day_sessions"`
	TopExerciseLabels []string      `json:"top_exercise_labels"`
	TopExerciseReps   []int         `json:"top_exercise_reps"`
	TopFormLabels     []string      `json:"top_form_labels"`
	TopFormValues     []int         `json:"top_form_values"`
	Exercises         []ExerciseRow `json:"exercises"`
}

type dayBucket struct {
	calories float64
	sessions int
}

type exerciseBucket struct {
	reps      int
	sets      int
	formSum   float64
	formCount int
}

// BuildSnapshot aggregates the entire session history. It does not filter by date.
func BuildSnapshot(sessions []models.Session) Snapshot {
	days := make(map[string]*dayBucket)
	exercises := make(map[string]*exerciseBucket)
	var exerciseOrder []string

	var totalCalories float64
	snap := Snapshot{}
	snap.Totals.Sessions = len(sessions)

	for _, s := range sessions {
		totalCalories += s.TotalCalories
		key := s.StartTime.DayKey()
		d, ok := days[key]
		if !ok {
			d = &dayBucket{}
			days[key] = d
		}
		d.calories += s.TotalCalories
		d.sessions++

		for _, set := range s.Sets {
			snap.Totals.Sets++
			snap.Totals.Reps += set.RepsCompleted

			ex, ok := exercises[set.ExerciseName]
			if !ok {
				ex = &exerciseBucket{}
				exercises[set.ExerciseName] = ex
				exerciseOrder = append(exerciseOrder, set.ExerciseName)
			}
			ex.reps += set.RepsCompleted
			ex.sets++
			if set.AvgFormScore.Valid {
				ex.formSum += set.AvgFormScore.Value
				ex.formCount++
			}
		}
	}
	snap.Totals.Calories = roundInt(totalCalories)

	dayKeys := make([]string, 0, len(days))
	for k := range days {
		dayKeys = append(dayKeys, k)
	}
	sort.Strings(dayKeys)
	if len(dayKeys) > MaxTrendDays {
		dayKeys = dayKeys[len(dayKeys)-MaxTrendDays:]
	}
	snap.DayKeys = dayKeys
	snap.DayLabels = make([]string, 0, len(dayKeys))
	snap.DayCalories = make([]int, 0, len(dayKeys))
	snap.DaySessions = make([]int, 0, len(dayKeys))
	for _, k := range dayKeys {
		snap.DayLabels = append(snap.DayLabels, ShortDay(k))
		snap.DayCalories = append(snap.DayCalories, roundInt(days[k].calories))
		snap.DaySessions = append(snap.DaySessions, days[k].sessions)
	}

	rows := make([]ExerciseRow, 0, len(exerciseOrder))
	for _, name := range exerciseOrder {
		ex := exercises[name]
		row := ExerciseRow{Name: name, TotalReps: ex.reps, TotalSets: ex.sets}
		if ex.formCount > 0 {
			row.AvgFormPercent = roundInt(100 * ex.formSum / float64(ex.formCount))
		}
		rows = append(rows, row)
	}
	snap.Exercises = rows

	byVolume := TopByVolume(rows, MaxRankedExercises)
	snap.TopExerciseLabels = make([]string, 0, len(byVolume))
	snap.TopExerciseReps = make([]int, 0, len(byVolume))
	for _, r := range byVolume {
		snap.TopExerciseLabels = append(snap.TopExerciseLabels, ShortText(r.Name, MaxLabelWidth))
		snap.TopExerciseReps = append(snap.TopExerciseReps, r.TotalReps)
	}

	byForm := TopByForm(rows, MaxRankedExercises)
	snap.TopFormLabels = make([]string, 0, len(byForm))
	snap.TopFormValues = make([]int, 0, len(byForm))
	for _, r := range byForm {
		snap.TopFormLabels = append(snap.TopFormLabels, ShortText(r.Name, MaxLabelWidth))
		snap.TopFormValues = append(snap.TopFormValues, r.AvgFormPercent)
	}

	return snap
}

// TopByVolume returns up to n rows ordered by total reps, highest first.
// Ties keep their input order.
func TopByVolume(rows []ExerciseRow, n int) []ExerciseRow {
	out := append([]ExerciseRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalReps > out[j].TotalReps
	})
	return capRows(out, n)
}

// TopByForm returns up to n rows with a positive form average, best first.
// Ties keep their input order.
func TopByForm(rows []ExerciseRow, n int) []ExerciseRow {
	out := make([]ExerciseRow, 0, len(rows))
	for _, r := range rows {
		if r.AvgFormPercent > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgFormPercent > out[j].AvgFormPercent
	})
	return capRows(out, n)
}

func capRows(rows []ExerciseRow, n int) []ExerciseRow {
	if n < 0 {
		n = 0
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
