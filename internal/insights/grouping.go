package insights

import (
	"sort"
	"strconv"
	"time"

	"github.com/claude/titanfit/internal/models"
)

// SetView is one set denormalized with its session context for detail display.
type SetView struct {
	Key              string          `json:"key"`
	ExerciseName     string          `json:"exercise_name"`
	SetNumber        int             `json:"set_number"`
	SessionSetNumber int             `json:"session_set_number"`
	AvgFormScore     models.OptFloat `json:"avg_form_score"`
	RepsCompleted    int             `json:"reps_completed"`
	Reps             []models.Rep    `json:"reps"`
	SessionID        string          `json:"session_id"`
	GymName          string          `json:"gym_name"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	TotalCalories    float64         `json:"total_calories"`
}

// ValidReps counts reps that met the form criteria.
func (v *SetView) ValidReps() int {
	n := 0
	for _, r := range v.Reps {
		if r.IsValid {
			n++
		}
	}
	return n
}

// SetKey builds the composite key that identifies a set across sessions.
func SetKey(sessionID string, sessionSetNumber int, exerciseName string) string {
	return sessionID + ":" + strconv.Itoa(sessionSetNumber) + ":" + exerciseName
}

// Grouping maps exercise names to their sets, remembering the order in which
// exercise names were first seen.
type Grouping struct {
	names []string
	sets  map[string][]SetView
}

// GroupByExercise buckets every set by exercise name. Within a bucket, sets are ordered by
// session start time, then by session-set number. The input is not modified.
func GroupByExercise(sessions []models.Session) *Grouping {
	g := &Grouping{sets: make(map[string][]SetView)}
	for _, s := range sessions {
		for _, set := range s.Sets {
			name := set.ExerciseName
			if _, ok := g.sets[name]; !ok {
				g.names = append(g.names, name)
			}
			g.sets[name] = append(g.sets[name], SetView{
				Key:              SetKey(s.ID, set.SessionSetNumber, name),
				ExerciseName:     name,
				SetNumber:        set.SetNumber,
				SessionSetNumber: set.SessionSetNumber,
				AvgFormScore:     set.AvgFormScore,
				RepsCompleted:    set.RepsCompleted,
				Reps:             sortedReps(set.Reps),
				SessionID:        s.ID,
				GymName:          s.GymName,
				StartTime:        s.StartTime.Time,
				EndTime:          s.EndTime.Time,
				TotalCalories:    s.TotalCalories,
			})
		}
	}
	for _, list := range g.sets {
		sort.SliceStable(list, func(i, j int) bool {
			if !list[i].StartTime.Equal(list[j].StartTime) {
				return list[i].StartTime.Before(list[j].StartTime)
			}
			return list[i].SessionSetNumber < list[j].SessionSetNumber
		})
	}
	return g
}

func sortedReps(reps []models.Rep) []models.Rep {
	out := make([]models.Rep, len(reps))
	copy(out, reps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RepNumber < out[j].RepNumber
	})
	return out
}

// Names returns exercise names in first-seen order.
func (g *Grouping) Names() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.names...)
}

// Len returns the number of exercises.
func (g *Grouping) Len() int {
	if g == nil {
		return 0
	}
	return len(g.names)
}

// Has reports whether the exercise is present.
func (g *Grouping) Has(name string) bool {
	if g == nil {
		return false
	}
	_, ok := g.sets[name]
	return ok
}

// Sets returns the ordered sets of an exercise.
func (g *Grouping) Sets(name string) []SetView {
	if g == nil {
		return nil
	}
	return g.sets[name]
}

// FirstKey returns the key of the exercise's first set, or "".
func (g *Grouping) FirstKey(name string) string {
	sets := g.Sets(name)
	if len(sets) == 0 {
		return ""
	}
	return sets[0].Key
}

// Find returns the set of the given exercise with the given key.
func (g *Grouping) Find(name, key string) *SetView {
	sets := g.Sets(name)
	for i := range sets {
		if sets[i].Key == key {
			return &sets[i]
		}
	}
	return nil
}

// ExerciseBucket is one exercise and its sets, in grouping order.
type ExerciseBucket struct {
	Exercise string    `json:"exercise"`
	Sets     []SetView `json:"sets"`
}

// Buckets flattens the grouping into an ordered slice for JSON output.
func (g *Grouping) Buckets() []ExerciseBucket {
	out := make([]ExerciseBucket, 0, g.Len())
	for _, name := range g.Names() {
		out = append(out, ExerciseBucket{Exercise: name, Sets: g.Sets(name)})
	}
	return out
}
