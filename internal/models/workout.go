package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Timestamp handles the backend's session time format. The offset the backend sent is kept
// so that DayKey reports the calendar day the session was recorded in.
type Timestamp struct {
	time.Time
}

const (
	NaiveTimeLayout      = "2006-01-02T15:04:05"
	NaiveSpaceTimeLayout = "2006-01-02 15:04:05"
	DayLayout            = "2006-01-02"
)

// UnmarshalJSON leaves the zero time for JSON null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Parse tries RFC 3339 first, then the naive layouts Django emits without USE_TZ.
func (t *Timestamp) Parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range []string{NaiveTimeLayout, NaiveSpaceTimeLayout} {
		if p, err2 := time.ParseInLocation(layout, s, time.Local); err2 == nil {
			t.Time = p
			return nil
		}
	}
	return fmt.Errorf("cannot parse session time %q: %w", s, err)
}

// DayKey returns the YYYY-MM-DD calendar day in the timestamp's own zone.
func (t Timestamp) DayKey() string {
	return t.Format(DayLayout)
}

// ParseTimestamp parses a backend time string.
func ParseTimestamp(s string) (Timestamp, error) {
	var t Timestamp
	err := t.Parse(s)
	return t, err
}

// OptFloat is a numeric field the backend may omit, null out, or send in a
// non-numeric form. Only a JSON number yields Valid = true.
type OptFloat struct {
	Value float64
	Valid bool
}

// Some returns a valid OptFloat.
func Some(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

func (o *OptFloat) UnmarshalJSON(data []byte) error {
	*o = OptFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == 'n' || data[0] == '"' || data[0] == '{' || data[0] == '[' ||
		data[0] == 't' || data[0] == 'f' {
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	o.Value = v
	o.Valid = true
	return nil
}

func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns the value as a pointer, nil when absent. Used for nullable DB columns.
func (o OptFloat) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// OptFloatFrom converts a nullable column back into an OptFloat.
func OptFloatFrom(p *float64) OptFloat {
	if p == nil {
		return OptFloat{}
	}
	return Some(*p)
}

// Session is one completed workout as delivered by the backend.
type Session struct {
	ID            string    `json:"session_id"`
	StartTime     Timestamp `json:"start_time"`
	EndTime       Timestamp `json:"end_time"`
	GymName       string    `json:"gym_name"`
	TotalCalories float64   `json:"total_calories"`
	Sets          []Set     `json:"sets"`
}

// Set is one exercise set within a session.
type Set struct {
	ExerciseName     string   `json:"exercise_name"`
	SetNumber        int      `json:"set_number"`
	SessionSetNumber int      `json:"session_set_number"`
	RepsCompleted    int      `json:"reps_completed"`
	AvgFormScore     OptFloat `json:"avg_form_score"`
	Reps             []Rep    `json:"reps"`
}

// UnmarshalJSON accepts counters sent as floats ("4.0") or null. Non-numeric counters
// decode as 0 instead of failing the whole history.
func (s *Set) UnmarshalJSON(data []byte) error {
	type plain Set
	var raw struct {
		plain
		SetNumber        OptFloat `json:"set_number"`
		SessionSetNumber OptFloat `json:"session_set_number"`
		RepsCompleted    OptFloat `json:"reps_completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Set(raw.plain)
	s.SetNumber = wholeNumber(raw.SetNumber)
	s.SessionSetNumber = wholeNumber(raw.SessionSetNumber)
	s.RepsCompleted = wholeNumber(raw.RepsCompleted)
	return nil
}

// Rep is one repetition within a set. Source order is not guaranteed.
type Rep struct {
	RepNumber       int        `json:"rep_number"`
	DurationSeconds float64    `json:"duration_seconds"`
	IsValid         bool       `json:"is_valid"`
	Telemetry       *Telemetry `json:"telemetry_data,omitempty"`
}

// Telemetry is the optional motion capture block attached to a rep.
type Telemetry struct {
	Velocity    OptFloat `json:"velocity"`
	StartAngle  OptFloat `json:"start_angle"`
	EndAngle    OptFloat `json:"end_angle"`
	ErrorMargin OptFloat `json:"error_margin"`
}

// UnmarshalJSON accepts a float or null rep number, like Set.
func (r *Rep) UnmarshalJSON(data []byte) error {
	type plain Rep
	var raw struct {
		plain
		RepNumber OptFloat `json:"rep_number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Rep(raw.plain)
	r.RepNumber = wholeNumber(raw.RepNumber)
	return nil
}

func wholeNumber(o OptFloat) int {
	if !o.Valid || math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return 0
	}
	return int(math.Round(o.Value))
}
