// Package insights derives the daily rollup, exercise grouping, selection state and
// history-wide insights from fetched workout sessions. Everything here is pure.
package insights

import (
	"math"
	"strconv"
	"time"

	"github.com/claude/titanfit/internal/models"
	"github.com/mattn/go-runewidth"
)

// Placeholder is shown for telemetry values the device did not report.
const Placeholder = "--"

// Percent formats a fraction in [0,1] as a whole percentage, e.g. 0.853 -> "85%".
func Percent(fraction float64) string {
	return strconv.Itoa(roundInt(fraction*100)) + "%"
}

// Metric formats an optional value with a suffix, or Placeholder when absent.
func Metric(v models.OptFloat, suffix string) string {
	if !v.Valid || math.IsNaN(v.Value) {
		return Placeholder
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64) + suffix
}

// ShortText keeps chart axes readable. Strings wider than max display columns are cut to
// max-1 columns and suffixed with "...".
func ShortText(s string, max int) string {
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max-1, "") + "..."
}

// DayKey returns the local calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(models.DayLayout)
}

// ShortDay turns a YYYY-MM-DD key into a chart label like "Jan 2".
// Keys that do not parse are returned unchanged.
func ShortDay(dayKey string) string {
	d, err := time.Parse(models.DayLayout, dayKey)
	if err != nil {
		return dayKey
	}
	return d.Format("Jan 2")
}

// DisplayDate formats the selected day for headers, e.g. "Mon, Jan 2".
func DisplayDate(t time.Time) string {
	return t.Format("Mon, Jan 2")
}

// TimeOf formats the clock time of a session boundary.
func TimeOf(t time.Time) string {
	return t.Format("15:04")
}

// roundInt rounds half up, matching how the mobile app displayed values.
// All inputs are non-negative.
func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}
