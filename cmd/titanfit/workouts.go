package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/titanfit/internal/dashboard"
	"github.com/claude/titanfit/internal/insights"
	"github.com/claude/titanfit/internal/models"
)

var (
	dailyExercise string
	dailySet      string
)

func newDailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily [YYYY-MM-DD]",
		Short: "Show one day of training (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDailyCmd,
	}
	cmd.Flags().StringVar(&dailyExercise, "exercise", "", "exercise to select")
	cmd.Flags().StringVar(&dailySet, "set", "", "set key to select (session:set:exercise)")
	return cmd
}

func runDailyCmd(cmd *cobra.Command, args []string) error {
	day := time.Now().Format(models.DayLayout)
	if len(args) == 1 {
		day = args[0]
	}
	parsed, err := time.Parse(models.DayLayout, day)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %q", day)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := dashboard.New(a.client, a.store, a.log)
	if err := ctrl.LoadDaily(cmd.Context(), day); err != nil {
		return loadError(err)
	}
	if dailyExercise != "" && !ctrl.SelectExercise(dailyExercise) {
		logErrf("no %q sets on %s\n", dailyExercise, day)
	}
	if dailySet != "" && !ctrl.SelectSet(dailySet) {
		logErrf("set %q not found\n", dailySet)
	}

	return printDaily(cmd.OutOrStdout(), parsed, ctrl.Daily())
}

func printDaily(out io.Writer, day time.Time, d dashboard.DailyState) error {
	s := d.Summary
	fmt.Fprintf(out, "%s  (%s)\n", insights.DisplayDate(day), d.Day)
	fmt.Fprintf(out, "sessions %d   sets %d   reps %d   calories %d   valid reps %d%%\n\n",
		s.SessionCount, s.SetCount, s.RepCount, s.CaloriesTotal, s.ValidRepPercent)

	if d.Grouping.Len() == 0 {
		_, err := fmt.Fprintln(out, "No workouts recorded for this day.")
		return err
	}

	t := newTable("", "EXERCISE", "SET", "START", "REPS", "VALID", "FORM", "KEY")
	for _, name := range d.Grouping.Names() {
		for _, v := range d.Grouping.Sets(name) {
			mark := ""
			if name == d.Exercise && v.Key == d.SetKey {
				mark = ">"
			}
			t.add(mark, name, strconv.Itoa(v.SetNumber), insights.TimeOf(v.StartTime),
				strconv.Itoa(v.RepsCompleted), strconv.Itoa(v.ValidReps()), formText(v.AvgFormScore), v.Key)
		}
	}
	if err := t.write(out); err != nil {
		return err
	}

	active := d.Active()
	if active == nil {
		return nil
	}
	fmt.Fprintf(out, "\n%s, set %d at %s, %s-%s\n", active.ExerciseName, active.SetNumber,
		orPlaceholder(active.GymName), insights.TimeOf(active.StartTime), insights.TimeOf(active.EndTime))
	if len(active.Reps) == 0 {
		_, err := fmt.Fprintln(out, "No rep telemetry for this set.")
		return err
	}
	reps := newTable("REP", "DURATION", "VALID", "VELOCITY", "START", "END", "MARGIN")
	for _, r := range active.Reps {
		tel := r.Telemetry
		if tel == nil {
			tel = &models.Telemetry{}
		}
		valid := "no"
		if r.IsValid {
			valid = "yes"
		}
		reps.add(strconv.Itoa(r.RepNumber),
			strconv.FormatFloat(r.DurationSeconds, 'f', 1, 64)+"s", valid,
			insights.Metric(tel.Velocity, " m/s"), insights.Metric(tel.StartAngle, "°"),
			insights.Metric(tel.EndAngle, "°"), insights.Metric(tel.ErrorMargin, ""))
	}
	return reps.write(out)
}

func formText(v models.OptFloat) string {
	if !v.Valid {
		return insights.Placeholder
	}
	return insights.Percent(v.Value)
}

func orPlaceholder(s string) string {
	if s == "" {
		return insights.Placeholder
	}
	return s
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Summarize the entire training history",
		Args:  cobra.NoArgs,
		RunE:  runInsightsCmd,
	}
}

func runInsightsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := dashboard.New(a.client, a.store, a.log)
	if err := ctrl.LoadInsights(cmd.Context()); err != nil {
		return loadError(err)
	}
	return printInsights(cmd.OutOrStdout(), ctrl.Insights().Snapshot)
}

func printInsights(out io.Writer, snap *insights.Snapshot) error {
	tot := snap.Totals
	fmt.Fprintf(out, "sessions %d   sets %d   reps %d   calories %d\n", tot.Sessions, tot.Sets, tot.Reps, tot.Calories)
	if tot.Sessions == 0 {
		_, err := fmt.Fprintln(out, "\nNo workouts recorded yet.")
		return err
	}

	fmt.Fprintln(out, "\nRecent days")
	days := newTable("DAY", "SESSIONS", "CALORIES")
	for i := range snap.DayKeys {
		days.add(snap.DayLabels[i], strconv.Itoa(snap.DaySessions[i]), strconv.Itoa(snap.DayCalories[i]))
	}
	if err := days.write(out); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nTop exercises by reps")
	top := newTable("EXERCISE", "REPS")
	for i, label := range snap.TopExerciseLabels {
		top.add(label, strconv.Itoa(snap.TopExerciseReps[i]))
	}
	if err := top.write(out); err != nil {
		return err
	}

	if len(snap.TopFormLabels) > 0 {
		fmt.Fprintln(out, "\nBest form")
		form := newTable("EXERCISE", "FORM")
		for i, label := range snap.TopFormLabels {
			form.add(label, strconv.Itoa(snap.TopFormValues[i])+"%")
		}
		if err := form.write(out); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nAll exercises")
	all := newTable("EXERCISE", "SETS", "REPS", "FORM")
	for _, r := range snap.Exercises {
		formCell := insights.Placeholder
		if r.AvgFormPercent > 0 {
			formCell = strconv.Itoa(r.AvgFormPercent) + "%"
		}
		all.add(r.Name, strconv.Itoa(r.TotalSets), strconv.Itoa(r.TotalReps), formCell)
	}
	return all.write(out)
}

// loadError wraps a failed dashboard load.
func loadError(err error) error {
	return fmt.Errorf("failed to load workouts: %w", err)
}
