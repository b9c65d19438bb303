package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/titanfit/internal/dashboard"
	"github.com/claude/titanfit/internal/insights"
	"github.com/claude/titanfit/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// dailyResult is the JSON body of get_daily_summary.
type dailyResult struct {
	Date      string                    `json:"date"`
	Summary   insights.DailySummary     `json:"summary"`
	Exercises []insights.ExerciseBucket `json:"exercises"`
}

// resolveDay defaults to today and accepts only YYYY-MM-DD.
func resolveDay(s string) (string, error) {
	if s == "" {
		return insights.DayKey(time.Now()), nil
	}
	if _, err := time.Parse(models.DayLayout, s); err != nil {
		return "", err
	}
	return s, nil
}

// --- Tool definitions ---

var toolGetDailySummary = mcp.NewTool("get_daily_summary",
	mcp.WithDescription("Summarize one training day: session, set and rep counts, calories, valid-rep percentage, and the day's sets grouped by exercise in chronological order."),
	mcp.WithString("user_id", mcp.Description("Member id. Defaults to the logged-in member.")),
	mcp.WithString("date", mcp.Description("Day as YYYY-MM-DD. Defaults to today.")),
)

var toolGetWorkoutInsights = mcp.NewTool("get_workout_insights",
	mcp.WithDescription("History-wide insights: totals, calories and sessions for the most recent 12 training days, top exercises by total reps, and top exercises by average form score."),
	mcp.WithString("user_id", mcp.Description("Member id. Defaults to the logged-in member.")),
)

func (h *handlers) getDailySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := resolveDay(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format, want YYYY-MM-DD"), nil
	}

	ctrl := dashboard.New(h.src, dashboard.StaticUser(h.userID(ctx, req)), h.log)
	if err := ctrl.LoadDaily(ctx, day); err != nil {
		return h.loadError("get_daily_summary", err), nil
	}

	d := ctrl.Daily()
	result, err := mcp.NewToolResultJSON(dailyResult{
		Date:      d.Day,
		Summary:   d.Summary,
		Exercises: d.Grouping.Buckets(),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctrl := dashboard.New(h.src, dashboard.StaticUser(h.userID(ctx, req)), h.log)
	if err := ctrl.LoadInsights(ctx); err != nil {
		return h.loadError("get_workout_insights", err), nil
	}

	result, err := mcp.NewToolResultJSON(ctrl.Insights().Snapshot)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) loadError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, dashboard.ErrNoUser) {
		return mcp.NewToolResultError("user_id is required: no member is logged in")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}
