package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/titanfit/internal/dashboard"
	"github.com/claude/titanfit/internal/insights"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) today(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	if uid == "" {
		uid = h.defaultUser
	}

	ctrl := dashboard.New(h.src, dashboard.StaticUser(uid), h.log)
	if err := ctrl.LoadDaily(ctx, insights.DayKey(time.Now())); err != nil {
		return nil, err
	}
	d := ctrl.Daily()

	data, err := json.Marshal(dailyResult{
		Date:      d.Day,
		Summary:   d.Summary,
		Exercises: d.Grouping.Buckets(),
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
