package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/titanfit/internal/dashboard"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer, or "".
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered. defaultUser is used
// when neither the tool arguments nor the context name a user.
func New(src dashboard.HistorySource, defaultUser, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TitanFit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TitanFit workout insights. Daily rollups of sessions, sets and reps, and history-wide trends and exercise rankings for a gym member."),
	)

	h := &handlers{src: src, defaultUser: defaultUser, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetDailySummary, Handler: h.getDailySummary},
		server.ServerTool{Tool: toolGetWorkoutInsights, Handler: h.getWorkoutInsights},
	)

	s.AddResources(
		server.ServerResource{Resource: resToday, Handler: h.today},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	src         dashboard.HistorySource
	defaultUser string
	log         *slog.Logger
}

func (h *handlers) userID(ctx context.Context, req mcp.CallToolRequest) string {
	if id := req.GetString("user_id", ""); id != "" {
		return id
	}
	if id := UserIDFromContext(ctx); id != "" {
		return id
	}
	return h.defaultUser
}

var resToday = mcp.NewResource(
	"titanfit://today",
	"Today's Training",
	mcp.WithResourceDescription("Daily rollup and per-exercise sets for today"),
	mcp.WithMIMEType("application/json"),
)
