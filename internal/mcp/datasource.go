package mcp

import (
	"github.com/claude/titanfit/internal/api"
	"github.com/claude/titanfit/internal/dashboard"
	"github.com/claude/titanfit/internal/storage"
)

// Compile-time check: the archive (local) and the backend client (remote) both satisfy
// the history source the tools read from.
var (
	_ dashboard.HistorySource = (*storage.DB)(nil)
	_ dashboard.HistorySource = (*api.Client)(nil)
)
