package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sharai/chronotrack/internal/config"
	"github.com/sharai/chronotrack/internal/timeline"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"track", "activity", "stats", "entry", "comment"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"track_switch": {
		def:     switchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSwitch },
	},
	"track_stop": {
		def:     stopToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStop },
	},
	"track_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"activity_create": {
		def:     activityCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityCreate },
	},
	"activity_update": {
		def:     activityUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityUpdate },
	},
	"activity_list": {
		def:     activityListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityList },
	},
	"activity_archive": {
		def:     activityArchiveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityArchive },
	},
	"activity_restore": {
		def:     activityRestoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityRestore },
	},
	"activity_delete": {
		def:     activityDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityDelete },
	},
	"stats_range": {
		def:     statsRangeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatsRange },
	},
	"entry_get": {
		def:     entryGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEntryGet },
	},
	"entry_delete": {
		def:     entryDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEntryDelete },
	},
	"entry_purge": {
		def:     entryPurgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEntryPurge },
	},
	"comment_add": {
		def:     commentAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommentAdd },
	},
	"comment_list": {
		def:     commentListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommentList },
	},
	"comment_update": {
		def:     commentUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommentUpdate },
	},
	"comment_delete": {
		def:     commentDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommentDelete },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "track_switch" → "track").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// NewServer creates a new MCP server with ChronoTrack tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, ctrl *timeline.Controller, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"chronotrack",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, ctrl, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, ctrl *timeline.Controller, cfg *config.Config, version string) error {
	s := NewServer(db, ctrl, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
