package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sharai/chronotrack/internal/config"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/ops"
	"github.com/sharai/chronotrack/internal/timeline"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db   *sql.DB
	ctrl *timeline.Controller
	cfg  *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, ctrl *timeline.Controller, cfg *config.Config) *Handlers {
	return &Handlers{db: db, ctrl: ctrl, cfg: cfg}
}

// Request types for each tool

// SwitchRequest represents the arguments for track_switch.
type SwitchRequest struct {
	ActivityID string `json:"activity_id"`
	Start      string `json:"start,omitempty"`
}

// ActivityCreateRequest represents the arguments for activity_create.
type ActivityCreateRequest struct {
	Name  string `json:"name"`
	Color int    `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// ActivityUpdateRequest represents the arguments for activity_update.
type ActivityUpdateRequest struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Color *int    `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// ActivityListRequest represents the arguments for activity_list.
type ActivityListRequest struct {
	Archived bool `json:"archived,omitempty"`
}

// IDRequest represents the arguments for tools addressing one record by id.
type IDRequest struct {
	ID string `json:"id"`
}

// RangeRequest represents the arguments for stats_range and entry_purge.
type RangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CommentAddRequest represents the arguments for comment_add.
type CommentAddRequest struct {
	TimeEntryID string `json:"time_entry_id"`
	Text        string `json:"text,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
	MediaURI    string `json:"media_uri,omitempty"`
}

// CommentListRequest represents the arguments for comment_list.
type CommentListRequest struct {
	TimeEntryID string `json:"time_entry_id"`
}

// CommentUpdateRequest represents the arguments for comment_update.
type CommentUpdateRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Handler implementations

// HandleSwitch handles the track_switch tool call.
func (h *Handlers) HandleSwitch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SwitchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	opsInput := ops.SwitchInput{ActivityID: input.ActivityID}
	if input.Start != "" {
		start, err := parseTime("start", input.Start)
		if err != nil {
			return errorResult(errors.NewInvalidRequest(err.Error())), nil
		}
		opsInput.Start = start
	}

	result, err := ops.Switch(h.ctrl, opsInput)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStop handles the track_stop tool call.
func (h *Handlers) HandleStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Stop(h.ctrl)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStatus handles the track_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Status(h.db, h.ctrl)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleActivityCreate handles the activity_create tool call.
func (h *Handlers) HandleActivityCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ActivityCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ActivityCreate(h.db, ops.ActivityCreateInput{
		Name:  input.Name,
		Color: input.Color,
		Icon:  input.Icon,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleActivityUpdate handles the activity_update tool call.
func (h *Handlers) HandleActivityUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ActivityUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ActivityUpdate(h.db, ops.ActivityUpdateInput{
		ID:    input.ID,
		Name:  input.Name,
		Color: input.Color,
		Icon:  input.Icon,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleActivityList handles the activity_list tool call.
func (h *Handlers) HandleActivityList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ActivityListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ActivityList(h.db, ops.ActivityListInput{Archived: input.Archived})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleActivityArchive handles the activity_archive tool call.
func (h *Handlers) HandleActivityArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ActivityArchive(h.db, h.ctrl, ops.ActivityArchiveInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleActivityRestore handles the activity_restore tool call.
func (h *Handlers) HandleActivityRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ActivityRestore(h.db, ops.ActivityRestoreInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleActivityDelete handles the activity_delete tool call.
func (h *Handlers) HandleActivityDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ActivityDelete(h.db, h.ctrl, ops.ActivityDeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStatsRange handles the stats_range tool call.
func (h *Handlers) HandleStatsRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RangeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	from, err := parseTime("from", input.From)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	to, err := parseTime("to", input.To)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Statistics(h.db, ops.StatisticsInput{From: from, To: to})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleEntryGet handles the entry_get tool call.
func (h *Handlers) HandleEntryGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.EntryGet(h.db, ops.EntryGetInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleEntryDelete handles the entry_delete tool call.
func (h *Handlers) HandleEntryDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.EntryDelete(h.db, ops.EntryDeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleEntryPurge handles the entry_purge tool call.
func (h *Handlers) HandleEntryPurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RangeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	from, err := parseTime("from", input.From)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	to, err := parseTime("to", input.To)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(h.db, ops.PurgeInput{From: from, To: to})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCommentAdd handles the comment_add tool call.
func (h *Handlers) HandleCommentAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CommentAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CommentAdd(h.db, ops.CommentAddInput{
		TimeEntryID: input.TimeEntryID,
		Text:        input.Text,
		MediaType:   input.MediaType,
		MediaURI:    input.MediaURI,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCommentList handles the comment_list tool call.
func (h *Handlers) HandleCommentList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CommentListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CommentList(h.db, ops.CommentListInput{TimeEntryID: input.TimeEntryID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCommentUpdate handles the comment_update tool call.
func (h *Handlers) HandleCommentUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CommentUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CommentUpdate(h.db, ops.CommentUpdateInput{
		ID:   input.ID,
		Text: &input.Text,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCommentDelete handles the comment_delete tool call.
func (h *Handlers) HandleCommentDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CommentDelete(h.db, ops.CommentDeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := err.(*errors.TrackError); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if tErr.Code != errors.ErrInternal && tErr.Code != errors.ErrPersistenceFailure && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
