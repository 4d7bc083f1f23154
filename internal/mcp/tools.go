package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Names follow the "type_action" pattern so whole types
// can be disabled via config.

var switchToolDef = mcp.NewTool("track_switch",
	mcp.WithDescription("Switch the current activity. Closes the open time entry (or reassigns it when the start matches to the second) and opens a new one."),
	mcp.WithString("activity_id", mcp.Required(), mcp.Description("ID of the activity to switch to")),
	mcp.WithString("start", mcp.Description("Switch timestamp, RFC 3339; defaults to now. May be in the past to correct when the activity actually began.")),
)

var stopToolDef = mcp.NewTool("track_stop",
	mcp.WithDescription("Stop tracking: close the open time entry at the current time."),
)

var statusToolDef = mcp.NewTool("track_status",
	mcp.WithDescription("Report the current activity, its start time, and elapsed time."),
)

var activityCreateToolDef = mcp.NewTool("activity_create",
	mcp.WithDescription("Create a new activity."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Display name, at most 64 characters")),
	mcp.WithNumber("color", mcp.Description("ARGB color value")),
	mcp.WithString("icon", mcp.Description("Icon reference")),
)

var activityUpdateToolDef = mcp.NewTool("activity_update",
	mcp.WithDescription("Edit an activity's name, color, or icon."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Activity ID")),
	mcp.WithString("name", mcp.Description("New display name")),
	mcp.WithNumber("color", mcp.Description("New ARGB color value")),
	mcp.WithString("icon", mcp.Description("New icon reference")),
)

var activityListToolDef = mcp.NewTool("activity_list",
	mcp.WithDescription("List activities."),
	mcp.WithBoolean("archived", mcp.Description("List archived activities instead of active ones")),
)

var activityArchiveToolDef = mcp.NewTool("activity_archive",
	mcp.WithDescription("Archive an activity (soft delete, reversible). Its history is kept; tracking stops if it is current."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Activity ID")),
)

var activityRestoreToolDef = mcp.NewTool("activity_restore",
	mcp.WithDescription("Restore an archived activity."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Activity ID")),
)

var activityDeleteToolDef = mcp.NewTool("activity_delete",
	mcp.WithDescription("Hard-delete an activity together with all its time entries and their comments."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Activity ID")),
)

var statsRangeToolDef = mcp.NewTool("stats_range",
	mcp.WithDescription("Aggregate statistics for a half-open range [from, to): per-day entry groups and per-activity totals with percentages."),
	mcp.WithString("from", mcp.Required(), mcp.Description("Range start, RFC 3339")),
	mcp.WithString("to", mcp.Required(), mcp.Description("Range end (exclusive), RFC 3339")),
)

var entryGetToolDef = mcp.NewTool("entry_get",
	mcp.WithDescription("Fetch one time entry with its comments."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Time entry ID")),
)

var entryDeleteToolDef = mcp.NewTool("entry_delete",
	mcp.WithDescription("Delete a closed time entry; its comments are removed with it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Time entry ID")),
)

var entryPurgeToolDef = mcp.NewTool("entry_purge",
	mcp.WithDescription("Bulk-delete closed entries fully contained in a range."),
	mcp.WithString("from", mcp.Required(), mcp.Description("Range start, RFC 3339")),
	mcp.WithString("to", mcp.Required(), mcp.Description("Range end, RFC 3339")),
)

var commentAddToolDef = mcp.NewTool("comment_add",
	mcp.WithDescription("Attach a comment (text and/or media reference) to a time entry."),
	mcp.WithString("time_entry_id", mcp.Required(), mcp.Description("Time entry ID")),
	mcp.WithString("text", mcp.Description("Comment text (Markdown)")),
	mcp.WithString("media_type", mcp.Description("photo, video, or audio")),
	mcp.WithString("media_uri", mcp.Description("Media file URI")),
)

var commentListToolDef = mcp.NewTool("comment_list",
	mcp.WithDescription("List a time entry's comments, newest first."),
	mcp.WithString("time_entry_id", mcp.Required(), mcp.Description("Time entry ID")),
)

var commentUpdateToolDef = mcp.NewTool("comment_update",
	mcp.WithDescription("Edit a comment's text."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Comment ID")),
	mcp.WithString("text", mcp.Required(), mcp.Description("New comment text")),
)

var commentDeleteToolDef = mcp.NewTool("comment_delete",
	mcp.WithDescription("Delete a comment."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Comment ID")),
)
