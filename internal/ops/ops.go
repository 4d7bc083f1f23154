// Package ops implements the stateless operations shared by the CLI, MCP
// and web surfaces. Each operation takes an Input struct, validates it,
// and returns a JSON-serializable Output struct.
package ops

import (
	"time"

	"github.com/sharai/chronotrack/internal/track"
)

// ActivityView is the JSON shape of an activity.
type ActivityView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Icon     string `json:"icon,omitempty"`
	Current  bool   `json:"current"`
	Archived bool   `json:"archived,omitempty"`
}

// EntryView is the JSON shape of a time entry, optionally joined with its
// activity name.
type EntryView struct {
	ID            string  `json:"id"`
	ActivityID    string  `json:"activity_id"`
	ActivityName  string  `json:"activity_name,omitempty"`
	Start         string  `json:"start"`
	End           *string `json:"end,omitempty"`
	DurationSecs  *int64  `json:"duration_secs,omitempty"`
	DurationHuman string  `json:"duration_human,omitempty"`
	Open          bool    `json:"open,omitempty"`
}

// CommentView is the JSON shape of a comment.
type CommentView struct {
	ID          string `json:"id"`
	TimeEntryID string `json:"time_entry_id"`
	Text        string `json:"text"`
	MediaType   string `json:"media_type,omitempty"`
	MediaURI    string `json:"media_uri,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func activityView(a *track.Activity) ActivityView {
	return ActivityView{
		ID:       a.ID,
		Name:     a.Name,
		Color:    a.Color,
		Icon:     a.Icon,
		Current:  a.IsActive,
		Archived: a.IsArchived,
	}
}

func entryView(e *track.TimeEntry, activityName string) EntryView {
	v := EntryView{
		ID:           e.ID,
		ActivityID:   e.ActivityID,
		ActivityName: activityName,
		Start:        formatTime(e.StartTime),
		Open:         e.Open(),
	}
	if e.EndTime != nil {
		end := formatTime(*e.EndTime)
		v.End = &end
	}
	if e.Duration != nil {
		secs := int64(*e.Duration / time.Second)
		v.DurationSecs = &secs
		v.DurationHuman = track.FormatDuration(*e.Duration)
	}
	return v
}

func commentView(c *track.Comment) CommentView {
	v := CommentView{
		ID:          c.ID,
		TimeEntryID: c.TimeEntryID,
		Text:        c.Text,
		CreatedAt:   formatTime(c.CreatedAt),
	}
	if c.MediaType != nil {
		v.MediaType = string(*c.MediaType)
	}
	if c.MediaURI != nil {
		v.MediaURI = *c.MediaURI
	}
	return v
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
