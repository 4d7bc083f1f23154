package track

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Activity represents a named activity the user allocates time to.
type Activity struct {
	// ID is a ULID that uniquely identifies this activity
	ID string

	// Name is the display name
	Name string

	// Color is an ARGB color value for presentation
	Color int

	// Icon is an opaque icon reference for presentation
	Icon string

	// IsActive mirrors the timeline's open entry: exactly one activity
	// may carry this flag at a time
	IsActive bool

	// IsArchived marks a soft-deleted activity; history is preserved
	IsArchived bool
}

// TimeEntry represents one tracked interval of an activity.
// An entry with no end time is "the open entry"; at most one such entry
// may exist across the entire store at any instant.
type TimeEntry struct {
	// ID is a ULID that uniquely identifies this entry
	ID string

	// ActivityID references the owning activity
	ActivityID string

	// StartTime is when tracking began (whole-second precision)
	StartTime time.Time

	// EndTime is when tracking ended, nil while the entry is open
	EndTime *time.Time

	// Duration is EndTime − StartTime, persisted for query convenience;
	// nil while the entry is open
	Duration *time.Duration
}

// Open reports whether the entry is still being tracked.
func (e *TimeEntry) Open() bool {
	return e.EndTime == nil
}

// EffectiveEnd returns the entry's end time, or now for the open entry.
func (e *TimeEntry) EffectiveEnd(now time.Time) time.Time {
	if e.EndTime != nil {
		return *e.EndTime
	}
	return now
}

// ClippedDuration returns the portion of the entry's interval that falls
// within [rangeStart, rangeEnd), evaluating the open entry at now.
// Returns zero for entries that do not intersect the range.
func (e *TimeEntry) ClippedDuration(rangeStart, rangeEnd, now time.Time) time.Duration {
	start := e.StartTime
	if start.Before(rangeStart) {
		start = rangeStart
	}
	end := e.EffectiveEnd(now)
	if end.After(rangeEnd) {
		end = rangeEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// MediaType identifies the kind of media attached to a comment.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// ValidMediaType reports whether s is a known media type.
func ValidMediaType(s string) bool {
	switch MediaType(s) {
	case MediaPhoto, MediaVideo, MediaAudio:
		return true
	}
	return false
}

// Comment is attached to a time entry and carries text and/or a media
// reference. Comments share the entry's lifetime and are cascade-deleted
// with it.
type Comment struct {
	ID          string
	TimeEntryID string

	// Text is the comment body; the web surface treats it as Markdown
	Text string

	MediaType *MediaType
	MediaURI  *string
	CreatedAt time.Time
}

// NewID generates a new ULID for activities, entries, and comments.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
