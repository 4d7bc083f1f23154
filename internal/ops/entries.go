package ops

import (
	"database/sql"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/errors"
)

// EntryGetInput contains parameters for the EntryGet operation.
type EntryGetInput struct {
	ID string
}

// EntryGetOutput contains the result of the EntryGet operation.
type EntryGetOutput struct {
	Entry    EntryView     `json:"entry"`
	Comments []CommentView `json:"comments"`
}

// EntryGet retrieves one entry with its activity name and comments.
func EntryGet(database *sql.DB, input EntryGetInput) (*EntryGetOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("time entry id is required")
	}

	entry, err := db.GetTimeEntryByID(database, input.ID)
	if err != nil {
		return nil, err
	}

	activityName := ""
	if activity, err := db.GetActivityByID(database, entry.ActivityID); err == nil {
		activityName = activity.Name
	}

	comments, err := db.ListCommentsForEntry(database, entry.ID)
	if err != nil {
		return nil, err
	}

	out := &EntryGetOutput{
		Entry:    entryView(entry, activityName),
		Comments: make([]CommentView, 0, len(comments)),
	}
	for i := range comments {
		out.Comments = append(out.Comments, commentView(&comments[i]))
	}
	return out, nil
}

// EntryDeleteInput contains parameters for the EntryDelete operation.
type EntryDeleteInput struct {
	ID string
}

// EntryDeleteOutput contains the result of the EntryDelete operation.
type EntryDeleteOutput struct {
	ID string `json:"id"`
}

// EntryDelete removes a single closed entry; its comments cascade.
// The open entry cannot be deleted — stop tracking first.
func EntryDelete(database *sql.DB, input EntryDeleteInput) (*EntryDeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("time entry id is required")
	}

	entry, err := db.GetTimeEntryByID(database, input.ID)
	if err != nil {
		return nil, err
	}
	if entry.Open() {
		return nil, errors.NewInvalidRequest("cannot delete the open entry; stop tracking first")
	}

	if err := db.DeleteTimeEntry(database, input.ID); err != nil {
		return nil, err
	}
	return &EntryDeleteOutput{ID: input.ID}, nil
}
