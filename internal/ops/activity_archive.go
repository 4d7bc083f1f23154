package ops

import (
	"database/sql"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/timeline"
)

// ActivityArchiveInput contains parameters for the ActivityArchive operation.
type ActivityArchiveInput struct {
	ID string
}

// ActivityArchiveOutput contains the result of the ActivityArchive operation.
type ActivityArchiveOutput struct {
	ID      string `json:"id"`
	Stopped bool   `json:"stopped,omitempty"`
}

// ActivityArchive soft-deletes an activity. Historical entries are kept.
// If the activity is currently being tracked, tracking is stopped first.
func ActivityArchive(database *sql.DB, ctrl *timeline.Controller, input ActivityArchiveInput) (*ActivityArchiveOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("activity id is required")
	}
	if _, err := db.GetActivityByID(database, input.ID); err != nil {
		return nil, err
	}

	stopped := false
	snap := ctrl.Current()
	if snap.Activity != nil && snap.Activity.ID == input.ID {
		if err := ctrl.Stop(); err != nil {
			return nil, err
		}
		stopped = true
	}

	if err := db.ArchiveActivity(database, input.ID); err != nil {
		return nil, err
	}
	return &ActivityArchiveOutput{ID: input.ID, Stopped: stopped}, nil
}

// ActivityRestoreInput contains parameters for the ActivityRestore operation.
type ActivityRestoreInput struct {
	ID string
}

// ActivityRestoreOutput contains the result of the ActivityRestore operation.
type ActivityRestoreOutput struct {
	ID string `json:"id"`
}

// ActivityRestore reverses an archive.
func ActivityRestore(database *sql.DB, input ActivityRestoreInput) (*ActivityRestoreOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("activity id is required")
	}
	if err := db.RestoreActivity(database, input.ID); err != nil {
		return nil, err
	}
	return &ActivityRestoreOutput{ID: input.ID}, nil
}
