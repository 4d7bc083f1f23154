package ops

import (
	"database/sql"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/timeline"
)

// ActivityDeleteInput contains parameters for the ActivityDelete operation.
type ActivityDeleteInput struct {
	ID string
}

// ActivityDeleteOutput contains the result of the ActivityDelete operation.
type ActivityDeleteOutput struct {
	ID             string `json:"id"`
	DeletedEntries int64  `json:"deleted_entries"`
	Stopped        bool   `json:"stopped,omitempty"`
}

// ActivityDelete hard-deletes an activity together with all its time
// entries; the entries' comments cascade. If the activity is currently
// being tracked, tracking is stopped first.
func ActivityDelete(database *sql.DB, ctrl *timeline.Controller, input ActivityDeleteInput) (*ActivityDeleteOutput, error) {
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

	deleted, err := db.DeleteTimeEntriesForActivity(database, input.ID)
	if err != nil {
		return nil, err
	}
	if err := db.DeleteActivity(database, input.ID); err != nil {
		return nil, err
	}

	return &ActivityDeleteOutput{ID: input.ID, DeletedEntries: deleted, Stopped: stopped}, nil
}
