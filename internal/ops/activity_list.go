package ops

import (
	"database/sql"

	"github.com/sharai/chronotrack/internal/db"
)

// ActivityListInput contains parameters for the ActivityList operation.
type ActivityListInput struct {
	// Archived selects the archived set instead of the active one.
	Archived bool
}

// ActivityListOutput contains the result of the ActivityList operation.
type ActivityListOutput struct {
	Activities []ActivityView `json:"activities"`
}

// ActivityList returns activities, name ascending.
func ActivityList(database *sql.DB, input ActivityListInput) (*ActivityListOutput, error) {
	list := db.ListActiveActivities
	if input.Archived {
		list = db.ListArchivedActivities
	}

	activities, err := list(database)
	if err != nil {
		return nil, err
	}

	views := make([]ActivityView, 0, len(activities))
	for i := range activities {
		views = append(views, activityView(&activities[i]))
	}
	return &ActivityListOutput{Activities: views}, nil
}
