package ops

import (
	"database/sql"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/track"
)

// ActivityCreateInput contains parameters for the ActivityCreate operation.
type ActivityCreateInput struct {
	Name  string
	Color int
	Icon  string
}

// ActivityCreateOutput contains the result of the ActivityCreate operation.
type ActivityCreateOutput struct {
	Activity ActivityView `json:"activity"`
}

// ActivityCreate adds a new activity.
func ActivityCreate(database *sql.DB, input ActivityCreateInput) (*ActivityCreateOutput, error) {
	name, ok := track.ValidateName(input.Name)
	if !ok {
		return nil, errors.NewInvalidRequest("activity name must be non-empty and at most 64 characters")
	}

	id, err := track.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	activity := &track.Activity{
		ID:    id,
		Name:  name,
		Color: input.Color,
		Icon:  input.Icon,
	}
	if err := db.InsertActivity(database, activity); err != nil {
		return nil, err
	}

	return &ActivityCreateOutput{Activity: activityView(activity)}, nil
}

// ActivityUpdateInput contains parameters for the ActivityUpdate operation.
// Nil fields are left unchanged.
type ActivityUpdateInput struct {
	ID    string
	Name  *string
	Color *int
	Icon  *string
}

// ActivityUpdateOutput contains the result of the ActivityUpdate operation.
type ActivityUpdateOutput struct {
	Activity ActivityView `json:"activity"`
}

// ActivityUpdate edits an activity's display fields.
func ActivityUpdate(database *sql.DB, input ActivityUpdateInput) (*ActivityUpdateOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("activity id is required")
	}
	if input.Name == nil && input.Color == nil && input.Icon == nil {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	activity, err := db.GetActivityByID(database, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, ok := track.ValidateName(*input.Name)
		if !ok {
			return nil, errors.NewInvalidRequest("activity name must be non-empty and at most 64 characters")
		}
		activity.Name = name
	}
	if input.Color != nil {
		activity.Color = *input.Color
	}
	if input.Icon != nil {
		activity.Icon = *input.Icon
	}

	if err := db.UpdateActivity(database, activity); err != nil {
		return nil, err
	}

	return &ActivityUpdateOutput{Activity: activityView(activity)}, nil
}
