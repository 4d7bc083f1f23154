package ops

import (
	"database/sql"
	"time"

	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/timeline"
	"github.com/sharai/chronotrack/internal/track"
)

// SwitchInput contains parameters for the Switch operation.
type SwitchInput struct {
	ActivityID string

	// Start is the switch timestamp; zero means now. May be in the past
	// to correct when an activity actually began.
	Start time.Time
}

// SwitchOutput contains the result of the Switch operation.
type SwitchOutput struct {
	Activity ActivityView `json:"activity"`
	Start    string       `json:"start"`
}

// Switch makes the given activity current via the timeline controller.
func Switch(ctrl *timeline.Controller, input SwitchInput) (*SwitchOutput, error) {
	start := input.Start
	if start.IsZero() {
		start = time.Now()
	}

	if err := ctrl.Switch(input.ActivityID, start); err != nil {
		return nil, err
	}

	snap := ctrl.Current()
	if snap.Activity == nil {
		return nil, errors.NewInternal(nil)
	}
	return &SwitchOutput{
		Activity: activityView(snap.Activity),
		Start:    formatTime(*snap.StartTime),
	}, nil
}

// StopOutput contains the result of the Stop operation.
type StopOutput struct {
	Stopped bool `json:"stopped"`
}

// Stop ends tracking. Stopped is false when nothing was open.
func Stop(ctrl *timeline.Controller) (*StopOutput, error) {
	wasTracking := ctrl.Current().Activity != nil
	if err := ctrl.Stop(); err != nil {
		return nil, err
	}
	return &StopOutput{Stopped: wasTracking}, nil
}

// StatusOutput contains the result of the Status operation.
type StatusOutput struct {
	Tracking      bool          `json:"tracking"`
	Activity      *ActivityView `json:"activity,omitempty"`
	Start         string        `json:"start,omitempty"`
	ElapsedSecs   int64         `json:"elapsed_secs,omitempty"`
	ElapsedHuman  string        `json:"elapsed_human,omitempty"`
	FirstEntryDay string        `json:"first_entry_day,omitempty"`
}

// Status reports the current activity, its start time, and elapsed time.
func Status(database *sql.DB, ctrl *timeline.Controller) (*StatusOutput, error) {
	out := &StatusOutput{}

	snap := ctrl.Current()
	if snap.Activity != nil {
		view := activityView(snap.Activity)
		out.Tracking = true
		out.Activity = &view
		out.Start = formatTime(*snap.StartTime)
		if elapsed, ok := ctrl.Elapsed(); ok {
			out.ElapsedSecs = int64(elapsed / time.Second)
			out.ElapsedHuman = track.FormatDuration(elapsed)
		}
	}

	first, err := firstEntryDate(database)
	if err != nil {
		return nil, err
	}
	if first != nil {
		out.FirstEntryDay = track.DayKey(*first)
	}

	return out, nil
}
