package ops

import (
	"database/sql"
	"testing"
	"time"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/timeline"
)

func setup(t *testing.T) (*sql.DB, *timeline.Controller) {
	t.Helper()
	database, err := db.Init(t.TempDir(), false)
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctrl := timeline.NewController(database)
	if err := ctrl.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	return database, ctrl
}

func createActivity(t *testing.T, database *sql.DB, name string) string {
	t.Helper()
	out, err := ActivityCreate(database, ActivityCreateInput{Name: name})
	if err != nil {
		t.Fatalf("ActivityCreate(%s) error = %v", name, err)
	}
	return out.Activity.ID
}

// trackInterval switches to the activity at start and stops tracking,
// leaving one closed entry. Returns the entry's ID.
func trackInterval(t *testing.T, database *sql.DB, ctrl *timeline.Controller, activityID string, start time.Time, d time.Duration) string {
	t.Helper()
	if _, err := Switch(ctrl, SwitchInput{ActivityID: activityID, Start: start}); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}
	// Stop uses the wall clock; close the entry directly at start+d instead.
	open, err := db.GetOpenTimeEntry(database)
	if err != nil || open == nil {
		t.Fatalf("GetOpenTimeEntry() = %v, %v", open, err)
	}
	end := start.Add(d)
	open.EndTime = &end
	open.Duration = &d
	if err := db.UpdateTimeEntry(database, open); err != nil {
		t.Fatalf("UpdateTimeEntry() error = %v", err)
	}
	if err := db.ClearCurrentActivity(database); err != nil {
		t.Fatalf("ClearCurrentActivity() error = %v", err)
	}
	if err := ctrl.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	return open.ID
}
