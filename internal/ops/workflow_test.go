package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/timeline"
)

// TestFullWorkflow exercises the complete tracking lifecycle:
// create activities → switch → switch again → stop → comment → stats →
// archive → delete entry → purge
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir, false)
	require.NoError(t, err)
	defer database.Close()

	ctrl := timeline.NewController(database)
	require.NoError(t, ctrl.Recover())

	// 1. Create activities
	workOut, err := ActivityCreate(database, ActivityCreateInput{Name: "Work", Color: -48511})
	require.NoError(t, err)
	require.NotEmpty(t, workOut.Activity.ID)
	work := workOut.Activity.ID

	sleepOut, err := ActivityCreate(database, ActivityCreateInput{Name: "Sleep", Color: -12627531})
	require.NoError(t, err)
	sleep := sleepOut.Activity.ID

	// 2. Switch to Work
	t1 := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	switchOut, err := Switch(ctrl, SwitchInput{ActivityID: work, Start: t1})
	require.NoError(t, err)
	require.Equal(t, work, switchOut.Activity.ID)

	statusOut, err := Status(database, ctrl)
	require.NoError(t, err)
	require.True(t, statusOut.Tracking)
	require.Equal(t, work, statusOut.Activity.ID)

	// 3. Switch to Sleep an hour later: Work entry is closed
	t2 := t1.Add(time.Hour)
	_, err = Switch(ctrl, SwitchInput{ActivityID: sleep, Start: t2})
	require.NoError(t, err)

	// 4. Stop
	stopOut, err := Stop(ctrl)
	require.NoError(t, err)
	require.True(t, stopOut.Stopped)

	statusOut, err = Status(database, ctrl)
	require.NoError(t, err)
	require.False(t, statusOut.Tracking)
	require.Equal(t, "2026-08-29", statusOut.FirstEntryDay)

	// 5. Comment on the closed Work entry
	entries, err := db.ListTimeEntriesForActivity(database, work)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entryID := entries[0].ID

	commentOut, err := CommentAdd(database, CommentAddInput{
		TimeEntryID: entryID,
		Text:        "standup and code review",
	})
	require.NoError(t, err)
	require.NotEmpty(t, commentOut.Comment.ID)

	entryOut, err := EntryGet(database, EntryGetInput{ID: entryID})
	require.NoError(t, err)
	require.Equal(t, "Work", entryOut.Entry.ActivityName)
	require.Len(t, entryOut.Comments, 1)

	// 6. Statistics over the day
	statsOut, err := Statistics(database, StatisticsInput{
		From: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, statsOut.PerDay, 1)
	require.Len(t, statsOut.PerDay[0].Entries, 2)
	require.Len(t, statsOut.PerActivity, 2)

	var total float64
	for _, as := range statsOut.PerActivity {
		total += as.Percentage
	}
	require.InDelta(t, 100, total, 1e-9)

	// 7. Archive Sleep: it disappears from the active list
	archiveOut, err := ActivityArchive(database, ctrl, ActivityArchiveInput{ID: sleep})
	require.NoError(t, err)
	require.False(t, archiveOut.Stopped)

	listOut, err := ActivityList(database, ActivityListInput{})
	require.NoError(t, err)
	require.Len(t, listOut.Activities, 1)
	require.Equal(t, work, listOut.Activities[0].ID)

	// 8. Delete the Work entry: its comment goes with it
	_, err = EntryDelete(database, EntryDeleteInput{ID: entryID})
	require.NoError(t, err)

	_, err = EntryGet(database, EntryGetInput{ID: entryID})
	var trackErr *errors.TrackError
	require.ErrorAs(t, err, &trackErr)
	require.Equal(t, errors.ErrNotFound, trackErr.Code)

	// 9. Purge the rest of the day
	purgeOut, err := Purge(database, PurgeInput{
		From: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), purgeOut.DeletedEntries)
}

// TestWorkflow_ArchiveCurrentActivityStops verifies that archiving the
// tracked activity ends tracking first.
func TestWorkflow_ArchiveCurrentActivityStops(t *testing.T) {
	database, err := db.Init(t.TempDir(), false)
	require.NoError(t, err)
	defer database.Close()

	ctrl := timeline.NewController(database)

	out, err := ActivityCreate(database, ActivityCreateInput{Name: "Work"})
	require.NoError(t, err)

	_, err = Switch(ctrl, SwitchInput{ActivityID: out.Activity.ID})
	require.NoError(t, err)

	archiveOut, err := ActivityArchive(database, ctrl, ActivityArchiveInput{ID: out.Activity.ID})
	require.NoError(t, err)
	require.True(t, archiveOut.Stopped)

	statusOut, err := Status(database, ctrl)
	require.NoError(t, err)
	require.False(t, statusOut.Tracking)

	// The archived activity cannot be tracked again until restored
	_, err = Switch(ctrl, SwitchInput{ActivityID: out.Activity.ID})
	require.Error(t, err)

	_, err = ActivityRestore(database, ActivityRestoreInput{ID: out.Activity.ID})
	require.NoError(t, err)
	_, err = Switch(ctrl, SwitchInput{ActivityID: out.Activity.ID})
	require.NoError(t, err)
}
