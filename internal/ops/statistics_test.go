package ops

import (
	"math"
	"testing"
	"time"

	"github.com/sharai/chronotrack/internal/errors"
)

func TestStatistics_PerActivityShares(t *testing.T) {
	database, ctrl := setup(t)
	work := createActivity(t, database, "Work")
	sleep := createActivity(t, database, "Sleep")

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	trackInterval(t, database, ctrl, work, day.Add(9*time.Hour), 30*time.Minute)
	trackInterval(t, database, ctrl, sleep, day.Add(22*time.Hour), time.Hour)

	out, err := Statistics(database, StatisticsInput{From: day, To: day.AddDate(0, 0, 1)})
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}

	if len(out.PerActivity) != 2 {
		t.Fatalf("PerActivity = %d, want 2", len(out.PerActivity))
	}
	// Largest first
	if out.PerActivity[0].Activity.ID != sleep {
		t.Errorf("PerActivity[0] = %s, want Sleep", out.PerActivity[0].Activity.Name)
	}
	if out.PerActivity[0].TotalSecs != 3600 {
		t.Errorf("Sleep TotalSecs = %d, want 3600", out.PerActivity[0].TotalSecs)
	}
	if math.Abs(out.PerActivity[0].Percentage-66.666666) > 0.001 {
		t.Errorf("Sleep Percentage = %f, want ~66.67", out.PerActivity[0].Percentage)
	}
	if out.PerActivity[1].TotalHuman != "30m" {
		t.Errorf("Work TotalHuman = %q, want 30m", out.PerActivity[1].TotalHuman)
	}
}

func TestStatistics_InvalidRange(t *testing.T) {
	database, _ := setup(t)
	now := time.Now()
	if _, err := Statistics(database, StatisticsInput{From: now, To: now}); !errors.Is(err, errors.ErrInvalidTimeRange) {
		t.Errorf("Statistics(empty range) = %v, want INVALID_TIME_RANGE", err)
	}
}

func TestStatistics_EmptyStore(t *testing.T) {
	database, _ := setup(t)
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	out, err := Statistics(database, StatisticsInput{From: day, To: day.AddDate(0, 0, 1)})
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if len(out.PerDay) != 0 || len(out.PerActivity) != 0 {
		t.Errorf("empty store stats = %+v, want empty slices", out)
	}
}

func TestStatistics_EntriesJoinedWithActivityNames(t *testing.T) {
	database, ctrl := setup(t)
	work := createActivity(t, database, "Work")

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	trackInterval(t, database, ctrl, work, day.Add(9*time.Hour), time.Hour)

	out, err := Statistics(database, StatisticsInput{From: day, To: day.AddDate(0, 0, 1)})
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if len(out.PerDay) != 1 {
		t.Fatalf("PerDay = %d, want 1", len(out.PerDay))
	}
	if out.PerDay[0].Date != "2026-08-29" {
		t.Errorf("Date = %s, want 2026-08-29", out.PerDay[0].Date)
	}
	entry := out.PerDay[0].Entries[0]
	if entry.ActivityName != "Work" {
		t.Errorf("ActivityName = %q, want Work", entry.ActivityName)
	}
	if entry.DurationHuman != "1h 0m" {
		t.Errorf("DurationHuman = %q, want 1h 0m", entry.DurationHuman)
	}
}

func TestPurge_OnlyFullyContainedEntries(t *testing.T) {
	database, ctrl := setup(t)
	work := createActivity(t, database, "Work")

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	trackInterval(t, database, ctrl, work, day.Add(9*time.Hour), time.Hour)
	// Spills past the range end
	trackInterval(t, database, ctrl, work, day.Add(23*time.Hour), 2*time.Hour)

	out, err := Purge(database, PurgeInput{From: day, To: day.AddDate(0, 0, 1)})
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if out.DeletedEntries != 1 {
		t.Errorf("DeletedEntries = %d, want 1", out.DeletedEntries)
	}
}

func TestPurge_InvalidRange(t *testing.T) {
	database, _ := setup(t)
	now := time.Now()
	if _, err := Purge(database, PurgeInput{From: now.Add(time.Hour), To: now}); !errors.Is(err, errors.ErrInvalidTimeRange) {
		t.Errorf("Purge(inverted range) = %v, want INVALID_TIME_RANGE", err)
	}
}
