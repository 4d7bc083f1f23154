package ops

import (
	"database/sql"
	"time"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/stats"
	"github.com/sharai/chronotrack/internal/track"
)

// StatisticsInput contains parameters for the Statistics operation.
type StatisticsInput struct {
	// From and To bound the half-open range [From, To).
	From time.Time
	To   time.Time
}

// DayView is one day's entries, newest first.
type DayView struct {
	Date    string      `json:"date"`
	Entries []EntryView `json:"entries"`
}

// ActivityStatView is one activity's totals for the range.
type ActivityStatView struct {
	Activity   ActivityView `json:"activity"`
	TotalSecs  int64        `json:"total_secs"`
	TotalHuman string       `json:"total_human"`
	EntryCount int          `json:"entry_count"`
	Percentage float64      `json:"percentage"`
}

// StatisticsOutput contains the result of the Statistics operation.
type StatisticsOutput struct {
	From        string             `json:"from"`
	To          string             `json:"to"`
	PerDay      []DayView          `json:"per_day"`
	PerActivity []ActivityStatView `json:"per_activity"`
}

// Statistics aggregates entries intersecting [From, To): per-day groupings
// and per-activity clipped totals with percentages.
func Statistics(database *sql.DB, input StatisticsInput) (*StatisticsOutput, error) {
	r := stats.Range{Start: input.From, End: input.To}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	entries, err := db.ListTimeEntries(database)
	if err != nil {
		return nil, err
	}
	activities, err := db.ListActiveActivities(database)
	if err != nil {
		return nil, err
	}

	summary, err := stats.Aggregate(entries, activities, r, time.Now())
	if err != nil {
		return nil, err
	}

	out := &StatisticsOutput{
		From:        formatTime(r.Start),
		To:          formatTime(r.End),
		PerDay:      make([]DayView, 0, len(summary.PerDay)),
		PerActivity: make([]ActivityStatView, 0, len(summary.PerActivity)),
	}

	for _, day := range summary.PerDay {
		view := DayView{
			Date:    track.DayKey(day.Date),
			Entries: make([]EntryView, 0, len(day.Entries)),
		}
		for i := range day.Entries {
			ea := &day.Entries[i]
			view.Entries = append(view.Entries, entryView(&ea.Entry, ea.Activity.Name))
		}
		out.PerDay = append(out.PerDay, view)
	}

	for i := range summary.PerActivity {
		as := &summary.PerActivity[i]
		out.PerActivity = append(out.PerActivity, ActivityStatView{
			Activity:   activityView(&as.Activity),
			TotalSecs:  int64(as.TotalDuration / time.Second),
			TotalHuman: track.FormatDuration(as.TotalDuration),
			EntryCount: as.EntryCount,
			Percentage: as.Percentage,
		})
	}

	return out, nil
}

// firstEntryDate returns the earliest entry start, nil when the store is empty.
func firstEntryDate(database *sql.DB) (*time.Time, error) {
	return db.GetFirstEntryDate(database)
}
