// Package stats computes aggregate statistics over a snapshot of time
// entries and activities. It is pure: it never touches storage and is safe
// to recompute on every change notification, concurrently with timeline
// operations.
package stats

import (
	"sort"
	"time"

	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/track"
)

// Range is a half-open date-time range [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Validate checks that the range is well-formed.
func (r Range) Validate() error {
	if !r.End.After(r.Start) {
		return errors.NewInvalidTimeRange("range end must be after range start", map[string]any{
			"range_start": r.Start.Format(time.RFC3339),
			"range_end":   r.End.Format(time.RFC3339),
		})
	}
	return nil
}

// EntryWithActivity pairs a time entry with its owning activity.
type EntryWithActivity struct {
	Entry    track.TimeEntry
	Activity track.Activity
}

// DayStatistics groups the entries that started on one calendar day,
// sorted by start time descending.
type DayStatistics struct {
	// Date is the start of the day in the snapshot's location
	Date    time.Time
	Entries []EntryWithActivity
}

// ActivityStatistics holds one activity's clipped totals for a range.
type ActivityStatistics struct {
	Activity track.Activity

	// TotalDuration is the sum of the activity's clipped entry durations
	TotalDuration time.Duration

	// EntryCount is the number of entries intersecting the range
	EntryCount int

	// Percentage is TotalDuration's share of the summed totals across all
	// activities, 0 when the sum is 0. Unrounded; rounding is presentation's
	// concern.
	Percentage float64
}

// Summary is the aggregator's full output for one range.
type Summary struct {
	PerDay      []DayStatistics
	PerActivity []ActivityStatistics
}

// Aggregate computes per-day groupings and per-activity totals for all
// entries intersecting r. The open entry is evaluated at now. Entries whose
// activity is absent from the activities snapshot are skipped.
func Aggregate(entries []track.TimeEntry, activities []track.Activity, r Range, now time.Time) (*Summary, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	activityByID := make(map[string]track.Activity, len(activities))
	for _, a := range activities {
		activityByID[a.ID] = a
	}

	var intersecting []EntryWithActivity
	for _, e := range entries {
		if !intersects(&e, r, now) {
			continue
		}
		a, ok := activityByID[e.ActivityID]
		if !ok {
			continue
		}
		intersecting = append(intersecting, EntryWithActivity{Entry: e, Activity: a})
	}

	return &Summary{
		PerDay:      groupByDay(intersecting),
		PerActivity: activityTotals(intersecting, r, now),
	}, nil
}

// intersects reports whether the entry's interval overlaps [r.Start, r.End)
// by more than a shared boundary point. An entry ending exactly at r.Start
// has zero overlap and is excluded.
func intersects(e *track.TimeEntry, r Range, now time.Time) bool {
	return e.StartTime.Before(r.End) && e.EffectiveEnd(now).After(r.Start)
}

// groupByDay buckets entries by the calendar date of their start timestamp.
// An entry is shown once, under the day it started, even if the range clips
// it. Days descending, entries within a day by start descending.
func groupByDay(entries []EntryWithActivity) []DayStatistics {
	byDay := make(map[string][]EntryWithActivity)
	for _, ea := range entries {
		key := track.DayKey(ea.Entry.StartTime)
		byDay[key] = append(byDay[key], ea)
	}

	days := make([]DayStatistics, 0, len(byDay))
	for _, dayEntries := range byDay {
		sort.Slice(dayEntries, func(i, j int) bool {
			return dayEntries[i].Entry.StartTime.After(dayEntries[j].Entry.StartTime)
		})
		days = append(days, DayStatistics{
			Date:    track.StartOfDay(dayEntries[0].Entry.StartTime),
			Entries: dayEntries,
		})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// activityTotals computes clipped durations, counts, and percentages.
// Activities with zero intersecting entries are omitted entirely.
func activityTotals(entries []EntryWithActivity, r Range, now time.Time) []ActivityStatistics {
	type acc struct {
		activity track.Activity
		total    time.Duration
		count    int
	}
	accByID := make(map[string]*acc)
	for _, ea := range entries {
		a := accByID[ea.Entry.ActivityID]
		if a == nil {
			a = &acc{activity: ea.Activity}
			accByID[ea.Entry.ActivityID] = a
		}
		a.total += ea.Entry.ClippedDuration(r.Start, r.End, now)
		a.count++
	}

	var totalSeconds float64
	result := make([]ActivityStatistics, 0, len(accByID))
	for _, a := range accByID {
		totalSeconds += a.total.Seconds()
		result = append(result, ActivityStatistics{
			Activity:      a.activity,
			TotalDuration: a.total,
			EntryCount:    a.count,
		})
	}

	if totalSeconds > 0 {
		for i := range result {
			result[i].Percentage = result[i].TotalDuration.Seconds() / totalSeconds * 100
		}
	}

	// Descending by total; ties broken by activity id ascending for a
	// deterministic order.
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalDuration != result[j].TotalDuration {
			return result[i].TotalDuration > result[j].TotalDuration
		}
		return result[i].Activity.ID < result[j].Activity.ID
	})
	return result
}
