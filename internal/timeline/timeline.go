// Package timeline owns the invariant that at most one time entry is open
// at any instant. All state transitions go through a single Controller,
// which serializes switch/stop/recover requests and caches the current
// activity for fast reads.
package timeline

import (
	"database/sql"
	"sync"
	"time"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/track"
)

// Snapshot is the controller's observable state: the current activity and
// the open entry's start time, both nil when tracking is idle.
type Snapshot struct {
	Activity  *track.Activity
	StartTime *time.Time
}

// subscriberBuffer is the per-subscriber channel depth. Slow subscribers
// miss intermediate snapshots rather than blocking the controller.
const subscriberBuffer = 8

// Controller processes activity-switch and stop requests against the
// store. Methods are safe for concurrent use; requests are applied in
// strict arrival order under one mutex, so two concurrent switches can
// never both observe "no open entry" and each create one.
type Controller struct {
	database *sql.DB

	mu              sync.Mutex
	currentActivity *track.Activity
	openEntryID     string
	openEntryStart  time.Time
	subscribers     []chan Snapshot

	// now is swappable for tests
	now func() time.Time
}

// NewController creates a controller bound to an initialized database.
// Call Recover before serving requests to adopt a persisted open entry.
func NewController(database *sql.DB) *Controller {
	return &Controller{
		database: database,
		now:      time.Now,
	}
}

// Recover queries storage for an open entry and adopts it as current
// state. Idempotent and safe to call multiple times; it never creates or
// closes entries.
func (c *Controller) Recover() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	open, err := db.GetOpenTimeEntry(c.database)
	if err != nil {
		return err
	}
	if open == nil {
		c.setIdleLocked()
		return nil
	}

	activity, err := db.GetActivityByID(c.database, open.ActivityID)
	if err != nil {
		return err
	}
	if err := db.SetCurrentActivity(c.database, activity.ID); err != nil {
		return err
	}

	c.setOpenLocked(activity, open)
	return nil
}

// Switch makes targetActivityID the current activity as of start.
//
// If the open entry's start matches start to whole-second precision, the
// user is correcting a misselected activity for the interval already in
// progress: the open entry is reassigned in place. Otherwise the open
// entry is closed at start and a new one opened. start may be in the past
// (retroactive correction) but must not precede the open entry's start.
//
// Switching to the activity that is already current is a no-op.
func (c *Controller) Switch(targetActivityID string, start time.Time) error {
	if targetActivityID == "" {
		return errors.NewInvalidRequest("target activity id is required")
	}
	start = track.TruncateSecond(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	target, err := db.GetActivityByID(c.database, targetActivityID)
	if err != nil {
		return err
	}
	if target.IsArchived {
		return errors.NewInvalidRequest("cannot switch to an archived activity")
	}

	open, err := db.GetOpenTimeEntry(c.database)
	if err != nil {
		return err
	}

	if open != nil {
		// Already tracking the target: redundant request, no writes and
		// no notification. The cache is refreshed in case Recover was
		// skipped.
		if open.ActivityID == target.ID {
			a := *target
			a.IsActive = true
			c.currentActivity = &a
			c.openEntryID = open.ID
			c.openEntryStart = open.StartTime
			return nil
		}

		if track.SameSecond(open.StartTime, start) {
			return c.reassignLocked(target, open)
		}

		if start.Before(open.StartTime) {
			return errors.NewInvalidTimeRange(
				"requested start precedes the open entry's start",
				map[string]any{
					"entry_id":        open.ID,
					"entry_start":     open.StartTime.Format(time.RFC3339),
					"requested_start": start.Format(time.RFC3339),
				},
			)
		}

		if err := c.closeEntryLocked(open, start); err != nil {
			return err
		}
	}

	return c.openEntryLocked(target, start)
}

// Stop closes the open entry at now and clears the current activity.
// No-op if nothing is open. Call on clean shutdown so a cleanly terminated
// process does not leave a permanently open entry; after an unclean
// termination Recover restores the open entry instead of inventing a
// spurious close time.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	open, err := db.GetOpenTimeEntry(c.database)
	if err != nil {
		return err
	}
	if open == nil {
		c.setIdleLocked()
		return nil
	}

	end := track.TruncateSecond(c.now())
	if end.Before(open.StartTime) {
		end = open.StartTime
	}
	if err := c.closeEntryLocked(open, end); err != nil {
		return err
	}
	if err := db.ClearCurrentActivity(c.database); err != nil {
		return err
	}

	c.setIdleLocked()
	return nil
}

// Current returns the current activity and the open entry's start time,
// both nil when idle.
func (c *Controller) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Elapsed returns how long the current activity has been tracked, and
// whether tracking is in progress.
func (c *Controller) Elapsed() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentActivity == nil {
		return 0, false
	}
	return c.now().Sub(c.openEntryStart), true
}

// Subscribe returns a channel receiving a snapshot after every applied
// state change. The channel is buffered; subscribers that fall behind miss
// intermediate snapshots.
func (c *Controller) Subscribe() <-chan Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan Snapshot, subscriberBuffer)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// reassignLocked moves the open entry to a different activity without
// closing it (the same-start correction case).
func (c *Controller) reassignLocked(target *track.Activity, open *track.TimeEntry) error {
	updated := *open
	updated.ActivityID = target.ID
	if err := db.UpdateTimeEntry(c.database, &updated); err != nil {
		return err
	}
	if err := db.SetCurrentActivity(c.database, target.ID); err != nil {
		return err
	}
	c.setOpenLocked(target, &updated)
	return nil
}

// closeEntryLocked sets the entry's end and duration. The cache is not
// touched: callers either open a replacement entry or clear state.
func (c *Controller) closeEntryLocked(open *track.TimeEntry, end time.Time) error {
	closed := *open
	closed.EndTime = &end
	d := end.Sub(closed.StartTime)
	closed.Duration = &d
	return db.UpdateTimeEntry(c.database, &closed)
}

// openEntryLocked creates a fresh open entry for target. If the insert
// fails after a prior close succeeded, the store holds zero open entries —
// a safe, recoverable state — and the cache is cleared to match.
func (c *Controller) openEntryLocked(target *track.Activity, start time.Time) error {
	id, err := track.NewID()
	if err != nil {
		return errors.NewInternal(err)
	}
	entry := &track.TimeEntry{
		ID:         id,
		ActivityID: target.ID,
		StartTime:  start,
	}
	if err := db.InsertTimeEntry(c.database, entry); err != nil {
		c.setIdleLocked()
		return err
	}
	if err := db.SetCurrentActivity(c.database, target.ID); err != nil {
		return err
	}
	c.setOpenLocked(target, entry)
	return nil
}

func (c *Controller) setOpenLocked(activity *track.Activity, entry *track.TimeEntry) {
	a := *activity
	a.IsActive = true
	c.currentActivity = &a
	c.openEntryID = entry.ID
	c.openEntryStart = entry.StartTime
	c.notifyLocked()
}

func (c *Controller) setIdleLocked() {
	c.currentActivity = nil
	c.openEntryID = ""
	c.openEntryStart = time.Time{}
	c.notifyLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	if c.currentActivity == nil {
		return Snapshot{}
	}
	a := *c.currentActivity
	start := c.openEntryStart
	return Snapshot{Activity: &a, StartTime: &start}
}

// notifyLocked fans the current snapshot out to subscribers without
// blocking the critical section.
func (c *Controller) notifyLocked() {
	snap := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}
