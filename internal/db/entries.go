package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/track"
)

// ErrOpenEntryExists is returned when a write would leave the store with a
// second open time entry. The partial unique index idx_entries_one_open is
// the last line of defense behind the timeline controller's serialization.
var ErrOpenEntryExists = errors.NewInvariantViolation(
	"an open time entry already exists", nil,
)

const entryColumns = "id, activity_id, start_time, end_time, duration_secs"

// InsertTimeEntry stores a new time entry. The entry's ID must be set.
func InsertTimeEntry(db *sql.DB, e *track.TimeEntry) error {
	query := `
		INSERT INTO time_entries (id, activity_id, start_time, end_time, duration_secs)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		e.ID, e.ActivityID, e.StartTime.Unix(),
		toNullUnix(e.EndTime), toNullSeconds(e.Duration),
	)
	if err != nil {
		if isOpenEntryConstraintError(err) {
			return ErrOpenEntryExists
		}
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

// UpdateTimeEntry replaces all mutable fields of an entry by id.
func UpdateTimeEntry(db *sql.DB, e *track.TimeEntry) error {
	query := `
		UPDATE time_entries
		SET activity_id = ?, start_time = ?, end_time = ?, duration_secs = ?
		WHERE id = ?
	`
	result, err := db.Exec(query,
		e.ActivityID, e.StartTime.Unix(),
		toNullUnix(e.EndTime), toNullSeconds(e.Duration),
		e.ID,
	)
	if err != nil {
		if isOpenEntryConstraintError(err) {
			return ErrOpenEntryExists
		}
		return errors.NewPersistenceFailure(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("time entry", e.ID)
	}
	return nil
}

// GetOpenTimeEntry returns the entry with no end time, or nil if tracking
// is idle. The partial index makes this an indexed lookup.
func GetOpenTimeEntry(db *sql.DB) (*track.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE end_time IS NULL LIMIT 1`
	e, err := scanEntry(db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return e, nil
}

// GetTimeEntryByID retrieves a single entry.
func GetTimeEntryByID(db *sql.DB, id string) (*track.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE id = ?`
	e, err := scanEntry(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("time entry", id)
	}
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return e, nil
}

// ListTimeEntries returns all entries ordered by start time descending.
func ListTimeEntries(db *sql.DB) ([]track.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries ORDER BY start_time DESC`
	return queryEntries(db, query)
}

// ListTimeEntriesForActivity returns an activity's entries, newest first.
func ListTimeEntriesForActivity(db *sql.DB, activityID string) ([]track.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE activity_id = ? ORDER BY start_time DESC`
	return queryEntries(db, query, activityID)
}

// ListTimeEntriesForPeriod returns entries whose start falls in [start, end),
// newest first.
func ListTimeEntriesForPeriod(db *sql.DB, start, end time.Time) ([]track.TimeEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM time_entries
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time DESC
	`
	return queryEntries(db, query, start.Unix(), end.Unix())
}

// DeleteTimeEntry removes a single entry; its comments cascade.
func DeleteTimeEntry(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("time entry", id)
	}
	return nil
}

// DeleteTimeEntriesForActivity removes all of an activity's entries.
// Returns the number of deleted entries.
func DeleteTimeEntriesForActivity(db *sql.DB, activityID string) (int64, error) {
	result, err := db.Exec(`DELETE FROM time_entries WHERE activity_id = ?`, activityID)
	if err != nil {
		return 0, errors.NewPersistenceFailure(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewPersistenceFailure(err)
	}
	return n, nil
}

// DeleteEntriesInRange removes entries that start at or after start and end
// at or before end. Entries still open or ending after the range are kept.
// Returns the number of deleted entries.
func DeleteEntriesInRange(db *sql.DB, start, end time.Time) (int64, error) {
	query := `
		DELETE FROM time_entries
		WHERE start_time >= ? AND end_time IS NOT NULL AND end_time <= ?
	`
	result, err := db.Exec(query, start.Unix(), end.Unix())
	if err != nil {
		return 0, errors.NewPersistenceFailure(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewPersistenceFailure(err)
	}
	return n, nil
}

// GetFirstEntryDate returns the start time of the earliest entry, or nil if
// the store is empty.
func GetFirstEntryDate(db *sql.DB) (*time.Time, error) {
	var min sql.NullInt64
	if err := db.QueryRow(`SELECT MIN(start_time) FROM time_entries`).Scan(&min); err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	if !min.Valid {
		return nil, nil
	}
	t := time.Unix(min.Int64, 0)
	return &t, nil
}

// isOpenEntryConstraintError checks if the error is a violation of the
// one-open-entry unique index.
func isOpenEntryConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite reports "UNIQUE constraint failed: index 'idx_entries_one_open'"
	// for expression indexes.
	return strings.Contains(err.Error(), "UNIQUE constraint failed") &&
		strings.Contains(err.Error(), "idx_entries_one_open")
}

// queryEntries runs a multi-row entry query.
func queryEntries(db *sql.DB, query string, args ...any) ([]track.TimeEntry, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	defer rows.Close()

	var entries []track.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewPersistenceFailure(err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return entries, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads one time entry row.
func scanEntry(row rowScanner) (*track.TimeEntry, error) {
	var (
		e        track.TimeEntry
		start    int64
		end      sql.NullInt64
		duration sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.ActivityID, &start, &end, &duration); err != nil {
		return nil, err
	}
	e.StartTime = time.Unix(start, 0)
	if end.Valid {
		t := time.Unix(end.Int64, 0)
		e.EndTime = &t
	}
	if duration.Valid {
		d := time.Duration(duration.Int64) * time.Second
		e.Duration = &d
	}
	return &e, nil
}

// toNullUnix converts an optional time to a nullable Unix-seconds value.
func toNullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

// toNullSeconds converts an optional duration to nullable whole seconds.
func toNullSeconds(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*d / time.Second), Valid: true}
}
