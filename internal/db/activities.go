package db

import (
	"database/sql"

	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/track"
)

const activityColumns = "id, name, color, icon, is_active, is_archived"

// InsertActivity stores a new activity. The activity's ID must be set.
func InsertActivity(db *sql.DB, a *track.Activity) error {
	query := `
		INSERT INTO activities (id, name, color, icon, is_active, is_archived)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, a.ID, a.Name, a.Color, a.Icon, boolToInt(a.IsActive), boolToInt(a.IsArchived))
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

// UpdateActivity replaces an activity's mutable fields by id.
func UpdateActivity(db *sql.DB, a *track.Activity) error {
	query := `
		UPDATE activities
		SET name = ?, color = ?, icon = ?, is_active = ?, is_archived = ?
		WHERE id = ?
	`
	result, err := db.Exec(query, a.Name, a.Color, a.Icon, boolToInt(a.IsActive), boolToInt(a.IsArchived), a.ID)
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("activity", a.ID)
	}
	return nil
}

// GetActivityByID retrieves an activity regardless of archived state.
func GetActivityByID(db *sql.DB, id string) (*track.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`
	a, err := scanActivity(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("activity", id)
	}
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return a, nil
}

// ListActiveActivities returns all non-archived activities, name ascending.
func ListActiveActivities(db *sql.DB) ([]track.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE is_archived = 0 ORDER BY name`
	return queryActivities(db, query)
}

// ListArchivedActivities returns all archived activities, name ascending.
func ListArchivedActivities(db *sql.DB) ([]track.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE is_archived = 1 ORDER BY name`
	return queryActivities(db, query)
}

// GetCurrentActivity returns the activity carrying the is_active flag, or
// nil when tracking is idle.
func GetCurrentActivity(db *sql.DB) (*track.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE is_active = 1 AND is_archived = 0 LIMIT 1`
	a, err := scanActivity(db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return a, nil
}

// SetCurrentActivity moves the is_active flag to the given activity,
// clearing it on all others in the same statement.
func SetCurrentActivity(db *sql.DB, activityID string) error {
	query := `UPDATE activities SET is_active = CASE WHEN id = ? THEN 1 ELSE 0 END`
	if _, err := db.Exec(query, activityID); err != nil {
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

// ClearCurrentActivity removes the is_active flag from all activities.
func ClearCurrentActivity(db *sql.DB) error {
	if _, err := db.Exec(`UPDATE activities SET is_active = 0`); err != nil {
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

// ArchiveActivity soft-deletes an activity. Its entries are preserved.
func ArchiveActivity(db *sql.DB, activityID string) error {
	return setArchived(db, activityID, 1)
}

// RestoreActivity reverses an archive.
func RestoreActivity(db *sql.DB, activityID string) error {
	return setArchived(db, activityID, 0)
}

func setArchived(db *sql.DB, activityID string, archived int) error {
	result, err := db.Exec(`UPDATE activities SET is_archived = ? WHERE id = ?`, archived, activityID)
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("activity", activityID)
	}
	return nil
}

// DeleteActivity hard-deletes an activity row. Callers must delete the
// activity's entries first (see ops.DeleteActivity).
func DeleteActivity(db *sql.DB, activityID string) error {
	result, err := db.Exec(`DELETE FROM activities WHERE id = ?`, activityID)
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("activity", activityID)
	}
	return nil
}

func queryActivities(db *sql.DB, query string, args ...any) ([]track.Activity, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	defer rows.Close()

	var activities []track.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, errors.NewPersistenceFailure(err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return activities, nil
}

// scanActivity reads one activity row.
func scanActivity(row rowScanner) (*track.Activity, error) {
	var (
		a        track.Activity
		active   int
		archived int
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Color, &a.Icon, &active, &archived); err != nil {
		return nil, err
	}
	a.IsActive = active != 0
	a.IsArchived = archived != 0
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
