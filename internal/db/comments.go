package db

import (
	"database/sql"
	"time"

	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/track"
)

const commentColumns = "id, time_entry_id, body, media_type, media_uri, created_at"

// InsertComment stores a new comment. The comment's ID must be set.
func InsertComment(db *sql.DB, c *track.Comment) error {
	var mediaType, mediaURI sql.NullString
	if c.MediaType != nil {
		mediaType = sql.NullString{String: string(*c.MediaType), Valid: true}
	}
	if c.MediaURI != nil {
		mediaURI = sql.NullString{String: *c.MediaURI, Valid: true}
	}

	query := `
		INSERT INTO comments (id, time_entry_id, body, media_type, media_uri, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, c.ID, c.TimeEntryID, c.Text, mediaType, mediaURI, c.CreatedAt.Unix())
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

// UpdateComment replaces a comment's body and media reference by id.
func UpdateComment(db *sql.DB, c *track.Comment) error {
	var mediaType, mediaURI sql.NullString
	if c.MediaType != nil {
		mediaType = sql.NullString{String: string(*c.MediaType), Valid: true}
	}
	if c.MediaURI != nil {
		mediaURI = sql.NullString{String: *c.MediaURI, Valid: true}
	}

	query := `UPDATE comments SET body = ?, media_type = ?, media_uri = ? WHERE id = ?`
	result, err := db.Exec(query, c.Text, mediaType, mediaURI, c.ID)
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("comment", c.ID)
	}
	return nil
}

// GetCommentByID retrieves a single comment.
func GetCommentByID(db *sql.DB, id string) (*track.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`
	c, err := scanComment(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("comment", id)
	}
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return c, nil
}

// ListCommentsForEntry returns an entry's comments, newest first.
func ListCommentsForEntry(db *sql.DB, timeEntryID string) ([]track.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE time_entry_id = ?
		ORDER BY created_at DESC
	`
	rows, err := db.Query(query, timeEntryID)
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	defer rows.Close()

	var comments []track.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, errors.NewPersistenceFailure(err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return comments, nil
}

// DeleteComment removes a single comment.
func DeleteComment(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("comment", id)
	}
	return nil
}

// DeleteCommentsForEntry removes all comments on an entry. Returns the
// number deleted. (Cascade covers entry deletion; this is for clearing
// comments while keeping the entry.)
func DeleteCommentsForEntry(db *sql.DB, timeEntryID string) (int64, error) {
	result, err := db.Exec(`DELETE FROM comments WHERE time_entry_id = ?`, timeEntryID)
	if err != nil {
		return 0, errors.NewPersistenceFailure(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewPersistenceFailure(err)
	}
	return n, nil
}

// scanComment reads one comment row.
func scanComment(row rowScanner) (*track.Comment, error) {
	var (
		c         track.Comment
		mediaType sql.NullString
		mediaURI  sql.NullString
		createdAt int64
	)
	if err := row.Scan(&c.ID, &c.TimeEntryID, &c.Text, &mediaType, &mediaURI, &createdAt); err != nil {
		return nil, err
	}
	if mediaType.Valid {
		mt := track.MediaType(mediaType.String)
		c.MediaType = &mt
	}
	if mediaURI.Valid {
		c.MediaURI = &mediaURI.String
	}
	c.CreatedAt = time.Unix(createdAt, 0)
	return &c, nil
}
