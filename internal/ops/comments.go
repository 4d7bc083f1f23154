package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/track"
)

// CommentAddInput contains parameters for the CommentAdd operation.
type CommentAddInput struct {
	TimeEntryID string
	Text        string

	// MediaType and MediaURI attach a media reference; both or neither.
	MediaType string
	MediaURI  string
}

// CommentAddOutput contains the result of the CommentAdd operation.
type CommentAddOutput struct {
	Comment CommentView `json:"comment"`
}

// CommentAdd attaches a comment to a time entry. A comment needs text, a
// media reference, or both.
func CommentAdd(database *sql.DB, input CommentAddInput) (*CommentAddOutput, error) {
	if input.TimeEntryID == "" {
		return nil, errors.NewInvalidRequest("time entry id is required")
	}

	text := strings.TrimSpace(input.Text)
	hasMedia := input.MediaType != "" || input.MediaURI != ""
	if text == "" && !hasMedia {
		return nil, errors.NewInvalidRequest("comment needs text or a media reference")
	}
	if hasMedia {
		if input.MediaType == "" || input.MediaURI == "" {
			return nil, errors.NewInvalidRequest("media_type and media_uri must be provided together")
		}
		if !track.ValidMediaType(input.MediaType) {
			return nil, errors.NewInvalidRequest("media_type must be photo, video, or audio")
		}
	}

	// The entry must exist; comments share its lifetime.
	if _, err := db.GetTimeEntryByID(database, input.TimeEntryID); err != nil {
		return nil, err
	}

	id, err := track.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	comment := &track.Comment{
		ID:          id,
		TimeEntryID: input.TimeEntryID,
		Text:        text,
		CreatedAt:   track.TruncateSecond(time.Now()),
	}
	if hasMedia {
		mt := track.MediaType(input.MediaType)
		comment.MediaType = &mt
		comment.MediaURI = &input.MediaURI
	}

	if err := db.InsertComment(database, comment); err != nil {
		return nil, err
	}
	return &CommentAddOutput{Comment: commentView(comment)}, nil
}

// CommentListInput contains parameters for the CommentList operation.
type CommentListInput struct {
	TimeEntryID string
}

// CommentListOutput contains the result of the CommentList operation.
type CommentListOutput struct {
	Comments []CommentView `json:"comments"`
}

// CommentList returns an entry's comments, newest first.
func CommentList(database *sql.DB, input CommentListInput) (*CommentListOutput, error) {
	if input.TimeEntryID == "" {
		return nil, errors.NewInvalidRequest("time entry id is required")
	}
	if _, err := db.GetTimeEntryByID(database, input.TimeEntryID); err != nil {
		return nil, err
	}

	comments, err := db.ListCommentsForEntry(database, input.TimeEntryID)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}
	return &CommentListOutput{Comments: views}, nil
}

// CommentUpdateInput contains parameters for the CommentUpdate operation.
// Nil fields are left unchanged.
type CommentUpdateInput struct {
	ID   string
	Text *string
}

// CommentUpdateOutput contains the result of the CommentUpdate operation.
type CommentUpdateOutput struct {
	Comment CommentView `json:"comment"`
}

// CommentUpdate edits a comment's text. Media references are immutable;
// delete and re-add to replace one.
func CommentUpdate(database *sql.DB, input CommentUpdateInput) (*CommentUpdateOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("comment id is required")
	}
	if input.Text == nil {
		return nil, errors.NewInvalidRequest("text must be provided")
	}

	comment, err := db.GetCommentByID(database, input.ID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(*input.Text)
	if text == "" && comment.MediaType == nil {
		return nil, errors.NewInvalidRequest("comment needs text or a media reference")
	}
	comment.Text = text

	if err := db.UpdateComment(database, comment); err != nil {
		return nil, err
	}
	return &CommentUpdateOutput{Comment: commentView(comment)}, nil
}

// CommentDeleteInput contains parameters for the CommentDelete operation.
type CommentDeleteInput struct {
	ID string
}

// CommentDeleteOutput contains the result of the CommentDelete operation.
type CommentDeleteOutput struct {
	ID string `json:"id"`
}

// CommentDelete removes a comment.
func CommentDelete(database *sql.DB, input CommentDeleteInput) (*CommentDeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("comment id is required")
	}
	if err := db.DeleteComment(database, input.ID); err != nil {
		return nil, err
	}
	return &CommentDeleteOutput{ID: input.ID}, nil
}
