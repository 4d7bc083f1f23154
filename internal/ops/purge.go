package ops

import (
	"database/sql"
	"time"

	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/stats"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	// From and To bound the range to clear. Only entries fully contained
	// in the range are removed; the open entry is never touched.
	From time.Time
	To   time.Time
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	DeletedEntries int64 `json:"deleted_entries"`
}

// Purge bulk-deletes closed entries in a range. Comments cascade.
func Purge(database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	r := stats.Range{Start: input.From, End: input.To}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	deleted, err := db.DeleteEntriesInRange(database, input.From, input.To)
	if err != nil {
		return nil, err
	}
	return &PurgeOutput{DeletedEntries: deleted}, nil
}
