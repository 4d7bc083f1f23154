package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sharai/chronotrack/internal/config"
	"github.com/sharai/chronotrack/internal/track"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/chronotrack.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.chronotrack.
// When seedPresets is true, a freshly created database is populated with the
// preset activities.
func Init(baseDir string, seedPresets bool) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "chronotrack.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db, seedPresets); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
// Call after Init if you need to tune pool behavior for contention.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB, seedPresets bool) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS activities (
		  id          TEXT PRIMARY KEY,
		  name        TEXT NOT NULL,
		  color       INTEGER NOT NULL,
		  icon        TEXT NOT NULL DEFAULT '',
		  is_active   INTEGER NOT NULL DEFAULT 0,
		  is_archived INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS time_entries (
		  id            TEXT PRIMARY KEY,
		  activity_id   TEXT NOT NULL REFERENCES activities(id),
		  start_time    INTEGER NOT NULL,
		  end_time      INTEGER,
		  duration_secs INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_entries_activity
		ON time_entries(activity_id, start_time DESC);

		CREATE INDEX IF NOT EXISTS idx_entries_start
		ON time_entries(start_time DESC);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_one_open
		ON time_entries((end_time IS NULL))
		WHERE end_time IS NULL;

		CREATE TABLE IF NOT EXISTS comments (
		  id            TEXT PRIMARY KEY,
		  time_entry_id TEXT NOT NULL REFERENCES time_entries(id) ON DELETE CASCADE,
		  body          TEXT NOT NULL DEFAULT '',
		  media_type    TEXT,
		  media_uri     TEXT,
		  created_at    INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_comments_entry
		ON comments(time_entry_id, created_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if seedPresets {
			if err := seedPresetActivities(db); err != nil {
				return err
			}
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// seedPresetActivities inserts the preset activities into a fresh database.
func seedPresetActivities(db *sql.DB) error {
	for _, p := range track.Presets {
		id, err := track.NewID()
		if err != nil {
			return fmt.Errorf("failed to generate preset id: %w", err)
		}
		_, err = db.Exec(
			`INSERT INTO activities (id, name, color, icon, is_active, is_archived) VALUES (?, ?, ?, ?, 0, 0)`,
			id, p.Name, p.Color, p.Icon,
		)
		if err != nil {
			return fmt.Errorf("failed to seed preset %q: %w", p.Name, err)
		}
	}
	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
