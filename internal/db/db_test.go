package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	// Use temp directory for test isolation
	tmpDir := t.TempDir()

	db, err := Init(tmpDir, false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	// Verify database file was created
	dbPath := filepath.Join(tmpDir, "chronotrack.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}

	// Verify WAL mode is active
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	// Verify schema was created
	for _, table := range []string{"activities", "time_entries", "comments"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestInit_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	baseDir := filepath.Join(tmpDir, "nested", "path", ".chronotrack")

	db, err := Init(baseDir, false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	// Verify nested directories were created
	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		t.Errorf("base directory not created at %s", baseDir)
	}
}

func TestInit_SeedsPresets(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir, true)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	activities, err := ListActiveActivities(db)
	if err != nil {
		t.Fatalf("ListActiveActivities() error = %v", err)
	}
	if len(activities) != 5 {
		t.Fatalf("preset activities = %d, want 5", len(activities))
	}

	names := make(map[string]bool)
	for _, a := range activities {
		names[a.Name] = true
	}
	for _, want := range []string{"Work", "Sleep", "Hobby", "Family", "Sport"} {
		if !names[want] {
			t.Errorf("preset %q not seeded", want)
		}
	}
}

func TestInit_NoPresetsWhenDisabled(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir, false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	activities, err := ListActiveActivities(db)
	if err != nil {
		t.Fatalf("ListActiveActivities() error = %v", err)
	}
	if len(activities) != 0 {
		t.Errorf("activities = %d, want 0", len(activities))
	}
}

func TestInit_PresetsSeededOnce(t *testing.T) {
	tmpDir := t.TempDir()

	db1, err := Init(tmpDir, true)
	if err != nil {
		t.Fatalf("first Init() error = %v", err)
	}
	db1.Close()

	// Re-opening an existing database must not re-seed
	db2, err := Init(tmpDir, true)
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	defer db2.Close()

	activities, err := ListActiveActivities(db2)
	if err != nil {
		t.Fatalf("ListActiveActivities() error = %v", err)
	}
	if len(activities) != 5 {
		t.Errorf("activities after reopen = %d, want 5", len(activities))
	}
}

func TestUserVersion(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir, false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	// After Init, version should be CurrentSchemaVersion (migration ran)
	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version after Init = %d, want %d", version, CurrentSchemaVersion)
	}

	// Test setting a higher version
	if err := SetUserVersion(db, 99); err != nil {
		t.Fatalf("SetUserVersion() error = %v", err)
	}

	version, err = GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != 99 {
		t.Errorf("user_version = %d, want 99", version)
	}
}

func TestInit_MigrationIdempotent(t *testing.T) {
	tmpDir := t.TempDir()

	// First Init
	db1, err := Init(tmpDir, false)
	if err != nil {
		t.Fatalf("first Init() error = %v", err)
	}
	db1.Close()

	// Second Init on same DB should succeed (migrations skip if already applied)
	db2, err := Init(tmpDir, false)
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	defer db2.Close()

	version, err := GetUserVersion(db2)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version after second Init = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInit_SchemaIndexes(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir, false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	// Verify all indexes were created
	indexes := []string{
		"idx_entries_activity",
		"idx_entries_start",
		"idx_entries_one_open",
		"idx_comments_entry",
	}

	for _, idx := range indexes {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		if err != nil {
			t.Errorf("index %s not found: %v", idx, err)
		}
	}
}
