package database

import (
	"path/filepath"
	"testing"
)

func TestDBPath(t *testing.T) {
	expected := filepath.Join("data", "weather-terminal.db")
	if got := DBPath(); got != expected {
		t.Errorf("DBPath() = %v, want %v", got, expected)
	}
}

func TestOpen_PreservesData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// 1. Open creates the schema
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("First Open failed: %v", err)
	}
	_, err = db.Exec(`INSERT INTO region_defaults (name, region) VALUES ('delhi', 'IN')`)
	db.Close()
	if err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}

	// 2. Opening again must not drop the table
	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Second Open failed: %v", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM region_defaults WHERE name = 'delhi'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query record: %v", err)
	}

	if count != 1 {
		t.Errorf("Expected 1 record, got %d. Data was likely lost due to table drop.", count)
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "weather.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='region_defaults'").Scan(&count)
	if err != nil {
		t.Fatalf("checking for region_defaults table: %v", err)
	}
	if count != 1 {
		t.Errorf("region_defaults table count = %d, want 1", count)
	}
}
