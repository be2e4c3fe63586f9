// Package location turns free-text search submissions into location refs
package location

import (
	"database/sql"
	"fmt"
	"strings"
)

// RegionTable supplies the default region for a place name typed without one.
// Keys are lower-cased, trimmed names.
type RegionTable interface {
	DefaultRegion(name string) (string, bool, error)
}

// BuiltinRegions are the defaults provisioned into a fresh database
var BuiltinRegions = map[string]string{
	"delhi":       "IN",
	"new delhi":   "IN",
	"mumbai":      "IN",
	"bangalore":   "IN",
	"new york":    "US",
	"los angeles": "US",
	"chicago":     "US",
	"tokyo":       "JP",
	"sydney":      "AU",
	"toronto":     "CA",
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// StaticTable is an in-memory RegionTable
type StaticTable map[string]string

// DefaultRegion implements RegionTable
func (t StaticTable) DefaultRegion(name string) (string, bool, error) {
	region, ok := t[normalizeName(name)]
	return region, ok, nil
}

// SQLTable reads defaults from the region_defaults table
type SQLTable struct {
	db *sql.DB
}

// NewSQLTable wraps an open database whose schema has been ensured
func NewSQLTable(db *sql.DB) *SQLTable {
	return &SQLTable{db: db}
}

// DefaultRegion implements RegionTable
func (t *SQLTable) DefaultRegion(name string) (string, bool, error) {
	var region string
	err := t.db.QueryRow(
		"SELECT region FROM region_defaults WHERE name = ?",
		normalizeName(name),
	).Scan(&region)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying region default: %w", err)
	}
	return region, true, nil
}

// Set adds or replaces the default region for name
func (t *SQLTable) Set(name, region string) error {
	key := normalizeName(name)
	if key == "" {
		return fmt.Errorf("name cannot be empty")
	}
	_, err := t.db.Exec(`
		INSERT INTO region_defaults (name, region) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET region = excluded.region
	`, key, strings.ToUpper(strings.TrimSpace(region)))
	if err != nil {
		return fmt.Errorf("saving region default: %w", err)
	}
	return nil
}
