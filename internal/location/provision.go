package location

import (
	"database/sql"
	"fmt"
	"log"
)

// ProvisionRegionDefaults seeds the region_defaults table with BuiltinRegions
// when it is empty. Rows already present are left untouched.
func ProvisionRegionDefaults(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM region_defaults").Scan(&count); err != nil {
		return fmt.Errorf("checking region_defaults: %w", err)
	}
	if count > 0 {
		return nil // Already provisioned
	}

	log.Println("Region defaults not found, provisioning...")

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO region_defaults (name, region) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for name, region := range BuiltinRegions {
		if _, err := stmt.Exec(name, region); err != nil {
			return fmt.Errorf("inserting %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing region defaults: %w", err)
	}

	log.Printf("Provisioned %d region defaults", len(BuiltinRegions))
	return nil
}
