package api

import (
	"database/sql"
	"fmt"
)

// columnExists checks if a column exists on a given table (SQLite PRAGMA table_info)
func columnExists(db *sql.DB, table string, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var cid int
	var name string
	var ctype string
	var notnull int
	var dflt sql.NullString
	var pk int

	for rows.Next() {
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// MigrateAddUserProfileFields brings pre-existing databases up to the current
// users schema: mobile, picture, provider_id, theme and first_login columns
// (idempotent).
func MigrateAddUserProfileFields(db *sql.DB) error {
	additions := []struct {
		column string
		ddl    string
	}{
		{"mobile", "ALTER TABLE users ADD COLUMN mobile TEXT"},
		{"picture", "ALTER TABLE users ADD COLUMN picture TEXT"},
		{"provider_id", "ALTER TABLE users ADD COLUMN provider_id TEXT"},
		{"theme", "ALTER TABLE users ADD COLUMN theme TEXT NOT NULL DEFAULT 'light'"},
		{"first_login", "ALTER TABLE users ADD COLUMN first_login BOOLEAN NOT NULL DEFAULT 1"},
	}

	for _, add := range additions {
		exists, err := columnExists(db, "users", add.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(add.ddl); err != nil {
			return err
		}
	}
	return nil
}
