package api_test

import (
	"database/sql"
	"testing"

	"zentrack/internal/api"
)

func TestMigrateAddUserProfileFields(t *testing.T) {
	// Simulate a database created before the profile columns existed
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		"INSERT INTO users (email, username, password_hash) VALUES ('old@example.com', 'old', 'x')",
	); err != nil {
		t.Fatal(err)
	}

	if err := api.MigrateAddUserProfileFields(db); err != nil {
		t.Fatal(err)
	}

	// Existing rows pick up the defaults
	var theme string
	var firstLogin bool
	if err := db.QueryRow("SELECT theme, first_login FROM users WHERE username = 'old'").Scan(&theme, &firstLogin); err != nil {
		t.Fatal(err)
	}
	if theme != "light" || !firstLogin {
		t.Fatalf("Unexpected defaults theme=%q first_login=%v", theme, firstLogin)
	}

	// Running the migration again is a no-op
	if err := api.MigrateAddUserProfileFields(db); err != nil {
		t.Fatal(err)
	}
}
