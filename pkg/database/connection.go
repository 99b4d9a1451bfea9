package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ConnectDB establishes a database connection. driver is "sqlite3" or
// "postgres"; for sqlite3 the dsn is a file path (tilde expanded, parent
// directories created), for postgres it is a connection string.
func ConnectDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "sqlite3":
		if strings.HasPrefix(dsn, "~") {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dsn = homeDir + dsn[1:]
		}

		// Create the directory structure if it doesn't exist
		dbDir := filepath.Dir(dsn)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return nil, err
			}
		}
		return sql.Open("sqlite3", dsn)

	case "postgres":
		return sql.Open("postgres", dsn)
	}

	return nil, fmt.Errorf("unsupported database driver: %s", driver)
}

// EnsureSchema creates the tables if they don't exist. The column types
// work on both sqlite and postgres; entity ids are uuid strings generated
// by the application, and day carries a date-only YYYY-MM-DD value.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'BACKLOG',
			priority TEXT NOT NULL DEFAULT 'LOW',
			expected_time INTEGER NOT NULL DEFAULT 0,
			actual_time INTEGER NOT NULL DEFAULT 0,
			start_time TIMESTAMP,
			end_time TIMESTAMP,
			scheduled_start_time TIMESTAMP,
			completed_at TIMESTAMP,
			category_id TEXT,
			day TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_day ON tasks (user_id, day)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres. Queries are written
// with ? throughout and rebound per driver.
func rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
