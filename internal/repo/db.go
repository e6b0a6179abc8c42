package repo

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'publish',
		featured_asset_id INTEGER NOT NULL DEFAULT 0,
		ctime INTEGER NOT NULL,
		mtime INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS terms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		taxonomy TEXT NOT NULL,
		UNIQUE(name, taxonomy)
	)`,
	`CREATE TABLE IF NOT EXISTS post_terms (
		post_id INTEGER NOT NULL,
		term_id INTEGER NOT NULL,
		taxonomy TEXT NOT NULL,
		UNIQUE(post_id, term_id)
	)`,
	`CREATE TABLE IF NOT EXISTS mappings (
		target_post_id INTEGER PRIMARY KEY,
		host_post_id INTEGER NOT NULL,
		source_url TEXT NOT NULL,
		mtime INTEGER NOT NULL,
		UNIQUE(host_post_id, source_url)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mappings_host ON mappings(host_post_id)`,
	`CREATE TABLE IF NOT EXISTS targets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		key TEXT NOT NULL,
		added_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL DEFAULT 0,
		file_key TEXT NOT NULL,
		mime TEXT NOT NULL DEFAULT '',
		ctime INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host_post_id INTEGER NOT NULL,
		target_post_id INTEGER,
		source_site_url TEXT NOT NULL,
		target_site_url TEXT NOT NULL,
		action TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		user_role TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_logs_host ON sync_logs(host_post_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_logs_status ON sync_logs(status)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_logs_created ON sync_logs(created_at)`,
}

func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func ApplyMigrations(db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
