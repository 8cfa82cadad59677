// Package sqlite persists users and welfare policies in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB is a SQLite database holding the users and welfare_policies tables.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// The special path ":memory:" opens a private in-memory database.
func Open(path string) (*DB, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		// WAL mode for better concurrency.
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &DB{db: db}
	if err := d.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return d, nil
}

func (d *DB) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		onboarding_completed INTEGER NOT NULL DEFAULT 0,
		profile_region TEXT,
		profile_life_cycle TEXT,
		profile_interests TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS welfare_policies (
		policy_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT,
		ministry TEXT,
		source_type TEXT NOT NULL DEFAULT 'central',
		ctpv_nm TEXT,
		sgg_nm TEXT,
		support_content TEXT,
		target_detail TEXT,
		application_method TEXT,
		phone TEXT,
		website TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_policies_region ON welfare_policies(ctpv_nm);
	`
	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}
