// Package database provides the embedded sqlite store and migration
// utilities. The store holds three tables: audit_events (append-only),
// incidents (correlation records) and web_incidents (web-UI lifecycle).
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// timeLayout is a fixed-width RFC 3339 form for stored timestamps.
// RFC3339Nano trims trailing fraction zeros, which breaks lexical ordering
// at sub-second boundaries; the window query compares timestamps as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Client wraps the embedded database connection. sqlite has a single
// writer; the pool is capped at one connection so every operation's
// transaction serializes naturally.
type Client struct {
	db *sql.DB
}

// NewClient opens (creating if needed) the sqlite database at path and
// runs pending migrations.
func NewClient(path string) (*Client, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps concurrent readers off the writer's back.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Client{db: db}, nil
}

// DB returns the underlying connection for health checks.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close releases the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
