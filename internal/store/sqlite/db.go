// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/tomtom215/telebackup/internal/logging"
)

// schema is applied on every open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS sms (
	_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	thread_id INTEGER NOT NULL DEFAULT 0,
	sub_id    INTEGER NOT NULL DEFAULT -1,
	address   TEXT,
	body      TEXT,
	subject   TEXT,
	date      INTEGER NOT NULL,
	date_sent INTEGER NOT NULL DEFAULT 0,
	status    INTEGER NOT NULL DEFAULT -1,
	type      INTEGER NOT NULL DEFAULT 0,
	read      INTEGER NOT NULL DEFAULT 0,
	seen      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sms_date ON sms(date);

CREATE TABLE IF NOT EXISTS mms (
	_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	thread_id INTEGER NOT NULL DEFAULT 0,
	sub_id    INTEGER NOT NULL DEFAULT -1,
	sub       TEXT,
	sub_cs    INTEGER,
	date      INTEGER NOT NULL,
	date_sent INTEGER NOT NULL DEFAULT 0,
	m_type    INTEGER NOT NULL DEFAULT 0,
	v         INTEGER NOT NULL DEFAULT 0,
	msg_box   INTEGER NOT NULL DEFAULT 0,
	ct_l      TEXT,
	read      INTEGER NOT NULL DEFAULT 0,
	seen      INTEGER NOT NULL DEFAULT 0,
	text_only INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_mms_date ON mms(date);

CREATE TABLE IF NOT EXISTS part (
	_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	mid   INTEGER NOT NULL DEFAULT 0,
	seq   INTEGER NOT NULL DEFAULT 0,
	ct    TEXT NOT NULL,
	name  TEXT,
	chset INTEGER,
	cid   TEXT,
	cl    TEXT,
	text  TEXT
);
CREATE INDEX IF NOT EXISTS idx_part_mid ON part(mid);

CREATE TABLE IF NOT EXISTS addr (
	_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	msg_id  INTEGER NOT NULL,
	type    INTEGER NOT NULL DEFAULT 0,
	address TEXT,
	charset INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_addr_msg ON addr(msg_id);

CREATE TABLE IF NOT EXISTS threads (
	_id           INTEGER PRIMARY KEY AUTOINCREMENT,
	recipient_ids TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS canonical_addresses (
	_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	address TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS line_registrations (
	sub_id      INTEGER PRIMARY KEY,
	number      TEXT NOT NULL,
	country_iso TEXT NOT NULL DEFAULT ''
);
`

// DB wraps the SQLite connection and implements the store interfaces.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if necessary) the message database at path and
// applies the schema.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// The export cycle keeps the SMS and MMS cursors open at the same
	// time and issues part and address lookups between rows, so the pool
	// must serve several readers at once. WAL keeps restore's writes from
	// blocking behind them; busy_timeout covers writer contention.
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(4)

	db := &DB{conn: conn, path: path}
	if err := db.initSchema(context.Background()); err != nil {
		conn.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, err
	}

	logging.Debug().Str("path", path).Msg("Opened message database")
	return db, nil
}

// initSchema applies the idempotent schema statements.
func (db *DB) initSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// optStr maps a nullable TEXT column to a pointer field.
func optStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// argStr maps a pointer field to a nullable TEXT argument.
func argStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
