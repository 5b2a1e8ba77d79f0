// Package sqliterepo stores accounts and mood records in the local single-file
// database. It implements the same repository interfaces as the PostgreSQL backend.
package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
)

const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// Open opens (creating if needed) the database file at path and ensures the schema.
// A single connection is kept so that writes never contend with each other.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, errorvalues.StorageError("opening sqlite database", err)
	}
	db.SetMaxOpenConns(1)
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errorvalues.StorageError("pinging sqlite database", err)
	}
	if err = CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errorvalues.StorageError("failed to create schema", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
    username      TEXT NOT NULL PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS mood_records (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_username TEXT NOT NULL,
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER,
    diary_name     TEXT NOT NULL DEFAULT 'My Diary' CHECK (length(diary_name) <= 100),
    mood_emoji_id  TEXT NOT NULL CHECK (mood_emoji_id <> ''),
    feeling_label  TEXT NOT NULL CHECK (feeling_label <> '' AND length(feeling_label) <= 100),
    description    TEXT NOT NULL DEFAULT '' CHECK (length(description) <= 1000),
    rating         INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 3),
    has_image      INTEGER NOT NULL DEFAULT 0,
    image_path     TEXT NOT NULL DEFAULT '' CHECK (length(image_path) <= 500),
    CHECK (has_image = (image_path <> ''))
)`,
	`CREATE INDEX IF NOT EXISTS idx_mood_records_owner_created ON mood_records (owner_username, created_at DESC, id DESC)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_mood_records_image_path ON mood_records (image_path) WHERE has_image`,
}

type constraintKind int

const (
	notConstraint constraintKind = iota
	uniqueConstraint
	checkConstraint
)

// classify inspects driver errors. The primary result code is compared so that
// it works whether or not extended result codes are reported.
func classify(err error) (constraintKind, string) {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return notConstraint, ""
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return uniqueConstraint, msg
	case strings.Contains(msg, "CHECK constraint failed"):
		return checkConstraint, msg
	}
	return notConstraint, msg
}

func checkViolation(msg string) error {
	if i := strings.Index(msg, "CHECK constraint failed"); i >= 0 {
		msg = msg[i:]
	}
	return errors.Join(errorvalues.ErrValidation, errors.New(msg))
}
