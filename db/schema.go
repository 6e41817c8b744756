// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	_, err := db.Exec(schema(dialect))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func schema(dialect Dialect) string {
	blob := "BLOB"
	if dialect == Postgres {
		blob = "BYTEA"
	}

	return `
-- Ledger records (registry and poll accounts)
CREATE TABLE IF NOT EXISTS record (
    address TEXT PRIMARY KEY,
    capacity INTEGER NOT NULL CHECK (capacity > 0),
    data ` + blob + ` NOT NULL,
    updated_at BIGINT NOT NULL
);

-- Vote events for indexers
CREATE TABLE IF NOT EXISTS vote_event (
    id TEXT PRIMARY KEY,
    poll TEXT NOT NULL,
    identity TEXT NOT NULL,
    option_index INTEGER NOT NULL CHECK (option_index >= 0 AND option_index <= 255),
    timestamp BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_event_poll ON vote_event(poll);
CREATE INDEX IF NOT EXISTS idx_vote_event_identity ON vote_event(identity);
`
}
