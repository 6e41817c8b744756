// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the driver from the dialect (modernc.org/sqlite or lib/pq):

	conn, err := db.Open(db.SQLite, "file:poll-app.db")

SQLite connections run in WAL mode with a busy timeout.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - record: ledger records keyed by hex address, with a fixed capacity
  - vote_event: one row per accepted vote, for indexers

# Placeholders

Queries are written with PostgreSQL placeholders and passed through
Dialect.Rebind before execution.
*/
package db
