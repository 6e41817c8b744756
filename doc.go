// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the poll-app API server.

poll-app runs small public polls. Identities are ed25519 keys; every
identity registers once, creates polls under its registry, and votes at
most once on any poll until it closes. Tallies are public at all times.

# Starting the Server

With no configuration the server uses a local SQLite file:

	go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - PROGRAM_ID (-program-id): Address namespace (default: poll_app)
  - MAX_VOTERS (-max-voters): Voter capacity of new polls (default: 10)
  - MAX_CLOCK_SKEW (-max-skew): Allowed signature clock skew (default: 5m)

Settings may also come from a .env file.

# Architecture

  - poll: Registry and poll program (validation, voting, results)
  - ledger: Addressed record store (memory and SQL)
  - feed: Vote event persistence
  - handlers: HTTP request handlers (registry, polls, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Signatures, CORS, logging, metrics, JSON helpers
  - auth: Keypairs and request signing
  - metrics: Prometheus collectors
  - models: Request/response types
  - db: Dialects and schema creation
  - cliparse: Configuration parsing
  - client: Go client for the API
  - cmd/pollctl: Command-line client

See package documentation for each component.
*/
package main
