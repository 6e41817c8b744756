// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (default: file:poll-app.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - ProgramID: Namespace mixed into every record address (default: poll_app)
  - MaxVoters: Voter capacity new polls are sized for, 1-255 (default: 10)
  - MaxClockSkew: How far a signed request's timestamp may drift (default: 5m)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-program-id   Address namespace
	-max-voters   Voter capacity of new polls
	-max-skew     Allowed signature clock skew
	-env          Dotenv file (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	PROGRAM_ID     → -program-id
	MAX_VOTERS     → -max-voters
	MAX_CLOCK_SKEW → -max-skew

Variables missing from the environment are looked up in the dotenv file,
if it exists. The file never overrides the real environment and is not
copied into it.

CLI flags take precedence over everything else.

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	dialect, _ := db.ParseDialect(cfg.DatabaseType)
	conn, err := db.Open(dialect, cfg.DatabaseURL)
	// ...
*/
package cliparse
