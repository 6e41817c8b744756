// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kasiabeben10/poll-app/db"
	"github.com/kasiabeben10/poll-app/ledger"
	"github.com/kasiabeben10/poll-app/poll"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Store appends vote events to the vote_event table and serves them back
// to indexers. It satisfies poll.EventSink.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewStore(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: conn, dialect: dialect}
}

// VoteCast records ev. Replaying an event with a known ID is a no-op.
func (s *Store) VoteCast(ctx context.Context, ev poll.VoteEvent) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO vote_event (id, poll, identity, option_index, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`), ev.ID, ev.Poll.String(), ev.Identity.String(), int(ev.OptionIndex), ev.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert vote event %s: %w", ev.ID, err)
	}
	return nil
}

// List returns up to limit events for a poll, oldest first, skipping
// the first offset. A limit outside 1..MaxLimit falls back to
// DefaultLimit; a negative offset reads from the start.
func (s *Store) List(ctx context.Context, pollAddr ledger.Address, offset, limit int) ([]poll.VoteEvent, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
		SELECT id, poll, identity, option_index, timestamp
		FROM vote_event
		WHERE poll = $1
		ORDER BY timestamp, id
		LIMIT $2 OFFSET $3
	`), pollAddr.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote events: %w", err)
	}
	defer rows.Close()

	events := []poll.VoteEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vote events: %w", err)
	}
	return events, nil
}

// CountByOption tallies the stored events of a poll per option index.
// It matches the poll's own tallies unless event delivery failed.
func (s *Store) CountByOption(ctx context.Context, pollAddr ledger.Address) (map[uint8]int, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
		SELECT option_index, COUNT(*)
		FROM vote_event
		WHERE poll = $1
		GROUP BY option_index
	`), pollAddr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to count vote events: %w", err)
	}
	defer rows.Close()

	counts := make(map[uint8]int)
	for rows.Next() {
		var idx, n int
		if err := rows.Scan(&idx, &n); err != nil {
			return nil, fmt.Errorf("failed to scan vote event count: %w", err)
		}
		counts[uint8(idx)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vote event counts: %w", err)
	}
	return counts, nil
}

func scanEvent(rows *sql.Rows) (poll.VoteEvent, error) {
	var (
		ev       poll.VoteEvent
		pollHex  string
		identity string
		idx      int
	)
	if err := rows.Scan(&ev.ID, &pollHex, &identity, &idx, &ev.Timestamp); err != nil {
		return poll.VoteEvent{}, fmt.Errorf("failed to scan vote event: %w", err)
	}

	var err error
	if ev.Poll, err = ledger.ParseAddress(pollHex); err != nil {
		return poll.VoteEvent{}, fmt.Errorf("vote event %s: %w", ev.ID, err)
	}
	if ev.Identity, err = ledger.ParseKey(identity); err != nil {
		return poll.VoteEvent{}, fmt.Errorf("vote event %s: %w", ev.ID, err)
	}
	ev.OptionIndex = uint8(idx)
	return ev, nil
}
