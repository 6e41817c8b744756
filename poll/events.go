// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kasiabeben10/poll-app/ledger"
)

// VoteEvent is published after a vote commits.
type VoteEvent struct {
	ID          string         `json:"id"`
	Identity    ledger.Key     `json:"identity"`
	Poll        ledger.Address `json:"poll"`
	OptionIndex uint8          `json:"option_index"`
	Timestamp   int64          `json:"timestamp"`
}

// EventSink receives vote events. Delivery is fire-and-forget: the engine
// logs a failed delivery and the vote stands.
type EventSink interface {
	VoteCast(ctx context.Context, ev VoteEvent) error
}

// LogSink writes events to the default logger.
type LogSink struct{}

func (LogSink) VoteCast(ctx context.Context, ev VoteEvent) error {
	slog.InfoContext(ctx, "vote event",
		"event_id", ev.ID,
		"poll", ev.Poll.String(),
		"identity", ev.Identity.String(),
		"option_index", ev.OptionIndex,
		"timestamp", ev.Timestamp,
	)
	return nil
}

// MultiSink delivers to every sink and joins their errors.
type MultiSink []EventSink

func (m MultiSink) VoteCast(ctx context.Context, ev VoteEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.VoteCast(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
