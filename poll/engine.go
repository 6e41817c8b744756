// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kasiabeben10/poll-app/ledger"
)

// Config wires an Engine to its environment.
type Config struct {
	// ProgramID namespaces every derived address
	ProgramID string
	// MaxVoters is the voter capacity new polls are sized for
	MaxVoters int
	Clock     Clock
	Events    EventSink
}

// Engine runs the poll program against a record store. Every mutating
// operation is one Atomically call: it either fully applies or leaves the
// store untouched.
type Engine struct {
	store     ledger.Store
	deriver   ledger.Deriver
	clock     Clock
	events    EventSink
	maxVoters int
}

func NewEngine(store ledger.Store, cfg Config) *Engine {
	if cfg.MaxVoters <= 0 {
		cfg.MaxVoters = DefaultMaxVoters
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return &Engine{
		store:     store,
		deriver:   ledger.NewDeriver(cfg.ProgramID),
		clock:     cfg.Clock,
		events:    cfg.Events,
		maxVoters: cfg.MaxVoters,
	}
}

// Now reads the engine's clock.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// MaxVoters is the capacity new polls are created with. Existing polls
// keep the capacity stored in their record.
func (e *Engine) MaxVoters() int {
	return e.maxVoters
}

// ValidatePoll checks poll parameters in the order CreatePoll reports them.
func ValidatePoll(question string, options []string, duration int64) error {
	if len(question) == 0 {
		return ErrEmptyQuestion
	}
	if len(question) > MaxQuestionLen {
		return ErrQuestionTooLong
	}
	if len(options) < MinOptions {
		return ErrNotEnoughOptions
	}
	if len(options) > MaxOptions {
		return ErrTooMuchOptions
	}
	for _, o := range options {
		if len(o) == 0 {
			return ErrEmptyOption
		}
		if len(o) > MaxOptionLen {
			return ErrOptionTooLong
		}
	}
	if duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// CreatePoll allocates the owner's next poll and advances their poll
// count. The poll lives at the address derived from the owner's registry
// address and the count before the increment.
func (e *Engine) CreatePoll(ctx context.Context, owner ledger.Key, question string, options []string, duration int64) (ledger.Address, *Poll, error) {
	regAddr, _ := e.RegistryAddress(owner)

	var addr ledger.Address
	var created *Poll
	err := e.store.Atomically(ctx, func(tx ledger.Tx) error {
		reg, err := loadRegistry(ctx, tx, regAddr)
		if err != nil {
			return err
		}
		if reg.Owner != owner {
			return ErrUserNotInitialized
		}
		if err := ValidatePoll(question, options, duration); err != nil {
			return err
		}

		now := e.clock.Now().Unix()
		pollAddr, bump := e.PollAddressAt(regAddr, reg.PollCount)
		p := &Poll{
			Question:  question,
			Options:   append([]string(nil), options...),
			Votes:     make([]uint32, len(options)),
			Voters:    []Commitment{},
			CreatedAt: now,
			Duration:  duration,
			Seed:      SeedFromTime(now),
			Bump:      bump,
			Creator:   owner,
			Index:     reg.PollCount,
			Capacity:  uint32(e.maxVoters),
		}

		data, err := p.MarshalBinary()
		if err != nil {
			return err
		}
		if err := tx.Create(ctx, pollAddr, SpaceFor(question, options, int(p.Capacity)), data); err != nil {
			return fmt.Errorf("failed to allocate poll %s: %w", pollAddr, err)
		}

		reg.PollCount++
		if err := putRegistry(ctx, tx, regAddr, reg); err != nil {
			return err
		}

		addr, created = pollAddr, p
		return nil
	})
	if err != nil {
		return ledger.Address{}, nil, err
	}
	return addr, created, nil
}

// CastVote records one vote by voter for option optionIndex.
// Checks run in order: closed, option range, replay, capacity.
func (e *Engine) CastVote(ctx context.Context, addr ledger.Address, voter ledger.Key, optionIndex uint8) (*Poll, error) {
	var updated *Poll
	var votedAt int64
	err := e.store.Atomically(ctx, func(tx ledger.Tx) error {
		p, err := loadPoll(ctx, tx, addr)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		if p.IsClosed(now) {
			return ErrPollClosed
		}
		if int(optionIndex) >= len(p.Options) {
			return ErrInvalidOption
		}
		commitment := NewCommitment(voter, p.Seed)
		if p.HasVoted(commitment) {
			return ErrAlreadyVoted
		}
		if p.IsFull() {
			return ErrVoterCapacityExceeded
		}

		p.Votes[optionIndex]++
		p.Voters = append(p.Voters, commitment)
		p.VoterCount++

		data, err := p.MarshalBinary()
		if err != nil {
			return err
		}
		if err := tx.Put(ctx, addr, data); err != nil {
			// The store holds the record to the size it was allocated with
			if errors.Is(err, ledger.ErrRecordFull) {
				return ErrVoterCapacityExceeded
			}
			return fmt.Errorf("failed to record vote: %w", err)
		}

		updated, votedAt = p, now.Unix()
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, VoteEvent{
		ID:          newEventID(),
		Identity:    voter,
		Poll:        addr,
		OptionIndex: optionIndex,
		Timestamp:   votedAt,
	})
	return updated, nil
}

func (e *Engine) emit(ctx context.Context, ev VoteEvent) {
	if e.events == nil {
		return
	}
	// The vote is committed; a caller hanging up must not drop the event
	if err := e.events.VoteCast(context.WithoutCancel(ctx), ev); err != nil {
		slog.Warn("failed to deliver vote event", "error", err, "event_id", ev.ID, "poll", ev.Poll.String())
	}
}

// GetPoll loads the poll at addr.
func (e *Engine) GetPoll(ctx context.Context, addr ledger.Address) (*Poll, error) {
	return loadPoll(ctx, e.store, addr)
}

// Results loads the poll at addr and tallies it.
func (e *Engine) Results(ctx context.Context, addr ledger.Address) (Results, error) {
	p, err := e.GetPoll(ctx, addr)
	if err != nil {
		return Results{}, err
	}
	return ComputeResults(p), nil
}

// Winner loads the poll at addr and picks its winning options.
func (e *Engine) Winner(ctx context.Context, addr ledger.Address) (Winner, error) {
	p, err := e.GetPoll(ctx, addr)
	if err != nil {
		return Winner{}, err
	}
	return ComputeWinner(p), nil
}

type getter interface {
	Get(ctx context.Context, addr ledger.Address) ([]byte, error)
}

func loadPoll(ctx context.Context, g getter, addr ledger.Address) (*Poll, error) {
	data, err := g.Get(ctx, addr)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, err
	}

	var p Poll
	if err := p.UnmarshalBinary(data); err != nil {
		if errors.Is(err, ErrWrongRecordKind) {
			return nil, fmt.Errorf("%w: %s holds another record kind", ErrPollNotFound, addr)
		}
		return nil, fmt.Errorf("failed to decode poll %s: %w", addr, err)
	}
	return &p, nil
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
