// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll implements the poll program: identity registration, poll
creation, one vote per identity per poll, and result aggregation.

# Records

Two record kinds live in a ledger.Store:

  - Registry: one per identity, counts the polls that identity created
  - Poll: question, options, per-option tallies and spent voter commitments

A registry lives at Derive("registry", owner). An owner's poll number
n lives at Derive("poll", registryAddress, le_u32(n)), so anyone can
locate every poll of an owner from the registry's PollCount alone.

Records are encoded little-endian with u32 length prefixes behind an
8-byte kind discriminator. A poll record stores the voter capacity it was
created with and is sized to hold that many commitments. Changing
MaxVoters later affects only new polls.

# Operations

	e := poll.NewEngine(store, poll.Config{ProgramID: "poll_app"})

	e.Register(ctx, owner)
	addr, p, err := e.CreatePoll(ctx, owner, "Lunch?", []string{"Pizza", "Soup"}, 3600)
	p, err = e.CastVote(ctx, addr, voter, 1)
	res, err := e.Results(ctx, addr)
	win, err := e.Winner(ctx, addr)

Each mutating call runs inside one store transaction; the first failed
precondition aborts it and nothing is written. Errors are sentinels
matched with errors.Is; Code maps them to stable names.

# Voting

A vote stores Commitment(identity, seed) instead of the identity. The
seed derives from the public creation time, so commitments stop replays
but do not hide who voted.

A poll with Duration > 0 closes once the clock passes CreatedAt+Duration.
Closing is computed on every access and never stored. A Duration of 0
never closes.

After a vote commits the engine hands a VoteEvent to the configured
EventSink. Sink failures are logged and do not undo the vote.
*/
package poll
