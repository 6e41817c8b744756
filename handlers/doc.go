// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the poll API.

# Handler Types

Each handler is a struct over the poll engine:

  - RegistryHandler: identity registration and poll lookup by owner
  - PollHandler: poll creation and poll views
  - VotingHandler: vote submission
  - ResultsHandler: results, winners and the vote event feed

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(engine, m)

The metrics argument may be nil.

# Registration

	POST /registry                      → Register (201 new, 200 existing)
	GET  /registry/{owner}              → GetRegistry
	GET  /registry/{owner}/polls        → ListPolls
	GET  /registry/{owner}/polls/{index} → GetPollByIndex

An identity must register before it can create polls. Each owner's polls
are numbered from zero in creation order.

# Polls and Votes

	POST /polls                   → CreatePoll
	GET  /polls/{address}         → GetPoll
	POST /polls/{address}/votes   → CastVote
	GET  /polls/{address}/results → GetResults
	GET  /polls/{address}/winner  → GetWinner
	GET  /polls/{address}/events  → GetEvents

POST routes must be wrapped in middleware.RequireSignature; the handler
acts on behalf of the signer.

# Errors

Poll program errors carry their stable name in the code field:

	400 EmptyQuestion, QuestionTooLong, NotEnoughOptions, TooMuchOptions,
	    EmptyOption, OptionTooLong, InvalidDuration, InvalidOption
	404 PollNotFound
	409 PollClosed, AlreadyVoted, VoterCapacityExceeded
	412 UserNotInitialized
*/
package handlers
