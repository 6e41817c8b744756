// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and view types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: question, options, duration (seconds, 0 = never closes)
  - CastVoteRequest: option_index

# Response Types

Types for JSON responses:

  - RegisterResponse: address, owner, poll_count, created
  - RegistryResponse: address, owner, poll_count
  - CreatePollResponse: address, index, poll
  - CastVoteResponse: poll, option, votes, message
  - PollListResponse: owner, polls (index + address)
  - EventsResponse: poll, events
  - ErrorResponse: error, message, code

Results and winners are served as poll.Results and poll.Winner directly.

# Views

Poll is the public projection of a poll record, including its derived
status and closing time. Voter commitments are never exposed.

Addresses and keys encode as 64-character lowercase hex.

# Constants

Status values:

	StatusOpen   = "open"
	StatusClosed = "closed"
*/
package models
