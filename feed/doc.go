// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package feed stores vote events for indexers and UIs.
//
// The poll engine publishes a VoteEvent after every committed vote. Store
// writes them to the vote_event table and lists them per poll. Events are
// a side channel: the poll record stays the source of truth for tallies.
package feed
