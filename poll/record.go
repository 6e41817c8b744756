// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"time"

	"github.com/kasiabeben10/poll-app/ledger"
)

const (
	MaxQuestionLen   = 256
	MaxOptionLen     = 256
	MinOptions       = 2
	MaxOptions       = 5
	DefaultMaxVoters = 10
	SeedSize         = 8
)

// Poll status values. Status is derived from the clock, never stored.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Registry tracks how many polls an identity has created.
type Registry struct {
	Owner     ledger.Key
	PollCount uint32
	Bump      uint8
}

// Poll is the persisted poll record.
type Poll struct {
	Question   string
	Options    []string
	Votes      []uint32
	Voters     []Commitment
	CreatedAt  int64
	Duration   int64
	VoterCount uint32
	Seed       [SeedSize]byte
	Bump       uint8

	// Creator and Index locate the poll's registry entry
	Creator ledger.Key
	Index   uint32

	// Capacity is the voter limit the record was sized for
	Capacity uint32
}

// IsClosed reports whether the voting window has passed at now.
// A zero duration never closes.
func (p *Poll) IsClosed(now time.Time) bool {
	return p.Duration > 0 && now.Unix()-p.CreatedAt > p.Duration
}

// IsFull reports whether the voter set has reached its capacity.
func (p *Poll) IsFull() bool {
	return p.VoterCount >= p.Capacity
}

func (p *Poll) Status(now time.Time) string {
	if p.IsClosed(now) {
		return StatusClosed
	}
	return StatusOpen
}

// Latest closing time ClosesAt reports, the end of year 9999
const maxClosesAt = 253402300799

// ClosesAt is the last instant votes are accepted, or nil for polls
// without a time limit and for polls closing after year 9999.
func (p *Poll) ClosesAt() *time.Time {
	if p.Duration <= 0 || p.Duration > maxClosesAt-p.CreatedAt {
		return nil
	}
	t := time.Unix(p.CreatedAt+p.Duration, 0).UTC()
	return &t
}

func (p *Poll) CreatedTime() time.Time {
	return time.Unix(p.CreatedAt, 0).UTC()
}

// HasVoted scans the voter set for c.
func (p *Poll) HasVoted(c Commitment) bool {
	for _, v := range p.Voters {
		if v == c {
			return true
		}
	}
	return false
}

// SpaceFor is the fixed record size for a poll with this question and
// these options able to hold maxVoters commitments.
func SpaceFor(question string, options []string, maxVoters int) int {
	size := discriminatorSize
	size += 4 + len(question)
	size += 4
	for _, o := range options {
		size += 4 + len(o)
	}
	size += 4 + 4*len(options)           // votes
	size += 4 + CommitmentSize*maxVoters // voters
	size += 8 + 8 + 4 + SeedSize + 1     // created_at, duration, voter_count, seed, bump
	size += ledger.KeySize + 4 + 4       // creator, index, capacity
	return size
}

// RegistrySpace is the fixed size of a registry record.
const RegistrySpace = discriminatorSize + ledger.KeySize + 4 + 1
