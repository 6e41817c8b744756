package models

import (
	"time"

	"github.com/kasiabeben10/poll-app/ledger"
	"github.com/kasiabeben10/poll-app/poll"
)

// Poll status constants
const (
	StatusOpen   = poll.StatusOpen
	StatusClosed = poll.StatusClosed
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// Seconds the poll stays open; 0 never closes
	Duration int64 `json:"duration"`
}

type CastVoteRequest struct {
	OptionIndex *int `json:"option_index"`
}

// Response types

type RegisterResponse struct {
	Address   ledger.Address `json:"address"`
	Owner     ledger.Key     `json:"owner"`
	PollCount uint32         `json:"poll_count"`
	Created   bool           `json:"created"`
}

type RegistryResponse struct {
	Address   ledger.Address `json:"address"`
	Owner     ledger.Key     `json:"owner"`
	PollCount uint32         `json:"poll_count"`
}

type CreatePollResponse struct {
	Address ledger.Address `json:"address"`
	Index   uint32         `json:"index"`
	Poll    Poll           `json:"poll"`
}

type CastVoteResponse struct {
	Poll    ledger.Address `json:"poll"`
	Option  string         `json:"option"`
	Votes   uint32         `json:"votes"`
	Message string         `json:"message"`
}

type PollListResponse struct {
	Owner ledger.Key      `json:"owner"`
	Polls []PollListEntry `json:"polls"`
}

type PollListEntry struct {
	Index   uint32         `json:"index"`
	Address ledger.Address `json:"address"`
}

type EventsResponse struct {
	Poll   ledger.Address   `json:"poll"`
	Events []poll.VoteEvent `json:"events"`
}

// Domain types

// Poll is the public view of a poll record. Voter commitments are not
// exposed, only their count.
type Poll struct {
	Address    ledger.Address `json:"address"`
	Creator    ledger.Key     `json:"creator"`
	Index      uint32         `json:"index"`
	Question   string         `json:"question"`
	Options    []string       `json:"options"`
	Votes      []uint32       `json:"votes"`
	VoterCount uint32         `json:"voter_count"`
	MaxVoters  int            `json:"max_voters"`
	Duration   int64          `json:"duration"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	ClosesAt   *time.Time     `json:"closes_at,omitempty"`
}

// NewPoll builds the public view of p as of now.
func NewPoll(addr ledger.Address, p *poll.Poll, now time.Time) Poll {
	return Poll{
		Address:    addr,
		Creator:    p.Creator,
		Index:      p.Index,
		Question:   p.Question,
		Options:    p.Options,
		Votes:      p.Votes,
		VoterCount: p.VoterCount,
		MaxVoters:  int(p.Capacity),
		Duration:   p.Duration,
		Status:     p.Status(now),
		CreatedAt:  p.CreatedTime(),
		ClosesAt:   p.ClosesAt(),
	}
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Code is the stable name of a poll program error
	Code string `json:"code,omitempty"`
}
