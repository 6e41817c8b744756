// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kasiabeben10/poll-app/metrics"
	"github.com/kasiabeben10/poll-app/middleware"
	"github.com/kasiabeben10/poll-app/models"
	"github.com/kasiabeben10/poll-app/poll"
)

type VotingHandler struct {
	engine  *poll.Engine
	metrics *metrics.Metrics
}

func NewVotingHandler(engine *poll.Engine, m *metrics.Metrics) *VotingHandler {
	return &VotingHandler{engine: engine, metrics: m}
}

// CastVote handles POST /polls/{address}/votes
// One vote per signer per poll
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := signer(w, r)
	if !ok {
		return
	}
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionIndex == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_index is required")
		return
	}
	if *req.OptionIndex < 0 || *req.OptionIndex > 255 {
		h.metrics.Rejected("vote", poll.ErrInvalidOption)
		writeEngineError(w, r, "cast vote", poll.ErrInvalidOption)
		return
	}
	index := uint8(*req.OptionIndex)

	p, err := h.engine.CastVote(r.Context(), addr, voter, index)
	if err != nil {
		h.metrics.Rejected("vote", err)
		writeEngineError(w, r, "cast vote", err)
		return
	}

	slog.Info("vote cast", "poll", addr.String(), "voter", voter.String(), "option_index", index)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Poll:    addr,
		Option:  p.Options[index],
		Votes:   p.Votes[index],
		Message: "Vote recorded",
	})
}
