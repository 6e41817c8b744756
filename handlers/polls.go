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

type PollHandler struct {
	engine  *poll.Engine
	metrics *metrics.Metrics
}

func NewPollHandler(engine *poll.Engine, m *metrics.Metrics) *PollHandler {
	return &PollHandler{engine: engine, metrics: m}
}

// CreatePoll handles POST /polls
// The signer must have registered first
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	owner, ok := signer(w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	addr, p, err := h.engine.CreatePoll(r.Context(), owner, req.Question, req.Options, req.Duration)
	if err != nil {
		h.metrics.Rejected("create_poll", err)
		writeEngineError(w, r, "create poll", err)
		return
	}

	h.metrics.PollCreated()
	slog.Info("poll created",
		"poll", addr.String(),
		"creator", owner.String(),
		"index", p.Index,
		"options", len(p.Options),
		"duration", p.Duration,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		Address: addr,
		Index:   p.Index,
		Poll:    models.NewPoll(addr, p, h.engine.Now()),
	})
}

// GetPoll handles GET /polls/{address}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}

	p, err := h.engine.GetPoll(r.Context(), addr)
	if err != nil {
		writeEngineError(w, r, "load poll", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.NewPoll(addr, p, h.engine.Now()))
}
