// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kasiabeben10/poll-app/feed"
	"github.com/kasiabeben10/poll-app/middleware"
	"github.com/kasiabeben10/poll-app/models"
	"github.com/kasiabeben10/poll-app/poll"
)

type ResultsHandler struct {
	engine *poll.Engine
	feed   *feed.Store
}

// NewResultsHandler serves tallies from the engine and vote events from
// events, which may be nil when no feed is configured.
func NewResultsHandler(engine *poll.Engine, events *feed.Store) *ResultsHandler {
	return &ResultsHandler{engine: engine, feed: events}
}

// GetResults handles GET /polls/{address}/results
// Results are public for open and closed polls
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}

	res, err := h.engine.Results(r.Context(), addr)
	if err != nil {
		writeEngineError(w, r, "compute results", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// GetWinner handles GET /polls/{address}/winner
func (h *ResultsHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}

	win, err := h.engine.Winner(r.Context(), addr)
	if err != nil {
		writeEngineError(w, r, "compute winner", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, win)
}

// GetEvents handles GET /polls/{address}/events?offset=N&limit=M
func (h *ResultsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event feed disabled")
		return
	}
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = n
	}

	// Unknown polls are reported as such rather than as an empty feed
	if _, err := h.engine.GetPoll(r.Context(), addr); err != nil {
		writeEngineError(w, r, "load poll", err)
		return
	}

	events, err := h.feed.List(r.Context(), addr, offset, limit)
	if err != nil {
		slog.Error("failed to list vote events", "error", err, "poll", addr.String())
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.EventsResponse{Poll: addr, Events: events})
}
