// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kasiabeben10/poll-app/metrics"
	"github.com/kasiabeben10/poll-app/middleware"
	"github.com/kasiabeben10/poll-app/models"
	"github.com/kasiabeben10/poll-app/poll"
)

type RegistryHandler struct {
	engine  *poll.Engine
	metrics *metrics.Metrics
}

func NewRegistryHandler(engine *poll.Engine, m *metrics.Metrics) *RegistryHandler {
	return &RegistryHandler{engine: engine, metrics: m}
}

// Register handles POST /registry
// Creates the signer's registry, or reports the existing one
func (h *RegistryHandler) Register(w http.ResponseWriter, r *http.Request) {
	owner, ok := signer(w, r)
	if !ok {
		return
	}

	reg, addr, err := h.engine.Register(r.Context(), owner)
	if errors.Is(err, poll.ErrAlreadyRegistered) {
		slog.Info("registry exists", "owner", owner.String(), "address", addr.String())
		middleware.JSONResponse(w, http.StatusOK, models.RegisterResponse{
			Address:   addr,
			Owner:     reg.Owner,
			PollCount: reg.PollCount,
			Created:   false,
		})
		return
	}
	if err != nil {
		h.metrics.Rejected("register", err)
		writeEngineError(w, r, "register", err)
		return
	}

	h.metrics.Registered()
	slog.Info("registry created", "owner", owner.String(), "address", addr.String())
	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		Address:   addr,
		Owner:     reg.Owner,
		PollCount: reg.PollCount,
		Created:   true,
	})
}

// GetRegistry handles GET /registry/{owner}
func (h *RegistryHandler) GetRegistry(w http.ResponseWriter, r *http.Request) {
	owner, ok := pathOwner(w, r)
	if !ok {
		return
	}

	reg, err := h.engine.GetRegistry(r.Context(), owner)
	if err != nil {
		writeEngineError(w, r, "load registry", err)
		return
	}

	addr, _ := h.engine.RegistryAddress(owner)
	middleware.JSONResponse(w, http.StatusOK, models.RegistryResponse{
		Address:   addr,
		Owner:     reg.Owner,
		PollCount: reg.PollCount,
	})
}

// ListPolls handles GET /registry/{owner}/polls
func (h *RegistryHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	owner, ok := pathOwner(w, r)
	if !ok {
		return
	}

	addrs, err := h.engine.ListPolls(r.Context(), owner)
	if err != nil {
		writeEngineError(w, r, "list polls", err)
		return
	}

	entries := make([]models.PollListEntry, 0, len(addrs))
	for i, addr := range addrs {
		entries = append(entries, models.PollListEntry{Index: uint32(i), Address: addr})
	}
	middleware.JSONResponse(w, http.StatusOK, models.PollListResponse{
		Owner: owner,
		Polls: entries,
	})
}

// GetPollByIndex handles GET /registry/{owner}/polls/{index}
func (h *RegistryHandler) GetPollByIndex(w http.ResponseWriter, r *http.Request) {
	owner, ok := pathOwner(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	addr, err := h.engine.PollAddress(r.Context(), owner, index)
	if err != nil {
		writeEngineError(w, r, "locate poll", err)
		return
	}

	p, err := h.engine.GetPoll(r.Context(), addr)
	if err != nil {
		writeEngineError(w, r, "load poll", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.NewPoll(addr, p, h.engine.Now()))
}
