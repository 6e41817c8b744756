// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kasiabeben10/poll-app/auth"
	"github.com/kasiabeben10/poll-app/ledger"
	"github.com/kasiabeben10/poll-app/middleware"
	"github.com/kasiabeben10/poll-app/poll"
)

// StatusFor maps a poll program error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case poll.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, poll.ErrUserNotInitialized):
		return http.StatusPreconditionFailed
	case errors.Is(err, poll.ErrPollClosed),
		errors.Is(err, poll.ErrAlreadyVoted),
		errors.Is(err, poll.ErrVoterCapacityExceeded),
		errors.Is(err, poll.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, poll.ErrPollNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeEngineError reports err to the client. Errors outside the program's
// taxonomy are logged and hidden behind a generic message.
func writeEngineError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusFor(err)
	code := poll.Code(err)

	if status == http.StatusInternalServerError {
		slog.Error("failed to "+op,
			"request_id", middleware.RequestIDFrom(r.Context()),
			"error", err,
		)
		message := "Internal error"
		if code != "" {
			message = err.Error()
		}
		middleware.CodedErrorResponse(w, status, message, code)
		return
	}

	middleware.CodedErrorResponse(w, status, err.Error(), code)
}

func pathAddress(w http.ResponseWriter, r *http.Request) (ledger.Address, bool) {
	addr, err := ledger.ParseAddress(r.PathValue("address"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "address must be 64 hex characters")
		return ledger.Address{}, false
	}
	return addr, true
}

func pathOwner(w http.ResponseWriter, r *http.Request) (ledger.Key, bool) {
	owner, err := ledger.ParseKey(r.PathValue("owner"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "owner must be 64 hex characters")
		return ledger.Key{}, false
	}
	return owner, true
}

func pathIndex(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	index, err := strconv.ParseUint(r.PathValue("index"), 10, 32)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "index must be a non-negative integer")
		return 0, false
	}
	return uint32(index), true
}

// signer returns the identity RequireSignature verified.
func signer(w http.ResponseWriter, r *http.Request) (ledger.Key, bool) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "signed request required")
		return ledger.Key{}, false
	}
	return identity, true
}
