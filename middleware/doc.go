// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (request_id, method, path, remote) and completion
(status, duration_ms). The request ID comes from X-Request-ID when the
caller sent one, otherwise a fresh UUID, and is echoed in the response.

# Signatures

Mutating routes require a signed request:

	mux.HandleFunc("POST /polls", middleware.WithLogging(
		middleware.RequireSignature(cfg.MaxClockSkew, engine.Now, h.CreatePoll)))

Unsigned, tampered or stale requests get 401. The signer's key is in the
request context; read it with auth.IdentityFrom. Signed bodies are
limited to MaxBodyBytes.

# Metrics

WithMetrics counts requests by method and status and observes latency:

	handler := middleware.WithMetrics(m, mux)

# CORS Middleware

Enable cross-origin requests for browser clients:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST, OPTIONS with the signature headers.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.CodedErrorResponse(w, http.StatusConflict, err.Error(), "AlreadyVoted")

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Used in request logs.
*/
package middleware
