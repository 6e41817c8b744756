// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the poll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Services{Engine: engine, Feed: events}, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics (when a Gatherer is configured)

Identity registry:

	POST /registry                       - Register the signer (signed)
	GET  /registry/{owner}               - Registry record
	GET  /registry/{owner}/polls         - Owner's poll addresses
	GET  /registry/{owner}/polls/{index} - Owner's poll by index

Polls:

	POST /polls                   - Create poll (signed)
	GET  /polls/{address}         - Poll view
	POST /polls/{address}/votes   - Vote (signed)
	GET  /polls/{address}/results - Tallies
	GET  /polls/{address}/winner  - Winning options
	GET  /polls/{address}/events  - Vote event feed (?offset=N&limit=M)

Signed routes verify X-Identity, X-Timestamp and X-Signature against the
engine's clock with cfg.MaxClockSkew.
*/
package router
