// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kasiabeben10/poll-app/cliparse"
	"github.com/kasiabeben10/poll-app/feed"
	"github.com/kasiabeben10/poll-app/handlers"
	"github.com/kasiabeben10/poll-app/metrics"
	"github.com/kasiabeben10/poll-app/middleware"
	"github.com/kasiabeben10/poll-app/poll"
)

// Services are the dependencies the routes serve from. Feed, Metrics and
// Gatherer are optional.
type Services struct {
	Engine   *poll.Engine
	Feed     *feed.Store
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	registryHandler := handlers.NewRegistryHandler(svc.Engine, svc.Metrics)
	pollHandler := handlers.NewPollHandler(svc.Engine, svc.Metrics)
	votingHandler := handlers.NewVotingHandler(svc.Engine, svc.Metrics)
	resultsHandler := handlers.NewResultsHandler(svc.Engine, svc.Feed)

	signed := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireSignature(cfg.MaxClockSkew, svc.Engine.Now, next))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if svc.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(svc.Gatherer, promhttp.HandlerOpts{}))
	}

	// Identity registry
	mux.HandleFunc("POST /registry", signed(registryHandler.Register))
	mux.HandleFunc("GET /registry/{owner}", middleware.WithLogging(registryHandler.GetRegistry))
	mux.HandleFunc("GET /registry/{owner}/polls", middleware.WithLogging(registryHandler.ListPolls))
	mux.HandleFunc("GET /registry/{owner}/polls/{index}", middleware.WithLogging(registryHandler.GetPollByIndex))

	// Polls and voting
	mux.HandleFunc("POST /polls", signed(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{address}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{address}/votes", signed(votingHandler.CastVote))

	// Results (public, open or closed)
	mux.HandleFunc("GET /polls/{address}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /polls/{address}/winner", middleware.WithLogging(resultsHandler.GetWinner))
	mux.HandleFunc("GET /polls/{address}/events", middleware.WithLogging(resultsHandler.GetEvents))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("poll-app API v1"))
	})

	return mux
}
