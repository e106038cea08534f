// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/veato-app/veato-server/handlers"
	"github.com/veato-app/veato-server/middleware"
	"github.com/veato-app/veato-server/poll"
)

func NewRouter(svc *poll.Service) *http.ServeMux {
	mux := http.NewServeMux()

	pollHandler := handlers.NewPollHandler(svc)

	// Health check
	mux.HandleFunc("GET /health", pollHandler.Health)

	// Poll lifecycle
	mux.HandleFunc("POST /polls/start", middleware.WithLogging(pollHandler.StartPoll))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/phase1-vote", middleware.WithLogging(pollHandler.Phase1Vote))
	mux.HandleFunc("POST /polls/{id}/phase2-vote", middleware.WithLogging(pollHandler.Phase2Vote))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("veato API v1"))
	})

	return mux
}
