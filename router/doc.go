// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Veato API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc)

# Endpoints

Health:

	GET /health

Poll lifecycle (requires X-User-Id):

	POST /polls/start      - Start a poll for a team
	GET  /polls/{id}       - Phase-shaped poll state
	POST /polls/{id}/close - Close immediately

Voting (requires X-User-Id):

	POST /polls/{id}/phase1-vote - Approvals, veto, lock-in
	POST /polls/{id}/phase2-vote - Final selection

# Handler Initialization

The router creates the handler with dependency injection:

	pollHandler := handlers.NewPollHandler(svc)

The handler receives the poll service, which owns storage, the food
catalog, and the candidate ranker.
*/
package router
