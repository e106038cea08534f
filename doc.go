// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Veato API server.

Veato is a group meal-decision service: it merges a team's dietary
constraints, filters and ranks a food catalog, and runs a two-phase
poll with one-time vetoes (phase 1) and a final pick among three
finalists (phase 2).

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL="file:veato.db" go run main.go

Or with flags:

	go run main.go -p 5001 -d "file:veato.db"

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file DSN or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 5001)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - CATALOG_PATH (-catalog): Food catalog JSON (default: food_dataset.json)
  - OPENAI_API_KEY (-openai-key): Enables model-backed candidate ranking
  - OPENAI_MODEL (-openai-model): Ranking model (default: gpt-5.1)
  - LLM_TIMEOUT_SECONDS (-llm-timeout): Ranking request timeout (default: 12)

Without an OpenAI key the server still works; candidate ranking falls
back to the deterministic refinement order.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (poll lifecycle and voting)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, identity, JSON helpers
  - models: Domain documents and request/response types
  - poll: Two-phase state machine and transactional service
  - constraints: Constraint aggregation and hard filtering
  - ranking: Refinement passes and candidate ranking
  - llm: OpenAI chat-completions ranking client
  - catalog: Food dataset loading
  - store: Versioned document stores (sqlite/postgres and in-memory)
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
