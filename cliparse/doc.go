// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 5001)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - CatalogPath: Food catalog JSON path (default: food_dataset.json)
  - OpenAIKey: Ranking backend API key (optional)
  - OpenAIModel: Ranking model name (default: gpt-5.1)
  - LLMTimeoutSeconds: Ranking request timeout (default: 12)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-catalog      Catalog JSON path
	-openai-key   Ranking backend key
	-openai-model Ranking model
	-llm-timeout  Ranking timeout in seconds

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	CATALOG_PATH        → -catalog
	OPENAI_API_KEY      → -openai-key
	OPENAI_MODEL        → -openai-model
	LLM_TIMEOUT_SECONDS → -llm-timeout

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error only when DATABASE_URL is missing or a numeric
variable fails to parse. The OpenAI key is deliberately optional: without it
the server runs with deterministic fallback ranking only.
*/
package cliparse
