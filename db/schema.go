// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS. The DDL is the
// portable subset accepted by both sqlite and postgres.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Poll documents, one JSON doc per poll, versioned for optimistic updates
CREATE TABLE IF NOT EXISTS poll_doc (
    id TEXT PRIMARY KEY,
    doc TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 1
);

-- Team documents
CREATE TABLE IF NOT EXISTS team_doc (
    id TEXT PRIMARY KEY,
    doc TEXT NOT NULL
);

-- Per-user dining constraint profiles
CREATE TABLE IF NOT EXISTS user_profile (
    user_id TEXT PRIMARY KEY,
    doc TEXT NOT NULL
);
`
