// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables.

# Tables

The schema is document-shaped rather than relational: polls and teams are
small JSON aggregates mutated as a unit, so each row is one JSON document.

  - poll_doc: Poll document plus an integer version for optimistic
    concurrency. Every conditional update bumps the version; a stale
    version means a concurrent writer won.
  - team_doc: Team document (membership, open poll pointer, last decision)
  - user_profile: Per-user dining constraints in the app's enum vocabulary

The DDL sticks to the subset shared by sqlite and postgres, since the
server runs against either backend.
*/
package db
