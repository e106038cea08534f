// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists poll, team, and profile documents.

Polls are the only contended documents, so only PollStore carries optimistic
concurrency: Get returns a version alongside the document, and Update writes
back conditioned on that version. A lost race surfaces as ErrVersionConflict,
which the poll service handles by re-reading and re-applying its mutation.

Two implementations ship: SQL (JSON text rows over database/sql, runs on
sqlite and postgres with the same $N placeholder queries) and Memory (for
tests, with injectable version conflicts).
*/
package store
