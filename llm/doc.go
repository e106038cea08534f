// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package llm is the OpenAI-backed implementation of the ranking service.
//
// It speaks the chat completions REST API directly over net/http with a
// hard request timeout, asks the model for a strict JSON answer, and parses
// it defensively (markdown code fences are tolerated and stripped). Any
// failure — missing key, transport error, non-200, malformed JSON — is
// returned as an error so the ranker falls back to its deterministic
// ordering; this package never blocks poll creation.
package llm
