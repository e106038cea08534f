// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ranking orders hard-filtered meal candidates by the group's soft
// preferences and the poll's occasion text.
//
// Ranking is a two-stage pipeline. Refine runs first: deterministic keyword
// rules over the occasion text that sort by a requested nutrient ("high
// protein"), filter by meal characteristics ("something hearty", "soup"),
// and filter by mentioned ingredients ("tofu dishes"). Every refine pass
// falls back to its input rather than producing an empty list.
//
// Ranker then hands the refined candidates to a Service, normally an LLM
// backend, for soft-preference ordering. The service is strictly advisory:
// if it is absent, times out, errors, or returns garbage IDs, Rank degrades
// to the refined order with sequential ranks. Candidate selection therefore
// always succeeds once hard filtering has produced at least one food.
package ranking
