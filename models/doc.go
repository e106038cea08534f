// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Internal data structures:

  - Food: one immutable catalog record (cuisine, dietary violations,
    allergens, ingredients, nutrition, heaviness, meal type, spice level)
  - GroupConstraints: merged hard constraints + soft preferences for a poll
  - RankedCandidate: a candidate with its fixed 0-indexed rank
  - Poll: the mutable poll document (candidates, votes, phase state)
  - Team: membership and the currently-open-poll pointer

# Request Types

Types for parsing incoming JSON:

  - StartPollRequest: teamId, pollTitle, occasionNote
  - Phase1VoteRequest: approvedCandidates, rejectedCandidate, lockIn
  - Phase2VoteRequest: selectedCandidate

# Response Types

Types for JSON responses:

  - StartPollResponse: pollId, candidates (first five)
  - Phase1VoteResponse / Phase2VoteResponse: vote echo + lock-in counts
  - PollStateResponse: phase-shaped poll state for polling clients
  - ClosePollResponse: final ranking with 1-indexed display ranks
  - ErrorResponse: error, message

# Constants

Status values:

	StatusActive = "active"
	StatusClosed = "closed"

Phases:

	PhaseOne    = "phase1"
	PhaseTwo    = "phase2"
	PhaseClosed = "closed"

Spice tolerances (profile vocabulary):

	SpiceMild   = "MILD"
	SpiceMedium = "MEDIUM"
	SpiceSpicy  = "SPICY"
*/
package models
