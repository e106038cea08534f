// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Veato API.

# Handler Type

All routes hang off a single PollHandler, a struct holding the poll
service. It is created via a constructor that accepts *poll.Service:

	pollHandler := handlers.NewPollHandler(svc)

# Poll Lifecycle

Polls progress through three phases: phase1 → phase2 → closed

	POST /polls/start            → StartPoll (builds the candidate list)
	GET  /polls/{id}             → GetPoll (phase-shaped state view)
	POST /polls/{id}/phase1-vote → Phase1Vote (approvals, veto, lock-in)
	POST /polls/{id}/phase2-vote → Phase2Vote (final pick)
	POST /polls/{id}/close       → ClosePoll (immediate close)
	GET  /health                 → Health

All poll operations require the X-User-Id header and team membership.

# Timers

There is no background scheduler. Every read or write first applies
any overdue phase transition inside the same transaction, so stale
polls advance the moment anyone looks at them. Responses carry
remainingSeconds computed against the service clock.

# Error Mapping

Service sentinel errors map onto HTTP status codes in one place
(writeError): validation failures become 400, missing polls or teams
404, non-members 403, phase and veto conflicts 409, and exhausted
optimistic retries 503.
*/
package handlers
