// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll is the two-phase veto-voting state machine.

# Lifecycle

A poll moves phase1 → phase2 → closed. Phase 1 shows each member up to five
candidates; members approve any subset, may spend a single immutable veto,
and lock in when satisfied. A veto removes the candidate for the whole team,
promotes the next-best unseen candidate, strips the vetoed name from other
members' approvals, and kicks affected members out of lock-in so they
re-confirm against the updated slate. When everyone is locked in (or the
phase timer lapses) the top three candidates by net score advance to
phase 2, where each member picks exactly one. A one-member team skips
phase 2: there is nothing to run off, so phase 1 closes the poll directly.

# Time

Phase durations are fixed (180s and 60s). There is no background timer:
expiry is detected lazily on the next read or write and the transition is
applied inside that operation's transaction. Callers therefore always
observe a poll consistent with the clock, at the cost of transitions landing
slightly late when nobody is looking.

# Concurrency

The pure state machine functions (AdvancePhase, ApplyPhase1Ballot,
ApplyPhase2Ballot, TransitionToPhase2, Close) mutate a Poll value and do no
I/O. Service wraps them in an optimistic transaction runner: read the
document and version, mutate, write back conditioned on the version, retry
on conflict up to a bounded attempt count. Concurrent votes, a lazy timer
transition, and a manual close all serialize through that single guarded
write, so no interleaving can produce an inconsistent document.
*/
package poll
