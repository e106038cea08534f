// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/veato-app/veato-server/models"
)

// Phase durations are server-fixed. Clients may still send a legacy
// duration field; it is accepted and ignored.
const (
	Phase1Duration = 180 * time.Second
	Phase2Duration = 60 * time.Second

	// MaxVisible caps how many candidates a member sees at once in phase 1.
	MaxVisible = 5

	// Phase2Size is how many finalists advance to phase 2.
	Phase2Size = 3
)

var (
	ErrPollNotFound        = errors.New("poll not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrWrongPhase          = errors.New("operation not valid in current phase")
	ErrNotMember           = errors.New("user is not a member of the poll's team")
	ErrInvalidCandidate    = errors.New("candidate is not available for voting")
	ErrVetoAlreadyUsed     = errors.New("veto already used on a different candidate")
	ErrOpenPollExists      = errors.New("team already has an open poll")
	ErrTransactionConflict = errors.New("poll was modified concurrently, retries exhausted")
)

// Phase1Ballot is one member's phase 1 submission. Approved replaces the
// member's previous approval set wholesale. An empty Rejected retains any
// previously recorded veto.
type Phase1Ballot struct {
	UserID   string
	Approved []string
	Rejected string
	LockIn   bool
}

// Phase1Outcome reports what a phase 1 ballot changed, for the response body.
type Phase1Outcome struct {
	ReplacementCandidate string
	Transitioned         bool
}

// AdvancePhase applies any overdue timer transition to p and reports whether
// the document changed. Expiry is evaluated lazily at read time; there is no
// background scheduler. A one-member team skips phase 2 entirely.
func AdvancePhase(p *models.Poll, teamSize int, now time.Time) bool {
	switch p.Phase {
	case models.PhaseOne:
		if now.Before(p.Phase1StartTime.Add(Phase1Duration)) {
			return false
		}
		if teamSize <= 1 {
			Close(p, now)
		} else {
			TransitionToPhase2(p, now)
		}
		return true
	case models.PhaseTwo:
		if now.Before(p.Phase2StartTime.Add(Phase2Duration)) {
			return false
		}
		Close(p, now)
		return true
	}
	return false
}

// ApplyPhase1Ballot validates and records one phase 1 ballot against p,
// mutating it in place. The caller owns atomicity: p must be written back
// under a version guard so concurrent ballots serialize.
//
// A newly used veto removes the candidate for everyone, promotes the best
// unseen replacement, strips the candidate from every other member's
// approvals, records those removals as invalidations, and evicts affected
// members from lock-in so they must re-confirm. A veto is one-time and
// immutable: resubmitting the same name is a no-op, a different name is an
// error, an empty name retains the previous veto.
func ApplyPhase1Ballot(p *models.Poll, team models.Team, ballot Phase1Ballot, now time.Time) (Phase1Outcome, error) {
	var out Phase1Outcome

	if p.Phase != models.PhaseOne {
		return out, ErrWrongPhase
	}
	if !slices.Contains(team.Members, ballot.UserID) {
		return out, ErrNotMember
	}

	for _, name := range ballot.Approved {
		if !slices.Contains(p.VisibleCandidates, name) {
			return out, fmt.Errorf("%w: %q", ErrInvalidCandidate, name)
		}
	}

	prev := p.Phase1Votes[ballot.UserID]
	rejected := ballot.Rejected
	if rejected == "" {
		rejected = prev.Rejected
	} else if prev.Rejected != "" && rejected != prev.Rejected {
		return out, fmt.Errorf("%w: already vetoed %q", ErrVetoAlreadyUsed, prev.Rejected)
	} else if rejected != prev.Rejected && !slices.Contains(p.VisibleCandidates, rejected) {
		return out, fmt.Errorf("%w: %q", ErrInvalidCandidate, rejected)
	}

	if p.Phase1Votes == nil {
		p.Phase1Votes = make(map[string]models.Phase1Vote)
	}
	p.Phase1Votes[ballot.UserID] = models.Phase1Vote{
		Approved: slices.Clone(ballot.Approved),
		Rejected: rejected,
	}

	if rejected != "" && !slices.Contains(p.RemovedCandidates, rejected) {
		out.ReplacementCandidate = applyVeto(p, ballot.UserID, rejected)
	}

	if ballot.LockIn {
		if !slices.Contains(p.LockedInUsers, ballot.UserID) {
			p.LockedInUsers = append(p.LockedInUsers, ballot.UserID)
		}
		delete(p.VoteInvalidations, ballot.UserID)
	}

	if len(p.LockedInUsers) >= len(team.Members) {
		if len(team.Members) <= 1 {
			Close(p, now)
		} else {
			TransitionToPhase2(p, now)
		}
		out.Transitioned = true
	}

	return out, nil
}

// applyVeto removes name from the visible set, promotes the lowest-rank
// unseen candidate, and invalidates every other member's approval of name.
// Returns the replacement candidate's name, if any.
func applyVeto(p *models.Poll, vetoer, name string) string {
	if idx := slices.Index(p.VisibleCandidates, name); idx >= 0 {
		p.VisibleCandidates = slices.Delete(p.VisibleCandidates, idx, idx+1)
	}
	p.RemovedCandidates = append(p.RemovedCandidates, name)

	replacement := ""
	if len(p.VisibleCandidates) < MaxVisible {
		for _, c := range p.AllCandidates { // already rank-ordered
			if slices.Contains(p.VisibleCandidates, c.Name) || slices.Contains(p.RemovedCandidates, c.Name) {
				continue
			}
			replacement = c.Name
			p.VisibleCandidates = append(p.VisibleCandidates, c.Name)
			break
		}
	}

	for userID, vote := range p.Phase1Votes {
		if userID == vetoer {
			continue
		}
		idx := slices.Index(vote.Approved, name)
		if idx < 0 {
			continue
		}
		vote.Approved = slices.Delete(slices.Clone(vote.Approved), idx, idx+1)
		p.Phase1Votes[userID] = vote

		if p.VoteInvalidations == nil {
			p.VoteInvalidations = make(map[string][]string)
		}
		if !slices.Contains(p.VoteInvalidations[userID], name) {
			p.VoteInvalidations[userID] = append(p.VoteInvalidations[userID], name)
		}
		if lockIdx := slices.Index(p.LockedInUsers, userID); lockIdx >= 0 {
			p.LockedInUsers = slices.Delete(p.LockedInUsers, lockIdx, lockIdx+1)
		}
	}

	return replacement
}

// ApplyPhase2Ballot records one member's final pick. Voting locks the member
// in; when every member has voted the poll closes.
func ApplyPhase2Ballot(p *models.Poll, team models.Team, userID, selected string, now time.Time) error {
	if p.Phase != models.PhaseTwo {
		return ErrWrongPhase
	}
	if !slices.Contains(team.Members, userID) {
		return ErrNotMember
	}
	if !slices.Contains(p.Phase2Candidates, selected) {
		return fmt.Errorf("%w: %q", ErrInvalidCandidate, selected)
	}

	if p.Phase2Votes == nil {
		p.Phase2Votes = make(map[string]string)
	}
	p.Phase2Votes[userID] = selected
	if !slices.Contains(p.LockedInUsers, userID) {
		p.LockedInUsers = append(p.LockedInUsers, userID)
	}

	if len(p.LockedInUsers) >= len(team.Members) {
		Close(p, now)
	}
	return nil
}

// TransitionToPhase2 promotes the top finalists by phase 1 net score
// (approvals minus rejections), ties broken by ascending rank. Lock-ins
// reset so every member confirms again in phase 2.
func TransitionToPhase2(p *models.Poll, now time.Time) {
	net := netScores(p)

	ordered := orderByScore(p.AllCandidates, net)
	n := min(len(ordered), Phase2Size)
	p.Phase2Candidates = ordered[:n]

	p.LockedInUsers = []string{}
	p.Phase2StartTime = now
	p.Phase = models.PhaseTwo
}

// Close finalizes the poll. From phase 2 the result orders the finalists by
// vote count, ties by ascending rank, unvoted finalists last. From phase 1
// (single-member shortcut) the result is the net-score ordering of all
// candidates with approval counts retained for display.
func Close(p *models.Poll, now time.Time) {
	if p.Status == models.StatusClosed {
		return
	}

	counts := make(map[string]int)
	switch p.Phase {
	case models.PhaseTwo:
		for _, selected := range p.Phase2Votes {
			counts[selected]++
		}
		ranking := slices.Clone(p.Phase2Candidates)
		sort.SliceStable(ranking, func(i, j int) bool {
			if counts[ranking[i]] != counts[ranking[j]] {
				return counts[ranking[i]] > counts[ranking[j]]
			}
			return rankOf(p, ranking[i]) < rankOf(p, ranking[j])
		})
		p.ResultRanking = ranking
	default:
		for _, vote := range p.Phase1Votes {
			for _, name := range vote.Approved {
				counts[name]++
			}
		}
		p.ResultRanking = orderByScore(p.AllCandidates, netScores(p))
	}

	p.ResultVoteCounts = counts
	p.Status = models.StatusClosed
	p.Phase = models.PhaseClosed
}

// netScores computes approvals minus rejections per candidate name across
// all recorded phase 1 votes.
func netScores(p *models.Poll) map[string]int {
	net := make(map[string]int, len(p.AllCandidates))
	for _, vote := range p.Phase1Votes {
		for _, name := range vote.Approved {
			net[name]++
		}
		if vote.Rejected != "" {
			net[vote.Rejected]--
		}
	}
	return net
}

// orderByScore returns candidate names sorted by descending net score,
// ties by ascending rank. Deterministic for any vote arrival order.
func orderByScore(candidates []models.RankedCandidate, net map[string]int) []string {
	ordered := make([]models.RankedCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if net[ordered[i].Name] != net[ordered[j].Name] {
			return net[ordered[i].Name] > net[ordered[j].Name]
		}
		return ordered[i].Rank < ordered[j].Rank
	})

	names := make([]string, len(ordered))
	for i, c := range ordered {
		names[i] = c.Name
	}
	return names
}

func rankOf(p *models.Poll, name string) int {
	for _, c := range p.AllCandidates {
		if c.Name == name {
			return c.Rank
		}
	}
	return len(p.AllCandidates)
}
