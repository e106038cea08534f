// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"slices"
	"time"

	"github.com/veato-app/veato-server/models"
	"github.com/veato-app/veato-server/poll"
)

// pollStateResponse shapes the GET /polls/:id payload around the poll's
// current phase. Fields for other phases stay zero and are omitted.
func pollStateResponse(p models.Poll, team models.Team, userID string, now time.Time) models.PollStateResponse {
	resp := models.PollStateResponse{
		PollID:                 p.ID,
		PollTitle:              p.Title,
		TeamID:                 p.TeamID,
		TeamName:               p.TeamName,
		Phase:                  p.Phase,
		Status:                 p.Status,
		HasCurrentUserLockedIn: slices.Contains(p.LockedInUsers, userID),
		LockedInUserCount:      len(p.LockedInUsers),
		TotalMemberCount:       len(team.Members),
	}

	switch p.Phase {
	case models.PhaseOne:
		resp.StartedTime = p.Phase1StartTime.UTC().Format(time.RFC3339)
		resp.RemainingSeconds = remainingSeconds(p.Phase1StartTime, poll.Phase1Duration, now)
		resp.Candidates = candidateViews(p.VisibleCandidates)
		vote := p.Phase1Votes[userID]
		resp.YourApprovedCandidates = vote.Approved
		resp.YourRejectedCandidate = vote.Rejected
		resp.YourInvalidatedCandidates = p.VoteInvalidations[userID]
	case models.PhaseTwo:
		resp.StartedTime = p.Phase2StartTime.UTC().Format(time.RFC3339)
		resp.RemainingSeconds = remainingSeconds(p.Phase2StartTime, poll.Phase2Duration, now)
		resp.Candidates = candidateViews(p.Phase2Candidates)
		resp.YourSelectedCandidate = p.Phase2Votes[userID]
	case models.PhaseClosed:
		resp.Results = closedResults(p)
		if len(p.ResultRanking) > 0 {
			resp.Winner = p.ResultRanking[0]
		}
	}
	return resp
}

func candidateViews(names []string) []models.CandidateView {
	views := make([]models.CandidateView, len(names))
	for i, name := range names {
		views[i] = models.CandidateView{Name: name}
	}
	return views
}

func closedResults(p models.Poll) []models.CandidateResult {
	results := make([]models.CandidateResult, len(p.ResultRanking))
	for i, name := range p.ResultRanking {
		results[i] = models.CandidateResult{Name: name, VoteCount: p.ResultVoteCounts[name]}
	}
	return results
}

// remainingSeconds never goes negative; a just-expired poll that has not been
// advanced yet reads as zero.
func remainingSeconds(start time.Time, duration time.Duration, now time.Time) int {
	left := start.Add(duration).Sub(now)
	if left < 0 {
		return 0
	}
	return int(left / time.Second)
}
