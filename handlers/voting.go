// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/veato-app/veato-server/middleware"
	"github.com/veato-app/veato-server/models"
	"github.com/veato-app/veato-server/poll"
)

// Phase1Vote handles POST /polls/:id/phase1-vote
func (h *PollHandler) Phase1Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	pollID := r.PathValue("id")

	var req models.Phase1VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, out, err := h.svc.CastPhase1Ballot(r.Context(), pollID, poll.Phase1Ballot{
		UserID:   userID,
		Approved: req.ApprovedCandidates,
		Rejected: req.RejectedCandidate,
		LockIn:   req.LockIn,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	team, err := h.svc.Team(r.Context(), p.TeamID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if out.ReplacementCandidate != "" {
		slog.Info("veto replaced candidate",
			"poll", pollID, "user", userID,
			"rejected", req.RejectedCandidate, "replacement", out.ReplacementCandidate)
	}

	middleware.JSONResponse(w, http.StatusOK, models.Phase1VoteResponse{
		OK:                   true,
		YourCurrentVotes:     p.Phase1Votes[userID].Approved,
		VisibleCandidates:    p.VisibleCandidates,
		ReplacementCandidate: out.ReplacementCandidate,
		LockedInUserCount:    len(p.LockedInUsers),
		TotalMemberCount:     len(team.Members),
		Phase:                p.Phase,
	})
}

// Phase2Vote handles POST /polls/:id/phase2-vote
func (h *PollHandler) Phase2Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	pollID := r.PathValue("id")

	var req models.Phase2VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SelectedCandidate == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "selectedCandidate is required")
		return
	}

	p, err := h.svc.CastPhase2Ballot(r.Context(), pollID, userID, req.SelectedCandidate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	team, err := h.svc.Team(r.Context(), p.TeamID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.Phase2VoteResponse{
		OK:                    true,
		YourSelectedCandidate: p.Phase2Votes[userID],
		LockedInUserCount:     len(p.LockedInUsers),
		TotalMemberCount:      len(team.Members),
		Phase:                 p.Phase,
	})
}
