// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/veato-app/veato-server/middleware"
	"github.com/veato-app/veato-server/models"
	"github.com/veato-app/veato-server/poll"
)

type PollHandler struct {
	svc *poll.Service
}

func NewPollHandler(svc *poll.Service) *PollHandler {
	return &PollHandler{svc: svc}
}

// StartPoll handles POST /polls/start
func (h *PollHandler) StartPoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.StartPollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.TeamID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "teamId is required")
		return
	}
	if req.PollTitle == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "pollTitle is required")
		return
	}

	team, err := h.svc.Team(r.Context(), req.TeamID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !slices.Contains(team.Members, userID) {
		h.writeError(w, poll.ErrNotMember)
		return
	}

	p, err := h.svc.Start(r.Context(), req.TeamID, req.PollTitle, req.OccasionNote)
	if err != nil {
		h.writeError(w, err)
		return
	}

	slog.Info("poll started via API", "poll", p.ID, "team", req.TeamID, "user", userID)
	middleware.JSONResponse(w, http.StatusCreated, models.StartPollResponse{
		PollID:      p.ID,
		PollTitle:   p.Title,
		TeamName:    p.TeamName,
		StartedTime: p.Phase1StartTime.UTC().Format(time.RFC3339),
		Candidates:  p.VisibleCandidates,
	})
}

// GetPoll handles GET /polls/:id
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	pollID := r.PathValue("id")

	p, err := h.svc.Get(r.Context(), pollID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	team, err := h.svc.Team(r.Context(), p.TeamID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !slices.Contains(team.Members, userID) {
		h.writeError(w, poll.ErrNotMember)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, pollStateResponse(p, team, userID, h.svc.Clock()))
}

// ClosePoll handles POST /polls/:id/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	pollID := r.PathValue("id")

	p, err := h.svc.CloseNow(r.Context(), pollID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	results := make([]models.RankedResult, len(p.ResultRanking))
	for i, name := range p.ResultRanking {
		results[i] = models.RankedResult{Rank: i + 1, Name: name}
	}
	winner := ""
	if len(p.ResultRanking) > 0 {
		winner = p.ResultRanking[0]
	}

	slog.Info("poll closed via API", "poll", pollID, "user", userID, "winner", winner)
	middleware.JSONResponse(w, http.StatusOK, models.ClosePollResponse{
		PollID:        p.ID,
		Status:        p.Status,
		ResultRanking: results,
		Winner:        winner,
	})
}

// Health handles GET /health
func (h *PollHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps service errors onto HTTP status codes.
func (h *PollHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, poll.ErrPollNotFound), errors.Is(err, poll.ErrTeamNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, poll.ErrNotMember):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, poll.ErrWrongPhase),
		errors.Is(err, poll.ErrVetoAlreadyUsed),
		errors.Is(err, poll.ErrOpenPollExists),
		errors.Is(err, poll.ErrNoCandidates):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, poll.ErrInvalidCandidate):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, poll.ErrTransactionConflict):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "poll is busy, please retry")
	default:
		slog.Error("unhandled poll operation error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}
