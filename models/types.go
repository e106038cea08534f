// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Poll phase constants
const (
	PhaseOne    = "phase1"
	PhaseTwo    = "phase2"
	PhaseClosed = "closed"
)

// Spice tolerance vocabulary (member profiles)
const (
	SpiceMild   = "MILD"
	SpiceMedium = "MEDIUM"
	SpiceSpicy  = "SPICY"
)

// Domain types

// Nutrition holds per-serving macros for a catalog item. A nil *Nutrition on
// Food means the dataset has no data for that item.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Food is one immutable catalog record, owned by the catalog store.
// Cuisine is one of the closed 6-value taxonomy (korean, japanese, chinese,
// western, european, southeast asian); MealType one of the 10 dataset
// categories; SpiceLevel is 0-4.
type Food struct {
	ID                string     `json:"food_id"`
	Name              string     `json:"name"`
	Cuisine           string     `json:"cuisine"`
	Description       string     `json:"description,omitempty"`
	DietaryViolations []string   `json:"dietary_violations"`
	Allergens         []string   `json:"allergens"`
	Ingredients       []string   `json:"ingredients"`
	Nutrition         *Nutrition `json:"nutrition,omitempty"`
	Heaviness         string     `json:"heaviness"`
	MealType          string     `json:"meal_type"`
	SpiceLevel        int        `json:"spice_level"`
}

// RawConstraints are the per-member profile fields as stored by the app,
// using the external UPPERCASE enum vocabulary.
type RawConstraints struct {
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Allergies           []string `json:"allergies"`
	AvoidIngredients    []string `json:"avoidIngredients"`
	FavoriteCuisines    []string `json:"favoriteCuisines"`
	SpiceTolerance      string   `json:"spiceTolerance"`
}

// MemberConstraints pairs a team member with their raw profile constraints.
type MemberConstraints struct {
	UserID      string
	Constraints RawConstraints
}

// HardConstraints must eliminate any violating candidate outright.
// All values use the normalized lowercase catalog vocabulary.
type HardConstraints struct {
	DietaryDisallows []string
	Allergens        []string
	AvoidIngredients []string
}

// SoftPreferences are weighting signals for ranking, never for exclusion.
// FavoriteCuisines is a multiset (one entry per member mention, so frequency
// carries weight); SpiceTolerances collects one tolerance per member.
type SoftPreferences struct {
	FavoriteCuisines []string
	SpiceTolerances  []string
}

// GroupConstraints is the merged constraint set for one poll. Derived and
// ephemeral: recomputed at poll start, never persisted on its own.
type GroupConstraints struct {
	Hard HardConstraints
	Soft SoftPreferences
}

// RankedCandidate is one entry of a poll's fixed candidate list.
// Rank is 0-indexed, lower is better, stable for the poll's lifetime.
type RankedCandidate struct {
	Name       string `json:"name"`
	FoodID     string `json:"foodId"`
	Cuisine    string `json:"cuisine"`
	SpiceLevel int    `json:"spiceLevel"`
	Rank       int    `json:"ranking"`
}

// Phase1Vote records one member's approval set and optional one-time veto.
type Phase1Vote struct {
	Approved []string `json:"approved"`
	Rejected string   `json:"rejected,omitempty"`
}

// Poll is the central mutable aggregate, stored as one document and mutated
// only through poll state machine operations. Phase and Status always agree:
// Phase == "closed" exactly when Status == "closed".
type Poll struct {
	ID                string                `json:"pollId"`
	Title             string                `json:"pollTitle"`
	TeamID            string                `json:"teamId"`
	TeamName          string                `json:"teamName"`
	Status            string                `json:"status"`
	Phase             string                `json:"phase"`
	AllCandidates     []RankedCandidate     `json:"allCandidates"`
	VisibleCandidates []string              `json:"visibleCandidates"`
	RemovedCandidates []string              `json:"removedCandidates"`
	Phase1Votes       map[string]Phase1Vote `json:"phase1Votes"`
	VoteInvalidations map[string][]string   `json:"voteInvalidations,omitempty"`
	LockedInUsers     []string              `json:"lockedInUsers"`
	Phase2Candidates  []string              `json:"phase2Candidates"`
	Phase2Votes       map[string]string     `json:"phase2Votes"`
	ResultRanking     []string              `json:"resultRanking"`
	ResultVoteCounts  map[string]int        `json:"resultVoteCounts,omitempty"`
	Phase1StartTime   time.Time             `json:"phase1StartTime"`
	Phase2StartTime   time.Time             `json:"phase2StartTime"`
	CreatedAt         time.Time             `json:"createdAt"`
}

// Team is the membership document. Members are fixed for a poll's duration;
// at most one non-closed poll per team at a time.
type Team struct {
	ID                string   `json:"teamId"`
	Name              string   `json:"teamName"`
	Members           []string `json:"members"`
	CurrentlyOpenPoll string   `json:"currentlyOpenPoll,omitempty"`
	LastDecision      string   `json:"lastMealPoll,omitempty"`
}

// Request types

type StartPollRequest struct {
	TeamID       string `json:"teamId"`
	PollTitle    string `json:"pollTitle"`
	OccasionNote string `json:"occasionNote,omitempty"`
	// Accepted for legacy clients but ignored: phase durations are
	// server-fixed.
	DurationMinutes int `json:"durationMinutes,omitempty"`
}

type Phase1VoteRequest struct {
	ApprovedCandidates []string `json:"approvedCandidates"`
	RejectedCandidate  string   `json:"rejectedCandidate,omitempty"`
	LockIn             bool     `json:"lockIn"`
}

type Phase2VoteRequest struct {
	SelectedCandidate string `json:"selectedCandidate"`
}

// Response types

type StartPollResponse struct {
	PollID      string   `json:"pollId"`
	PollTitle   string   `json:"pollTitle"`
	TeamName    string   `json:"teamName"`
	StartedTime string   `json:"startedTime"`
	Candidates  []string `json:"candidates"`
}

type Phase1VoteResponse struct {
	OK                   bool     `json:"ok"`
	YourCurrentVotes     []string `json:"yourCurrentVotes"`
	VisibleCandidates    []string `json:"visibleCandidates"`
	ReplacementCandidate string   `json:"replacementCandidate,omitempty"`
	LockedInUserCount    int      `json:"lockedInUserCount"`
	TotalMemberCount     int      `json:"totalMemberCount"`
	Phase                string   `json:"phase"`
}

type Phase2VoteResponse struct {
	OK                    bool   `json:"ok"`
	YourSelectedCandidate string `json:"yourSelectedCandidate"`
	LockedInUserCount     int    `json:"lockedInUserCount"`
	TotalMemberCount      int    `json:"totalMemberCount"`
	Phase                 string `json:"phase"`
}

// CandidateView is one visible candidate in a poll-state response.
type CandidateView struct {
	Name string `json:"name"`
}

// CandidateResult is one ranked entry of a closed poll's results.
type CandidateResult struct {
	Name      string `json:"name"`
	VoteCount int    `json:"voteCount"`
}

// PollStateResponse is the phase-shaped GET /polls/{id} payload. Fields not
// relevant to the current phase are omitted.
type PollStateResponse struct {
	PollID           string `json:"pollId"`
	PollTitle        string `json:"pollTitle"`
	TeamID           string `json:"teamId"`
	TeamName         string `json:"teamName"`
	Phase            string `json:"phase"`
	Status           string `json:"status"`
	StartedTime      string `json:"startedTime,omitempty"`
	RemainingSeconds int    `json:"remainingSeconds"`

	Candidates []CandidateView `json:"candidates,omitempty"`

	// Phase 1 view
	YourApprovedCandidates    []string `json:"yourApprovedCandidates,omitempty"`
	YourRejectedCandidate     string   `json:"yourRejectedCandidate,omitempty"`
	YourInvalidatedCandidates []string `json:"yourInvalidatedCandidates,omitempty"`

	// Phase 2 view
	YourSelectedCandidate string `json:"yourSelectedCandidate,omitempty"`

	HasCurrentUserLockedIn bool `json:"hasCurrentUserLockedIn"`
	LockedInUserCount      int  `json:"lockedInUserCount"`
	TotalMemberCount       int  `json:"totalMemberCount"`

	// Closed view
	Results []CandidateResult `json:"results,omitempty"`
	Winner  string            `json:"winner,omitempty"`
}

// RankedResult is one entry of a manual-close response.
type RankedResult struct {
	Rank int    `json:"rank"`
	Name string `json:"name"`
}

type ClosePollResponse struct {
	PollID        string         `json:"pollId"`
	Status        string         `json:"status"`
	ResultRanking []RankedResult `json:"resultRanking"`
	Winner        string         `json:"winner,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
