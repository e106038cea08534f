// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/veato-app/veato-server/models"
)

var t0 = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func testTeam(members ...string) models.Team {
	return models.Team{ID: "team-1", Name: "Lunch Crew", Members: members}
}

// testPoll builds an active phase 1 poll with seven ranked candidates, five
// visible.
func testPoll() *models.Poll {
	names := []string{"Bibimbap", "Ramen", "Sushi", "Pad Thai", "Pizza", "Burger", "Pho"}
	all := make([]models.RankedCandidate, len(names))
	for i, name := range names {
		all[i] = models.RankedCandidate{Name: name, FoodID: "f" + name, Rank: i}
	}
	return &models.Poll{
		ID:                "poll-1",
		TeamID:            "team-1",
		Status:            models.StatusActive,
		Phase:             models.PhaseOne,
		AllCandidates:     all,
		VisibleCandidates: slices.Clone(names[:5]),
		RemovedCandidates: []string{},
		Phase1Votes:       map[string]models.Phase1Vote{},
		VoteInvalidations: map[string][]string{},
		LockedInUsers:     []string{},
		Phase2Candidates:  []string{},
		Phase2Votes:       map[string]string{},
		Phase1StartTime:   t0,
	}
}

func mustApply(t *testing.T, p *models.Poll, team models.Team, ballot Phase1Ballot) Phase1Outcome {
	t.Helper()
	out, err := ApplyPhase1Ballot(p, team, ballot, t0)
	if err != nil {
		t.Fatalf("ApplyPhase1Ballot(%+v) error = %v", ballot, err)
	}
	return out
}

func TestApplyPhase1BallotRecordsVote(t *testing.T) {
	p := testPoll()
	team := testTeam("alice", "bob", "carol")

	mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Bibimbap", "Ramen"}})

	vote := p.Phase1Votes["alice"]
	if !slices.Equal(vote.Approved, []string{"Bibimbap", "Ramen"}) {
		t.Errorf("Approved = %v", vote.Approved)
	}
	if vote.Rejected != "" {
		t.Errorf("Rejected = %q, want empty", vote.Rejected)
	}
	if len(p.LockedInUsers) != 0 {
		t.Errorf("LockedInUsers = %v, want empty without lockIn", p.LockedInUsers)
	}
}

func TestApplyPhase1BallotValidation(t *testing.T) {
	team := testTeam("alice", "bob", "carol")

	tests := []struct {
		name    string
		prep    func(p *models.Poll)
		ballot  Phase1Ballot
		wantErr error
	}{
		{
			name:    "wrong phase",
			prep:    func(p *models.Poll) { p.Phase = models.PhaseTwo },
			ballot:  Phase1Ballot{UserID: "alice"},
			wantErr: ErrWrongPhase,
		},
		{
			name:    "non-member",
			ballot:  Phase1Ballot{UserID: "mallory"},
			wantErr: ErrNotMember,
		},
		{
			name:    "approval of hidden candidate",
			ballot:  Phase1Ballot{UserID: "alice", Approved: []string{"Pho"}},
			wantErr: ErrInvalidCandidate,
		},
		{
			name:    "veto of hidden candidate",
			ballot:  Phase1Ballot{UserID: "alice", Rejected: "Pho"},
			wantErr: ErrInvalidCandidate,
		},
		{
			name: "second veto with different value",
			prep: func(p *models.Poll) {
				p.Phase1Votes["alice"] = models.Phase1Vote{Rejected: "Ramen"}
			},
			ballot:  Phase1Ballot{UserID: "alice", Rejected: "Sushi"},
			wantErr: ErrVetoAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPoll()
			if tt.prep != nil {
				tt.prep(p)
			}
			_, err := ApplyPhase1Ballot(p, team, tt.ballot, t0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ApplyPhase1Ballot() error = %v, want %v", err, tt.wantErr)
			}
			if len(p.Phase1Votes) != 0 && tt.prep == nil {
				t.Error("rejected ballot must not record a vote")
			}
		})
	}
}

func TestVetoRemovesAndReplaces(t *testing.T) {
	p := testPoll()
	team := testTeam("alice", "bob", "carol")

	out := mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Bibimbap"}, Rejected: "Ramen"})

	if slices.Contains(p.VisibleCandidates, "Ramen") {
		t.Error("vetoed candidate still visible")
	}
	if !slices.Contains(p.RemovedCandidates, "Ramen") {
		t.Error("vetoed candidate not in removed set")
	}
	if out.ReplacementCandidate != "Burger" {
		t.Errorf("ReplacementCandidate = %q, want Burger (lowest unseen rank)", out.ReplacementCandidate)
	}
	if !slices.Contains(p.VisibleCandidates, "Burger") {
		t.Error("replacement not visible")
	}
	if len(p.VisibleCandidates) != 5 {
		t.Errorf("len(VisibleCandidates) = %d, want 5", len(p.VisibleCandidates))
	}
}

func TestVetoExhaustedReplacementPool(t *testing.T) {
	p := testPoll()
	p.AllCandidates = p.AllCandidates[:5] // nothing left to promote
	team := testTeam("alice", "bob")

	out := mustApply(t, p, team, Phase1Ballot{UserID: "alice", Rejected: "Pizza"})

	if out.ReplacementCandidate != "" {
		t.Errorf("ReplacementCandidate = %q, want none", out.ReplacementCandidate)
	}
	if len(p.VisibleCandidates) != 4 {
		t.Errorf("len(VisibleCandidates) = %d, want 4", len(p.VisibleCandidates))
	}
}

func TestVetoIsIdempotent(t *testing.T) {
	p := testPoll()
	team := testTeam("alice", "bob", "carol")

	mustApply(t, p, team, Phase1Ballot{UserID: "alice", Rejected: "Ramen"})
	removed := slices.Clone(p.RemovedCandidates)
	visible := slices.Clone(p.VisibleCandidates)

	// Same rejection again: no additional effect.
	out := mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Bibimbap"}, Rejected: "Ramen"})
	if out.ReplacementCandidate != "" {
		t.Errorf("repeat veto produced replacement %q", out.ReplacementCandidate)
	}
	if !slices.Equal(p.RemovedCandidates, removed) || !slices.Equal(p.VisibleCandidates, visible) {
		t.Error("repeat veto changed candidate sets")
	}

	// Empty rejection retains the previous veto.
	mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Sushi"}})
	if p.Phase1Votes["alice"].Rejected != "Ramen" {
		t.Errorf("Rejected = %q, want retained Ramen", p.Phase1Votes["alice"].Rejected)
	}
}

func TestVetoInvalidatesApprovalsAndEvictsLockIns(t *testing.T) {
	// Team of 3: alice and bob approve Bibimbap and Ramen and lock in,
	// carol vetoes Ramen.
	p := testPoll()
	team := testTeam("alice", "bob", "carol")

	mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Bibimbap", "Ramen"}, LockIn: true})
	mustApply(t, p, team, Phase1Ballot{UserID: "bob", Approved: []string{"Bibimbap", "Ramen"}, LockIn: true})

	mustApply(t, p, team, Phase1Ballot{UserID: "carol", Rejected: "Ramen"})

	for _, user := range []string{"alice", "bob"} {
		if slices.Contains(p.Phase1Votes[user].Approved, "Ramen") {
			t.Errorf("%s still approves vetoed candidate", user)
		}
		if !slices.Contains(p.VoteInvalidations[user], "Ramen") {
			t.Errorf("%s has no invalidation recorded", user)
		}
		if slices.Contains(p.LockedInUsers, user) {
			t.Errorf("%s still locked in after invalidation", user)
		}
	}
	if !slices.Contains(p.VisibleCandidates, "Burger") {
		t.Error("no replacement appeared after veto")
	}

	// Re-locking acknowledges the invalidation.
	mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Bibimbap"}, LockIn: true})
	if _, ok := p.VoteInvalidations["alice"]; ok {
		t.Error("re-lock did not clear invalidation entry")
	}
	if !slices.Contains(p.LockedInUsers, "alice") {
		t.Error("re-lock did not restore lock-in")
	}
}

func TestVetoerKeepsOwnInvalidationClean(t *testing.T) {
	p := testPoll()
	team := testTeam("alice", "bob")

	mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Ramen"}})
	mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Bibimbap"}, Rejected: "Ramen"})

	if _, ok := p.VoteInvalidations["alice"]; ok {
		t.Error("vetoer's own ballot recorded an invalidation")
	}
}

func TestFullLockInTransitionsToPhase2(t *testing.T) {
	p := testPoll()
	team := testTeam("alice", "bob")

	mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Bibimbap", "Sushi"}, LockIn: true})
	out := mustApply(t, p, team, Phase1Ballot{UserID: "bob", Approved: []string{"Bibimbap"}, LockIn: true})

	if !out.Transitioned {
		t.Fatal("full lock-in did not transition")
	}
	if p.Phase != models.PhaseTwo {
		t.Fatalf("Phase = %q, want phase2", p.Phase)
	}
	// Bibimbap net 2, Sushi net 1, rest net 0 tie-broken by rank.
	if want := []string{"Bibimbap", "Sushi", "Ramen"}; !slices.Equal(p.Phase2Candidates, want) {
		t.Errorf("Phase2Candidates = %v, want %v", p.Phase2Candidates, want)
	}
	if len(p.LockedInUsers) != 0 {
		t.Errorf("LockedInUsers = %v, want reset", p.LockedInUsers)
	}
	if p.Phase2StartTime.IsZero() {
		t.Error("Phase2StartTime not stamped")
	}
}

func TestSingleMemberLockInClosesDirectly(t *testing.T) {
	p := testPoll()
	team := testTeam("alice")

	out := mustApply(t, p, team, Phase1Ballot{UserID: "alice", Approved: []string{"Sushi", "Ramen"}, Rejected: "Pizza", LockIn: true})

	if !out.Transitioned {
		t.Fatal("lock-in did not close single-member poll")
	}
	if p.Status != models.StatusClosed || p.Phase != models.PhaseClosed {
		t.Fatalf("Status/Phase = %s/%s, want closed/closed", p.Status, p.Phase)
	}
	if len(p.Phase2Candidates) != 0 {
		t.Errorf("Phase2Candidates = %v, want never populated", p.Phase2Candidates)
	}
	// Net scores: Sushi 1, Ramen 1 (rank break: Ramen first), Pizza -1 last.
	if want := []string{"Ramen", "Sushi", "Bibimbap", "Pad Thai", "Burger", "Pho", "Pizza"}; !slices.Equal(p.ResultRanking, want) {
		t.Errorf("ResultRanking = %v, want %v", p.ResultRanking, want)
	}
	if p.ResultVoteCounts["Sushi"] != 1 || p.ResultVoteCounts["Ramen"] != 1 {
		t.Errorf("ResultVoteCounts = %v, want approval counts retained", p.ResultVoteCounts)
	}
}

func TestAdvancePhase(t *testing.T) {
	t.Run("before deadline is a no-op", func(t *testing.T) {
		p := testPoll()
		if AdvancePhase(p, 3, t0.Add(Phase1Duration-time.Second)) {
			t.Error("AdvancePhase() = true before deadline")
		}
		if p.Phase != models.PhaseOne {
			t.Errorf("Phase = %q", p.Phase)
		}
	})

	t.Run("phase1 expiry transitions to phase2", func(t *testing.T) {
		p := testPoll()
		now := t0.Add(Phase1Duration)
		if !AdvancePhase(p, 3, now) {
			t.Fatal("AdvancePhase() = false at deadline")
		}
		if p.Phase != models.PhaseTwo {
			t.Errorf("Phase = %q, want phase2", p.Phase)
		}
		if !p.Phase2StartTime.Equal(now) {
			t.Errorf("Phase2StartTime = %v, want %v", p.Phase2StartTime, now)
		}
	})

	t.Run("phase1 expiry with one member closes", func(t *testing.T) {
		p := testPoll()
		if !AdvancePhase(p, 1, t0.Add(Phase1Duration)) {
			t.Fatal("AdvancePhase() = false")
		}
		if p.Status != models.StatusClosed {
			t.Errorf("Status = %q, want closed", p.Status)
		}
	})

	t.Run("phase2 expiry closes", func(t *testing.T) {
		p := testPoll()
		TransitionToPhase2(p, t0)
		if !AdvancePhase(p, 3, t0.Add(Phase2Duration)) {
			t.Fatal("AdvancePhase() = false")
		}
		if p.Status != models.StatusClosed {
			t.Errorf("Status = %q, want closed", p.Status)
		}
	})

	t.Run("closed poll never advances", func(t *testing.T) {
		p := testPoll()
		Close(p, t0)
		if AdvancePhase(p, 3, t0.Add(time.Hour)) {
			t.Error("AdvancePhase() = true on closed poll")
		}
	})
}

func TestTransitionToPhase2Deterministic(t *testing.T) {
	// Same votes in any arrival order produce identical finalists.
	ballots := []Phase1Ballot{
		{UserID: "alice", Approved: []string{"Bibimbap", "Pizza"}},
		{UserID: "bob", Approved: []string{"Pizza", "Sushi"}},
		{UserID: "carol", Approved: []string{"Bibimbap"}},
	}
	team := testTeam("alice", "bob", "carol")

	var first []string
	for perm := range len(ballots) {
		p := testPoll()
		order := append(slices.Clone(ballots[perm:]), ballots[:perm]...)
		for _, b := range order {
			mustApply(t, p, team, b)
		}
		TransitionToPhase2(p, t0.Add(Phase1Duration))
		if first == nil {
			first = slices.Clone(p.Phase2Candidates)
			continue
		}
		if !slices.Equal(p.Phase2Candidates, first) {
			t.Errorf("permutation %d: Phase2Candidates = %v, want %v", perm, p.Phase2Candidates, first)
		}
	}
	// Bibimbap and Pizza tie at 2; Bibimbap's lower rank puts it first.
	if want := []string{"Bibimbap", "Pizza", "Sushi"}; !slices.Equal(first, want) {
		t.Errorf("Phase2Candidates = %v, want %v", first, want)
	}
}

func TestApplyPhase2Ballot(t *testing.T) {
	setup := func() (*models.Poll, models.Team) {
		p := testPoll()
		team := testTeam("alice", "bob", "carol")
		p.Phase1Votes["alice"] = models.Phase1Vote{Approved: []string{"Bibimbap", "Ramen"}}
		p.Phase1Votes["bob"] = models.Phase1Vote{Approved: []string{"Ramen"}}
		TransitionToPhase2(p, t0)
		return p, team
	}

	t.Run("validation", func(t *testing.T) {
		p, team := setup()
		if err := ApplyPhase2Ballot(p, team, "mallory", "Ramen", t0); !errors.Is(err, ErrNotMember) {
			t.Errorf("non-member error = %v", err)
		}
		if err := ApplyPhase2Ballot(p, team, "alice", "Pho", t0); !errors.Is(err, ErrInvalidCandidate) {
			t.Errorf("non-finalist error = %v", err)
		}
		p.Phase = models.PhaseOne
		if err := ApplyPhase2Ballot(p, team, "alice", "Ramen", t0); !errors.Is(err, ErrWrongPhase) {
			t.Errorf("wrong phase error = %v", err)
		}
	})

	t.Run("records vote and locks in", func(t *testing.T) {
		p, team := setup()
		if err := ApplyPhase2Ballot(p, team, "alice", "Ramen", t0); err != nil {
			t.Fatalf("ApplyPhase2Ballot() error = %v", err)
		}
		if p.Phase2Votes["alice"] != "Ramen" {
			t.Errorf("Phase2Votes = %v", p.Phase2Votes)
		}
		if !slices.Contains(p.LockedInUsers, "alice") {
			t.Error("voter not locked in")
		}
		if p.Status == models.StatusClosed {
			t.Error("closed before all members voted")
		}
	})

	t.Run("last vote closes poll", func(t *testing.T) {
		p, team := setup()
		for _, user := range team.Members {
			if err := ApplyPhase2Ballot(p, team, user, "Ramen", t0); err != nil {
				t.Fatalf("ApplyPhase2Ballot(%s) error = %v", user, err)
			}
		}
		if p.Status != models.StatusClosed {
			t.Error("poll not closed after all members voted")
		}
		if p.ResultRanking[0] != "Ramen" {
			t.Errorf("winner = %q, want Ramen", p.ResultRanking[0])
		}
		if p.ResultVoteCounts["Ramen"] != 3 {
			t.Errorf("ResultVoteCounts = %v", p.ResultVoteCounts)
		}
	})
}

func TestCloseTieBreaksByRank(t *testing.T) {
	// Ramen and Sushi tie at one vote each; Ramen's lower rank wins the
	// tie. Bibimbap collects no phase 2 votes and is appended last.
	p := testPoll()
	p.Phase1Votes["alice"] = models.Phase1Vote{Approved: []string{"Ramen", "Sushi", "Bibimbap"}}
	p.Phase1Votes["bob"] = models.Phase1Vote{Approved: []string{"Ramen", "Sushi"}}
	TransitionToPhase2(p, t0)

	if want := []string{"Ramen", "Sushi", "Bibimbap"}; !slices.Equal(p.Phase2Candidates, want) {
		t.Fatalf("Phase2Candidates = %v, want %v", p.Phase2Candidates, want)
	}

	p.Phase2Votes = map[string]string{"alice": "Sushi", "bob": "Ramen"}
	Close(p, t0)

	if want := []string{"Ramen", "Sushi", "Bibimbap"}; !slices.Equal(p.ResultRanking, want) {
		t.Errorf("ResultRanking = %v, want %v", p.ResultRanking, want)
	}
	if p.ResultVoteCounts["Sushi"] != 1 || p.ResultVoteCounts["Ramen"] != 1 || p.ResultVoteCounts["Bibimbap"] != 0 {
		t.Errorf("ResultVoteCounts = %v", p.ResultVoteCounts)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p := testPoll()
	p.Phase1Votes["alice"] = models.Phase1Vote{Approved: []string{"Ramen"}}
	Close(p, t0)
	ranking := slices.Clone(p.ResultRanking)

	Close(p, t0.Add(time.Hour))
	if !slices.Equal(p.ResultRanking, ranking) {
		t.Errorf("second Close changed ResultRanking: %v != %v", p.ResultRanking, ranking)
	}
}

func TestVisibleCandidatesInvariants(t *testing.T) {
	// Repeated vetoes never push visible past 5 and never resurface a
	// removed name.
	p := testPoll()
	team := testTeam("a", "b", "c", "d", "e")
	vetoes := []struct{ user, name string }{
		{"a", "Bibimbap"}, {"b", "Ramen"}, {"c", "Sushi"}, {"d", "Pad Thai"},
	}
	for _, v := range vetoes {
		mustApply(t, p, team, Phase1Ballot{UserID: v.user, Rejected: v.name})

		if len(p.VisibleCandidates) > MaxVisible {
			t.Fatalf("visible grew past %d: %v", MaxVisible, p.VisibleCandidates)
		}
		for _, name := range p.VisibleCandidates {
			if slices.Contains(p.RemovedCandidates, name) {
				t.Fatalf("removed candidate %q still visible", name)
			}
		}
	}
	// 7 candidates, 4 removed: only 3 can remain visible.
	if len(p.VisibleCandidates) != 3 {
		t.Errorf("len(VisibleCandidates) = %d, want 3", len(p.VisibleCandidates))
	}
}
