// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veato-app/veato-server/catalog"
	"github.com/veato-app/veato-server/constraints"
	"github.com/veato-app/veato-server/models"
	"github.com/veato-app/veato-server/ranking"
	"github.com/veato-app/veato-server/store"
)

const (
	// maxFilteredCandidates caps candidate generation; the compatibility
	// stats pass runs unbounded over the catalog instead.
	maxFilteredCandidates = 200

	// rankedTopK is how many candidates a poll carries in total.
	rankedTopK = 15

	// maxTxAttempts bounds the optimistic retry loop per operation.
	maxTxAttempts = 5
)

// ErrNoCandidates means the group's combined hard constraints eliminated the
// entire catalog. Not a failure of the system; the group must widen its
// constraints.
var ErrNoCandidates = errors.New("no foods satisfy the group's combined constraints")

// Service is the store-facing poll state machine. All mutating operations
// run as optimistic transactions: read the poll document and its version,
// apply a pure mutation, write back under a version guard, retry on
// conflict. Timer expiry is applied lazily inside the same transaction, so
// a vote can never interleave with the transition it triggers.
type Service struct {
	Polls    store.PollStore
	Teams    store.TeamStore
	Profiles store.ProfileDirectory
	Catalog  *catalog.Store
	Ranker   *ranking.Ranker
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Start creates a new poll for the team: aggregates member constraints,
// filters the catalog, ranks candidates, and seeds phase 1. A team with an
// open poll cannot start another; an expired open poll is lazily closed
// first rather than blocking forever.
func (s *Service) Start(ctx context.Context, teamID, title, occasionNote string) (models.Poll, error) {
	team, err := s.team(ctx, teamID)
	if err != nil {
		return models.Poll{}, err
	}

	if team.CurrentlyOpenPoll != "" {
		open, err := s.Get(ctx, team.CurrentlyOpenPoll)
		switch {
		case errors.Is(err, ErrPollNotFound):
			// Dangling pointer; fall through and start fresh.
		case err != nil:
			return models.Poll{}, err
		case open.Status != models.StatusClosed:
			return models.Poll{}, ErrOpenPollExists
		}
		// Get already finalized the team doc if the poll lazily closed.
		team, err = s.team(ctx, teamID)
		if err != nil {
			return models.Poll{}, err
		}
	}

	members, err := s.Profiles.Constraints(ctx, team.Members)
	if err != nil {
		return models.Poll{}, fmt.Errorf("resolving member constraints: %w", err)
	}
	gc := constraints.BuildGroupConstraints(members)

	occasion := occasionNote
	if occasion == "" {
		occasion = title
	}

	foods := s.Catalog.Foods()
	s.warnIncompatibleCuisines(foods, gc, occasion)

	filtered := constraints.FilterFoods(foods, gc, maxFilteredCandidates)
	s.logger().Info("filtered catalog for poll",
		"team", teamID, "catalogSize", len(foods), "filtered", len(filtered))
	if len(filtered) == 0 {
		return models.Poll{}, ErrNoCandidates
	}

	ranked := s.Ranker.Rank(ctx, filtered, gc, occasion, rankedTopK)

	visible := make([]string, 0, MaxVisible)
	for _, c := range ranked[:min(len(ranked), MaxVisible)] {
		visible = append(visible, c.Name)
	}

	now := s.now()
	p := models.Poll{
		ID:                uuid.NewString(),
		Title:             title,
		TeamID:            team.ID,
		TeamName:          team.Name,
		Status:            models.StatusActive,
		Phase:             models.PhaseOne,
		AllCandidates:     ranked,
		VisibleCandidates: visible,
		RemovedCandidates: []string{},
		Phase1Votes:       map[string]models.Phase1Vote{},
		VoteInvalidations: map[string][]string{},
		LockedInUsers:     []string{},
		Phase2Candidates:  []string{},
		Phase2Votes:       map[string]string{},
		ResultRanking:     []string{},
		Phase1StartTime:   now,
		CreatedAt:         now,
	}

	if err := s.Polls.Create(ctx, p); err != nil {
		return models.Poll{}, fmt.Errorf("creating poll: %w", err)
	}

	team.CurrentlyOpenPoll = p.ID
	if err := s.Teams.Save(ctx, team); err != nil {
		return models.Poll{}, fmt.Errorf("recording open poll on team: %w", err)
	}

	s.logger().Info("poll started",
		"poll", p.ID, "team", teamID, "candidates", len(ranked), "members", len(team.Members))
	return p, nil
}

// Get reads the poll, applying any overdue phase transition first. The
// transition commits through the same version-guarded write as every other
// mutation, so concurrent reads race safely: one advances, the rest retry
// and observe the advanced document.
func (s *Service) Get(ctx context.Context, pollID string) (models.Poll, error) {
	return s.mutate(ctx, pollID, func(p *models.Poll, team models.Team) (bool, error) {
		return false, nil
	})
}

// CastPhase1Ballot applies one phase 1 ballot transactionally.
func (s *Service) CastPhase1Ballot(ctx context.Context, pollID string, ballot Phase1Ballot) (models.Poll, Phase1Outcome, error) {
	var out Phase1Outcome
	p, err := s.mutate(ctx, pollID, func(p *models.Poll, team models.Team) (bool, error) {
		var err error
		out, err = ApplyPhase1Ballot(p, team, ballot, s.now())
		return err == nil, err
	})
	if err != nil {
		return models.Poll{}, Phase1Outcome{}, err
	}
	if out.Transitioned {
		s.logger().Info("all members locked in, poll advanced", "poll", pollID, "phase", p.Phase)
	}
	return p, out, nil
}

// CastPhase2Ballot applies one phase 2 selection transactionally.
func (s *Service) CastPhase2Ballot(ctx context.Context, pollID, userID, selected string) (models.Poll, error) {
	return s.mutate(ctx, pollID, func(p *models.Poll, team models.Team) (bool, error) {
		err := ApplyPhase2Ballot(p, team, userID, selected, s.now())
		return err == nil, err
	})
}

// CloseNow closes the poll immediately, regardless of timers. Only team
// members may close. Closing an already closed poll is a no-op.
func (s *Service) CloseNow(ctx context.Context, pollID, userID string) (models.Poll, error) {
	return s.mutate(ctx, pollID, func(p *models.Poll, team models.Team) (bool, error) {
		if !slices.Contains(team.Members, userID) {
			return false, ErrNotMember
		}
		if p.Status == models.StatusClosed {
			return false, nil
		}
		Close(p, s.now())
		return true, nil
	})
}

// mutate is the optimistic transaction runner: read poll and team, apply the
// lazy timer transition, run fn, and write back guarded by the version read.
// ErrVersionConflict re-reads and re-applies, up to maxTxAttempts. fn reports
// whether it dirtied the document; it may run multiple times, and must
// validate before mutating so a returned error implies zero mutation.
func (s *Service) mutate(ctx context.Context, pollID string, fn func(p *models.Poll, team models.Team) (bool, error)) (models.Poll, error) {
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		p, version, err := s.Polls.Get(ctx, pollID)
		if errors.Is(err, store.ErrNotFound) {
			return models.Poll{}, ErrPollNotFound
		}
		if err != nil {
			return models.Poll{}, err
		}

		team, err := s.team(ctx, p.TeamID)
		if err != nil {
			return models.Poll{}, err
		}

		wasOpen := p.Status != models.StatusClosed

		advanced := AdvancePhase(&p, len(team.Members), s.now())
		if advanced {
			s.logger().Info("timer expired, poll advanced", "poll", pollID, "phase", p.Phase)
		}

		dirty, fnErr := fn(&p, team)
		if fnErr != nil {
			// Persist the lazy transition even though the operation was
			// rejected. fn left the document untouched, so p holds exactly
			// the advanced state; a lost write race means the winner
			// persisted the same transition.
			if advanced {
				if err := s.Polls.Update(ctx, p, version); err == nil && wasOpen && p.Status == models.StatusClosed {
					s.finalizeTeam(ctx, team, p)
				}
			}
			return models.Poll{}, fnErr
		}

		if !advanced && !dirty {
			return p, nil
		}

		err = s.Polls.Update(ctx, p, version)
		if errors.Is(err, store.ErrVersionConflict) {
			s.logger().Debug("poll write conflict, retrying", "poll", pollID, "attempt", attempt)
			continue
		}
		if err != nil {
			return models.Poll{}, err
		}

		if wasOpen && p.Status == models.StatusClosed {
			s.finalizeTeam(ctx, team, p)
		}
		return p, nil
	}
	return models.Poll{}, ErrTransactionConflict
}

// finalizeTeam clears the team's open poll pointer and records the winner,
// once, after the closing write committed. Best-effort: the poll document is
// already authoritative, so a failed team write only costs a lazy cleanup
// on the next Start.
func (s *Service) finalizeTeam(ctx context.Context, team models.Team, p models.Poll) {
	if team.CurrentlyOpenPoll != p.ID {
		return
	}
	team.CurrentlyOpenPoll = ""
	if len(p.ResultRanking) > 0 {
		team.LastDecision = p.ResultRanking[0]
	}
	if err := s.Teams.Save(ctx, team); err != nil {
		s.logger().Warn("failed to finalize team after close", "team", team.ID, "poll", p.ID, "error", err)
		return
	}
	s.logger().Info("poll closed", "poll", p.ID, "team", team.ID, "winner", team.LastDecision)
}

// Team resolves the team document, mapping a missing team onto
// ErrTeamNotFound. Handlers use it to shape membership-aware responses.
func (s *Service) Team(ctx context.Context, teamID string) (models.Team, error) {
	return s.team(ctx, teamID)
}

// Clock returns the service's current time, honoring an injected clock.
func (s *Service) Clock() time.Time {
	return s.now()
}

func (s *Service) team(ctx context.Context, teamID string) (models.Team, error) {
	team, err := s.Teams.Get(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Team{}, ErrTeamNotFound
	}
	if err != nil {
		return models.Team{}, err
	}
	return team, nil
}

// warnIncompatibleCuisines logs when the occasion asks for a cuisine the
// group's constraints have fully eliminated.
func (s *Service) warnIncompatibleCuisines(foods []models.Food, gc models.GroupConstraints, occasion string) {
	if occasion == "" {
		return
	}
	lower := strings.ToLower(occasion)
	counts := constraints.CuisineCompatibility(foods, gc)
	for _, cuisine := range []string{"korean", "japanese", "chinese", "western", "european", "southeast asian"} {
		if strings.Contains(lower, cuisine) && counts[cuisine] == 0 {
			s.logger().Warn("requested cuisine has no compatible foods", "cuisine", cuisine)
		}
	}
}
