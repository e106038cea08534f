// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"context"
	"log/slog"
	"strings"

	"github.com/veato-app/veato-server/models"
)

// maxServiceCandidates caps how many summaries one ranking request carries.
// Refined candidates beyond the cap remain eligible as padding only.
const maxServiceCandidates = 50

// Ranker turns a hard-filtered food list into the poll's candidate list.
// Service may be nil; every failure mode degrades to a deterministic
// refine-order ranking, so Rank never fails and never returns fewer than
// min(topK, len(foods)) candidates.
type Ranker struct {
	Service Service
	Logger  *slog.Logger
}

// Rank refines foods against the occasion text, asks the ranking service to
// order them by the group's soft preferences, and returns the top topK as
// ranked candidates. Rank is 0-indexed, lower is better.
func (r *Ranker) Rank(ctx context.Context, foods []models.Food, gc models.GroupConstraints, occasion string, topK int) []models.RankedCandidate {
	if len(foods) == 0 || topK <= 0 {
		return []models.RankedCandidate{}
	}

	refined := Refine(foods, occasion)

	if r.Service == nil {
		r.logger().Info("no ranking service configured, using refine-order ranking")
		return sequentialRanking(refined, topK)
	}

	limit := min(len(refined), maxServiceCandidates)
	req := Request{
		Candidates:        summarize(refined[:limit]),
		Hard:              gc.Hard,
		CuisineCounts:     countCuisines(gc.Soft.FavoriteCuisines),
		AvgSpiceTolerance: averageSpiceTolerance(gc.Soft.SpiceTolerances),
		Occasion:          occasion,
		TopK:              topK,
	}

	rankedIDs, err := r.Service.RankCandidates(ctx, req)
	if err != nil {
		r.logger().Warn("ranking service failed, using refine-order ranking", "error", err)
		return sequentialRanking(refined, topK)
	}

	byID := make(map[string]models.Food, len(refined))
	for _, food := range refined {
		byID[food.ID] = food
	}

	ranked := make([]models.RankedCandidate, 0, topK)
	seen := make(map[string]bool, topK)
	for _, id := range rankedIDs {
		if len(ranked) >= topK {
			break
		}
		food, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ranked = append(ranked, toCandidate(food, len(ranked)))
	}

	// Pad with refine-order leftovers if the service returned too few.
	for _, food := range refined {
		if len(ranked) >= topK {
			break
		}
		if seen[food.ID] {
			continue
		}
		seen[food.ID] = true
		ranked = append(ranked, toCandidate(food, len(ranked)))
	}

	return ranked
}

func (r *Ranker) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func sequentialRanking(foods []models.Food, topK int) []models.RankedCandidate {
	n := min(len(foods), topK)
	ranked := make([]models.RankedCandidate, n)
	for i := range n {
		ranked[i] = toCandidate(foods[i], i)
	}
	return ranked
}

func toCandidate(food models.Food, rank int) models.RankedCandidate {
	return models.RankedCandidate{
		Name:       food.Name,
		FoodID:     food.ID,
		Cuisine:    food.Cuisine,
		SpiceLevel: food.SpiceLevel,
		Rank:       rank,
	}
}

func summarize(foods []models.Food) []CandidateSummary {
	summaries := make([]CandidateSummary, len(foods))
	for i, food := range foods {
		summaries[i] = CandidateSummary{
			FoodID:            food.ID,
			Name:              food.Name,
			Cuisine:           food.Cuisine,
			SpiceLevel:        food.SpiceLevel,
			Heaviness:         foodHeaviness(food),
			MealType:          food.MealType,
			Description:       food.Description,
			Ingredients:       food.Ingredients,
			Allergens:         food.Allergens,
			DietaryViolations: food.DietaryViolations,
			Nutrition:         food.Nutrition,
		}
	}
	return summaries
}

func countCuisines(favorites []string) map[string]int {
	counts := make(map[string]int, len(favorites))
	for _, cuisine := range favorites {
		counts[cuisine]++
	}
	return counts
}

// averageSpiceTolerance collapses member tolerances onto a 1-3 scale:
// MILD=1, MEDIUM=2, SPICY=3, unrecognized=2. No members means 2.
func averageSpiceTolerance(tolerances []string) float64 {
	if len(tolerances) == 0 {
		return 2
	}
	total := 0
	for _, tolerance := range tolerances {
		switch strings.ToUpper(tolerance) {
		case models.SpiceMild:
			total += 1
		case models.SpiceSpicy:
			total += 3
		default:
			total += 2
		}
	}
	return float64(total) / float64(len(tolerances))
}
