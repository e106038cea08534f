// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"context"

	"github.com/veato-app/veato-server/models"
)

// CandidateSummary is the compact per-food view handed to a ranking backend.
// Trimmed to what a model needs so request size stays bounded.
type CandidateSummary struct {
	FoodID            string            `json:"food_id"`
	Name              string            `json:"name"`
	Cuisine           string            `json:"cuisine"`
	SpiceLevel        int               `json:"spice_level"`
	Heaviness         string            `json:"heaviness"`
	MealType          string            `json:"meal_type"`
	Description       string            `json:"description,omitempty"`
	Ingredients       []string          `json:"ingredients"`
	Allergens         []string          `json:"allergens"`
	DietaryViolations []string          `json:"dietary_violations"`
	Nutrition         *models.Nutrition `json:"nutrition,omitempty"`
}

// Request carries everything a ranking backend needs for one ranking call.
// Hard constraints are context only: candidates are already filtered against
// them before a Request is built.
type Request struct {
	Candidates        []CandidateSummary
	Hard              models.HardConstraints
	CuisineCounts     map[string]int
	AvgSpiceTolerance float64
	Occasion          string
	TopK              int
}

// Service ranks candidates by soft preferences, returning food IDs in best-
// first order. A Service may return fewer IDs than requested, repeat nothing,
// and must never invent IDs; the caller tolerates unknown IDs regardless.
type Service interface {
	RankCandidates(ctx context.Context, req Request) ([]string, error)
}
