// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/veato-app/veato-server/models"
)

// Store is the in-memory food catalog. It is loaded once at startup and
// read-only afterward; filtering and ranking components receive it by
// reference rather than through a package-level global.
type Store struct {
	foods []models.Food
}

// Load reads a JSON array of food records from path and normalizes the
// free-form string fields to the lowercase catalog vocabulary, so later
// set intersections are case-insensitive without re-lowering per request.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read food dataset: %w", err)
	}

	var foods []models.Food
	if err := json.Unmarshal(raw, &foods); err != nil {
		return nil, fmt.Errorf("failed to parse food dataset: %w", err)
	}

	return New(foods), nil
}

// New builds a Store from already-decoded records. Used by tests and by Load.
func New(foods []models.Food) *Store {
	normalized := make([]models.Food, len(foods))
	for i, f := range foods {
		f.Cuisine = strings.ToLower(f.Cuisine)
		f.Heaviness = strings.ToLower(f.Heaviness)
		f.MealType = strings.ToLower(f.MealType)
		f.DietaryViolations = lowerAll(f.DietaryViolations)
		f.Allergens = lowerAll(f.Allergens)
		f.Ingredients = lowerAll(f.Ingredients)
		normalized[i] = f
	}
	return &Store{foods: normalized}
}

// Foods returns the full catalog in load order. Callers must treat the
// returned slice as read-only.
func (s *Store) Foods() []models.Food {
	return s.foods
}

// Len reports the number of catalog records.
func (s *Store) Len() int {
	return len(s.foods)
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
