// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package constraints

import (
	"slices"
	"strings"

	"github.com/veato-app/veato-server/models"
)

// dietaryRestrictionMap normalizes the app's UPPERCASE dietary enum to the
// lowercase catalog vocabulary. Unknown tokens pass through lower-cased.
var dietaryRestrictionMap = map[string]string{
	"VEGAN":        "vegan",
	"VEGETARIAN":   "vegetarian",
	"HALAL":        "halal",
	"PESCATARIAN":  "pescatarian",
	"GLUTEN_FREE":  "gluten-free",
	"LACTOSE_FREE": "lactose-free",
}

// retiredDietaryTokens were removed from the app taxonomy but still appear in
// legacy profile documents. They are dropped, never emitted downstream.
var retiredDietaryTokens = map[string]bool{
	"KOSHER": true,
}

var allergenMap = map[string]string{
	"EGGS":      "eggs",
	"DAIRY":     "dairy",
	"MILK":      "dairy", // legacy profile token
	"FISH":      "fish",
	"SHELLFISH": "shellfish",
	"PEANUTS":   "nuts", // catalog doesn't distinguish peanuts from tree nuts
	"TREE_NUTS": "nuts",
	"SOY":       "soy",
	"WHEAT":     "wheat",
	"SESAME":    "sesame",
}

// BuildGroupConstraints merges per-member constraints into one group set:
// hard constraints are unioned across members, soft preferences are collected
// (not deduplicated) so frequency carries weight in ranking. Pure function;
// missing or malformed member fields are treated as empty.
func BuildGroupConstraints(members []models.MemberConstraints) models.GroupConstraints {
	dietary := make(map[string]bool)
	allergens := make(map[string]bool)
	ingredients := make(map[string]bool)

	var favoriteCuisines []string
	var spiceTolerances []string

	for _, member := range members {
		c := member.Constraints

		for _, restriction := range c.DietaryRestrictions {
			token := strings.ToUpper(strings.TrimSpace(restriction))
			if token == "" || retiredDietaryTokens[token] {
				continue
			}
			if normalized, ok := dietaryRestrictionMap[token]; ok {
				dietary[normalized] = true
			} else {
				dietary[strings.ToLower(token)] = true
			}
		}

		for _, allergy := range c.Allergies {
			token := strings.ToUpper(strings.TrimSpace(allergy))
			if token == "" {
				continue
			}
			if normalized, ok := allergenMap[token]; ok {
				allergens[normalized] = true
			} else {
				allergens[strings.ToLower(token)] = true
			}
		}

		for _, ingredient := range c.AvoidIngredients {
			ing := strings.ToLower(strings.TrimSpace(ingredient))
			if ing != "" {
				ingredients[ing] = true
			}
		}

		for _, cuisine := range c.FavoriteCuisines {
			favoriteCuisines = append(favoriteCuisines, strings.ToLower(cuisine))
		}

		tolerance := strings.ToUpper(strings.TrimSpace(c.SpiceTolerance))
		if tolerance == "" {
			tolerance = models.SpiceMedium
		}
		spiceTolerances = append(spiceTolerances, tolerance)
	}

	return models.GroupConstraints{
		Hard: models.HardConstraints{
			DietaryDisallows: sortedKeys(dietary),
			Allergens:        sortedKeys(allergens),
			AvoidIngredients: sortedKeys(ingredients),
		},
		Soft: models.SoftPreferences{
			FavoriteCuisines: favoriteCuisines,
			SpiceTolerances:  spiceTolerances,
		},
	}
}

// FilterFoods hard-filters the catalog: a food passes only if it has zero
// overlap with the group's dietary disallows, allergens, and avoided
// ingredients. The cheap dietary/allergen checks run before the larger
// ingredient set. Collection stops at maxCount. An empty result is a valid,
// expected outcome, not an error.
func FilterFoods(foods []models.Food, gc models.GroupConstraints, maxCount int) []models.Food {
	filtered := []models.Food{}

	for _, food := range foods {
		if len(filtered) >= maxCount {
			break
		}
		if overlaps(food.DietaryViolations, gc.Hard.DietaryDisallows) {
			continue
		}
		if overlaps(food.Allergens, gc.Hard.Allergens) {
			continue
		}
		if overlaps(food.Ingredients, gc.Hard.AvoidIngredients) {
			continue
		}

		filtered = append(filtered, food)
	}

	return filtered
}

// CuisineCompatibility counts, per cuisine, how many catalog items remain
// compatible with the group's hard constraints. Used at poll start to warn
// when an occasion-requested cuisine has nothing left.
func CuisineCompatibility(foods []models.Food, gc models.GroupConstraints) map[string]int {
	compatible := FilterFoods(foods, gc, len(foods))

	counts := make(map[string]int)
	for _, food := range compatible {
		cuisine := food.Cuisine
		if cuisine == "" {
			cuisine = "unknown"
		}
		counts[cuisine]++
	}
	return counts
}

func overlaps(values, disallowed []string) bool {
	for _, v := range values {
		if slices.Contains(disallowed, v) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
