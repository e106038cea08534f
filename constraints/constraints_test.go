// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package constraints

import (
	"slices"
	"testing"

	"github.com/veato-app/veato-server/models"
)

func member(id string, c models.RawConstraints) models.MemberConstraints {
	return models.MemberConstraints{UserID: id, Constraints: c}
}

func TestBuildGroupConstraints(t *testing.T) {
	tests := []struct {
		name         string
		members      []models.MemberConstraints
		wantDietary  []string
		wantAllergen []string
		wantAvoid    []string
		wantCuisines []string
		wantSpice    []string
	}{
		{
			name:         "empty group",
			members:      nil,
			wantDietary:  []string{},
			wantAllergen: []string{},
			wantAvoid:    []string{},
		},
		{
			name: "single member maps tokens",
			members: []models.MemberConstraints{
				member("u1", models.RawConstraints{
					DietaryRestrictions: []string{"VEGETARIAN", "GLUTEN_FREE"},
					Allergies:           []string{"TREE_NUTS", "SHELLFISH"},
					AvoidIngredients:    []string{"Cilantro"},
					FavoriteCuisines:    []string{"Korean"},
					SpiceTolerance:      "SPICY",
				}),
			},
			wantDietary:  []string{"gluten-free", "vegetarian"},
			wantAllergen: []string{"nuts", "shellfish"},
			wantAvoid:    []string{"cilantro"},
			wantCuisines: []string{"korean"},
			wantSpice:    []string{"SPICY"},
		},
		{
			name: "hard constraints union across members",
			members: []models.MemberConstraints{
				member("u1", models.RawConstraints{DietaryRestrictions: []string{"VEGAN"}}),
				member("u2", models.RawConstraints{DietaryRestrictions: []string{"HALAL"}, Allergies: []string{"EGGS"}}),
			},
			wantDietary:  []string{"halal", "vegan"},
			wantAllergen: []string{"eggs"},
			wantAvoid:    []string{},
			wantSpice:    []string{"MEDIUM", "MEDIUM"},
		},
		{
			name: "soft preferences keep duplicates",
			members: []models.MemberConstraints{
				member("u1", models.RawConstraints{FavoriteCuisines: []string{"japanese"}}),
				member("u2", models.RawConstraints{FavoriteCuisines: []string{"japanese", "western"}}),
			},
			wantDietary:  []string{},
			wantAllergen: []string{},
			wantAvoid:    []string{},
			wantCuisines: []string{"japanese", "japanese", "western"},
			wantSpice:    []string{"MEDIUM", "MEDIUM"},
		},
		{
			name: "legacy MILK token maps to dairy",
			members: []models.MemberConstraints{
				member("u1", models.RawConstraints{Allergies: []string{"MILK", "DAIRY"}}),
			},
			wantDietary:  []string{},
			wantAllergen: []string{"dairy"},
			wantAvoid:    []string{},
			wantSpice:    []string{"MEDIUM"},
		},
		{
			name: "retired KOSHER token is dropped",
			members: []models.MemberConstraints{
				member("u1", models.RawConstraints{DietaryRestrictions: []string{"KOSHER", "VEGAN"}}),
			},
			wantDietary:  []string{"vegan"},
			wantAllergen: []string{},
			wantAvoid:    []string{},
			wantSpice:    []string{"MEDIUM"},
		},
		{
			name: "unknown tokens pass through lowercased",
			members: []models.MemberConstraints{
				member("u1", models.RawConstraints{
					DietaryRestrictions: []string{"PALEO"},
					Allergies:           []string{"MUSTARD"},
				}),
			},
			wantDietary:  []string{"paleo"},
			wantAllergen: []string{"mustard"},
			wantAvoid:    []string{},
			wantSpice:    []string{"MEDIUM"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := BuildGroupConstraints(tt.members)

			if !slices.Equal(gc.Hard.DietaryDisallows, tt.wantDietary) {
				t.Errorf("DietaryDisallows = %v, want %v", gc.Hard.DietaryDisallows, tt.wantDietary)
			}
			if !slices.Equal(gc.Hard.Allergens, tt.wantAllergen) {
				t.Errorf("Allergens = %v, want %v", gc.Hard.Allergens, tt.wantAllergen)
			}
			if !slices.Equal(gc.Hard.AvoidIngredients, tt.wantAvoid) {
				t.Errorf("AvoidIngredients = %v, want %v", gc.Hard.AvoidIngredients, tt.wantAvoid)
			}
			if tt.wantCuisines != nil && !slices.Equal(gc.Soft.FavoriteCuisines, tt.wantCuisines) {
				t.Errorf("FavoriteCuisines = %v, want %v", gc.Soft.FavoriteCuisines, tt.wantCuisines)
			}
			if tt.wantSpice != nil && !slices.Equal(gc.Soft.SpiceTolerances, tt.wantSpice) {
				t.Errorf("SpiceTolerances = %v, want %v", gc.Soft.SpiceTolerances, tt.wantSpice)
			}
		})
	}
}

func TestBuildGroupConstraintsDefaultsSpiceTolerance(t *testing.T) {
	gc := BuildGroupConstraints([]models.MemberConstraints{
		member("u1", models.RawConstraints{SpiceTolerance: ""}),
		member("u2", models.RawConstraints{SpiceTolerance: "mild"}),
	})

	want := []string{"MEDIUM", "MILD"}
	if !slices.Equal(gc.Soft.SpiceTolerances, want) {
		t.Errorf("SpiceTolerances = %v, want %v", gc.Soft.SpiceTolerances, want)
	}
}

func testFoods() []models.Food {
	return []models.Food{
		{ID: "f1", Name: "Bibimbap", Cuisine: "korean", Ingredients: []string{"rice", "egg", "beef"}, Allergens: []string{"eggs", "soy"}},
		{ID: "f2", Name: "Vegan Buddha Bowl", Cuisine: "western", Ingredients: []string{"quinoa", "avocado"}},
		{ID: "f3", Name: "Shrimp Pad Thai", Cuisine: "southeast asian", Ingredients: []string{"noodle", "shrimp"}, Allergens: []string{"shellfish", "nuts"}, DietaryViolations: []string{"vegetarian", "vegan"}},
		{ID: "f4", Name: "Margherita Pizza", Cuisine: "european", Ingredients: []string{"cheese", "tomato"}, Allergens: []string{"dairy", "wheat"}, DietaryViolations: []string{"vegan", "lactose-free", "gluten-free"}},
	}
}

func TestFilterFoods(t *testing.T) {
	foods := testFoods()

	tests := []struct {
		name     string
		gc       models.GroupConstraints
		maxCount int
		wantIDs  []string
	}{
		{
			name:     "no constraints passes everything",
			gc:       models.GroupConstraints{},
			maxCount: 10,
			wantIDs:  []string{"f1", "f2", "f3", "f4"},
		},
		{
			name: "dietary disallow removes violators",
			gc: models.GroupConstraints{
				Hard: models.HardConstraints{DietaryDisallows: []string{"vegan"}},
			},
			maxCount: 10,
			wantIDs:  []string{"f1", "f2"},
		},
		{
			name: "allergen removes matching foods",
			gc: models.GroupConstraints{
				Hard: models.HardConstraints{Allergens: []string{"shellfish", "dairy"}},
			},
			maxCount: 10,
			wantIDs:  []string{"f1", "f2"},
		},
		{
			name: "avoided ingredient removes matching foods",
			gc: models.GroupConstraints{
				Hard: models.HardConstraints{AvoidIngredients: []string{"rice"}},
			},
			maxCount: 10,
			wantIDs:  []string{"f2", "f3", "f4"},
		},
		{
			name: "maxCount truncates collection",
			gc:   models.GroupConstraints{},

			maxCount: 2,
			wantIDs:  []string{"f1", "f2"},
		},
		{
			name:     "maxCount zero collects nothing",
			gc:       models.GroupConstraints{},
			maxCount: 0,
			wantIDs:  []string{},
		},
		{
			name:     "negative maxCount collects nothing",
			gc:       models.GroupConstraints{},
			maxCount: -1,
			wantIDs:  []string{},
		},
		{
			name: "fully constrained group yields empty result",
			gc: models.GroupConstraints{
				Hard: models.HardConstraints{
					DietaryDisallows: []string{"vegan"},
					Allergens:        []string{"eggs"},
					AvoidIngredients: []string{"quinoa"},
				},
			},
			maxCount: 10,
			wantIDs:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterFoods(foods, tt.gc, tt.maxCount)

			gotIDs := make([]string, len(got))
			for i, f := range got {
				gotIDs[i] = f.ID
			}
			if !slices.Equal(gotIDs, tt.wantIDs) {
				t.Errorf("FilterFoods() ids = %v, want %v", gotIDs, tt.wantIDs)
			}
		})
	}

	t.Run("empty result is non-nil", func(t *testing.T) {
		got := FilterFoods(nil, models.GroupConstraints{}, 10)
		if got == nil {
			t.Error("FilterFoods() returned nil, want empty slice")
		}
	})
}

func TestCuisineCompatibility(t *testing.T) {
	foods := testFoods()

	got := CuisineCompatibility(foods, models.GroupConstraints{
		Hard: models.HardConstraints{Allergens: []string{"shellfish"}},
	})

	want := map[string]int{"korean": 1, "western": 1, "european": 1}
	if len(got) != len(want) {
		t.Fatalf("CuisineCompatibility() = %v, want %v", got, want)
	}
	for cuisine, count := range want {
		if got[cuisine] != count {
			t.Errorf("CuisineCompatibility()[%q] = %d, want %d", cuisine, got[cuisine], count)
		}
	}
}

func TestCuisineCompatibilityUnknownCuisine(t *testing.T) {
	foods := []models.Food{{ID: "f9", Name: "Mystery Bowl"}}

	got := CuisineCompatibility(foods, models.GroupConstraints{})
	if got["unknown"] != 1 {
		t.Errorf(`CuisineCompatibility()["unknown"] = %d, want 1`, got["unknown"])
	}
}
