// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/veato-app/veato-server/models"
)

// The refiner's rule tables are ordered slices, not maps: keyword matching is
// first-match-wins, so iteration order is part of the contract. "low cal"
// must be listed after "low calorie" or it would shadow it.

type nutritionRule struct {
	keyword    string
	nutrient   string
	descending bool
}

var nutritionRules = []nutritionRule{
	{"high protein", "protein", true},
	{"low protein", "protein", false},
	{"high calorie", "calories", true},
	{"low calorie", "calories", false},
	{"low cal", "calories", false},
	{"diet", "calories", false},
	{"healthy", "calories", false},
	{"light", "calories", false},
	{"high carb", "carbs", true},
	{"low carb", "carbs", false},
	{"keto", "carbs", false},
	{"high fat", "fat", true},
	{"low fat", "fat", false},
}

type keywordRule struct {
	value    string
	keywords []string
}

var heavinessRules = []keywordRule{
	{"light", []string{"light", "not too heavy", "something light"}},
	{"medium", []string{"medium", "moderate"}},
	{"heavy", []string{"heavy", "filling", "hearty", "substantial"}},
}

var mealTypeRules = []keywordRule{
	{"rice-based", []string{"rice", "bibimbap", "rice bowl", "fried rice", "risotto", "pilaf"}},
	{"soup-based", []string{"soup", "stew", "jjigae", "hot pot", "broth", "chowder"}},
	{"meat-based", []string{"meat", "beef", "pork", "chicken", "steak", "bbq", "barbecue", "grilled", "gui"}},
	{"noodle-based", []string{"noodle", "pasta", "ramen", "udon", "soba", "spaghetti", "linguine"}},
	{"seafood-based", []string{"seafood", "fish", "shrimp", "crab", "lobster", "salmon", "tuna", "sushi"}},
	{"bread-based", []string{"bread", "sandwich", "wrap", "burger", "toast", "baguette"}},
	{"salad-based", []string{"salad", "greens", "lettuce", "fresh"}},
	{"snack", []string{"snack", "appetizer", "side dish", "banchan", "finger food"}},
	{"dessert", []string{"dessert", "sweet", "cake", "ice cream", "pastry", "pudding"}},
	{"beverage", []string{"beverage", "drink", "juice", "smoothie", "tea", "coffee"}},
}

var ingredientKeywords = []string{
	"tofu", "chicken", "beef", "pork", "fish", "shrimp", "salmon",
	"egg", "cheese", "mushroom", "noodle", "rice", "pasta", "kimchi",
	"seaweed", "avocado", "tomato", "potato", "spinach", "broccoli",
}

// Refine narrows and reorders already hard-filtered candidates using
// whatever the occasion text asks for: a nutrition sort, then a meal
// characteristic filter, then an ingredient filter. Each pass is best-effort
// and falls back to its input when it would otherwise empty the list, so
// Refine never turns a non-empty input into an empty output.
func Refine(foods []models.Food, occasion string) []models.Food {
	if occasion == "" {
		return foods
	}
	occasion = strings.ToLower(occasion)

	foods = refineByNutrition(foods, occasion)
	foods = refineByMealCharacteristics(foods, occasion)
	foods = refineByIngredientMention(foods, occasion)
	return foods
}

func refineByNutrition(foods []models.Food, occasion string) []models.Food {
	var rule *nutritionRule
	for i := range nutritionRules {
		if strings.Contains(occasion, nutritionRules[i].keyword) {
			rule = &nutritionRules[i]
			break
		}
	}
	if rule == nil {
		return foods
	}

	withData := make([]models.Food, 0, len(foods))
	for _, food := range foods {
		if food.Nutrition != nil {
			withData = append(withData, food)
		}
	}
	if len(withData) == 0 {
		slog.Warn("No candidates carry nutrition data, keeping filter order", "nutrient", rule.nutrient)
		return foods
	}

	// Stable so equal nutrient values keep filter order.
	sort.SliceStable(withData, func(i, j int) bool {
		a := nutrientValue(withData[i].Nutrition, rule.nutrient)
		b := nutrientValue(withData[j].Nutrition, rule.nutrient)
		if rule.descending {
			return a > b
		}
		return a < b
	})
	return withData
}

func refineByMealCharacteristics(foods []models.Food, occasion string) []models.Food {
	heaviness := matchKeywordRule(heavinessRules, occasion)
	mealType := matchKeywordRule(mealTypeRules, occasion)
	if heaviness == "" && mealType == "" {
		return foods
	}

	filtered := make([]models.Food, 0, len(foods))
	for _, food := range foods {
		if heaviness != "" && foodHeaviness(food) != heaviness {
			continue
		}
		if mealType != "" && food.MealType != mealType {
			continue
		}
		filtered = append(filtered, food)
	}
	if len(filtered) == 0 {
		return foods
	}
	return filtered
}

func refineByIngredientMention(foods []models.Food, occasion string) []models.Food {
	var mentioned []string
	for _, keyword := range ingredientKeywords {
		if strings.Contains(occasion, keyword) {
			mentioned = append(mentioned, keyword)
		}
	}
	if len(mentioned) == 0 {
		return foods
	}

	filtered := make([]models.Food, 0, len(foods))
	for _, food := range foods {
		joined := strings.ToLower(strings.Join(food.Ingredients, " "))
		for _, keyword := range mentioned {
			if strings.Contains(joined, keyword) {
				filtered = append(filtered, food)
				break
			}
		}
	}
	if len(filtered) == 0 {
		return foods
	}
	return filtered
}

func matchKeywordRule(rules []keywordRule, occasion string) string {
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(occasion, keyword) {
				return rule.value
			}
		}
	}
	return ""
}

func foodHeaviness(food models.Food) string {
	if food.Heaviness == "" {
		return "medium"
	}
	return food.Heaviness
}

func nutrientValue(n *models.Nutrition, nutrient string) float64 {
	switch nutrient {
	case "protein":
		return n.Protein
	case "calories":
		return n.Calories
	case "carbs":
		return n.Carbs
	case "fat":
		return n.Fat
	}
	return 0
}
