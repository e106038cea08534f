// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/veato-app/veato-server/cliparse"
	"github.com/veato-app/veato-server/db"
	"github.com/veato-app/veato-server/models"
	"github.com/veato-app/veato-server/store"
)

var testDBSeq atomic.Int64

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. Each call gets its own database; it is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A named in-memory database so the connection pool shares one store.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Shared-cache in-memory sqlite still serializes writers; one
	// connection avoids table-lock errors under concurrent tests.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              5001,
		DatabaseURL:       "file:test?mode=memory",
		DatabaseType:      "sqlite",
		CatalogPath:       "food_dataset.json",
		OpenAIModel:       "gpt-5.1",
		LLMTimeoutSeconds: 12,
	}
}

// SampleCatalog returns a small food catalog exercising cuisines, dietary
// violations, allergens, and nutrition data.
func SampleCatalog() []models.Food {
	return []models.Food{
		{ID: "F001", Name: "Bibimbap", Cuisine: "korean", MealType: "rice-based", Heaviness: "medium", SpiceLevel: 2,
			Ingredients: []string{"rice", "egg", "beef", "spinach"}, Allergens: []string{"eggs", "soy"},
			Nutrition: &models.Nutrition{Calories: 560, Protein: 22, Carbs: 78, Fat: 14}},
		{ID: "F002", Name: "Kimchi Jjigae", Cuisine: "korean", MealType: "soup-based", Heaviness: "medium", SpiceLevel: 3,
			Ingredients: []string{"kimchi", "pork", "tofu"}, Allergens: []string{"soy"}, DietaryViolations: []string{"vegetarian", "vegan", "halal"},
			Nutrition: &models.Nutrition{Calories: 420, Protein: 24, Carbs: 18, Fat: 28}},
		{ID: "F003", Name: "Tonkotsu Ramen", Cuisine: "japanese", MealType: "noodle-based", Heaviness: "heavy", SpiceLevel: 1,
			Ingredients: []string{"noodle", "pork", "egg"}, Allergens: []string{"eggs", "wheat"}, DietaryViolations: []string{"vegetarian", "vegan", "halal", "gluten-free"},
			Nutrition: &models.Nutrition{Calories: 650, Protein: 30, Carbs: 70, Fat: 28}},
		{ID: "F004", Name: "Salmon Sushi Set", Cuisine: "japanese", MealType: "seafood-based", Heaviness: "light", SpiceLevel: 0,
			Ingredients: []string{"rice", "salmon", "seaweed"}, Allergens: []string{"fish"}, DietaryViolations: []string{"vegetarian", "vegan"},
			Nutrition: &models.Nutrition{Calories: 390, Protein: 26, Carbs: 52, Fat: 8}},
		{ID: "F005", Name: "Vegan Buddha Bowl", Cuisine: "western", MealType: "salad-based", Heaviness: "light", SpiceLevel: 0,
			Ingredients: []string{"quinoa", "avocado", "chickpea", "spinach"},
			Nutrition: &models.Nutrition{Calories: 430, Protein: 14, Carbs: 58, Fat: 16}},
		{ID: "F006", Name: "Margherita Pizza", Cuisine: "european", MealType: "bread-based", Heaviness: "heavy", SpiceLevel: 0,
			Ingredients: []string{"cheese", "tomato", "dough"}, Allergens: []string{"dairy", "wheat"}, DietaryViolations: []string{"vegan", "lactose-free", "gluten-free"},
			Nutrition: &models.Nutrition{Calories: 710, Protein: 28, Carbs: 88, Fat: 26}},
		{ID: "F007", Name: "Pad Thai", Cuisine: "southeast asian", MealType: "noodle-based", Heaviness: "medium", SpiceLevel: 2,
			Ingredients: []string{"noodle", "shrimp", "peanut", "egg"}, Allergens: []string{"shellfish", "nuts", "eggs"}, DietaryViolations: []string{"vegetarian", "vegan"},
			Nutrition: &models.Nutrition{Calories: 580, Protein: 20, Carbs: 72, Fat: 22}},
		{ID: "F008", Name: "Mapo Tofu", Cuisine: "chinese", MealType: "rice-based", Heaviness: "medium", SpiceLevel: 3,
			Ingredients: []string{"tofu", "pork", "rice"}, Allergens: []string{"soy"}, DietaryViolations: []string{"vegetarian", "vegan", "halal"},
			Nutrition: &models.Nutrition{Calories: 480, Protein: 23, Carbs: 40, Fat: 24}},
	}
}

// SeedTeam writes a team document and returns it.
func SeedTeam(t *testing.T, teams store.TeamStore, id, name string, members ...string) models.Team {
	t.Helper()

	team := models.Team{ID: id, Name: name, Members: members}
	if err := teams.Save(context.Background(), team); err != nil {
		t.Fatalf("Failed to seed team: %v", err)
	}
	return team
}

// SeedProfile writes one user's raw constraints.
func SeedProfile(t *testing.T, profiles store.ProfileDirectory, userID string, c models.RawConstraints) {
	t.Helper()

	if err := profiles.Save(context.Background(), userID, c); err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
