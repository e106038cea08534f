// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/veato-app/veato-server/ranking"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-5.1"
	defaultTimeout = 12 * time.Second

	systemPrompt = "You rank meals by soft preferences. Return only valid JSON."
)

// Config holds the OpenAI connection settings. APIKey is required; the other
// fields fall back to defaults when zero.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client ranks meal candidates through the OpenAI chat completions API.
// It implements ranking.Service. Errors are returned to the caller (the
// ranker), which degrades to its deterministic fallback; Client never
// retries on its own.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New builds a Client from cfg. A nil logger falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type rankingResult struct {
	RankedFoodIDs []string `json:"ranked_food_ids"`
}

// RankCandidates sends one chat completion request and parses the model's
// JSON answer into an ordered food ID list.
func (c *Client) RankCandidates(ctx context.Context, req ranking.Request) ([]string, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completions returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	content := stripCodeFences(chat.Choices[0].Message.Content)

	var result rankingResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("decoding ranking result: %w", err)
	}

	c.logger.Debug("model ranked candidates", "count", len(result.RankedFoodIDs), "model", c.cfg.Model)
	return result.RankedFoodIDs, nil
}

// stripCodeFences unwraps a ```json ... ``` block if the model added one
// despite being told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func buildPrompt(req ranking.Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a meal recommendation assistant. Rank the following %d meals based on how well they match the group's preferences.\n\n", len(req.Candidates))
	b.WriteString("IMPORTANT: All meals have ALREADY been filtered to satisfy hard constraints. However, the constraint information is provided for your awareness.\n\n")

	b.WriteString("## Group Hard Constraints (ALREADY FILTERED):\n")
	fmt.Fprintf(&b, "- Dietary restrictions to avoid: %s\n", orNone(req.Hard.DietaryDisallows))
	fmt.Fprintf(&b, "- Allergens to avoid: %s\n", orNone(req.Hard.Allergens))
	fmt.Fprintf(&b, "- Ingredients to avoid: %s\n\n", orNone(req.Hard.AvoidIngredients))

	b.WriteString("## Group Soft Preferences:\n")
	fmt.Fprintf(&b, "- Favorite cuisines: %v (higher count = more members prefer it)\n", req.CuisineCounts)
	fmt.Fprintf(&b, "- Average spice tolerance: %.1f/3 (1=mild, 2=medium, 3=spicy)\n", req.AvgSpiceTolerance)
	if req.Occasion != "" {
		fmt.Fprintf(&b, "- Occasion note: %q\n", req.Occasion)
	}

	b.WriteString("\n## Candidate Meals (ALREADY HARD-FILTERED - ALL ARE SAFE):\n")
	for i, c := range req.Candidates {
		ingredients := c.Ingredients
		if len(ingredients) > 6 {
			ingredients = ingredients[:6]
		}
		nutrition := "N/A"
		if c.Nutrition != nil {
			nutrition = fmt.Sprintf("%.0fcal", c.Nutrition.Calories)
		}
		fmt.Fprintf(&b, "%d. %s (%s) - %s, spice %d/4, %s, %s\n", i+1, c.Name, c.FoodID, c.Cuisine, c.SpiceLevel, c.Heaviness, nutrition)
		fmt.Fprintf(&b, "   Ingredients: [%s] | Allergens: [%s] | Dietary: [%s]\n",
			strings.Join(ingredients, ", "), orNoneList(c.Allergens), orNoneList(c.DietaryViolations))
	}

	b.WriteString("\n## Instructions:\n")
	b.WriteString("1. Match favorite cuisines (weighted by member count) - this is your PRIMARY ranking factor\n")
	b.WriteString("2. Consider spice level compatibility (don't recommend spice 4/4 if tolerance is 1/3)\n")
	b.WriteString("3. Use other occasion context if provided (e.g., \"kids\" → prefer milder options, \"quick\" → prefer lighter meals)\n")
	b.WriteString("4. Consider meal balance and variety in your ranking\n")
	b.WriteString("5. ALL foods are safe to recommend (already filtered for dietary restrictions, allergies, and specific ingredients/nutrition)\n")
	fmt.Fprintf(&b, "6. Return top %d meal IDs in ranked order (best match first)\n\n", req.TopK)

	b.WriteString("Return ONLY valid JSON with this exact format:\n")
	b.WriteString(`{"ranked_food_ids": ["F001", "F023", "F117"]}`)
	b.WriteString("\n")

	return b.String()
}

func orNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

func orNoneList(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
