package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	goaway "github.com/TwiN/go-away"
	"github.com/mealcraft/mealcraft-api/internal/ai"
	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/logger"
	"github.com/mealcraft/mealcraft-api/internal/models"
	"github.com/mealcraft/mealcraft-api/internal/util"
	"go.uber.org/zap"
)

// RecipeService generates recipes from user-supplied ingredients.
type RecipeService struct {
	Cfg          *config.Config
	TextProvider ai.TextProvider
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(cfg *config.Config, textProvider ai.TextProvider) *RecipeService {
	return &RecipeService{
		Cfg:          cfg,
		TextProvider: textProvider,
	}
}

// GenerateRequest holds the parameters for a generation call.
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
	Difficulty  string   `json:"difficulty"`
	AvoidTitles []string `json:"avoid_titles"`
}

// aiRecipe mirrors the JSON shape the model is prompted to return.
type aiRecipe struct {
	Title        string `json:"title"`
	PrepTime     int    `json:"prepTime"`
	Difficulty   string `json:"difficulty"`
	Servings     int    `json:"servings"`
	Ingredients  []struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	} `json:"ingredients"`
	Instructions []struct {
		Step        int    `json:"step"`
		Description string `json:"description"`
		Duration    int    `json:"duration"`
	} `json:"instructions"`
}

// Generate produces a recipe restricted to the supplied ingredients. When
// the generated title collides with an avoid-title it regenerates exactly
// once before giving up with ErrDuplicateTitle.
func (s *RecipeService) Generate(ctx context.Context, user *models.User, req GenerateRequest) (*models.Recipe, error) {
	supplied := normalizeIngredientNames(req.Ingredients)
	if len(supplied) == 0 {
		return nil, ErrNoIngredients
	}
	if goaway.IsProfane(strings.Join(supplied, " ")) {
		return nil, ErrProfaneInput
	}

	difficulty := resolveDifficulty(req.Difficulty)
	avoid := append([]string{}, req.AvoidTitles...)

	const maxAttempts = 2
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		recipe, err := s.generateOnce(ctx, supplied, difficulty, avoid)
		if err != nil {
			return nil, err
		}

		if dup := duplicateTitle(recipe.Title, req.AvoidTitles); dup != "" {
			logger.Get().Info("generated title collides, regenerating",
				zap.String("title", recipe.Title),
				zap.Uint("user_id", user.ID),
				zap.Int("attempt", attempt),
			)
			avoid = append(avoid, recipe.Title)
			continue
		}
		return recipe, nil
	}

	return nil, ErrDuplicateTitle
}

// generateOnce runs a single model call plus post-processing.
func (s *RecipeService) generateOnce(ctx context.Context, supplied []string, difficulty models.Difficulty, avoid []string) (*models.Recipe, error) {
	raw, err := s.TextProvider.GenerateRecipe(ctx, ai.RecipeRequest{
		Ingredients: supplied,
		Difficulty:  string(difficulty),
		AvoidTitles: avoid,
	})
	if err != nil {
		return nil, fmt.Errorf("generate recipe: %w", err)
	}

	parsed, err := parseRecipeResponse(raw)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		ID:         models.NewRecipeID(),
		Title:      strings.TrimSpace(parsed.Title),
		PrepTime:   parsed.PrepTime,
		Difficulty: difficulty,
		Servings:   parsed.Servings,
		CreatedAt:  time.Now().UTC(),
	}
	if recipe.Servings <= 0 {
		recipe.Servings = 2
	}

	for _, ing := range parsed.Ingredients {
		name := strings.ToLower(strings.TrimSpace(ing.Name))
		if name == "" || isStaple(name) || !matchesSupplied(name, supplied) {
			continue
		}
		quantity, unit := toMetric(ing.Quantity, ing.Unit)
		recipe.Ingredients = append(recipe.Ingredients, models.Ingredient{
			Name:     name,
			Quantity: quantity,
			Unit:     unit,
		})
	}
	if len(recipe.Ingredients) == 0 {
		return nil, ErrNoValidRecipe
	}

	for _, inst := range parsed.Instructions {
		desc := scrubInstruction(inst.Description)
		if desc == "" {
			continue
		}
		duration := inst.Duration
		if duration < 0 {
			duration = 0
		}
		recipe.Instructions = append(recipe.Instructions, models.Instruction{
			Step:        len(recipe.Instructions) + 1,
			Description: desc,
			Duration:    duration,
		})
	}
	if len(recipe.Instructions) == 0 {
		return nil, ErrNoValidRecipe
	}

	return recipe, nil
}

// parseRecipeResponse parses model output into an aiRecipe: direct JSON
// first, then the outermost {...} block of the fence-stripped text.
func parseRecipeResponse(raw string) (*aiRecipe, error) {
	stripped := util.StripCodeFences(raw)

	var parsed aiRecipe
	if err := json.Unmarshal([]byte(stripped), &parsed); err == nil && parsed.Title != "" {
		return &parsed, nil
	}

	if block := util.ExtractJSONObject(stripped); block != "" {
		parsed = aiRecipe{}
		if err := json.Unmarshal([]byte(block), &parsed); err == nil && parsed.Title != "" {
			return &parsed, nil
		}
	}

	return nil, fmt.Errorf("%w: no recipe object in response", ErrMalformedResponse)
}

// normalizeIngredientNames trims, lowercases, and drops empty entries.
func normalizeIngredientNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// resolveDifficulty maps request difficulty to the model enum, picking at
// random when the caller leaves it empty.
func resolveDifficulty(d string) models.Difficulty {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "easy":
		return models.DifficultyEasy
	case "medium":
		return models.DifficultyMedium
	case "difficult", "hard":
		return models.DifficultyHard
	case "":
		all := []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
		return all[rand.Intn(len(all))]
	default:
		return models.DifficultyMedium
	}
}

// duplicateTitle returns the first avoid-title that collides with the
// generated title, comparing case-insensitively in both substring
// directions.
func duplicateTitle(title string, avoid []string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	for _, a := range avoid {
		existing := strings.ToLower(strings.TrimSpace(a))
		if existing == "" {
			continue
		}
		if strings.Contains(t, existing) || strings.Contains(existing, t) {
			return a
		}
	}
	return ""
}
