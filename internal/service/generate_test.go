package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mealcraft/mealcraft-api/internal/ai"
	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/models"
	"github.com/mealcraft/mealcraft-api/internal/testutil"
)

// frenchToastResponse is a realistic model reply including staples and an
// ingredient the user never supplied, both of which must be filtered out.
const frenchToastResponse = `{
	"title": "Simple French Toast",
	"prepTime": 15,
	"difficulty": "Easy",
	"servings": 2,
	"ingredients": [
		{"name": "Egg", "quantity": 2, "unit": ""},
		{"name": "Bread", "quantity": 4, "unit": "slices"},
		{"name": "Butter", "quantity": 1, "unit": "tbsp"},
		{"name": "Salt", "quantity": 1, "unit": "tsp"},
		{"name": "Cinnamon", "quantity": 1, "unit": "tsp"}
	],
	"instructions": [
		{"step": 1, "description": "Whisk the eggs in a shallow bowl with salt.", "duration": 0},
		{"step": 2, "description": "Dip each bread slice in the egg.", "duration": 0},
		{"step": 3, "description": "Fry until golden on both sides.", "duration": 4}
	]
}`

func newTestRecipeService(mock *testutil.MockTextProvider) *RecipeService {
	return NewRecipeService(&config.Config{}, mock)
}

func TestGenerate_FiltersStaplesAndUnmatchedIngredients(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return frenchToastResponse, nil
		},
	}
	svc := newTestRecipeService(mock)

	recipe, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"Egg", "Bread"},
		Difficulty:  "easy",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if recipe.Title != "Simple French Toast" {
		t.Errorf("unexpected title: %q", recipe.Title)
	}
	if recipe.Difficulty != models.DifficultyEasy {
		t.Errorf("unexpected difficulty: %q", recipe.Difficulty)
	}

	// Butter and salt are staples, cinnamon was never supplied.
	if len(recipe.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d: %+v", len(recipe.Ingredients), recipe.Ingredients)
	}
	if recipe.Ingredients[0].Name != "egg" || recipe.Ingredients[1].Name != "bread" {
		t.Errorf("unexpected ingredient names: %+v", recipe.Ingredients)
	}
	// "slices" is not a unit, the quantity survives as a bare count.
	if recipe.Ingredients[1].Quantity != 4 || recipe.Ingredients[1].Unit != "" {
		t.Errorf("expected 4 bare slices, got %v %q", recipe.Ingredients[1].Quantity, recipe.Ingredients[1].Unit)
	}
}

func TestGenerate_ScrubsStaplesFromInstructionsAndRenumbers(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return frenchToastResponse, nil
		},
	}
	svc := newTestRecipeService(mock)

	recipe, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"egg", "bread"},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(recipe.Instructions) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(recipe.Instructions))
	}
	for i, inst := range recipe.Instructions {
		if inst.Step != i+1 {
			t.Errorf("instruction %d has step %d, want %d", i, inst.Step, i+1)
		}
	}
	if got := recipe.Instructions[0].Description; got != "Whisk the eggs in a shallow bowl." {
		t.Errorf("staple mention not scrubbed: %q", got)
	}
	if recipe.Instructions[2].Duration != 4 {
		t.Errorf("expected duration 4 on last step, got %d", recipe.Instructions[2].Duration)
	}
}

func TestGenerate_RecipeIDAndDefaults(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return frenchToastResponse, nil
		},
	}
	svc := newTestRecipeService(mock)

	recipe, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"egg", "bread"},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(recipe.ID) == 0 || recipe.ID[:7] != "recipe-" {
		t.Errorf("unexpected recipe ID format: %q", recipe.ID)
	}
	if recipe.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if recipe.Servings != 2 {
		t.Errorf("expected 2 servings, got %d", recipe.Servings)
	}
}

func TestGenerate_NoIngredients(t *testing.T) {
	svc := newTestRecipeService(&testutil.MockTextProvider{})

	_, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"", "   "},
	})
	if !errors.Is(err, ErrNoIngredients) {
		t.Fatalf("expected ErrNoIngredients, got %v", err)
	}
}

func TestGenerate_ProfaneInput(t *testing.T) {
	svc := newTestRecipeService(&testutil.MockTextProvider{})

	_, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"shit"},
	})
	if !errors.Is(err, ErrProfaneInput) {
		t.Fatalf("expected ErrProfaneInput, got %v", err)
	}
}

func TestGenerate_MalformedResponse(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return "Sorry, I can't help with that.", nil
		},
	}
	svc := newTestRecipeService(mock)

	_, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"egg"},
	})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerate_FencedJSONResponse(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return "Here is your recipe:\n```json\n" + frenchToastResponse + "\n```", nil
		},
	}
	svc := newTestRecipeService(mock)

	recipe, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"egg", "bread"},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if recipe.Title != "Simple French Toast" {
		t.Errorf("unexpected title: %q", recipe.Title)
	}
}

func TestGenerate_DuplicateTitleRegeneratesOnce(t *testing.T) {
	calls := 0
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			calls++
			if calls == 1 {
				return frenchToastResponse, nil
			}
			// Second attempt must carry the colliding title in AvoidTitles.
			found := false
			for _, title := range req.AvoidTitles {
				if title == "Simple French Toast" {
					found = true
				}
			}
			if !found {
				t.Error("expected colliding title in avoid list on retry")
			}
			return `{"title": "Eggy Bread Stack", "prepTime": 10, "servings": 2,
				"ingredients": [{"name": "egg", "quantity": 2, "unit": ""}],
				"instructions": [{"step": 1, "description": "Cook it.", "duration": 0}]}`, nil
		},
	}
	svc := newTestRecipeService(mock)

	recipe, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"egg", "bread"},
		AvoidTitles: []string{"Simple French Toast"},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 provider calls, got %d", calls)
	}
	if recipe.Title != "Eggy Bread Stack" {
		t.Errorf("unexpected title after regeneration: %q", recipe.Title)
	}
}

func TestGenerate_DuplicateTitleTwiceFails(t *testing.T) {
	calls := 0
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			calls++
			return frenchToastResponse, nil
		},
	}
	svc := newTestRecipeService(mock)

	_, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"egg", "bread"},
		AvoidTitles: []string{"Simple French Toast"},
	})
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 provider calls, got %d", calls)
	}
}

func TestGenerate_AllIngredientsFiltered(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return `{"title": "Seasoned Nothing", "prepTime": 5, "servings": 2,
				"ingredients": [{"name": "salt", "quantity": 1, "unit": "tsp"}],
				"instructions": [{"step": 1, "description": "Mix well.", "duration": 0}]}`, nil
		},
	}
	svc := newTestRecipeService(mock)

	_, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"egg"},
	})
	if !errors.Is(err, ErrNoValidRecipe) {
		t.Fatalf("expected ErrNoValidRecipe, got %v", err)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return "", fmt.Errorf("anthropic API error: overloaded")
		},
	}
	svc := newTestRecipeService(mock)

	_, err := svc.Generate(context.Background(), testutil.TestUser(), GenerateRequest{
		Ingredients: []string{"egg"},
	})
	if err == nil {
		t.Fatal("expected error from provider failure")
	}
}

func TestResolveDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want models.Difficulty
	}{
		{"easy", models.DifficultyEasy},
		{"Medium", models.DifficultyMedium},
		{"difficult", models.DifficultyHard},
		{"hard", models.DifficultyHard},
		{"nonsense", models.DifficultyMedium},
	}
	for _, tt := range tests {
		if got := resolveDifficulty(tt.in); got != tt.want {
			t.Errorf("resolveDifficulty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// Empty difficulty picks one of the three at random.
	got := resolveDifficulty("")
	if got != models.DifficultyEasy && got != models.DifficultyMedium && got != models.DifficultyHard {
		t.Errorf("resolveDifficulty(\"\") = %q, not a valid difficulty", got)
	}
}

func TestDuplicateTitle(t *testing.T) {
	avoid := []string{"Simple French Toast", "Garlic Butter Pasta"}

	if got := duplicateTitle("simple french toast", avoid); got != "Simple French Toast" {
		t.Errorf("case-insensitive match failed, got %q", got)
	}
	if got := duplicateTitle("Deluxe Simple French Toast", avoid); got != "Simple French Toast" {
		t.Errorf("superstring match failed, got %q", got)
	}
	if got := duplicateTitle("Pasta", avoid); got != "Garlic Butter Pasta" {
		t.Errorf("substring match failed, got %q", got)
	}
	if got := duplicateTitle("Shakshuka", avoid); got != "" {
		t.Errorf("expected no collision, got %q", got)
	}
}
