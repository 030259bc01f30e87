package testutil

import (
	"time"

	"github.com/mealcraft/mealcraft-api/internal/models"
)

// TestUser creates a test user with realistic fields.
func TestUser() *models.User {
	return &models.User{
		ID:          1,
		DisplayName: "Test Cook",
		Email:       "cook@example.com",
	}
}

// TestRecipe creates a test recipe with metric quantities and a mix of
// timed and untimed steps.
func TestRecipe() *models.Recipe {
	return &models.Recipe{
		ID:         "recipe-1700000000000-abc123xyz",
		Title:      "Garlic Butter Pasta",
		PrepTime:   25,
		Difficulty: models.DifficultyEasy,
		Servings:   2,
		Ingredients: models.Ingredients{
			{Name: "pasta", Quantity: 200, Unit: "g"},
			{Name: "garlic", Quantity: 3, Unit: "cloves"},
			{Name: "parmesan", Quantity: 30, Unit: "g"},
		},
		Instructions: models.Instructions{
			{Step: 1, Description: "Bring a large pot of salted water to a boil.", Duration: 0},
			{Step: 2, Description: "Cook the pasta until al dente.", Duration: 9},
			{Step: 3, Description: "Toss the pasta with garlic butter and parmesan.", Duration: 2},
		},
		CreatedAt: time.Date(2024, 11, 14, 12, 0, 0, 0, time.UTC),
	}
}
