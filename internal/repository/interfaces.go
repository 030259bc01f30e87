package repository

import (
	"context"

	"github.com/mealcraft/mealcraft-api/internal/models"
)

// RecipeStore is the interface for saved-recipe persistence. Two adapters
// implement it: FileStore (single JSON document) and PostgresStore; which
// one runs is decided at startup from the environment.
type RecipeStore interface {
	// SaveRecipe upserts a recipe into the user's library. Saving an
	// already-saved recipe ID merges the new document over the old one and
	// keeps the original saved-at time.
	SaveRecipe(ctx context.Context, userID uint, recipe *models.Recipe) error

	// GetRecipe resolves a recipe by ID regardless of owner. Returns
	// NotFoundError when no user has it saved.
	GetRecipe(ctx context.Context, recipeID string) (*models.Recipe, error)

	// ListRecipes returns the user's recipes, most recently saved first.
	ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error)

	// DeleteRecipe removes a recipe from the user's library. Missing IDs
	// are a no-op.
	DeleteRecipe(ctx context.Context, userID uint, recipeID string) error

	// UpdateRating sets the rating and comment on a saved recipe without
	// touching the rest of the document. Returns NotFoundError when the
	// recipe is not in the user's library.
	UpdateRating(ctx context.Context, userID uint, recipeID string, rating int, comment string) error

	// IsSaved reports whether the recipe is in the user's library.
	IsSaved(ctx context.Context, userID uint, recipeID string) (bool, error)
}

// mergeRating resolves the rating columns on a re-save. A document with no
// rating keeps whatever the library already holds, so a plain re-save never
// clears feedback; a rated document replaces both fields. Both adapters
// share this rule.
func mergeRating(oldRating int, oldComment string, newRating int, newComment string) (int, string) {
	if newRating == 0 {
		return oldRating, oldComment
	}
	return newRating, newComment
}
