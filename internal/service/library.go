package service

import (
	"context"
	"strings"

	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/models"
	"github.com/mealcraft/mealcraft-api/internal/repository"
)

// LibraryService manages a user's saved recipe library on top of the
// configured RecipeStore.
type LibraryService struct {
	Cfg   *config.Config
	Store repository.RecipeStore
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(cfg *config.Config, store repository.RecipeStore) *LibraryService {
	return &LibraryService{
		Cfg:   cfg,
		Store: store,
	}
}

// SaveRecipe stores a recipe in the user's library after checking it is
// not a near-duplicate of one already saved. Re-saving the same recipe ID
// is an update, not a duplicate.
func (s *LibraryService) SaveRecipe(ctx context.Context, userID uint, recipe *models.Recipe) error {
	existing, err := s.Store.ListRecipes(ctx, userID)
	if err != nil {
		return err
	}
	for i := range existing {
		// Skip the recipe's own entry; a re-save is an update, but it is
		// still checked against the rest of the library.
		if existing[i].ID == recipe.ID {
			continue
		}
		if isDuplicateRecipe(recipe, &existing[i]) {
			return ErrDuplicateRecipe
		}
	}
	return s.Store.SaveRecipe(ctx, userID, recipe)
}

// ListRecipes returns the user's saved recipes, most recently saved first.
func (s *LibraryService) ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error) {
	return s.Store.ListRecipes(ctx, userID)
}

// GetRecipe resolves a recipe by ID regardless of owner, for public
// deep links.
func (s *LibraryService) GetRecipe(ctx context.Context, recipeID string) (*models.Recipe, error) {
	return s.Store.GetRecipe(ctx, recipeID)
}

// DeleteRecipe removes a recipe from the user's library. Deleting a
// recipe that is not saved is a no-op.
func (s *LibraryService) DeleteRecipe(ctx context.Context, userID uint, recipeID string) error {
	return s.Store.DeleteRecipe(ctx, userID, recipeID)
}

// UpdateRating sets the rating and optional comment on a saved recipe.
func (s *LibraryService) UpdateRating(ctx context.Context, userID uint, recipeID string, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return s.Store.UpdateRating(ctx, userID, recipeID, rating, comment)
}

// IsSaved reports whether the recipe is in the user's library.
func (s *LibraryService) IsSaved(ctx context.Context, userID uint, recipeID string) (bool, error) {
	return s.Store.IsSaved(ctx, userID, recipeID)
}

// isDuplicateRecipe applies the approximate duplicate heuristic: more than
// 70% ingredient-name overlap plus at least one shared title word. It errs
// toward false negatives; two recipes with the same ingredients but
// unrelated titles are allowed.
func isDuplicateRecipe(a, b *models.Recipe) bool {
	return ingredientOverlap(a.Ingredients, b.Ingredients) > 0.7 &&
		sharesTitleWord(a.Title, b.Title)
}

// ingredientOverlap returns the fraction of a's ingredient names that
// also appear in b, by case-insensitive name equality.
func ingredientOverlap(a, b models.Ingredients) float64 {
	if len(a) == 0 {
		return 0
	}
	names := make(map[string]bool, len(b))
	for _, ing := range b {
		names[strings.ToLower(ing.Name)] = true
	}
	matched := 0
	for _, ing := range a {
		if names[strings.ToLower(ing.Name)] {
			matched++
		}
	}
	return float64(matched) / float64(len(a))
}

// sharesTitleWord reports whether the two titles have a word in common,
// ignoring short filler words.
func sharesTitleWord(a, b string) bool {
	wordsA := titleWords(a)
	for w := range titleWords(b) {
		if wordsA[w] {
			return true
		}
	}
	return false
}

func titleWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, ",.!?()")
		if len(w) > 3 {
			words[w] = true
		}
	}
	return words
}
