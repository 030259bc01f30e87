package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/mealcraft/mealcraft-api/internal/models"
	"gorm.io/gorm"
)

// PostgresStore implements RecipeStore on Postgres via GORM. Recipes are
// stored per (user_id, recipe_id) with the document in a JSONB column.
type PostgresStore struct {
	DB *gorm.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// SaveRecipe upserts the recipe row. An existing row keeps its saved_at
// time and merges the rating columns via mergeRating, the same contract
// the file store follows.
func (p *PostgresStore) SaveRecipe(ctx context.Context, userID uint, recipe *models.Recipe) error {
	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SavedRecipe
		err := tx.Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := models.SavedRecipe{
				UserID:          userID,
				RecipeID:        recipe.ID,
				Title:           recipe.Title,
				Doc:             models.RecipeDoc{Recipe: *recipe},
				IngredientNames: ingredientNames(recipe),
				Rating:          recipe.UserRating,
				Comment:         recipe.UserComment,
				SavedAt:         time.Now().UTC(),
			}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		rating, comment := mergeRating(existing.Rating, existing.Comment, recipe.UserRating, recipe.UserComment)
		return tx.Model(&existing).Updates(map[string]interface{}{
			"title":            recipe.Title,
			"doc":              models.RecipeDoc{Recipe: *recipe},
			"ingredient_names": ingredientNames(recipe),
			"rating":           rating,
			"comment":          comment,
		}).Error
	})
}

// GetRecipe resolves a recipe by ID regardless of owner.
func (p *PostgresStore) GetRecipe(ctx context.Context, recipeID string) (*models.Recipe, error) {
	var row models.SavedRecipe
	err := p.DB.WithContext(ctx).Where("recipe_id = ?", recipeID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("recipe not found: " + recipeID)
	}
	if err != nil {
		return nil, err
	}
	recipe := rowToRecipe(&row)
	return &recipe, nil
}

// ListRecipes returns the user's recipes, most recently saved first.
func (p *PostgresStore) ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error) {
	var rows []models.SavedRecipe
	err := p.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("saved_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, len(rows))
	for i := range rows {
		recipes[i] = rowToRecipe(&rows[i])
	}
	return recipes, nil
}

// DeleteRecipe removes the row; missing IDs are a no-op.
func (p *PostgresStore) DeleteRecipe(ctx context.Context, userID uint, recipeID string) error {
	return p.DB.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.SavedRecipe{}).Error
}

// UpdateRating sets the rating and comment columns only.
func (p *PostgresStore) UpdateRating(ctx context.Context, userID uint, recipeID string, rating int, comment string) error {
	result := p.DB.WithContext(ctx).
		Model(&models.SavedRecipe{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Updates(map[string]interface{}{
			"rating":  rating,
			"comment": comment,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("recipe not found: " + recipeID)
	}
	return nil
}

// IsSaved reports whether the recipe is in the user's library.
func (p *PostgresStore) IsSaved(ctx context.Context, userID uint, recipeID string) (bool, error) {
	var count int64
	err := p.DB.WithContext(ctx).
		Model(&models.SavedRecipe{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// rowToRecipe rebuilds the recipe from the JSONB document, overlaying the
// rating columns which UpdateRating maintains separately.
func rowToRecipe(row *models.SavedRecipe) models.Recipe {
	recipe := row.Doc.Recipe
	recipe.UserRating = row.Rating
	recipe.UserComment = row.Comment
	return recipe
}

func ingredientNames(recipe *models.Recipe) pq.StringArray {
	names := make(pq.StringArray, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		names[i] = ing.Name
	}
	return names
}
