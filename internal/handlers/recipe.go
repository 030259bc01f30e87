package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/logger"
	"github.com/mealcraft/mealcraft-api/internal/models"
	"github.com/mealcraft/mealcraft-api/internal/service"
	"github.com/mealcraft/mealcraft-api/internal/util"
	"go.uber.org/zap"
)

// RecipeHandler is the handler for recipe generation and library requests.
type RecipeHandler struct {
	Generator *service.RecipeService
	Library   *service.LibraryService
}

// NewRecipeHandler is the constructor function for initializing a new RecipeHandler.
func NewRecipeHandler(generator *service.RecipeService, library *service.LibraryService) *RecipeHandler {
	return &RecipeHandler{
		Generator: generator,
		Library:   library,
	}
}

// GenerateRecipe creates a recipe from the supplied ingredients.
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var request service.GenerateRequest
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	recipe, err := h.Generator.Generate(c.Request.Context(), user, request)
	if err != nil {
		logger.Get().Error("failed to generate recipe",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// SaveRecipe adds a recipe to the authenticated user's library.
func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var recipe models.Recipe
	if err := c.BindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if recipe.ID == "" || recipe.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe id and title are required"})
		return
	}

	if err := h.Library.SaveRecipe(c.Request.Context(), user.ID, &recipe); err != nil {
		logger.Get().Error("failed to save recipe",
			zap.Uint("user_id", user.ID),
			zap.String("recipe_id", recipe.ID),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// ListRecipes returns the authenticated user's saved recipes, most
// recently saved first.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recipes, err := h.Library.ListRecipes(c.Request.Context(), user.ID)
	if err != nil {
		logger.Get().Error("failed to list recipes", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe returns a recipe by ID. The route is public so shared
// #recipe-<id> deep links resolve without an account.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID := c.Param("recipe_id")

	recipe, err := h.Library.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// IsSaved reports whether a recipe is in the caller's library. The client
// polls it to render the save-button state on shared recipes.
func (h *RecipeHandler) IsSaved(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	saved, err := h.Library.IsSaved(c.Request.Context(), user.ID, c.Param("recipe_id"))
	if err != nil {
		logger.Get().Error("failed to check saved state",
			zap.Uint("user_id", user.ID),
			zap.String("recipe_id", c.Param("recipe_id")),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// DeleteRecipe removes a recipe from the user's library. Deleting a
// recipe that isn't saved still returns 204.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recipeID := c.Param("recipe_id")
	if err := h.Library.DeleteRecipe(c.Request.Context(), user.ID, recipeID); err != nil {
		logger.Get().Error("failed to delete recipe",
			zap.Uint("user_id", user.ID),
			zap.String("recipe_id", recipeID),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateRating sets the rating and optional comment on a saved recipe.
func (h *RecipeHandler) UpdateRating(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var request struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	recipeID := c.Param("recipe_id")
	if err := h.Library.UpdateRating(c.Request.Context(), user.ID, recipeID, request.Rating, request.Comment); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rating updated"})
}
