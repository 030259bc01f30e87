package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/repository"
	"github.com/mealcraft/mealcraft-api/internal/service"
)

// respondServiceError maps service sentinel errors to HTTP responses with
// user-facing messages. Anything unmatched becomes a 500 with a generic
// message; the handler logs the details separately.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoIngredients):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide at least one ingredient"})
	case errors.Is(err, service.ErrProfaneInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please keep ingredient names food-related"})
	case errors.Is(err, service.ErrMalformedResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": "The recipe assistant returned something unusable, please try again"})
	case errors.Is(err, service.ErrNoValidRecipe):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Couldn't build a recipe from those ingredients, try adding more"})
	case errors.Is(err, service.ErrDuplicateTitle):
		c.JSON(http.StatusConflict, gin.H{"error": "Couldn't come up with a new recipe name, try different ingredients"})
	case errors.Is(err, service.ErrNotAnImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "The uploaded file is not an image"})
	case errors.Is(err, service.ErrNonFoodImage):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "That photo doesn't look like food"})
	case errors.Is(err, service.ErrNoIngredientsDetected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No ingredients could be identified in the photo"})
	case errors.Is(err, service.ErrDuplicateRecipe):
		c.JSON(http.StatusConflict, gin.H{"error": "A very similar recipe is already in your library"})
	case errors.Is(err, service.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
	default:
		var notFound repository.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
