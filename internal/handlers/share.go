package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/logger"
	"github.com/mealcraft/mealcraft-api/internal/service"
	"go.uber.org/zap"
)

// ShareHandler is the handler for recipe sharing requests.
type ShareHandler struct {
	Library *service.LibraryService
	Share   *service.ShareService
}

// NewShareHandler is the constructor function for initializing a new ShareHandler.
func NewShareHandler(library *service.LibraryService, share *service.ShareService) *ShareHandler {
	return &ShareHandler{
		Library: library,
		Share:   share,
	}
}

// GetShareLinks returns the deep link and prefilled social share URLs for
// a recipe. Public, so a shared link can itself be re-shared.
func (h *ShareHandler) GetShareLinks(c *gin.Context) {
	recipeID := c.Param("recipe_id")

	recipe, err := h.Library.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	links, err := h.Share.Links(recipe)
	if err != nil {
		logger.Get().Error("failed to build share links",
			zap.String("recipe_id", recipeID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"share": links})
}
