package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/logger"
	"github.com/mealcraft/mealcraft-api/internal/service"
	"github.com/mealcraft/mealcraft-api/internal/util"
	"go.uber.org/zap"
)

// maxUploadSize caps ingredient photo uploads at 10 MB.
const maxUploadSize = 10 << 20

// DetectHandler is the handler for ingredient photo detection requests.
type DetectHandler struct {
	Service *service.DetectionService
}

// NewDetectHandler is the constructor function for initializing a new DetectHandler.
func NewDetectHandler(detectionService *service.DetectionService) *DetectHandler {
	return &DetectHandler{Service: detectionService}
}

// DetectIngredients accepts a multipart "image" upload and returns the
// ingredient names identified in it.
func (h *DetectHandler) DetectIngredients(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image must be 10MB or smaller"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ingredients, err := h.Service.DetectFromImage(c.Request.Context(), user.ID, fileHeader.Filename, contentType, data)
	if err != nil {
		logger.Get().Warn("ingredient detection failed",
			zap.Uint("user_id", user.ID),
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}
