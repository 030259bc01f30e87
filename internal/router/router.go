package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/ai"
	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/handlers"
	"github.com/mealcraft/mealcraft-api/internal/logger"
	"github.com/mealcraft/mealcraft-api/internal/middleware"
	"github.com/mealcraft/mealcraft-api/internal/repository"
	"github.com/mealcraft/mealcraft-api/internal/service"
	"github.com/mealcraft/mealcraft-api/internal/ws"
)

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, store repository.RecipeStore) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowOrigins = []string{
		"https://api.mealcraft.app",
		"https://mealcraft.app",
		"https://www.mealcraft.app",
	}
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// AI provider setup. The Anthropic provider covers both text generation
	// and vision; Whisper handles voice transcription over the cooking socket.
	anthropicProvider := ai.NewAnthropicProvider(cfg.EnvVars.AnthropicAPIKey, cfg.Prompts)
	var speechProvider ai.SpeechProvider
	if cfg.EnvVars.OpenAIAPIKey != "" {
		speechProvider = ai.NewWhisperProvider(cfg.EnvVars.OpenAIAPIKey)
	}

	// Service setup
	recipeService := service.NewRecipeService(cfg, anthropicProvider)
	detectionService := service.NewDetectionService(cfg, anthropicProvider)
	libraryService := service.NewLibraryService(cfg, store)
	shareService := service.NewShareService(cfg)

	// Handler setup
	recipeHandler := handlers.NewRecipeHandler(recipeService, libraryService)
	detectHandler := handlers.NewDetectHandler(detectionService)
	shareHandler := handlers.NewShareHandler(libraryService, shareService)

	// AI-backed routes are the expensive ones, keep them behind a limiter.
	aiLimiter := middleware.RateLimitByIP(5, 10*time.Minute, time.Hour)

	// Group for API routes that don't require token verification
	apiPublic := r.Group("/v1")
	{
		// Get a single recipe by its ID, for shared deep links
		apiPublic.GET("/recipes/:recipe_id", recipeHandler.GetRecipe)
		// Get share links for a recipe
		apiPublic.GET("/recipes/:recipe_id/share", shareHandler.GetShareLinks)
	}

	// Group for API routes that require token verification
	apiProtected := r.Group("/v1")
	{
		apiProtected.Use(middleware.VerifyTokenMiddleware(cfg))

		// Generate a new recipe from a list of ingredients
		apiProtected.POST("/recipes/generate", aiLimiter, recipeHandler.GenerateRecipe)
		// Identify ingredients in an uploaded photo
		apiProtected.POST("/ingredients/detect", aiLimiter, detectHandler.DetectIngredients)

		// Saved recipe library
		apiProtected.GET("/recipes", recipeHandler.ListRecipes)
		apiProtected.POST("/recipes", recipeHandler.SaveRecipe)
		apiProtected.GET("/recipes/:recipe_id/saved", recipeHandler.IsSaved)
		apiProtected.DELETE("/recipes/:recipe_id", recipeHandler.DeleteRecipe)
		apiProtected.PUT("/recipes/:recipe_id/rating", recipeHandler.UpdateRating)
	}

	// WebSocket routes (authenticated via query param token)
	hub := ws.NewHub()
	go hub.Run()
	cookingHandler := ws.NewCookingHandler(hub, cfg.EnvVars.JwtSecretKey, libraryService, speechProvider)
	r.GET("/v1/ws/cook/:recipe_id", cookingHandler.HandleCookingSession)

	// Everything else falls through to the SPA build. Unknown paths get
	// index.html so client-side routes and #recipe-<id> links resolve.
	r.NoRoute(spaFallback(cfg.EnvVars.StaticDir))

	return r
}

// spaFallback serves files from the static build directory, falling back to
// index.html for paths that don't map to a file.
func spaFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/v1/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		requested := filepath.Join(staticDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}
