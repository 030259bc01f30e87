package main

import (
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/db"
	"github.com/mealcraft/mealcraft-api/internal/logger"
	"github.com/mealcraft/mealcraft-api/internal/repository"
	"github.com/mealcraft/mealcraft-api/internal/router"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}

	// Load prompts from YAML
	prompts, err := config.LoadPrompts("configs/prompts.yaml")
	if err != nil {
		logger.Get().Fatal("failed to load prompts", zap.Error(err))
	}
	cfg.Prompts = prompts

	// Pick the recipe store. DATABASE_URL selects Postgres; without it the
	// library lives in a local JSON file.
	var store repository.RecipeStore
	if cfg.EnvVars.DatabaseUrl != "" {
		database, err := db.New(cfg)
		if err != nil {
			logger.Get().Fatal("failed to connect to database", zap.Error(err))
		}
		sqlDB, err := database.DB()
		if err != nil {
			logger.Get().Fatal("failed to get underlying sql.DB", zap.Error(err))
		}
		defer sqlDB.Close()
		store = repository.NewPostgresStore(database)
	} else {
		logger.Get().Info("no DATABASE_URL set, using file store",
			zap.String("data_file", cfg.EnvVars.DataFile))
		store = repository.NewFileStore(cfg.EnvVars.DataFile)
	}

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(cfg, store)

	// Run the server
	logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
	r.Run(":" + cfg.EnvVars.Port)
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
