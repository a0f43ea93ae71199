package api

import (
	"net/http"
	"time"

	"ai-chef-service/internal/api/handlers/health"
	recipeHandler "ai-chef-service/internal/api/handlers/recipe"
	"ai-chef-service/internal/api/middleware"
	"ai-chef-service/internal/infrastructure/config"
	"ai-chef-service/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 請求體大小預設上限 (1MB)
const defaultMaxBodySize = 1 << 20

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, generator recipeHandler.Generator) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", recipeHandler.UserIDHeader},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrNotFound.Response(false))
	})
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, common.ErrMethodNotAllowed.Response(false))
	})

	healthHandler := health.NewHandler(cfg)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := recipeHandler.NewHandler(generator, cfg.App.Debug)
	ai := router.Group("/api/ai")
	{
		ai.POST("/generate-recipes", handler.HandleGenerateRecipes)
		ai.POST("/generate-from-pantry", handler.HandleGenerateFromPantry)
		ai.GET("/quick-suggestions", handler.HandleQuickSuggestions)
		ai.GET("/use-it-up", handler.HandleUseItUp)
	}

	common.LogInfo("Router setup completed",
		zap.String("model", cfg.Gemini.Model),
		zap.Bool("ai_configured", cfg.Gemini.HasAPIKey()),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}
