package server

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/docvault-backend/internal/http/handlers"
	"github.com/yungbote/docvault-backend/internal/http/middleware"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log              *logger.Logger
	AllowedOrigins   []string
	AuthMiddleware   *middleware.AuthMiddleware
	HealthHandler    *handlers.HealthHandler
	AuthHandler      *handlers.AuthHandler
	DocumentHandler  *handlers.DocumentHandler
	IngestionHandler *handlers.IngestionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Log != nil {
		router.Use(middleware.RequestLog(cfg.Log))
	}

	// Public
	router.GET("/healthcheck", cfg.HealthHandler.Check)
	router.POST("/auth/register", cfg.AuthHandler.Register)
	router.POST("/auth/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	docs := protected.Group("/documents")
	{
		docs.POST("", cfg.DocumentHandler.Upload)
		docs.GET("", cfg.DocumentHandler.List)
		docs.GET("/statistics", cfg.AuthMiddleware.RequireAdmin(), cfg.DocumentHandler.Statistics)
		docs.GET("/my", cfg.DocumentHandler.MyDocuments)
		docs.GET("/search/tags", cfg.DocumentHandler.SearchByTags)
		docs.GET("/:id", cfg.DocumentHandler.Get)
		docs.PATCH("/:id", cfg.DocumentHandler.Update)
		docs.DELETE("/:id", cfg.DocumentHandler.Delete)
		docs.GET("/:id/download", cfg.DocumentHandler.Download)
	}

	ingestion := protected.Group("/ingestion")
	{
		ingestion.POST("/jobs", cfg.IngestionHandler.Create)
		ingestion.GET("/jobs", cfg.IngestionHandler.List)
		ingestion.GET("/statistics", cfg.AuthMiddleware.RequireAdmin(), cfg.IngestionHandler.Statistics)
		ingestion.GET("/jobs/my", cfg.IngestionHandler.MyJobs)
		ingestion.GET("/jobs/:id", cfg.IngestionHandler.Get)
		ingestion.PATCH("/jobs/:id", cfg.IngestionHandler.Update)
		ingestion.POST("/jobs/:id/cancel", cfg.IngestionHandler.Cancel)
		ingestion.DELETE("/jobs/:id", cfg.AuthMiddleware.RequireAdmin(), cfg.IngestionHandler.Delete)
		ingestion.POST("/trigger", cfg.IngestionHandler.Trigger)
	}

	return router
}
