package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/docvault-backend/internal/http/handlers"
	"github.com/yungbote/docvault-backend/internal/http/middleware"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/server"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Document  *handlers.DocumentHandler
	Ingestion *handlers.IngestionHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    handlers.NewHealthHandler(),
		Auth:      handlers.NewAuthHandler(log, services.Auth),
		Document:  handlers.NewDocumentHandler(log, services.Document),
		Ingestion: handlers.NewIngestionHandler(log, services.Ingestion),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:              log,
		AllowedOrigins:   cfg.AllowedOrigins,
		AuthMiddleware:   mw.Auth,
		HealthHandler:    h.Health,
		AuthHandler:      h.Auth,
		DocumentHandler:  h.Document,
		IngestionHandler: h.Ingestion,
	})
}
