package app

import (
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/services"
	"github.com/yungbote/docvault-backend/internal/storage"
)

type Services struct {
	User      services.UserService
	Auth      services.AuthService
	Document  services.DocumentService
	Ingestion services.IngestionService
}

func wireServices(log *logger.Logger, cfg Config, objectStore storage.ObjectStore, repos Repos) Services {
	log.Info("Wiring services...")
	userService := services.NewUserService(log, repos.User)
	return Services{
		User:     userService,
		Auth:     services.NewAuthService(log, userService, cfg.JWTSecret, cfg.TokenTTL),
		Document: services.NewDocumentService(log, objectStore, repos.Document, repos.User),
		Ingestion: services.NewIngestionService(log, repos.Ingestion, repos.User, repos.Document, services.SimulatorConfig{
			StartDelay:   cfg.SimulatorStartDelay,
			TickInterval: cfg.SimulatorTickInterval,
		}),
	}
}
