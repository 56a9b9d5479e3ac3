package app

import (
	"context"
	"fmt"

	"github.com/yungbote/docvault-backend/internal/db"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/server"
)

// Run wires the whole application and serves until shutdown.
func Run() error {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	postgres, err := db.NewPostgresService(log)
	if err != nil {
		return err
	}
	if err := postgres.AutoMigrateAll(); err != nil {
		return err
	}

	objectStore, err := resolveObjectStore(context.Background(), log, cfg)
	if err != nil {
		return err
	}

	repos := wireRepos(postgres.DB(), log)
	services := wireServices(log, cfg, objectStore, repos)

	if cfg.SeedDefaultUsers {
		if err := db.Seed(log, repos.User, services.User); err != nil {
			return fmt.Errorf("seed default users: %w", err)
		}
	}

	handlers := wireHandlers(log, services)
	mw := wireMiddleware(log, services)
	router := wireRouter(log, cfg, handlers, mw)

	return server.Serve(log, router, cfg.HTTPPort)
}
