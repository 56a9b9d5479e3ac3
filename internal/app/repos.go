package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/docvault-backend/internal/data/repos"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	Document  repos.DocumentRepo
	Ingestion repos.IngestionJobRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repositories...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		Document:  repos.NewDocumentRepo(db, log),
		Ingestion: repos.NewIngestionJobRepo(db, log),
	}
}
