package app

import (
	"context"

	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/storage"
)

// resolveObjectStore picks the one storage backend the process will use.
// An unknown backend kind is fatal, surfaced before the server binds.
func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg Config) (storage.ObjectStore, error) {
	store, err := storage.New(ctx, log, cfg.Storage)
	if err != nil {
		log.Error("Object storage bootstrap failed",
			"backend", cfg.Storage.Backend,
			"error", err,
		)
		return nil, err
	}
	return store, nil
}
