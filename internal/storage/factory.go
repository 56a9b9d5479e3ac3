package storage

import (
	"context"
	"fmt"

	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// New picks the one backend the process will use. Called exactly once at
// startup; an unknown backend kind is a fatal configuration error.
func New(ctx context.Context, log *logger.Logger, cfg Config) (ObjectStore, error) {
	log.Info("Selecting object storage backend", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendMinio:
		return NewMinioStore(log, cfg.Minio)
	case BackendGCS:
		return NewGCSStore(ctx, log, cfg.GCS)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
