package app

import (
	"strings"
	"time"

	"github.com/yungbote/docvault-backend/internal/platform/envutil"
	"github.com/yungbote/docvault-backend/internal/storage"
)

// Config is resolved once at startup and handed to the components that need
// it; nothing reads the environment after this point.
type Config struct {
	HTTPPort       string
	LogMode        string
	AllowedOrigins []string

	JWTSecret string
	TokenTTL  time.Duration

	Storage storage.Config

	SimulatorStartDelay   time.Duration
	SimulatorTickInterval time.Duration

	SeedDefaultUsers bool
}

func LoadConfig() Config {
	return Config{
		HTTPPort:       envutil.String("HTTP_PORT", "8080"),
		LogMode:        envutil.String("LOG_MODE", "dev"),
		AllowedOrigins: splitCSV(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		JWTSecret: envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		TokenTTL:  time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,

		Storage: storage.Config{
			Backend: storage.BackendKind(envutil.String("STORAGE_BACKEND", "minio")),
			Minio: storage.MinioConfig{
				Endpoint:  envutil.String("MINIO_ENDPOINT", "localhost:9000"),
				Region:    envutil.String("MINIO_REGION", "us-east-1"),
				AccessKey: envutil.String("MINIO_ACCESS_KEY", "minioadmin"),
				SecretKey: envutil.String("MINIO_SECRET_KEY", "minioadmin"),
				Bucket:    envutil.String("MINIO_BUCKET_NAME", "documents"),
				UseSSL:    envutil.Bool("MINIO_USE_SSL", false),
			},
			GCS: storage.GCSConfig{
				Bucket:          envutil.String("GCS_BUCKET_NAME", ""),
				CredentialsFile: envutil.String("GCS_CREDENTIALS_FILE", ""),
				CDNDomain:       envutil.String("GCS_CDN_DOMAIN", ""),
			},
		},

		SimulatorStartDelay:   time.Duration(envutil.Int("SIMULATOR_START_DELAY_MS", 100)) * time.Millisecond,
		SimulatorTickInterval: time.Duration(envutil.Int("SIMULATOR_TICK_INTERVAL_MS", 1000)) * time.Millisecond,

		SeedDefaultUsers: envutil.Bool("SEED_DEFAULT_USERS", true),
	}
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
