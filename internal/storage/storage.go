package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by Download when the key does not exist in the
// backend. Delete treats an absent key as success and Exists reports false.
var ErrNotFound = errors.New("storage: object not found")

// DefaultSignedURLTTL is applied when callers pass a non-positive expiry.
const DefaultSignedURLTTL = time.Hour

type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	ETag   string `json:"etag,omitempty"`
}

// ObjectStore is the uniform contract every backend implements. Uploads are
// idempotent overwrites for the same key. Implementations are safe for
// concurrent use.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (*UploadResult, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SignedURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}

type BackendKind string

const (
	BackendMinio BackendKind = "minio"
	BackendGCS   BackendKind = "gcs"
)

type MinioConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	CredentialsFile string
	CDNDomain       string
}

// Config is resolved once at startup and passed by value; there is no
// runtime backend switching.
type Config struct {
	Backend BackendKind
	Minio   MinioConfig
	GCS     GCSConfig
}
