package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// gcsStore backs the ObjectStore contract with a Google Cloud Storage bucket.
type gcsStore struct {
	log       *logger.Logger
	client    *gcstorage.Client
	bucket    string
	cdnDomain string
}

func NewGCSStore(ctx context.Context, baseLog *logger.Logger, cfg GCSConfig) (ObjectStore, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}

	opts := []option.ClientOption{option.WithScopes(gcstorage.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init gcs client: %w", err)
	}

	return &gcsStore{
		log:       baseLog.With("store", "GCSStore"),
		client:    client,
		bucket:    bucket,
		cdnDomain: strings.TrimSpace(cfg.CDNDomain),
	}, nil
}

func (s *gcsStore) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (*UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if body != nil {
		if _, err := io.Copy(w, body); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("write gcs object %q: %w", key, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close gcs writer for %q: %w", key, err)
	}

	res := &UploadResult{
		Key:    key,
		URL:    s.objectURL(key),
		Bucket: s.bucket,
	}
	if attrs := w.Attrs(); attrs != nil {
		res.ETag = attrs.Etag
	}
	return res, nil
}

func (s *gcsStore) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open gcs reader for %q: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gcs object %q: %w", key, err)
	}
	return data, nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("delete gcs object %q: %w", key, err)
	}
	return nil
}

func (s *gcsStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.Bucket(s.bucket).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat gcs object %q: %w", key, err)
	}
	return true, nil
}

func (s *gcsStore) SignedURL(_ context.Context, key string, expiresIn time.Duration) (string, error) {
	if expiresIn <= 0 {
		expiresIn = DefaultSignedURLTTL
	}
	u, err := s.client.Bucket(s.bucket).SignedURL(key, &gcstorage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expiresIn),
		Scheme:  gcstorage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign gcs url for %q: %w", key, err)
	}
	return u, nil
}

func (s *gcsStore) objectURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}
