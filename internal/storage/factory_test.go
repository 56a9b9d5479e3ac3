package storage

import (
	"context"
	"testing"

	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), testLogger(t), Config{Backend: "tape"})
	if err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewMinioStore_ValidatesConfig(t *testing.T) {
	log := testLogger(t)

	cases := []struct {
		name string
		cfg  MinioConfig
	}{
		{"missing endpoint", MinioConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}},
		{"missing access key", MinioConfig{Endpoint: "localhost:9000", SecretKey: "s", Bucket: "b"}},
		{"missing secret key", MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", Bucket: "b"}},
		{"missing bucket", MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}},
	}
	for _, tc := range cases {
		if _, err := NewMinioStore(log, tc.cfg); err == nil {
			t.Fatalf("%s: expected config error", tc.name)
		}
	}
}

func TestNewMinioStore_DefaultRegion(t *testing.T) {
	store, err := NewMinioStore(testLogger(t), MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "s",
		Bucket:    "docs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ms, ok := store.(*minioStore)
	if !ok {
		t.Fatalf("expected *minioStore, got %T", store)
	}
	if ms.region != "us-east-1" {
		t.Fatalf("expected default region us-east-1, got %q", ms.region)
	}
}
