package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/docvault-backend/internal/data/repos"
	"github.com/yungbote/docvault-backend/internal/data/repos/testutil"
	"github.com/yungbote/docvault-backend/internal/http/handlers"
	"github.com/yungbote/docvault-backend/internal/http/middleware"
	"github.com/yungbote/docvault-backend/internal/services"
	"github.com/yungbote/docvault-backend/internal/storage"
)

type memObjectStore struct {
	objects map[string][]byte
}

func (m *memObjectStore) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (*storage.UploadResult, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	m.objects[key] = data
	return &storage.UploadResult{Key: key, URL: "http://mem/" + key, Bucket: "mem"}, nil
}

func (m *memObjectStore) Download(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (m *memObjectStore) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memObjectStore) SignedURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return "http://mem/signed/" + key, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	store := &memObjectStore{objects: map[string][]byte{}}

	userRepo := repos.NewUserRepo(db, log)
	docRepo := repos.NewDocumentRepo(db, log)
	jobRepo := repos.NewIngestionJobRepo(db, log)

	userSvc := services.NewUserService(log, userRepo)
	authSvc := services.NewAuthService(log, userSvc, "router-test-secret", time.Hour)
	docSvc := services.NewDocumentService(log, store, docRepo, userRepo)
	ingestionSvc := services.NewIngestionService(log, jobRepo, userRepo, docRepo, services.SimulatorConfig{
		StartDelay:   2 * time.Millisecond,
		TickInterval: 5 * time.Millisecond,
	})

	return NewRouter(RouterConfig{
		Log:              log,
		AuthMiddleware:   middleware.NewAuthMiddleware(log, authSvc),
		HealthHandler:    handlers.NewHealthHandler(),
		AuthHandler:      handlers.NewAuthHandler(log, authSvc),
		DocumentHandler:  handlers.NewDocumentHandler(log, docSvc),
		IngestionHandler: handlers.NewIngestionHandler(log, ingestionSvc),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":     email,
		"password":  "hunter22",
		"firstName": "Test",
		"lastName":  "User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatalf("expected access token in register response")
	}
	return res.AccessToken
}

func uploadDocument(t *testing.T, router *gin.Engine, token, title string) string {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="report.pdf"`)
	header.Set("Content-Type", "application/pdf")
	fw, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := w.WriteField("title", title); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d %s", rec.Code, rec.Body.String())
	}
	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}
	return doc.ID
}

func TestRouter_Healthcheck(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/documents", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/documents", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestRouter_DocumentLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "lifecycle@example.com")

	id := uploadDocument(t, router, token, "Uploaded via API")

	rec := doJSON(t, router, http.MethodGet, "/documents/"+id, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/documents/"+id+"/download", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download failed: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "%PDF-1.4 test" {
		t.Fatalf("unexpected download body %q", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPatch, "/documents/"+id, token, map[string]string{
		"title": "Renamed via API",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/documents/"+id, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, "/documents/"+id, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/documents/not-a-uuid", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestRouter_AdminGates(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "regular@example.com")

	for _, path := range []string{"/documents/statistics", "/ingestion/statistics"} {
		rec := doJSON(t, router, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 on %s for non-admin, got %d", path, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodPost, "/ingestion/jobs", token, map[string]any{
		"jobName": "API Created Job",
		"type":    "batch_import",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("job create failed: %d %s", rec.Code, rec.Body.String())
	}
	var job struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}

	rec = doJSON(t, router, http.MethodDelete, "/ingestion/jobs/"+job.ID, token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin job delete, got %d", rec.Code)
	}
}

func TestRouter_IngestionFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "ingest@example.com")

	rec := doJSON(t, router, http.MethodPost, "/ingestion/trigger", token, map[string]any{
		"jobName": "Triggered via API",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("trigger failed: %d %s", rec.Code, rec.Body.String())
	}
	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}
	if job.Status != "processing" {
		t.Fatalf("expected triggered job to be processing, got %q", job.Status)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = doJSON(t, router, http.MethodGet, "/ingestion/jobs/"+job.ID, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("job get failed: %d %s", rec.Code, rec.Body.String())
		}
		var got struct {
			Status   string `json:"status"`
			Progress int    `json:"progress"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode job: %v", err)
		}
		if got.Status == "completed" {
			if got.Progress != 100 {
				t.Fatalf("expected progress 100, got %d", got.Progress)
			}
			break
		}
		if got.Status == "failed" || got.Status == "cancelled" {
			t.Fatalf("job ended in %q", got.Status)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete in time, last status %q", got.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = doJSON(t, router, http.MethodGet, "/ingestion/jobs/my", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my jobs failed: %d %s", rec.Code, rec.Body.String())
	}
	var mine struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("failed to decode my jobs: %v", err)
	}
	if len(mine.Jobs) != 1 {
		t.Fatalf("expected 1 job for caller, got %d", len(mine.Jobs))
	}
}
