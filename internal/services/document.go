package services

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/docvault-backend/internal/data/repos"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/apierr"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/storage"
)

// MaxUploadSize is the hard cap on a single uploaded file.
const MaxUploadSize = 10 << 20

var allowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

type CreateDocumentInput struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Category    types.DocumentCategory `json:"category,omitempty"`
	Status      types.DocumentStatus   `json:"status,omitempty"`
}

type UpdateDocumentInput struct {
	Title       *string                 `json:"title,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Tags        []string                `json:"tags,omitempty"`
	Category    *types.DocumentCategory `json:"category,omitempty"`
	Status      *types.DocumentStatus   `json:"status,omitempty"`
}

type UploadedFile struct {
	OriginalName string
	MimeType     string
	Size         int64
	Reader       io.Reader
}

type DocumentPage struct {
	Documents  []*types.Document `json:"documents"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

type DownloadedDocument struct {
	Data     []byte
	Filename string
	MimeType string
}

type DocumentStatistics struct {
	TotalDocuments      int            `json:"totalDocuments"`
	DocumentsByCategory map[string]int `json:"documentsByCategory"`
	DocumentsByStatus   map[string]int `json:"documentsByStatus"`
	TotalSize           int64          `json:"totalSize"`
	TotalDownloads      int            `json:"totalDownloads"`
}

type DocumentService interface {
	Create(dbc dbctx.Context, input CreateDocumentInput, file UploadedFile, userID uuid.UUID) (*types.Document, error)
	List(dbc dbctx.Context, q types.DocumentQuery) (*DocumentPage, error)
	Get(dbc dbctx.Context, id uuid.UUID, callerID uuid.UUID, callerRole types.UserRole) (*types.Document, error)
	Update(dbc dbctx.Context, id uuid.UUID, patch UpdateDocumentInput, callerID uuid.UUID, callerRole types.UserRole) (*types.Document, error)
	Remove(dbc dbctx.Context, id uuid.UUID, callerID uuid.UUID, callerRole types.UserRole) error
	Download(dbc dbctx.Context, id uuid.UUID, callerID uuid.UUID, callerRole types.UserRole) (*DownloadedDocument, error)
	Statistics(dbc dbctx.Context) (*DocumentStatistics, error)
	SearchByTags(dbc dbctx.Context, tags []string) ([]*types.Document, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Document, error)
}

type documentService struct {
	log         *logger.Logger
	objectStore storage.ObjectStore
	docRepo     repos.DocumentRepo
	userRepo    repos.UserRepo
}

func NewDocumentService(
	baseLog *logger.Logger,
	objectStore storage.ObjectStore,
	docRepo repos.DocumentRepo,
	userRepo repos.UserRepo,
) DocumentService {
	return &documentService{
		log:         baseLog.With("service", "DocumentService"),
		objectStore: objectStore,
		docRepo:     docRepo,
		userRepo:    userRepo,
	}
}

// Create validates the upload, writes the bytes to object storage and then
// persists the metadata record. If the metadata step fails the stored object
// is deleted best-effort so no record ever references a missing key.
func (s *documentService) Create(dbc dbctx.Context, input CreateDocumentInput, file UploadedFile, userID uuid.UUID) (*types.Document, error) {
	if file.Reader == nil {
		return nil, apierr.Invalid("file_required", "file is required")
	}
	if _, ok := allowedMimeTypes[file.MimeType]; !ok {
		return nil, apierr.Invalid("invalid_file_type",
			"invalid file type, allowed types: PDF, DOC, DOCX, TXT, JPEG, PNG, GIF")
	}
	if file.Size > MaxUploadSize {
		return nil, apierr.Invalid("file_too_large", "file size exceeds 10MB limit")
	}
	title := strings.TrimSpace(input.Title)
	if len(title) < 3 {
		return nil, apierr.Invalid("invalid_title", "title must be at least 3 characters")
	}
	category := input.Category
	if category == "" {
		category = types.DocumentCategoryGeneral
	}
	if !types.IsValidDocumentCategory(category) {
		return nil, apierr.Invalid("invalid_category", fmt.Sprintf("unknown category %q", category))
	}
	status := input.Status
	if status == "" {
		status = types.DocumentStatusDraft
	}
	if !types.IsValidDocumentStatus(status) {
		return nil, apierr.Invalid("invalid_status", fmt.Sprintf("unknown status %q", status))
	}

	storageKey := newStorageKey(file.OriginalName)

	uploadRes, err := s.objectStore.Upload(dbc.Ctx, storageKey, file.MimeType, file.Reader, file.Size)
	if err != nil {
		return nil, apierr.Storage("upload_failed", err)
	}

	doc, err := s.persistDocument(dbc, input, file, userID, title, category, status, uploadRes)
	if err != nil {
		// Compensation: the object is orphaned now, clean it up best-effort.
		if cleanupErr := s.objectStore.Delete(dbc.Ctx, storageKey); cleanupErr != nil {
			s.log.Error("Failed to clean up stored object after error",
				"storage_key", storageKey,
				"error", cleanupErr,
			)
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) persistDocument(
	dbc dbctx.Context,
	input CreateDocumentInput,
	file UploadedFile,
	userID uuid.UUID,
	title string,
	category types.DocumentCategory,
	status types.DocumentStatus,
	uploadRes *storage.UploadResult,
) (*types.Document, error) {
	uploader, err := s.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, apierr.Internal("user_lookup_failed", err)
	}
	if uploader == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}

	filename := uploadRes.Key
	if idx := strings.LastIndex(filename, "/"); idx >= 0 {
		filename = filename[idx+1:]
	}

	now := time.Now()
	doc := &types.Document{
		ID:            uuid.New(),
		Title:         title,
		Description:   input.Description,
		Filename:      filename,
		OriginalName:  file.OriginalName,
		MimeType:      file.MimeType,
		Size:          file.Size,
		StorageKey:    uploadRes.Key,
		Tags:          datatypes.NewJSONSlice(normalizeTags(input.Tags)),
		Category:      category,
		Status:        status,
		Version:       1,
		IsActive:      true,
		DownloadCount: 0,
		UploadedByID:  uploader.ID,
		UploadedBy:    uploader,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.docRepo.Create(dbc, doc); err != nil {
		return nil, apierr.Internal("document_create_failed", err)
	}
	return doc, nil
}

func (s *documentService) List(dbc dbctx.Context, q types.DocumentQuery) (*DocumentPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	q.Page = page
	q.Limit = limit

	docs, total, err := s.docRepo.List(dbc, q)
	if err != nil {
		return nil, apierr.Internal("document_list_failed", err)
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &DocumentPage{
		Documents:  docs,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// Get returns an active document for any authenticated caller; per-document
// visibility for non-owners is deliberately not restricted. Admins can also
// fetch soft-deleted documents by direct id.
func (s *documentService) Get(dbc dbctx.Context, id uuid.UUID, callerID uuid.UUID, callerRole types.UserRole) (*types.Document, error) {
	doc, err := s.docRepo.GetActiveByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("document_lookup_failed", err)
	}
	if doc == nil && callerRole == types.UserRoleAdmin {
		doc, err = s.docRepo.GetByID(dbc, id)
		if err != nil {
			return nil, apierr.Internal("document_lookup_failed", err)
		}
	}
	if doc == nil {
		return nil, apierr.NotFound("document_not_found", fmt.Sprintf("document with id %s not found", id))
	}
	return doc, nil
}

func (s *documentService) Update(dbc dbctx.Context, id uuid.UUID, patch UpdateDocumentInput, callerID uuid.UUID, callerRole types.UserRole) (*types.Document, error) {
	doc, err := s.Get(dbc, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	if callerRole != types.UserRoleAdmin && callerID != doc.UploadedByID {
		return nil, apierr.Forbidden("not_owner", "you can only update your own documents")
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if len(title) < 3 {
			return nil, apierr.Invalid("invalid_title", "title must be at least 3 characters")
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Tags != nil {
		updates["tags"] = datatypes.NewJSONSlice(normalizeTags(patch.Tags))
	}
	if patch.Category != nil {
		if !types.IsValidDocumentCategory(*patch.Category) {
			return nil, apierr.Invalid("invalid_category", fmt.Sprintf("unknown category %q", *patch.Category))
		}
		updates["category"] = *patch.Category
	}
	if patch.Status != nil {
		if !types.IsValidDocumentStatus(*patch.Status) {
			return nil, apierr.Invalid("invalid_status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
		updates["status"] = *patch.Status
	}
	if len(updates) == 0 {
		return doc, nil
	}

	// Title or description edits bump the version as part of the same write.
	if patch.Title != nil || patch.Description != nil {
		updates["version"] = doc.Version + 1
	}

	if err := s.docRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, apierr.Internal("document_update_failed", err)
	}
	return s.Get(dbc, id, callerID, callerRole)
}

// Remove soft-deletes the record. The stored bytes are deleted best-effort;
// a storage failure is logged and the soft delete proceeds anyway.
func (s *documentService) Remove(dbc dbctx.Context, id uuid.UUID, callerID uuid.UUID, callerRole types.UserRole) error {
	doc, err := s.Get(dbc, id, callerID, callerRole)
	if err != nil {
		return err
	}
	if callerRole != types.UserRoleAdmin && callerID != doc.UploadedByID {
		return apierr.Forbidden("not_owner", "you can only delete your own documents")
	}

	if err := s.objectStore.Delete(dbc.Ctx, doc.StorageKey); err != nil {
		s.log.Error("Failed to delete stored object, proceeding with soft delete",
			"document_id", doc.ID,
			"storage_key", doc.StorageKey,
			"error", err,
		)
	}

	if err := s.docRepo.UpdateFields(dbc, id, map[string]interface{}{"is_active": false}); err != nil {
		return apierr.Internal("document_delete_failed", err)
	}
	return nil
}

func (s *documentService) Download(dbc dbctx.Context, id uuid.UUID, callerID uuid.UUID, callerRole types.UserRole) (*DownloadedDocument, error) {
	doc, err := s.Get(dbc, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	exists, err := s.objectStore.Exists(dbc.Ctx, doc.StorageKey)
	if err != nil {
		return nil, apierr.Storage("storage_check_failed", err)
	}
	if !exists {
		return nil, apierr.NotFound("file_not_found", "file not found in storage")
	}

	data, err := s.objectStore.Download(dbc.Ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierr.NotFound("file_not_found", "file not found in storage")
		}
		return nil, apierr.Storage("download_failed", err)
	}

	if err := s.docRepo.IncrementDownloadCount(dbc, id); err != nil {
		return nil, apierr.Internal("download_count_failed", err)
	}

	return &DownloadedDocument{
		Data:     data,
		Filename: doc.OriginalName,
		MimeType: doc.MimeType,
	}, nil
}

func (s *documentService) Statistics(dbc dbctx.Context) (*DocumentStatistics, error) {
	docs, err := s.docRepo.ListActive(dbc)
	if err != nil {
		return nil, apierr.Internal("document_stats_failed", err)
	}

	stats := &DocumentStatistics{
		TotalDocuments:      len(docs),
		DocumentsByCategory: map[string]int{},
		DocumentsByStatus:   map[string]int{},
	}
	for _, doc := range docs {
		stats.DocumentsByCategory[string(doc.Category)]++
		stats.DocumentsByStatus[string(doc.Status)]++
		stats.TotalSize += doc.Size
		stats.TotalDownloads += doc.DownloadCount
	}
	return stats, nil
}

func (s *documentService) SearchByTags(dbc dbctx.Context, tags []string) ([]*types.Document, error) {
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return []*types.Document{}, nil
	}
	docs, err := s.docRepo.SearchByTags(dbc, tags)
	if err != nil {
		return nil, apierr.Internal("document_search_failed", err)
	}
	return docs, nil
}

func (s *documentService) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Document, error) {
	docs, err := s.docRepo.ListByUploader(dbc, userID)
	if err != nil {
		return nil, apierr.Internal("document_list_failed", err)
	}
	return docs, nil
}

// newStorageKey builds a unique object key from the current time, a random
// suffix and the original extension. Collisions are treated as negligible.
func newStorageKey(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("documents/%d-%d%s", time.Now().UnixMilli(), rand.Int64N(1_000_000_000), ext)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
