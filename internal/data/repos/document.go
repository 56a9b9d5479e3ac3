package repos

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, doc *types.Document) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error)
	GetActiveByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error)
	List(dbc dbctx.Context, q types.DocumentQuery) ([]*types.Document, int64, error)
	ListActive(dbc dbctx.Context) ([]*types.Document, error)
	ListByUploader(dbc dbctx.Context, userID uuid.UUID) ([]*types.Document, error)
	SearchByTags(dbc dbctx.Context, tags []string) ([]*types.Document, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	IncrementDownloadCount(dbc dbctx.Context, id uuid.UUID) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{
		db:  db,
		log: baseLog.With("repo", "DocumentRepo"),
	}
}

func (r *documentRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *documentRepo) Create(dbc dbctx.Context, doc *types.Document) error {
	return r.handle(dbc).WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Create(doc).Error
}

func (r *documentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var doc types.Document
	err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("UploadedBy").
		Where("id = ?", id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) GetActiveByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var doc types.Document
	err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("UploadedBy").
		Where("id = ? AND is_active = ?", id, true).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

var documentSortColumns = map[string]string{
	"title":         "title",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"size":          "size",
	"downloadCount": "download_count",
}

// List applies search/category/status filters in SQL. Tag intersection is
// resolved in memory so the query stays portable across SQL backends; tagged
// result sets are expected to be small.
func (r *documentRepo) List(dbc dbctx.Context, q types.DocumentQuery) ([]*types.Document, int64, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	order := sortClause(documentSortColumns, q.SortBy, q.SortOrder, "created_at")

	filtered := func() *gorm.DB {
		tx := r.handle(dbc).WithContext(dbc.Ctx).
			Model(&types.Document{}).
			Where("is_active = ?", true)
		if s := strings.TrimSpace(q.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if q.Category != "" {
			tx = tx.Where("category = ?", q.Category)
		}
		if q.Status != "" {
			tx = tx.Where("status = ?", q.Status)
		}
		return tx
	}

	if len(q.Tags) > 0 {
		var all []*types.Document
		if err := filtered().Preload("UploadedBy").Order(order).Find(&all).Error; err != nil {
			return nil, 0, err
		}
		matched := make([]*types.Document, 0, len(all))
		for _, doc := range all {
			if doc.HasAnyTag(q.Tags) {
				matched = append(matched, doc)
			}
		}
		total := int64(len(matched))
		start := (page - 1) * limit
		if start >= len(matched) {
			return []*types.Document{}, total, nil
		}
		end := start + limit
		if end > len(matched) {
			end = len(matched)
		}
		return matched[start:end], total, nil
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Document
	err := filtered().
		Preload("UploadedBy").
		Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *documentRepo) ListActive(dbc dbctx.Context) ([]*types.Document, error) {
	var out []*types.Document
	err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepo) ListByUploader(dbc dbctx.Context, userID uuid.UUID) ([]*types.Document, error) {
	if userID == uuid.Nil {
		return []*types.Document{}, nil
	}
	var out []*types.Document
	err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("UploadedBy").
		Where("uploaded_by_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepo) SearchByTags(dbc dbctx.Context, tags []string) ([]*types.Document, error) {
	if len(tags) == 0 {
		return []*types.Document{}, nil
	}
	var all []*types.Document
	err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("UploadedBy").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	out := make([]*types.Document, 0, len(all))
	for _, doc := range all {
		if doc.HasAnyTag(tags) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *documentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *documentRepo) IncrementDownloadCount(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"download_count": gorm.Expr("download_count + 1"),
			"updated_at":     time.Now(),
		}).Error
}

func sortClause(allowed map[string]string, sortBy, sortOrder, fallback string) string {
	col, ok := allowed[sortBy]
	if !ok {
		col = fallback
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(sortOrder), "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}
