package repos

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type IngestionJobRepo interface {
	Create(dbc dbctx.Context, job *types.IngestionJob) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IngestionJob, error)
	List(dbc dbctx.Context, q types.IngestionQuery) ([]*types.IngestionJob, int64, error)
	ListAll(dbc dbctx.Context) ([]*types.IngestionJob, error)
	ListByTriggeredBy(dbc dbctx.Context, userID uuid.UUID) ([]*types.IngestionJob, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowedStatuses []types.IngestionStatus, updates map[string]interface{}) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type ingestionJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestionJobRepo(db *gorm.DB, baseLog *logger.Logger) IngestionJobRepo {
	return &ingestionJobRepo{
		db:  db,
		log: baseLog.With("repo", "IngestionJobRepo"),
	}
}

func (r *ingestionJobRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *ingestionJobRepo) Create(dbc dbctx.Context, job *types.IngestionJob) error {
	return r.handle(dbc).WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Create(job).Error
}

func (r *ingestionJobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IngestionJob, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var job types.IngestionJob
	err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("TriggeredBy").
		Preload("RelatedDocument").
		Where("id = ?", id).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

var ingestionSortColumns = map[string]string{
	"jobName":     "job_name",
	"status":      "status",
	"type":        "type",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"startedAt":   "started_at",
	"completedAt": "completed_at",
}

func (r *ingestionJobRepo) List(dbc dbctx.Context, q types.IngestionQuery) ([]*types.IngestionJob, int64, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	order := sortClause(ingestionSortColumns, q.SortBy, q.SortOrder, "created_at")

	filtered := func() *gorm.DB {
		tx := r.handle(dbc).WithContext(dbc.Ctx).Model(&types.IngestionJob{})
		if q.Status != "" {
			tx = tx.Where("status = ?", q.Status)
		}
		if q.Type != "" {
			tx = tx.Where("type = ?", q.Type)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.IngestionJob
	err := filtered().
		Preload("TriggeredBy").
		Preload("RelatedDocument").
		Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ingestionJobRepo) ListAll(dbc dbctx.Context) ([]*types.IngestionJob, error) {
	var out []*types.IngestionJob
	if err := r.handle(dbc).WithContext(dbc.Ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingestionJobRepo) ListByTriggeredBy(dbc dbctx.Context, userID uuid.UUID) ([]*types.IngestionJob, error) {
	if userID == uuid.Nil {
		return []*types.IngestionJob{}, nil
	}
	var out []*types.IngestionJob
	err := r.handle(dbc).WithContext(dbc.Ctx).
		Preload("TriggeredBy").
		Preload("RelatedDocument").
		Where("triggered_by_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingestionJobRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.IngestionJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateFieldsUnlessStatus writes updates only while the job's status is
// outside the disallowed set. It reports whether a row was written, letting
// the progress simulator stop instead of resurrecting a finalized job.
func (r *ingestionJobRepo) UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowedStatuses []types.IngestionStatus, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	q := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.IngestionJob{}).
		Where("id = ?", id)
	if len(disallowedStatuses) == 1 {
		q = q.Where("status <> ?", disallowedStatuses[0])
	} else if len(disallowedStatuses) > 1 {
		q = q.Where("status NOT IN ?", disallowedStatuses)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ingestionJobRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.IngestionJob{}).Error
}
