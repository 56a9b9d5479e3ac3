package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IngestionStatus string

const (
	IngestionStatusPending    IngestionStatus = "pending"
	IngestionStatusProcessing IngestionStatus = "processing"
	IngestionStatusCompleted  IngestionStatus = "completed"
	IngestionStatusFailed     IngestionStatus = "failed"
	IngestionStatusCancelled  IngestionStatus = "cancelled"
)

func IsValidIngestionStatus(s IngestionStatus) bool {
	switch s {
	case IngestionStatusPending, IngestionStatusProcessing, IngestionStatusCompleted,
		IngestionStatusFailed, IngestionStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted from s.
func (s IngestionStatus) IsTerminal() bool {
	switch s {
	case IngestionStatusCompleted, IngestionStatusFailed, IngestionStatusCancelled:
		return true
	default:
		return false
	}
}

type IngestionType string

const (
	IngestionTypeDocumentUpload IngestionType = "document_upload"
	IngestionTypeBatchImport    IngestionType = "batch_import"
	IngestionTypeAPITrigger     IngestionType = "api_trigger"
	IngestionTypeScheduled      IngestionType = "scheduled"
)

func IsValidIngestionType(t IngestionType) bool {
	switch t {
	case IngestionTypeDocumentUpload, IngestionTypeBatchImport,
		IngestionTypeAPITrigger, IngestionTypeScheduled:
		return true
	default:
		return false
	}
}

// IngestionJob tracks one unit of asynchronous work. StartedAt is stamped on
// the first transition into processing; CompletedAt and ActualDuration on the
// first transition into a terminal status, and never overwritten after that.
type IngestionJob struct {
	ID                uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	JobName           string             `gorm:"not null;index" json:"jobName"`
	Type              IngestionType      `gorm:"not null;index" json:"type"`
	Status            IngestionStatus    `gorm:"not null;default:pending;index" json:"status"`
	Description       string             `gorm:"type:text" json:"description,omitempty"`
	Parameters        datatypes.JSONMap  `gorm:"column:parameters" json:"parameters,omitempty"`
	Result            datatypes.JSONMap  `gorm:"column:result" json:"result,omitempty"`
	ErrorMessage      string             `gorm:"type:text" json:"errorMessage,omitempty"`
	TotalItems        int                `gorm:"not null;default:0" json:"totalItems"`
	ProcessedItems    int                `gorm:"not null;default:0" json:"processedItems"`
	SuccessfulItems   int                `gorm:"not null;default:0" json:"successfulItems"`
	FailedItems       int                `gorm:"not null;default:0" json:"failedItems"`
	StartedAt         *time.Time         `json:"startedAt,omitempty"`
	CompletedAt       *time.Time         `json:"completedAt,omitempty"`
	EstimatedDuration int                `gorm:"not null;default:0" json:"estimatedDuration"`
	ActualDuration    *int               `json:"actualDuration,omitempty"`
	TriggeredByID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"triggeredById"`
	TriggeredBy       *User              `gorm:"foreignKey:TriggeredByID" json:"triggeredBy,omitempty"`
	RelatedDocumentID *uuid.UUID         `gorm:"type:uuid;index" json:"relatedDocumentId,omitempty"`
	RelatedDocument   *Document          `gorm:"foreignKey:RelatedDocumentID" json:"relatedDocument,omitempty"`
	CreatedAt         time.Time          `gorm:"not null;index" json:"createdAt"`
	UpdatedAt         time.Time          `gorm:"not null" json:"updatedAt"`

	// Progress is derived on every read, never persisted.
	Progress int `gorm:"-" json:"progress"`
}

func (IngestionJob) TableName() string { return "ingestion_jobs" }

// ComputeProgress derives the completion percentage from the item counters.
// Jobs without a declared total report 100 once completed, 0 otherwise.
func (j *IngestionJob) ComputeProgress() int {
	if j.TotalItems > 0 {
		return int(math.Round(float64(j.ProcessedItems) / float64(j.TotalItems) * 100))
	}
	if j.Status == IngestionStatusCompleted {
		return 100
	}
	return 0
}

// IngestionQuery is the filter for job listing.
type IngestionQuery struct {
	Status    IngestionStatus
	Type      IngestionType
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}
