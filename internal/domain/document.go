package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPublished DocumentStatus = "published"
	DocumentStatusArchived  DocumentStatus = "archived"
)

func IsValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusPublished, DocumentStatusArchived:
		return true
	default:
		return false
	}
}

type DocumentCategory string

const (
	DocumentCategoryGeneral   DocumentCategory = "general"
	DocumentCategoryTechnical DocumentCategory = "technical"
	DocumentCategoryLegal     DocumentCategory = "legal"
	DocumentCategoryFinancial DocumentCategory = "financial"
	DocumentCategoryMarketing DocumentCategory = "marketing"
	DocumentCategoryResearch  DocumentCategory = "research"
)

func IsValidDocumentCategory(c DocumentCategory) bool {
	switch c {
	case DocumentCategoryGeneral, DocumentCategoryTechnical, DocumentCategoryLegal,
		DocumentCategoryFinancial, DocumentCategoryMarketing, DocumentCategoryResearch:
		return true
	default:
		return false
	}
}

// Document is the metadata record for one uploaded file. The bytes live in
// object storage under StorageKey; StorageKey is never reused.
type Document struct {
	ID            uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string                       `gorm:"not null;index" json:"title"`
	Description   string                       `gorm:"type:text" json:"description,omitempty"`
	Filename      string                       `gorm:"not null" json:"filename"`
	OriginalName  string                       `gorm:"not null" json:"originalName"`
	MimeType      string                       `gorm:"not null" json:"mimeType"`
	Size          int64                        `gorm:"not null" json:"size"`
	StorageKey    string                       `gorm:"uniqueIndex;not null" json:"storageKey"`
	Tags          datatypes.JSONSlice[string]  `gorm:"column:tags" json:"tags"`
	Category      DocumentCategory             `gorm:"not null;default:general;index" json:"category"`
	Status        DocumentStatus               `gorm:"not null;default:draft;index" json:"status"`
	Version       int                          `gorm:"not null;default:1" json:"version"`
	IsActive      bool                         `gorm:"not null;default:true;index" json:"isActive"`
	DownloadCount int                          `gorm:"not null;default:0" json:"downloadCount"`
	UploadedByID  uuid.UUID                    `gorm:"type:uuid;not null;index" json:"uploadedById"`
	UploadedBy    *User                        `gorm:"foreignKey:UploadedByID" json:"uploadedBy,omitempty"`
	CreatedAt     time.Time                    `gorm:"not null;index" json:"createdAt"`
	UpdatedAt     time.Time                    `gorm:"not null" json:"updatedAt"`
}

func (Document) TableName() string { return "documents" }

// HasAnyTag reports whether the document's tag set intersects the query set.
func (d *Document) HasAnyTag(tags []string) bool {
	if d == nil || len(tags) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(d.Tags))
	for _, t := range d.Tags {
		set[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// DocumentQuery is the filter for list endpoints.
type DocumentQuery struct {
	Search    string
	Category  DocumentCategory
	Status    DocumentStatus
	Tags      []string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}
