package assets

import (
	"time"

	"gorm.io/datatypes"
)

// MediaAsset is the sole persisted entity: one uploaded file plus its derived
// renditions and metadata. Rows are created exactly once per successful
// ingestion and destroyed only through the deletion reconciler.
type MediaAsset struct {
	UID              string         `gorm:"size:36;primaryKey" json:"uid"`
	AspectRatio      *float64       `json:"aspect_ratio,omitempty"`
	CollectionName   *string        `gorm:"size:255" json:"collection_name,omitempty"`
	OriginalName     string         `gorm:"size:255;not null" json:"original_name"`
	Title            *string        `gorm:"size:255" json:"title,omitempty"`
	Name             string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	ModelType        string         `gorm:"size:32" json:"model_type"`
	Folder           string         `gorm:"size:255" json:"folder"`
	MimeType         string         `gorm:"size:255" json:"mime_type"`
	Extension        string         `gorm:"size:32" json:"extension"`
	Disk             string         `gorm:"size:32;not null;default:'local'" json:"disk"`
	Size             int64          `gorm:"not null" json:"size"`
	Status           int16          `gorm:"not null;default:0" json:"status"`
	Manipulations    datatypes.JSON `json:"manipulations,omitempty"`
	CustomProperties datatypes.JSON `json:"custom_properties,omitempty"`
	ResponsiveImages datatypes.JSON `json:"responsive_images,omitempty"`
	OrderColumn      *int           `json:"order_column,omitempty"`
	CreatedBy        *uint64        `json:"created_by,omitempty"`
	UpdatedBy        *uint64        `json:"updated_by,omitempty"`
	DeletedBy        *uint64        `json:"deleted_by,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}

// Category returns the asset category stored on the row.
func (a *MediaAsset) Category() Category {
	return Category(a.ModelType)
}

// Filename is the on-disk name shared by the record and every rendition.
func (a *MediaAsset) Filename() string {
	return a.Name + "." + a.Extension
}
