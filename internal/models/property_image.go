package models

import (
	"fmt"
	"time"
)

// PropertyImage represents an image associated with a property
type PropertyImage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	ImagePath  string    `gorm:"type:varchar(300);not null" json:"image_path"`
	IsPrimary  bool      `gorm:"not null;default:false" json:"is_primary"`
	AltText    string    `gorm:"type:varchar(150)" json:"alt_text"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for PropertyImage
func (PropertyImage) TableName() string {
	return "property_images"
}

// ValidationError reports a field-level validation failure on a single record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePrimaryImage enforces the single-primary invariant for img against the
// already-persisted images of the same property. The siblings slice is whatever
// the caller fetched for img.PropertyID; rows sharing img's own ID are ignored so
// an update does not conflict with itself. Non-primary candidates always pass.
// The check is pure so the importer's in-batch validation and the single-record
// write path share it.
func ValidatePrimaryImage(siblings []PropertyImage, img *PropertyImage) error {
	if !img.IsPrimary {
		return nil
	}
	for i := range siblings {
		if siblings[i].ID == img.ID {
			continue
		}
		if siblings[i].IsPrimary {
			return &ValidationError{
				Field:   "is_primary",
				Message: "only one primary image can be set per property",
			}
		}
	}
	return nil
}
