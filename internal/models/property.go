package models

import (
	"fmt"
	"time"
)

// Property is a single real-estate listing
type Property struct {
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID string   `gorm:"type:varchar(50);uniqueIndex" json:"external_id"`
	LocationID uint     `gorm:"not null;index" json:"location_id"`
	Location   Location `gorm:"foreignKey:LocationID" json:"location"`

	PropertyName string `gorm:"type:varchar(200)" json:"property_name"`
	Country      string `gorm:"type:varchar(100)" json:"country"`
	Address      string `gorm:"type:varchar(200)" json:"address"`
	Title        string `gorm:"type:varchar(200);not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Slug         string `gorm:"type:varchar(220);uniqueIndex" json:"slug"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`

	Images []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}

// DefaultExternalID formats the canonical external identifier for a surrogate key.
// The width is a minimum: keys beyond 9999 format with more digits.
func DefaultExternalID(id uint) string {
	return fmt.Sprintf("PROP-%04d", id)
}

// DeriveSlug builds the unique property slug from the title and surrogate key.
// An empty title degrades to just the numeric suffix, which stays unique.
func DeriveSlug(title string, id uint) string {
	return fmt.Sprintf("%s-%d", Slugify(title), id)
}
