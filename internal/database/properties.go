package database

import (
	"errors"
	"strings"

	"property-catalog/internal/models"

	"gorm.io/gorm"
)

// CreateProperty runs the two-phase creation protocol: insert the row to
// obtain its surrogate key, then patch the derived identity fields in a
// second targeted write. A single-phase insert cannot compute external_id or
// slug because both depend on the key that insertion itself produces.
func CreateProperty(tx *gorm.DB, p *models.Property) error {
	if err := tx.Create(p).Error; err != nil {
		return err
	}
	return assignDerivedFields(tx, p)
}

// assignDerivedFields fills external_id and slug once the surrogate key
// exists. Both fields are write-once: values already present (an import
// supplying external_id directly, or an update of an existing row) are left
// untouched and never recomputed.
func assignDerivedFields(tx *gorm.DB, p *models.Property) error {
	updates := map[string]interface{}{}
	if p.ExternalID == "" {
		p.ExternalID = models.DefaultExternalID(p.ID)
		updates["external_id"] = p.ExternalID
	}
	if p.Slug == "" {
		p.Slug = models.DeriveSlug(p.Title, p.ID)
		updates["slug"] = p.Slug
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&models.Property{}).Where("id = ?", p.ID).Updates(updates).Error
}

// CreateProperty creates a property and assigns its derived identity fields.
func (gdb *GormDB) CreateProperty(p *models.Property) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		return CreateProperty(tx, p)
	})
}

// UpdateProperty saves changes to an existing property. Identity fields are
// not recomputed here; assignDerivedFields skips populated values.
func (gdb *GormDB) UpdateProperty(p *models.Property) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return assignDerivedFields(tx, p)
	})
}

// UpsertProperty creates or updates a property keyed by its external_id.
// On conflict every descriptive field is overwritten while external_id,
// slug and created_at stay as first assigned. Returns whether a new row
// was created.
func UpsertProperty(tx *gorm.DB, p *models.Property) (bool, error) {
	var existing models.Property
	err := tx.Where("external_id = ?", p.ExternalID).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, CreateProperty(tx, p)
	} else if err != nil {
		return false, err
	}

	// Update existing (keep original identity fields and CreatedAt)
	p.ID = existing.ID
	p.Slug = existing.Slug
	p.CreatedAt = existing.CreatedAt
	updates := map[string]interface{}{
		"location_id":   p.LocationID,
		"property_name": p.PropertyName,
		"country":       p.Country,
		"address":       p.Address,
		"title":         p.Title,
		"description":   p.Description,
	}
	if err := tx.Model(&models.Property{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
		return false, err
	}
	return false, nil
}

// UpsertProperty creates or updates a property keyed by external_id.
func (gdb *GormDB) UpsertProperty(p *models.Property) (bool, error) {
	var created bool
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = UpsertProperty(tx, p)
		return txErr
	})
	return created, err
}

// GetPropertyByID retrieves a property with its location and images.
func (gdb *GormDB) GetPropertyByID(id uint) (*models.Property, error) {
	var property models.Property
	err := gdb.db.
		Preload("Location").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC")
		}).
		First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetPropertyByExternalID retrieves a property by its external identifier.
func (gdb *GormDB) GetPropertyByExternalID(externalID string) (*models.Property, error) {
	var property models.Property
	err := gdb.db.Where("external_id = ?", externalID).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// ListProperties returns properties newest first, optionally filtered by
// location name (case-insensitive exact match). Locations and images are
// preloaded so list rendering needs no further queries.
func (gdb *GormDB) ListProperties(locationName string) ([]models.Property, error) {
	q := gdb.db.
		Preload("Location").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC")
		}).
		Order("properties.created_at DESC")

	locationName = strings.TrimSpace(locationName)
	if locationName != "" {
		q = q.Joins("JOIN locations ON locations.id = properties.location_id").
			Where("LOWER(locations.name) = ?", strings.ToLower(locationName))
	}

	var properties []models.Property
	err := q.Find(&properties).Error
	return properties, err
}

// DeleteProperty removes a property; its images cascade with it.
func (gdb *GormDB) DeleteProperty(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Property{}, id).Error
	})
}
