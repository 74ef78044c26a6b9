package database

import (
	"errors"
	"strings"

	"property-catalog/internal/models"

	"gorm.io/gorm"
)

// ErrLocationInUse is returned when deleting a location that still has
// properties referencing it.
var ErrLocationInUse = errors.New("location is referenced by existing properties")

// GetOrCreateLocation finds a location by exact name or creates it. New
// locations get their slug derived from the name.
func GetOrCreateLocation(tx *gorm.DB, name string) (*models.Location, error) {
	var loc models.Location
	err := tx.Where("name = ?", name).First(&loc).Error
	if err == nil {
		return &loc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	loc = models.Location{Name: name}
	loc.EnsureSlug()
	if err := tx.Create(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetOrCreateLocation finds or creates a location by exact name.
func (gdb *GormDB) GetOrCreateLocation(name string) (*models.Location, error) {
	return GetOrCreateLocation(gdb.db, name)
}

// ListLocations returns all locations ordered by name.
func (gdb *GormDB) ListLocations() ([]models.Location, error) {
	var locations []models.Location
	err := gdb.db.Order("name ASC").Find(&locations).Error
	return locations, err
}

// GetLocationByName resolves a location by name, case-insensitively.
func (gdb *GormDB) GetLocationByName(name string) (*models.Location, error) {
	var loc models.Location
	err := gdb.db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// AutocompleteLocations returns up to limit locations whose name contains the
// query, case-insensitively, ordered by name. Queries shorter than 3
// characters return no matches.
func (gdb *GormDB) AutocompleteLocations(query string, limit int) ([]models.Location, error) {
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return []models.Location{}, nil
	}

	var locations []models.Location
	err := gdb.db.
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("name ASC").
		Limit(limit).
		Find(&locations).Error
	return locations, err
}

// DeleteLocation removes a location. Deletion is blocked while any property
// still references it (protective delete, never cascading).
func (gdb *GormDB) DeleteLocation(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Property{}).Where("location_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrLocationInUse
		}
		return tx.Delete(&models.Location{}, id).Error
	})
}
