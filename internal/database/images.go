package database

import (
	"errors"

	"property-catalog/internal/models"

	"gorm.io/gorm"
)

// SavePropertyImage validates the single-primary invariant against committed
// sibling rows and then persists the image. On update the row's own identity
// is excluded from the sibling query, so a row never conflicts with itself.
// Rejections surface as *models.ValidationError naming the is_primary field
// and leave the existing primary unchanged.
func SavePropertyImage(tx *gorm.DB, img *models.PropertyImage) error {
	if img.IsPrimary {
		var siblings []models.PropertyImage
		q := tx.Where("property_id = ? AND is_primary = ?", img.PropertyID, true)
		if img.ID != 0 {
			q = q.Where("id <> ?", img.ID)
		}
		if err := q.Find(&siblings).Error; err != nil {
			return err
		}
		if err := models.ValidatePrimaryImage(siblings, img); err != nil {
			return err
		}
	}

	if img.ID == 0 {
		return tx.Create(img).Error
	}
	return tx.Save(img).Error
}

// SavePropertyImage validates and persists a property image.
func (gdb *GormDB) SavePropertyImage(img *models.PropertyImage) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		return SavePropertyImage(tx, img)
	})
}

// FindImageByHeuristic looks up an existing image matching the import dedup
// heuristic: same property, same alt text, same primary flag. Returns nil
// without error when no such image exists.
func FindImageByHeuristic(tx *gorm.DB, propertyID uint, altText string, isPrimary bool) (*models.PropertyImage, error) {
	var img models.PropertyImage
	err := tx.Where("property_id = ? AND alt_text = ? AND is_primary = ?", propertyID, altText, isPrimary).
		First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// GetPropertyImages returns a property's images, primary first.
func (gdb *GormDB) GetPropertyImages(propertyID uint) ([]models.PropertyImage, error) {
	var images []models.PropertyImage
	err := gdb.db.
		Where("property_id = ?", propertyID).
		Order("is_primary DESC, created_at ASC").
		Find(&images).Error
	return images, err
}

// DeletePropertyImage removes a single image. No sibling is promoted to
// primary when the sole primary is deleted.
func (gdb *GormDB) DeletePropertyImage(id uint) error {
	return gdb.db.Delete(&models.PropertyImage{}, id).Error
}

// ListImagePaths returns the storage paths of all images, used by the
// orphaned-media cleanup to decide which files are still referenced.
func (gdb *GormDB) ListImagePaths() ([]string, error) {
	var paths []string
	err := gdb.db.Model(&models.PropertyImage{}).Pluck("image_path", &paths).Error
	return paths, err
}
