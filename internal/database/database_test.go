package database

import (
	"path/filepath"
	"testing"

	"property-catalog/internal/config"
	"property-catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *GormDB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateLocation(t *testing.T, db *GormDB, name string) *models.Location {
	t.Helper()
	loc, err := db.GetOrCreateLocation(name)
	require.NoError(t, err)
	return loc
}

func TestCreateProperty_AssignsIdentityFields(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")

	p := &models.Property{LocationID: loc.ID, Title: "Lake View Villa"}
	require.NoError(t, db.CreateProperty(p))

	require.NotZero(t, p.ID)
	assert.Equal(t, models.DefaultExternalID(p.ID), p.ExternalID)
	assert.Equal(t, models.DeriveSlug("Lake View Villa", p.ID), p.Slug)

	// Also persisted, not just set on the struct
	stored, err := db.GetPropertyByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ExternalID, stored.ExternalID)
	assert.Equal(t, p.Slug, stored.Slug)
}

func TestCreateProperty_ExternalIDFormat(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")

	p := &models.Property{LocationID: loc.ID, Title: "First"}
	require.NoError(t, db.CreateProperty(p))
	assert.Regexp(t, `^PROP-\d{4,}$`, p.ExternalID)
}

func TestUpdateProperty_IdentityFieldsAreWriteOnce(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")

	p := &models.Property{LocationID: loc.ID, Title: "Original Title"}
	require.NoError(t, db.CreateProperty(p))
	externalID, slug := p.ExternalID, p.Slug

	p.Title = "Edited Title"
	p.Address = "New Address"
	require.NoError(t, db.UpdateProperty(p))

	stored, err := db.GetPropertyByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited Title", stored.Title)
	assert.Equal(t, externalID, stored.ExternalID, "external_id must never be reassigned")
	assert.Equal(t, slug, stored.Slug, "slug must be stable across later edits")
}

func TestCreateProperty_PresetExternalIDPreserved(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")

	p := &models.Property{ExternalID: "EXT1", LocationID: loc.ID, Title: "T"}
	require.NoError(t, db.CreateProperty(p))

	stored, err := db.GetPropertyByExternalID("EXT1")
	require.NoError(t, err)
	assert.Equal(t, "EXT1", stored.ExternalID)
	// Slug is still derived since it was not preset
	assert.Equal(t, models.DeriveSlug("T", stored.ID), stored.Slug)
}

func TestUpsertProperty(t *testing.T) {
	db := newTestDB(t)
	dhaka := mustCreateLocation(t, db, "Dhaka")
	sylhet := mustCreateLocation(t, db, "Sylhet")

	p := &models.Property{ExternalID: "EXT1", LocationID: dhaka.ID, Title: "T", Country: "BD"}
	created, err := db.UpsertProperty(p)
	require.NoError(t, err)
	assert.True(t, created)
	firstID, firstSlug := p.ID, p.Slug

	// Second upsert with the same external_id overwrites descriptive fields
	update := &models.Property{ExternalID: "EXT1", LocationID: sylhet.ID, Title: "T2", Country: "BD"}
	created, err = db.UpsertProperty(update)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, firstID, update.ID)

	stored, err := db.GetPropertyByID(firstID)
	require.NoError(t, err)
	assert.Equal(t, "T2", stored.Title)
	assert.Equal(t, sylhet.ID, stored.LocationID)
	assert.Equal(t, firstSlug, stored.Slug, "upsert must not recompute the slug")

	var count int64
	require.NoError(t, db.DB().Model(&models.Property{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateLocation(t *testing.T) {
	db := newTestDB(t)

	first, err := db.GetOrCreateLocation("Dhaka")
	require.NoError(t, err)
	assert.Equal(t, "dhaka", first.Slug)

	again, err := db.GetOrCreateLocation("Dhaka")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	// Exact name match is case-sensitive: a differently cased name is new
	other, err := db.GetOrCreateLocation("DHAKA")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestDeleteLocation_BlockedWhileReferenced(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")

	p := &models.Property{LocationID: loc.ID, Title: "T"}
	require.NoError(t, db.CreateProperty(p))

	err := db.DeleteLocation(loc.ID)
	require.ErrorIs(t, err, ErrLocationInUse)

	// Both rows remain
	_, err = db.GetPropertyByID(p.ID)
	assert.NoError(t, err)
	locs, err := db.ListLocations()
	require.NoError(t, err)
	assert.Len(t, locs, 1)

	// After the property is gone, deletion succeeds
	require.NoError(t, db.DeleteProperty(p.ID))
	assert.NoError(t, db.DeleteLocation(loc.ID))
}

func TestSavePropertyImage_SinglePrimaryInvariant(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")
	p := &models.Property{LocationID: loc.ID, Title: "T"}
	require.NoError(t, db.CreateProperty(p))

	first := &models.PropertyImage{PropertyID: p.ID, ImagePath: "properties/x/a.jpg", IsPrimary: true}
	require.NoError(t, db.SavePropertyImage(first))

	second := &models.PropertyImage{PropertyID: p.ID, ImagePath: "properties/x/b.jpg", IsPrimary: true}
	err := db.SavePropertyImage(second)
	require.Error(t, err)

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "is_primary", vErr.Field)

	// The first primary is unchanged and the reject left no second row
	images, err := db.GetPropertyImages(p.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.True(t, images[0].IsPrimary)
	assert.Equal(t, first.ID, images[0].ID)
}

func TestSavePropertyImage_UpdateKeepsOwnPrimary(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")
	p := &models.Property{LocationID: loc.ID, Title: "T"}
	require.NoError(t, db.CreateProperty(p))

	img := &models.PropertyImage{PropertyID: p.ID, ImagePath: "properties/x/a.jpg", IsPrimary: true}
	require.NoError(t, db.SavePropertyImage(img))

	// Re-saving the same primary row does not conflict with itself
	img.AltText = "front elevation"
	require.NoError(t, db.SavePropertyImage(img))
}

func TestSavePropertyImage_NonPrimaryUnlimited(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")
	p := &models.Property{LocationID: loc.ID, Title: "T"}
	require.NoError(t, db.CreateProperty(p))

	for i := 0; i < 3; i++ {
		img := &models.PropertyImage{PropertyID: p.ID, ImagePath: "properties/x/n.jpg"}
		require.NoError(t, db.SavePropertyImage(img))
	}

	images, err := db.GetPropertyImages(p.ID)
	require.NoError(t, err)
	assert.Len(t, images, 3)
}

func TestSavePropertyImage_DifferentPropertiesIndependent(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")
	p1 := &models.Property{LocationID: loc.ID, Title: "A"}
	p2 := &models.Property{LocationID: loc.ID, Title: "B"}
	require.NoError(t, db.CreateProperty(p1))
	require.NoError(t, db.CreateProperty(p2))

	require.NoError(t, db.SavePropertyImage(&models.PropertyImage{PropertyID: p1.ID, ImagePath: "a", IsPrimary: true}))
	require.NoError(t, db.SavePropertyImage(&models.PropertyImage{PropertyID: p2.ID, ImagePath: "b", IsPrimary: true}))
}

func TestDeleteProperty_CascadesToImages(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")
	p := &models.Property{LocationID: loc.ID, Title: "T"}
	require.NoError(t, db.CreateProperty(p))
	require.NoError(t, db.SavePropertyImage(&models.PropertyImage{PropertyID: p.ID, ImagePath: "a"}))
	require.NoError(t, db.SavePropertyImage(&models.PropertyImage{PropertyID: p.ID, ImagePath: "b"}))

	require.NoError(t, db.DeleteProperty(p.ID))

	var count int64
	require.NoError(t, db.DB().Model(&models.PropertyImage{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeletePrimaryImage_NoAutoPromotion(t *testing.T) {
	db := newTestDB(t)
	loc := mustCreateLocation(t, db, "Dhaka")
	p := &models.Property{LocationID: loc.ID, Title: "T"}
	require.NoError(t, db.CreateProperty(p))

	primary := &models.PropertyImage{PropertyID: p.ID, ImagePath: "a", IsPrimary: true}
	require.NoError(t, db.SavePropertyImage(primary))
	require.NoError(t, db.SavePropertyImage(&models.PropertyImage{PropertyID: p.ID, ImagePath: "b"}))

	require.NoError(t, db.DeletePropertyImage(primary.ID))

	images, err := db.GetPropertyImages(p.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.False(t, images[0].IsPrimary, "no image is implicitly promoted to primary")
}

func TestAutocompleteLocations(t *testing.T) {
	db := newTestDB(t)
	for _, name := range []string{"Dhaka", "Dharmanagar", "Sylhet", "Chittagong", "Dhanbad", "Dhamrai", "Dhulian"} {
		mustCreateLocation(t, db, name)
	}

	// Queries under 3 characters return nothing
	results, err := db.AutocompleteLocations("dh", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Case-insensitive contains, capped at 5, ordered by name
	results, err = db.AutocompleteLocations("DHA", 5)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "Dhaka", results[0].Name)

	// The cap holds even when more names match
	results, err = db.AutocompleteLocations("dha", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestListProperties_LocationFilterCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	dhaka := mustCreateLocation(t, db, "Dhaka")
	sylhet := mustCreateLocation(t, db, "Sylhet")

	require.NoError(t, db.CreateProperty(&models.Property{LocationID: dhaka.ID, Title: "In Dhaka"}))
	require.NoError(t, db.CreateProperty(&models.Property{LocationID: sylhet.ID, Title: "In Sylhet"}))

	all, err := db.ListProperties("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := db.ListProperties("dhaka")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "In Dhaka", filtered[0].Title)
	assert.Equal(t, "Dhaka", filtered[0].Location.Name)
}
