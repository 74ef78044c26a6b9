package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"property-catalog/internal/cleanup"
	"property-catalog/internal/config"
	"property-catalog/internal/database"
	"property-catalog/internal/importer"
	"property-catalog/internal/media"
	"property-catalog/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *database.GormDB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })

	store := media.NewStore(t.TempDir())
	h := NewHandler(db, "http://example.test")
	admin := NewAdminHandler(db, importer.New(db, store), cleanup.NewService(db, store), cleanup.DefaultConfig())

	r := gin.New()
	r.GET("/api/properties", h.ListProperties)
	r.GET("/api/properties/:id", h.GetProperty)
	r.GET("/api/locations", h.ListLocations)
	r.GET("/api/locations/autocomplete", h.AutocompleteLocations)
	r.DELETE("/api/admin/locations/:id", admin.DeleteLocation)

	return r, db
}

func seedProperty(t *testing.T, db *database.GormDB, locationName, title string) *models.Property {
	t.Helper()
	loc, err := db.GetOrCreateLocation(locationName)
	require.NoError(t, err)
	p := &models.Property{LocationID: loc.ID, Title: title, Address: "12 Lake Rd", Country: "BD"}
	require.NoError(t, db.CreateProperty(p))
	return p
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListProperties(t *testing.T) {
	r, db := newTestRouter(t)
	p := seedProperty(t, db, "Dhaka", "Lake View Villa")
	require.NoError(t, db.SavePropertyImage(&models.PropertyImage{
		PropertyID: p.ID, ImagePath: "properties/" + p.ExternalID + "/a.jpg", IsPrimary: true,
	}))

	w := doRequest(r, http.MethodGet, "/api/properties")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Results []PropertyListItem `json:"results"`
		Count   int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)

	item := body.Results[0]
	assert.Equal(t, p.ExternalID, item.ExternalID)
	assert.Equal(t, "Lake View Villa", item.Title)
	assert.Equal(t, "Dhaka", item.LocationName)
	assert.Equal(t, "dhaka", item.LocationSlug)
	assert.Equal(t, "http://example.test/media/properties/"+p.ExternalID+"/a.jpg", item.PrimaryImageURL)
}

func TestListProperties_LocationFilter(t *testing.T) {
	r, db := newTestRouter(t)
	seedProperty(t, db, "Dhaka", "In Dhaka")
	seedProperty(t, db, "Sylhet", "In Sylhet")

	w := doRequest(r, http.MethodGet, "/api/properties?location=dhaka")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Results []PropertyListItem `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "In Dhaka", body.Results[0].Title)
}

func TestGetProperty(t *testing.T) {
	r, db := newTestRouter(t)
	p := seedProperty(t, db, "Dhaka", "Lake View Villa")
	require.NoError(t, db.SavePropertyImage(&models.PropertyImage{
		PropertyID: p.ID, ImagePath: "properties/" + p.ExternalID + "/a.jpg", IsPrimary: true, AltText: "front",
	}))

	w := doRequest(r, http.MethodGet, "/api/properties/1")
	require.Equal(t, http.StatusOK, w.Code)

	var detail PropertyDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, p.ExternalID, detail.ExternalID)
	assert.Equal(t, "Dhaka", detail.Location.Name)
	require.Len(t, detail.Images, 1)
	assert.True(t, detail.Images[0].IsPrimary)
	assert.Equal(t, "front", detail.Images[0].AltText)

	w = doRequest(r, http.MethodGet, "/api/properties/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAutocompleteLocations(t *testing.T) {
	r, db := newTestRouter(t)
	for _, name := range []string{"Dhaka", "Dharmanagar", "Sylhet"} {
		_, err := db.GetOrCreateLocation(name)
		require.NoError(t, err)
	}

	w := doRequest(r, http.MethodGet, "/api/locations/autocomplete?q=dha")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Results []models.Location `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Results, 2)

	// Short queries return an empty set, not an error
	w = doRequest(r, http.MethodGet, "/api/locations/autocomplete?q=dh")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Results)
}

func TestDeleteLocation_ConflictWhileReferenced(t *testing.T) {
	r, db := newTestRouter(t)
	p := seedProperty(t, db, "Dhaka", "T")

	w := doRequest(r, http.MethodDelete, "/api/admin/locations/1")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Still present
	_, err := db.GetPropertyByID(p.ID)
	assert.NoError(t, err)

	require.NoError(t, db.DeleteProperty(p.ID))
	w = doRequest(r, http.MethodDelete, "/api/admin/locations/1")
	assert.Equal(t, http.StatusOK, w.Code)
}
