package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"property-catalog/internal/database"
	"property-catalog/internal/models"

	"github.com/gin-gonic/gin"
)

// Handler serves the public read API
type Handler struct {
	db            *database.GormDB
	publicBaseURL string
}

// NewHandler creates a new read-API handler. publicBaseURL, when set,
// overrides the request origin for absolute media URLs.
func NewHandler(db *database.GormDB, publicBaseURL string) *Handler {
	return &Handler{db: db, publicBaseURL: publicBaseURL}
}

// PropertyListItem is the compact listing representation
type PropertyListItem struct {
	ID              uint   `json:"id"`
	ExternalID      string `json:"external_id"`
	Title           string `json:"title"`
	Address         string `json:"address"`
	Country         string `json:"country"`
	Slug            string `json:"slug"`
	LocationName    string `json:"location_name"`
	LocationSlug    string `json:"location_slug"`
	PrimaryImageURL string `json:"primary_image_url,omitempty"`
}

// PropertyImageItem is the image representation used by the detail endpoint
type PropertyImageItem struct {
	ID        uint   `json:"id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
	AltText   string `json:"alt_text"`
}

// PropertyDetail is the full detail representation
type PropertyDetail struct {
	ID           uint                `json:"id"`
	ExternalID   string              `json:"external_id"`
	PropertyName string              `json:"property_name"`
	Country      string              `json:"country"`
	Address      string              `json:"address"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Slug         string              `json:"slug"`
	CreatedAt    string              `json:"created_at"`
	Location     models.Location     `json:"location"`
	Images       []PropertyImageItem `json:"images"`
}

// ListProperties handles GET /api/properties?location=
func (h *Handler) ListProperties(c *gin.Context) {
	properties, err := h.db.ListProperties(c.Query("location"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]PropertyListItem, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		item := PropertyListItem{
			ID:           p.ID,
			ExternalID:   p.ExternalID,
			Title:        p.Title,
			Address:      p.Address,
			Country:      p.Country,
			Slug:         p.Slug,
			LocationName: p.Location.Name,
			LocationSlug: p.Location.Slug,
		}
		// Images are preloaded primary-first, so the cover is the head row
		// when one is flagged
		for j := range p.Images {
			if p.Images[j].IsPrimary {
				item.PrimaryImageURL = h.imageURL(c, p.Images[j].ImagePath)
				break
			}
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"results": items,
		"count":   len(items),
	})
}

// GetProperty handles GET /api/properties/:id
func (h *Handler) GetProperty(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	property, err := h.db.GetPropertyByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	detail := PropertyDetail{
		ID:           property.ID,
		ExternalID:   property.ExternalID,
		PropertyName: property.PropertyName,
		Country:      property.Country,
		Address:      property.Address,
		Title:        property.Title,
		Description:  property.Description,
		Slug:         property.Slug,
		CreatedAt:    property.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Location:     property.Location,
		Images:       make([]PropertyImageItem, 0, len(property.Images)),
	}
	for i := range property.Images {
		img := &property.Images[i]
		detail.Images = append(detail.Images, PropertyImageItem{
			ID:        img.ID,
			ImageURL:  h.imageURL(c, img.ImagePath),
			IsPrimary: img.IsPrimary,
			AltText:   img.AltText,
		})
	}

	c.JSON(http.StatusOK, detail)
}

// imageURL turns a stored media path into an absolute URL. The configured
// public base URL wins; otherwise the origin comes from the request.
func (h *Handler) imageURL(c *gin.Context, imagePath string) string {
	origin := h.publicBaseURL
	if origin == "" && c.Request != nil && c.Request.Host != "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		origin = fmt.Sprintf("%s://%s", scheme, c.Request.Host)
	}
	return origin + "/media/" + imagePath
}
