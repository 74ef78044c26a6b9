package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListLocations handles GET /api/locations
func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.db.ListLocations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": locations})
}

// AutocompleteLocations handles GET /api/locations/autocomplete?q=
// Queries shorter than 3 characters return an empty result set.
func (h *Handler) AutocompleteLocations(c *gin.Context) {
	locations, err := h.db.AutocompleteLocations(c.Query("q"), 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": locations})
}
