package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HomePage renders the listing browse page
func (h *Handler) HomePage(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{})
}

// PropertyDetailPage renders the detail page for one property. The page
// fetches the actual data from the JSON API by id.
func (h *Handler) PropertyDetailPage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.HTML(http.StatusOK, "property_detail.html", gin.H{
		"PropertyID": id,
	})
}
