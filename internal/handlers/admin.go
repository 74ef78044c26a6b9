package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"property-catalog/internal/cleanup"
	"property-catalog/internal/database"
	"property-catalog/internal/importer"
	"property-catalog/internal/models"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db             *database.GormDB
	importer       *importer.Importer
	cleanupService *cleanup.Service
	cleanupConfig  cleanup.Config
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *database.GormDB, imp *importer.Importer, cleanupService *cleanup.Service, cleanupConfig cleanup.Config) *AdminHandler {
	return &AdminHandler{
		db:             db,
		importer:       imp,
		cleanupService: cleanupService,
		cleanupConfig:  cleanupConfig,
	}
}

// ImportRequest is the body for POST /api/admin/import
type ImportRequest struct {
	BaseDir        string `json:"base_dir" binding:"required"`
	LocationsFile  string `json:"locations_file"`
	PropertiesFile string `json:"properties_file"`
	ImagesFile     string `json:"images_file"`
	Clear          bool   `json:"clear"`
}

// TriggerImport runs a bulk CSV import synchronously. Import runs are
// single-threaded batch jobs; concurrent triggers simply queue on the
// database transaction.
func (h *AdminHandler) TriggerImport(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Admin: Import requested (base: %s, clear: %v)", req.BaseDir, req.Clear)

	result, err := h.importer.Run(importer.Options{
		BaseDir:        req.BaseDir,
		LocationsFile:  req.LocationsFile,
		PropertiesFile: req.PropertiesFile,
		ImagesFile:     req.ImagesFile,
		Clear:          req.Clear,
	})
	if err != nil {
		status := http.StatusInternalServerError
		var structuralErr *importer.StructuralError
		var rowErr *importer.RowError
		if errors.As(err, &structuralErr) || errors.As(err, &rowErr) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetImportLogs returns recent import runs, newest first
func (h *AdminHandler) GetImportLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	var logs []models.ImportLog
	err := h.db.DB().Order("started_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// RunCleanup triggers the orphaned-media cleanup
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	cfg := h.cleanupConfig
	if c.Query("dry_run") == "true" {
		cfg.DryRun = true
	}

	result, err := h.cleanupService.Run(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteLocation removes a location unless properties still reference it
func (h *AdminHandler) DeleteLocation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}

	if err := h.db.DeleteLocation(uint(id)); err != nil {
		if errors.Is(err, database.ErrLocationInUse) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
