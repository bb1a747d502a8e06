package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supplier-sync-service/internal/importer"
	"supplier-sync-service/internal/services"
)

// ImportHandler handles bulk CSV import endpoints
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// Catalog runs the primary SDL catalog import
func (h *ImportHandler) Catalog(c *gin.Context) {
	h.run(c, h.service.RunCatalogImport)
}

// Enrichment runs the secondary EPDD enrichment import
func (h *ImportHandler) Enrichment(c *gin.Context) {
	h.run(c, h.service.RunEnrichmentImport)
}

func (h *ImportHandler) run(c *gin.Context, fn func(context.Context, *services.ImportRequest) (*importer.Result, error)) {
	var req services.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ConnectionID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "connectionId is required"})
		return
	}

	result, err := fn(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
