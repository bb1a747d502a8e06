package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/matrix"
	"supplier-sync-service/internal/repository"
	"supplier-sync-service/internal/services"
)

// ProductHandler handles product lookup and inventory matrix endpoints
type ProductHandler struct {
	service     *services.ProductService
	productRepo *repository.ProductRepository
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *services.ProductService, productRepo *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{service: service, productRepo: productRepo}
}

// Get returns one product. With ?live=true and ?supplier=CODE the product is
// fetched from the supplier through the fallback pair; otherwise the stored
// copy serves.
func (h *ProductHandler) Get(c *gin.Context) {
	styleID := c.Param("styleId")

	if c.Query("live") == "true" {
		supplier := c.Query("supplier")
		if supplier == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "supplier query parameter is required for live fetch"})
			return
		}
		result, err := h.service.FetchLive(c.Request.Context(), supplier, styleID)
		if err != nil {
			status := http.StatusBadGateway
			var fbErr *clients.FallbackError
			if !errors.As(err, &fbErr) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	product, err := h.service.GetStored(c.Request.Context(), styleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// List returns stored products with filtering and pagination
func (h *ProductHandler) List(c *gin.Context) {
	opts := repository.ProductListOptions{
		SupplierCode: c.Query("supplier"),
		Brand:        c.Query("brand"),
		Search:       c.Query("search"),
		Limit:        intQuery(c, "limit", 50),
		Offset:       intQuery(c, "offset", 0),
	}

	products, total, err := h.productRepo.List(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  products,
		"total": total,
	})
}

// Matrix returns the inventory pivot for one product. Query parameters:
// viewMode (warehouse|color), color, warehouse, refresh, supplier.
func (h *ProductHandler) Matrix(c *gin.Context) {
	styleID := c.Param("styleId")

	cfg := matrix.Config{
		ViewMode:        matrix.ViewMode(c.DefaultQuery("viewMode", string(matrix.ViewWarehouse))),
		WarehouseFilter: c.DefaultQuery("warehouse", matrix.AllWarehouses),
	}
	if cfg.ViewMode != matrix.ViewWarehouse && cfg.ViewMode != matrix.ViewColor {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewMode must be warehouse or color"})
		return
	}
	if color := c.Query("color"); color != "" {
		cfg.ColorScope = matrix.ScopeSingle
		cfg.SelectedColor = color
	}

	refresh := c.Query("refresh") == "true"
	supplier := c.Query("supplier")
	if refresh && supplier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supplier query parameter is required for refresh"})
		return
	}

	m, err := h.service.InventoryMatrix(c.Request.Context(), supplier, styleID, cfg, refresh)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}
