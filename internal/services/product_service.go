package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/matrix"
	"supplier-sync-service/internal/models"
	"supplier-sync-service/internal/repository"
)

// ProductService serves live product lookups and inventory matrices
type ProductService struct {
	connectionRepo *repository.ConnectionRepository
	productRepo    *repository.ProductRepository
	inventoryRepo  *repository.InventoryRepository
	syncService    *SyncService
	log            *logrus.Entry
}

// NewProductService creates a new product service
func NewProductService(
	connectionRepo *repository.ConnectionRepository,
	productRepo *repository.ProductRepository,
	inventoryRepo *repository.InventoryRepository,
	syncService *SyncService,
	log *logrus.Entry,
) *ProductService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ProductService{
		connectionRepo: connectionRepo,
		productRepo:    productRepo,
		inventoryRepo:  inventoryRepo,
		syncService:    syncService,
		log:            log,
	}
}

// FetchLive fetches one product from the supplier through the fallback pair
// and persists the result. The response carries the serving source and any
// primary-failure warnings.
func (s *ProductService) FetchLive(ctx context.Context, supplierCode, styleID string) (*clients.ProductResult, error) {
	conn, err := s.connectionRepo.GetBySupplierCode(ctx, supplierCode)
	if err != nil {
		return nil, fmt.Errorf("supplier not found: %w", err)
	}

	fallback, err := s.syncService.BuildFallback(conn)
	if err != nil {
		return nil, err
	}

	result, err := fallback.FetchProduct(ctx, styleID)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.ReplaceProduct(ctx, conn.SupplierCode, result.Record); err != nil {
		s.log.WithFields(logrus.Fields{
			"styleId": styleID,
			"error":   err.Error(),
		}).Warn("live fetch succeeded but persistence failed")
	}
	return result, nil
}

// GetStored retrieves the stored product with all child collections
func (s *ProductService) GetStored(ctx context.Context, styleID string) (*models.Product, error) {
	return s.productRepo.GetByPartID(ctx, styleID)
}

// InventoryMatrix builds the pivot for one product. With refresh set, stock
// is fetched live from the supplier and the stored snapshot replaced first;
// otherwise the stored snapshot serves.
func (s *ProductService) InventoryMatrix(ctx context.Context, supplierCode, styleID string, cfg matrix.Config, refresh bool) (*matrix.Matrix, error) {
	styleID = strings.ToUpper(strings.TrimSpace(styleID))

	var rows []clients.InventoryRow
	if refresh {
		conn, err := s.connectionRepo.GetBySupplierCode(ctx, supplierCode)
		if err != nil {
			return nil, fmt.Errorf("supplier not found: %w", err)
		}
		fallback, err := s.syncService.BuildFallback(conn)
		if err != nil {
			return nil, err
		}
		result, err := fallback.FetchInventory(ctx, styleID, nil)
		if err != nil {
			return nil, err
		}
		rows = result.Rows
		if err := s.inventoryRepo.ReplaceSnapshot(ctx, conn.SupplierCode, styleID, rows); err != nil {
			s.log.WithFields(logrus.Fields{
				"styleId": styleID,
				"error":   err.Error(),
			}).Warn("inventory refresh succeeded but persistence failed")
		}
	} else {
		records, err := s.inventoryRepo.GetByPartID(ctx, styleID)
		if err != nil {
			return nil, err
		}
		rows = repository.Rows(records)
	}

	// canonical size order and color list come from the stored product when
	// one exists; the matrix still includes variants seen only in inventory
	var sizes []clients.SizeInfo
	var colors []clients.Colorway
	product, err := s.productRepo.GetByPartID(ctx, styleID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if product != nil {
		for _, ps := range product.Sizes {
			sizes = append(sizes, clients.SizeInfo{Code: ps.SizeCode, Display: ps.Display, SortRank: ps.SortRank})
		}
		for _, pc := range product.Colors {
			colors = append(colors, clients.Colorway{Code: pc.ColorCode, Name: pc.ColorName})
		}
	}

	return matrix.Build(rows, sizes, colors, nil, cfg), nil
}
