package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/models"
)

// InventoryRepository handles database operations for inventory snapshots
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// ReplaceSnapshot swaps the stored rows for one product with a freshly
// fetched set, in one transaction
func (r *InventoryRepository) ReplaceSnapshot(ctx context.Context, supplierCode, supplierPartID string, rows []clients.InventoryRow) error {
	partID := strings.ToUpper(strings.TrimSpace(supplierPartID))
	now := time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_part_id = ?", partID).Delete(&models.InventoryRecord{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		records := make([]models.InventoryRecord, 0, len(rows))
		for _, row := range rows {
			record := models.InventoryRecord{
				SupplierCode:   supplierCode,
				SupplierPartID: partID,
				SupplierSku:    row.SupplierSku,
				ColorCode:      row.ColorCode,
				SizeCode:       row.SizeCode,
				TotalQty:       row.TotalQty,
				FetchedAt:      now,
			}
			for _, w := range row.Warehouses {
				record.Warehouses = append(record.Warehouses, models.WarehouseQuantity{
					WarehouseID: w.WarehouseID,
					Quantity:    w.Quantity,
				})
			}
			records = append(records, record)
		}
		return tx.Create(&records).Error
	})
}

// GetByPartID retrieves the stored snapshot rows for one product
func (r *InventoryRepository) GetByPartID(ctx context.Context, supplierPartID string) ([]models.InventoryRecord, error) {
	partID := strings.ToUpper(strings.TrimSpace(supplierPartID))

	var records []models.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("supplier_part_id = ?", partID).
		Order("color_code ASC, size_code ASC").
		Find(&records).Error
	return records, err
}

// Rows converts stored records back to canonical inventory rows for the
// matrix builder
func Rows(records []models.InventoryRecord) []clients.InventoryRow {
	rows := make([]clients.InventoryRow, 0, len(records))
	for _, rec := range records {
		row := clients.InventoryRow{
			SupplierPartID: rec.SupplierPartID,
			SupplierSku:    rec.SupplierSku,
			ColorCode:      rec.ColorCode,
			SizeCode:       rec.SizeCode,
			TotalQty:       rec.TotalQty,
		}
		for _, w := range rec.Warehouses {
			row.Warehouses = append(row.Warehouses, clients.WarehouseQty{
				WarehouseID: w.WarehouseID,
				Quantity:    w.Quantity,
			})
		}
		rows = append(rows, row)
	}
	return rows
}
