package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WarehouseQuantity is one warehouse's share of an inventory record
type WarehouseQuantity struct {
	WarehouseID string `json:"warehouseId"`
	Quantity    int    `json:"quantity"`
}

// WarehouseBreakdown stores the per-warehouse split as a JSONB array column
type WarehouseBreakdown []WarehouseQuantity

func (b WarehouseBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return json.Marshal([]WarehouseQuantity{})
	}
	return json.Marshal([]WarehouseQuantity(b))
}

func (b *WarehouseBreakdown) Scan(value interface{}) error {
	if value == nil {
		*b = WarehouseBreakdown{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, b)
}

// Sum returns the total quantity across all warehouses in the breakdown
func (b WarehouseBreakdown) Sum() int {
	total := 0
	for _, w := range b {
		total += w.Quantity
	}
	return total
}

// InventoryRecord is a stock snapshot for one SKU of a product. When a
// warehouse breakdown is present TotalQty should equal its sum; when absent
// TotalQty is authoritative and the breakdown is empty.
type InventoryRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SupplierCode string    `gorm:"type:varchar(100);not null;index:idx_inventory_records_supplier" json:"supplierCode"`

	SupplierPartID string `gorm:"type:varchar(100);not null;index:idx_inventory_records_part" json:"supplierPartId"`
	SupplierSku    string `gorm:"type:varchar(255);not null" json:"supplierSku"`
	ColorCode      string `gorm:"type:varchar(100);not null" json:"colorCode"`
	SizeCode       string `gorm:"type:varchar(100);not null" json:"sizeCode"`

	TotalQty   int                `gorm:"not null;default:0" json:"totalQty"`
	Warehouses WarehouseBreakdown `gorm:"type:jsonb;default:'[]'" json:"warehouses,omitempty"`

	FetchedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"fetchedAt"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for InventoryRecord
func (InventoryRecord) TableName() string {
	return "supplier_inventory_records"
}
