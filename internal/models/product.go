package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents one canonical supplier style. The unique business key is
// the uppercased SupplierPartID; products are created on first encounter and
// updated on every subsequent sync, never deleted by this service.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SupplierCode string    `gorm:"type:varchar(100);not null;index:idx_products_supplier" json:"supplierCode"`

	// Product identification
	SupplierPartID string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_part_id" json:"supplierPartId"`
	Name           string  `gorm:"type:varchar(500);not null" json:"name"`
	Brand          *string `gorm:"type:varchar(255);index:idx_products_brand" json:"brand,omitempty"`

	// Default colorway code, when the supplier designates one
	DefaultColor *string `gorm:"type:varchar(100)" json:"defaultColor,omitempty"`

	// Ordered description lines
	Description StringArray `gorm:"type:jsonb;default:'[]'" json:"description,omitempty"`

	// Open string-keyed bag of supplier-specific facts (pricing text,
	// case size, weight, category, ...)
	Attributes JSONB `gorm:"type:jsonb;default:'{}'" json:"attributes,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships — replaced wholesale on every sync
	Colors   []ProductColor   `gorm:"foreignKey:ProductID" json:"colors,omitempty"`
	Sizes    []ProductSize    `gorm:"foreignKey:ProductID" json:"sizes,omitempty"`
	SkuMap   []SkuMapEntry    `gorm:"foreignKey:ProductID" json:"skuMap,omitempty"`
	Media    []MediaGroup     `gorm:"foreignKey:ProductID" json:"media,omitempty"`
	Keywords []ProductKeyword `gorm:"foreignKey:ProductID" json:"keywords,omitempty"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "supplier_products"
}

// ProductColor represents a single colorway of a product
type ProductColor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_product_colors_product" json:"productId"`

	ColorCode string `gorm:"type:varchar(100);not null" json:"colorCode"`
	ColorName string `gorm:"type:varchar(255);not null" json:"colorName"`

	SupplierVariantID *string `gorm:"type:varchar(255)" json:"supplierVariantId,omitempty"`
	SwatchURL         *string `gorm:"type:varchar(1000)" json:"swatchUrl,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for ProductColor
func (ProductColor) TableName() string {
	return "supplier_product_colors"
}

// ProductSize represents one size of a product. A nil SortRank means the
// size ranks last in display order.
type ProductSize struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_product_sizes_product" json:"productId"`

	SizeCode string `gorm:"type:varchar(100);not null" json:"sizeCode"`
	Display  string `gorm:"type:varchar(100);not null" json:"display"`
	SortRank *int   `json:"sortRank,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for ProductSize
func (ProductSize) TableName() string {
	return "supplier_product_sizes"
}

// SkuMapEntry maps a (colorCode, sizeCode) pair to the supplier's SKU.
// Unique per product per composite key; re-import replaces the whole set.
type SkuMapEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sku_map_composite" json:"productId"`

	ColorCode   string `gorm:"type:varchar(100);not null;uniqueIndex:idx_sku_map_composite" json:"colorCode"`
	SizeCode    string `gorm:"type:varchar(100);not null;uniqueIndex:idx_sku_map_composite" json:"sizeCode"`
	SupplierSku string `gorm:"type:varchar(255);not null" json:"supplierSku"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for SkuMapEntry
func (SkuMapEntry) TableName() string {
	return "supplier_sku_map"
}

// MediaGroup holds an ordered list of image URLs for one colorway.
// A nil ColorCode marks a color-agnostic (global) image group.
type MediaGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_media_groups_product" json:"productId"`

	ColorCode *string     `gorm:"type:varchar(100)" json:"colorCode,omitempty"`
	URLs      StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"urls"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for MediaGroup
func (MediaGroup) TableName() string {
	return "supplier_media_groups"
}

// ProductKeyword is a lowercase, deduplicated search token for a product
type ProductKeyword struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_product_keywords_product" json:"productId"`

	Keyword string `gorm:"type:varchar(255);not null" json:"keyword"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for ProductKeyword
func (ProductKeyword) TableName() string {
	return "supplier_product_keywords"
}
