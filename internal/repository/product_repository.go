package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/models"
)

// ProductRepository handles database operations for canonical products.
// It implements importer.ProductStore.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// childModels enumerates the collections replaced wholesale on every update
var childModels = []interface{}{
	&models.ProductColor{},
	&models.ProductSize{},
	&models.SkuMapEntry{},
	&models.MediaGroup{},
	&models.ProductKeyword{},
}

// ReplaceProduct creates or updates the product for record's part id and
// replaces every child collection with the record's contents. The whole
// operation runs in one transaction so a crash can never leave a product
// with children from two different versions.
func (r *ProductRepository) ReplaceProduct(ctx context.Context, supplierCode string, record *clients.ProductRecord) error {
	partID := strings.ToUpper(strings.TrimSpace(record.SupplierPartID))
	if partID == "" {
		return errors.New("product record has no supplier part id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := tx.Where("supplier_part_id = ?", partID).First(&product).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			product = models.Product{
				SupplierCode:   supplierCode,
				SupplierPartID: partID,
			}
			applyScalars(&product, record)
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			applyScalars(&product, record)
			product.UpdatedAt = time.Now()
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
		}

		for _, child := range childModels {
			if err := tx.Where("product_id = ?", product.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return createChildren(tx, product.ID, record)
	})
}

// MergeProductAttributes folds attrs into an existing product's attribute
// map. Returns false when no product with that part id exists; enrichment
// never creates products.
func (r *ProductRepository) MergeProductAttributes(ctx context.Context, supplierCode, supplierPartID string, attrs map[string]interface{}) (bool, error) {
	partID := strings.ToUpper(strings.TrimSpace(supplierPartID))

	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := tx.Where("supplier_part_id = ?", partID).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		if product.Attributes == nil {
			product.Attributes = models.JSONB{}
		}
		for k, v := range attrs {
			product.Attributes[k] = v
		}
		return tx.Model(&product).Updates(map[string]interface{}{
			"attributes": product.Attributes,
			"updated_at": time.Now(),
		}).Error
	})
	return found, err
}

// GetByPartID retrieves a product with all child collections
func (r *ProductRepository) GetByPartID(ctx context.Context, supplierPartID string) (*models.Product, error) {
	partID := strings.ToUpper(strings.TrimSpace(supplierPartID))

	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Colors").
		Preload("Sizes").
		Preload("SkuMap").
		Preload("Media").
		Preload("Keywords").
		Where("supplier_part_id = ?", partID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductListOptions contains options for listing products
type ProductListOptions struct {
	SupplierCode string
	Brand        string
	Search       string
	Limit        int
	Offset       int
}

// List retrieves products with filtering and pagination
func (r *ProductRepository) List(ctx context.Context, opts ProductListOptions) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if opts.SupplierCode != "" {
		query = query.Where("supplier_code = ?", opts.SupplierCode)
	}
	if opts.Brand != "" {
		query = query.Where("brand = ?", opts.Brand)
	}
	if opts.Search != "" {
		like := "%" + strings.ToUpper(opts.Search) + "%"
		query = query.Where("supplier_part_id LIKE ? OR UPPER(name) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if err := query.Order("supplier_part_id ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// applyScalars copies the record's scalar fields onto the row. Empty
// incoming values do not clear populated columns.
func applyScalars(product *models.Product, record *clients.ProductRecord) {
	if record.Name != "" {
		product.Name = record.Name
	}
	if record.Brand != "" {
		brand := record.Brand
		product.Brand = &brand
	}
	if record.DefaultColor != "" {
		color := record.DefaultColor
		product.DefaultColor = &color
	}
	if len(record.Description) > 0 {
		product.Description = models.StringArray(record.Description)
	}
	if len(record.Attributes) > 0 {
		product.Attributes = models.JSONB(record.Attributes)
	}
}

// createChildren bulk-inserts the record's child collections
func createChildren(tx *gorm.DB, productID uuid.UUID, record *clients.ProductRecord) error {
	if len(record.Colorways) > 0 {
		colors := make([]models.ProductColor, 0, len(record.Colorways))
		for _, c := range record.Colorways {
			color := models.ProductColor{
				ProductID: productID,
				ColorCode: c.Code,
				ColorName: c.Name,
			}
			if c.SupplierVariantID != "" {
				v := c.SupplierVariantID
				color.SupplierVariantID = &v
			}
			if c.SwatchURL != "" {
				u := c.SwatchURL
				color.SwatchURL = &u
			}
			colors = append(colors, color)
		}
		if err := tx.Create(&colors).Error; err != nil {
			return err
		}
	}

	if len(record.Sizes) > 0 {
		sizes := make([]models.ProductSize, 0, len(record.Sizes))
		for _, s := range record.Sizes {
			sizes = append(sizes, models.ProductSize{
				ProductID: productID,
				SizeCode:  s.Code,
				Display:   s.Display,
				SortRank:  s.SortRank,
			})
		}
		if err := tx.Create(&sizes).Error; err != nil {
			return err
		}
	}

	if len(record.SkuMap) > 0 {
		entries := make([]models.SkuMapEntry, 0, len(record.SkuMap))
		for _, e := range record.SkuMap {
			entries = append(entries, models.SkuMapEntry{
				ProductID:   productID,
				ColorCode:   e.ColorCode,
				SizeCode:    e.SizeCode,
				SupplierSku: e.SupplierSku,
			})
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}
	}

	if len(record.Media) > 0 {
		groups := make([]models.MediaGroup, 0, len(record.Media))
		for _, m := range record.Media {
			group := models.MediaGroup{
				ProductID: productID,
				URLs:      models.StringArray(m.URLs),
			}
			if m.ColorCode != "" {
				code := m.ColorCode
				group.ColorCode = &code
			}
			groups = append(groups, group)
		}
		if err := tx.Create(&groups).Error; err != nil {
			return err
		}
	}

	if len(record.Keywords) > 0 {
		keywords := make([]models.ProductKeyword, 0, len(record.Keywords))
		for _, k := range record.Keywords {
			keywords = append(keywords, models.ProductKeyword{
				ProductID: productID,
				Keyword:   k,
			})
		}
		if err := tx.Create(&keywords).Error; err != nil {
			return err
		}
	}
	return nil
}
