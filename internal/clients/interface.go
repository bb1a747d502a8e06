package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"supplier-sync-service/internal/models"
	"supplier-sync-service/internal/normalize"
)

// SupplierClient is the capability set every supplier transport implements.
// Implementations return canonical records; protocol quirks stay behind the
// interface.
type SupplierClient interface {
	// Protocol returns the transport variant
	Protocol() models.SupplierProtocol

	// FetchProduct fetches one product by supplier part id
	FetchProduct(ctx context.Context, productID string) (*ProductRecord, error)

	// FetchInventory fetches inventory rows for one product, optionally filtered
	FetchInventory(ctx context.Context, productID string, filter *InventoryFilter) ([]InventoryRow, error)
}

// CatalogLister is an optional capability for clients that can enumerate the
// supplier's catalog page by page. Live sync walks pages strictly
// sequentially, extracting the next cursor from each response.
type CatalogLister interface {
	ListProducts(ctx context.Context, opts *ListOptions) (*ProductPage, error)
}

// ListOptions contains catalog pagination options
type ListOptions struct {
	Cursor        string
	Limit         int
	ModifiedSince time.Time
}

// ProductPage is one page of catalog style identifiers
type ProductPage struct {
	StyleIDs   []string
	NextCursor string
	HasMore    bool
}

// InventoryFilter narrows an inventory fetch. Zero-value fields are ignored.
type InventoryFilter struct {
	ColorName    string
	SizeLabel    string
	PartID       string
	WarehouseIDs []string
}

// ProductRecord is the canonical, protocol-independent product shape
type ProductRecord struct {
	SupplierPartID string                 `json:"supplierPartId"`
	Name           string                 `json:"name"`
	Brand          string                 `json:"brand,omitempty"`
	DefaultColor   string                 `json:"defaultColor,omitempty"`
	Description    []string               `json:"description,omitempty"`
	Attributes     map[string]interface{} `json:"attributes,omitempty"`

	Colorways []Colorway `json:"colorways"`
	Sizes     []SizeInfo `json:"sizes"`
	SkuMap    []SkuEntry `json:"skuMap"`
	Media     []MediaSet `json:"media,omitempty"`
	Keywords  []string   `json:"keywords,omitempty"`
}

// Colorway is one color variant of a product
type Colorway struct {
	Code              string `json:"colorCode"`
	Name              string `json:"colorName"`
	SupplierVariantID string `json:"supplierVariantId,omitempty"`
	SwatchURL         string `json:"swatchUrl,omitempty"`
}

// SizeInfo is one size of a product. A nil SortRank sorts last.
type SizeInfo struct {
	Code     string `json:"sizeCode"`
	Display  string `json:"display"`
	SortRank *int   `json:"sortRank,omitempty"`
}

// SkuEntry maps a (colorCode, sizeCode) pair to the supplier SKU
type SkuEntry struct {
	ColorCode   string `json:"colorCode"`
	SizeCode    string `json:"sizeCode"`
	SupplierSku string `json:"supplierSku"`
}

// MediaSet is an ordered list of image URLs for one colorway; an empty
// ColorCode marks a color-agnostic group.
type MediaSet struct {
	ColorCode string   `json:"colorCode,omitempty"`
	URLs      []string `json:"urls"`
}

// WarehouseQty is one warehouse's share of an inventory row
type WarehouseQty struct {
	WarehouseID string `json:"warehouseId"`
	Quantity    int    `json:"quantity"`
}

// InventoryRow is the canonical stock shape for one SKU. When Warehouses is
// populated, TotalQty should equal its sum; otherwise TotalQty stands alone.
type InventoryRow struct {
	SupplierPartID string         `json:"supplierPartId"`
	SupplierSku    string         `json:"supplierSku"`
	ColorCode      string         `json:"colorCode"`
	SizeCode       string         `json:"sizeCode"`
	TotalQty       int            `json:"totalQty"`
	Warehouses     []WarehouseQty `json:"warehouses,omitempty"`
}

// Synthesized codes used when a supplier payload carries no color or size
const (
	DefaultColorCode = "DEFAULT"
	DefaultSizeCode  = "OSFA"
)

// AddColorway appends a colorway unless its code is already present
func (r *ProductRecord) AddColorway(c Colorway) {
	if c.Code == "" {
		return
	}
	for _, existing := range r.Colorways {
		if existing.Code == c.Code {
			return
		}
	}
	r.Colorways = append(r.Colorways, c)
}

// AddSize appends a size unless its code is already present
func (r *ProductRecord) AddSize(s SizeInfo) {
	if s.Code == "" {
		return
	}
	for _, existing := range r.Sizes {
		if existing.Code == s.Code {
			return
		}
	}
	r.Sizes = append(r.Sizes, s)
}

// AddSku records a sku-map entry for a composite key; the first entry for a
// given (colorCode, sizeCode) wins. An empty supplierSku synthesizes
// PART_COLOR_SIZE.
func (r *ProductRecord) AddSku(colorCode, sizeCode, supplierSku string) {
	for _, existing := range r.SkuMap {
		if existing.ColorCode == colorCode && existing.SizeCode == sizeCode {
			return
		}
	}
	if supplierSku == "" {
		supplierSku = fmt.Sprintf("%s_%s_%s", r.SupplierPartID, colorCode, sizeCode)
	}
	r.SkuMap = append(r.SkuMap, SkuEntry{ColorCode: colorCode, SizeCode: sizeCode, SupplierSku: supplierSku})
}

// AddMedia appends image URLs to the group for colorCode, skipping URLs the
// group already carries
func (r *ProductRecord) AddMedia(colorCode string, urls ...string) {
	filtered := urls[:0]
	for _, u := range urls {
		if u != "" {
			filtered = append(filtered, u)
		}
	}
	if len(filtered) == 0 {
		return
	}
	urls = filtered

	var group *MediaSet
	for i := range r.Media {
		if r.Media[i].ColorCode == colorCode {
			group = &r.Media[i]
			break
		}
	}
	if group == nil {
		r.Media = append(r.Media, MediaSet{ColorCode: colorCode})
		group = &r.Media[len(r.Media)-1]
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		seen := false
		for _, existing := range group.URLs {
			if existing == u {
				seen = true
				break
			}
		}
		if !seen {
			group.URLs = append(group.URLs, u)
		}
	}
}

// AddKeywords lowercases and deduplicates search tokens
func (r *ProductRecord) AddKeywords(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		seen := false
		for _, existing := range r.Keywords {
			if existing == w {
				seen = true
				break
			}
		}
		if !seen {
			r.Keywords = append(r.Keywords, w)
		}
	}
}

// SetAttribute records a supplier fact, first writer wins
func (r *ProductRecord) SetAttribute(key string, value interface{}) {
	if key == "" || value == nil {
		return
	}
	if r.Attributes == nil {
		r.Attributes = make(map[string]interface{})
	}
	if _, exists := r.Attributes[key]; !exists {
		r.Attributes[key] = value
	}
}

// categoryAttributeKeys are the attribute keys whose values feed the keyword
// set, covering both live-parser and bulk-import spellings
var categoryAttributeKeys = []string{"category", "subCategory", "category_name", "subcategory_name"}

// Finalize applies the canonical defaulting rules: uppercase part id,
// synthesize a DEFAULT colorway when no colors were found and an OSFA size
// when no sizes were found, backfill synthesized sku-map entries when the
// payload carried none at all, and fold brand, category, and color names into
// the keyword set.
func (r *ProductRecord) Finalize() {
	r.SupplierPartID = strings.ToUpper(r.SupplierPartID)

	if len(r.Colorways) == 0 {
		r.AddColorway(Colorway{Code: DefaultColorCode, Name: "Default"})
	}
	if len(r.Sizes) == 0 {
		rank := normalize.SizeSort(DefaultSizeCode)
		r.AddSize(SizeInfo{Code: DefaultSizeCode, Display: DefaultSizeCode, SortRank: &rank})
	}
	if len(r.SkuMap) == 0 {
		for _, c := range r.Colorways {
			for _, s := range r.Sizes {
				r.AddSku(c.Code, s.Code, "")
			}
		}
	}

	r.AddKeywords(r.Brand)
	for _, key := range categoryAttributeKeys {
		if v, ok := r.Attributes[key].(string); ok {
			r.AddKeywords(v)
		}
	}
	for _, c := range r.Colorways {
		if c.Code != DefaultColorCode {
			r.AddKeywords(c.Name)
		}
	}
}

// NewSize builds a SizeInfo from a display label, deriving the code and rank
func NewSize(label string) SizeInfo {
	code := normalize.SanitizeCode(label, DefaultSizeCode)
	size := SizeInfo{Code: code, Display: strings.TrimSpace(label)}
	if rank := normalize.SizeSort(label); rank != normalize.UnknownSizeRank {
		size.SortRank = &rank
	}
	return size
}

// NewColorway builds a Colorway from a display name, deriving the code
func NewColorway(name string) Colorway {
	return Colorway{
		Code: normalize.SanitizeCode(name, DefaultColorCode),
		Name: strings.TrimSpace(name),
	}
}
