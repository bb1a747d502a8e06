package importer

import (
	"context"

	"supplier-sync-service/internal/clients"
)

// ProductStore is the persistence surface the importers write through.
// The gorm repository implements it; tests substitute a fake.
type ProductStore interface {
	// ReplaceProduct creates or updates the product and replaces every child
	// collection with the record's contents, atomically
	ReplaceProduct(ctx context.Context, supplierCode string, record *clients.ProductRecord) error

	// MergeProductAttributes merges attrs into an existing product's
	// attribute map. Returns false when no product with that part id exists;
	// it never creates one.
	MergeProductAttributes(ctx context.Context, supplierCode, supplierPartID string, attrs map[string]interface{}) (bool, error)
}

// Options control a single import run
type Options struct {
	// SupplierCode scopes the imported products to one supplier
	SupplierCode string

	// DryRun parses and accumulates but performs zero writes
	DryRun bool

	// Limit caps the number of data rows scanned, 0 means unlimited
	Limit int

	// Styles restricts an enrichment run to these style numbers
	Styles []string

	// Latin1 decodes the input stream as ISO 8859-1 instead of UTF-8
	Latin1 bool
}

// Result summarizes one import run
type Result struct {
	RowsScanned       int      `json:"rowsScanned"`
	RowsSkipped       int      `json:"rowsSkipped"`
	ProductsParsed    int      `json:"productsParsed"`
	ProductsPersisted int      `json:"productsPersisted"`
	ProductsFailed    int      `json:"productsFailed"`
	DryRun            bool     `json:"dryRun"`
	MatchedStyles     []string `json:"matchedStyles,omitempty"`
	MissingStyles     []string `json:"missingStyles,omitempty"`
}
