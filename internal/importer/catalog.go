package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"supplier-sync-service/internal/clients"
)

// styleColumn is the one required column of the primary catalog extract
const styleColumn = "STYLE#"

// CatalogImporter streams the primary SDL catalog extract, one row per SKU
// variant, accumulating rows into canonical product records keyed by style
// number. Persistence replaces each product's child collections wholesale.
type CatalogImporter struct {
	store ProductStore
	log   *logrus.Entry
}

// NewCatalogImporter creates a catalog importer writing through store
func NewCatalogImporter(store ProductStore, log *logrus.Entry) *CatalogImporter {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CatalogImporter{store: store, log: log}
}

// ImportFile imports the catalog CSV at path. A file-level open failure is
// fatal for the invocation; row and product failures are not.
func (imp *CatalogImporter) ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return imp.Import(ctx, f, opts)
}

// Import streams catalog rows from r
func (imp *CatalogImporter) Import(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	reader := newCSVReader(r, opts.Latin1)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols[styleColumn]; !ok {
		return nil, fmt.Errorf("catalog file has no %s column", styleColumn)
	}

	result := &Result{DryRun: opts.DryRun}
	products := make(map[string]*clients.ProductRecord)
	var order []string

	for {
		if opts.Limit > 0 && result.RowsScanned >= opts.Limit {
			break
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed rows are skippable; a broken stream is fatal
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.RowsSkipped++
				continue
			}
			return result, fmt.Errorf("read catalog row: %w", err)
		}
		result.RowsScanned++

		style := strings.ToUpper(cell(row, cols, styleColumn))
		if style == "" {
			result.RowsSkipped++
			continue
		}

		record, ok := products[style]
		if !ok {
			record = &clients.ProductRecord{SupplierPartID: style}
			products[style] = record
			order = append(order, style)
		}
		mergeCatalogRow(record, row, cols)
	}

	result.ProductsParsed = len(order)
	if opts.DryRun {
		return result, nil
	}

	for _, style := range order {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		record := products[style]
		record.Finalize()
		if err := imp.store.ReplaceProduct(ctx, opts.SupplierCode, record); err != nil {
			result.ProductsFailed++
			imp.log.WithFields(logrus.Fields{
				"style": style,
				"error": err.Error(),
			}).Error("catalog import: product persist failed, continuing")
			continue
		}
		result.ProductsPersisted++
	}
	return result, nil
}

// mergeCatalogRow folds one SKU row into the style's accumulated record.
// The merge is idempotent: colors, sizes, sku entries, and media URLs already
// seen are skipped, scalar fields keep their first non-empty value, and
// attributes are additive.
func mergeCatalogRow(record *clients.ProductRecord, row []string, cols map[string]int) {
	if record.Name == "" {
		record.Name = cell(row, cols, "PRODUCT_TITLE")
	}
	if record.Brand == "" {
		record.Brand = cell(row, cols, "MILL")
	}
	if len(record.Description) == 0 {
		if raw := cell(row, cols, "PRODUCT_DESCRIPTION"); raw != "" {
			for _, line := range strings.Split(raw, "|") {
				if line = strings.TrimSpace(line); line != "" {
					record.Description = append(record.Description, line)
				}
			}
		}
	}

	colorCode := clients.DefaultColorCode
	if colorName := cell(row, cols, "COLOR_NAME"); colorName != "" {
		colorway := clients.NewColorway(colorName)
		colorway.SwatchURL = cell(row, cols, "COLOR_SQUARE_IMAGE")
		record.AddColorway(colorway)
		record.AddKeywords(colorName)
		colorCode = colorway.Code
	}

	sizeCode := clients.DefaultSizeCode
	if label := cell(row, cols, "SIZE"); label != "" {
		size := clients.NewSize(label)
		if idx := cell(row, cols, "SIZE_INDEX"); idx != "" {
			if rank, err := strconv.Atoi(idx); err == nil {
				size.SortRank = &rank
			}
		}
		record.AddSize(size)
		sizeCode = size.Code
	}

	record.AddSku(colorCode, sizeCode, cell(row, cols, "GTIN"))

	for _, col := range []string{"FRONT_MODEL_IMAGE_URL", "BACK_MODEL_IMAGE_URL", "SIDE_MODEL_IMAGE_URL", "COLOR_PRODUCT_IMAGE"} {
		record.AddMedia(colorCode, cell(row, cols, col))
	}
	// thumbnail is style-level, not color-specific
	record.AddMedia("", cell(row, cols, "PRODUCT_IMAGE"))

	for _, col := range []string{"PIECE_PRICE", "DOZENS_PRICE", "CASE_PRICE", "CASE_SIZE", "PIECE_WEIGHT", "CATEGORY_NAME", "SUBCATEGORY_NAME"} {
		if v := cell(row, cols, col); v != "" {
			record.SetAttribute(attributeKey(col), coerceAttribute(v))
		}
	}
	record.AddKeywords(cell(row, cols, "MILL"), cell(row, cols, "CATEGORY_NAME"))
}

// newCSVReader wraps r in a CSV reader, optionally transcoding from latin-1.
// Suppliers deliver SDL files in either encoding.
func newCSVReader(r io.Reader, latin1 bool) *csv.Reader {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// indexColumns maps uppercased, trimmed header names to their positions
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		// strip a UTF-8 BOM off the first header
		name = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if name != "" {
			if _, exists := cols[name]; !exists {
				cols[name] = i
			}
		}
	}
	return cols
}

// cell reads a named column from a row, tolerating short rows
func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// attributeKey lowercases a CSV header into an attribute map key
func attributeKey(col string) string {
	return strings.ToLower(col)
}

// coerceAttribute parses CSV text into a number where possible
func coerceAttribute(v string) interface{} {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
