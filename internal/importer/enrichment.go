package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// styleKeyAliases are the column names the enrichment extract uses for its
// style key, in priority order
var styleKeyAliases = []string{"STYLE#", "STYLE", "STYLE_NUMBER", "STYLE NO", "STYLEID"}

// EnrichmentImporter streams the secondary EPDD extract, one row per style,
// and merges its columns into existing products' attribute maps. It never
// creates a product: styles the primary catalog import has not written yet
// are skipped and reported as missing, which enforces the catalog-first
// run order.
type EnrichmentImporter struct {
	store ProductStore
	log   *logrus.Entry
}

// NewEnrichmentImporter creates an enrichment importer writing through store
func NewEnrichmentImporter(store ProductStore, log *logrus.Entry) *EnrichmentImporter {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &EnrichmentImporter{store: store, log: log}
}

// ImportFile imports the enrichment CSV at path
func (imp *EnrichmentImporter) ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open enrichment file: %w", err)
	}
	defer f.Close()
	return imp.Import(ctx, f, opts)
}

// Import streams enrichment rows from r
func (imp *EnrichmentImporter) Import(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	reader := newCSVReader(r, opts.Latin1)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read enrichment header: %w", err)
	}
	cols := indexColumns(header)

	styleCol := ""
	for _, alias := range styleKeyAliases {
		if _, ok := cols[alias]; ok {
			styleCol = alias
			break
		}
	}
	if styleCol == "" {
		return nil, fmt.Errorf("enrichment file has no style key column (tried %s)", strings.Join(styleKeyAliases, ", "))
	}

	var wanted map[string]bool
	if len(opts.Styles) > 0 {
		wanted = make(map[string]bool, len(opts.Styles))
		for _, s := range opts.Styles {
			wanted[strings.ToUpper(strings.TrimSpace(s))] = true
		}
	}

	result := &Result{DryRun: opts.DryRun}
	matched := make(map[string]bool)
	missing := make(map[string]bool)
	seen := make(map[string]bool)

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
			return result, fmt.Errorf("read enrichment row: %w", err)
		}
		result.RowsScanned++

		if err := ctx.Err(); err != nil {
			return result, err
		}

		style := strings.ToUpper(cell(row, cols, styleCol))
		if style == "" {
			result.RowsSkipped++
			continue
		}
		if wanted != nil && !wanted[style] {
			result.RowsSkipped++
			continue
		}
		seen[style] = true

		attrs := rowAttributes(row, cols, styleCol)
		if len(attrs) == 0 {
			result.RowsSkipped++
			continue
		}
		result.ProductsParsed++

		if opts.DryRun {
			continue
		}

		found, err := imp.store.MergeProductAttributes(ctx, opts.SupplierCode, style, attrs)
		if err != nil {
			result.ProductsFailed++
			imp.log.WithFields(logrus.Fields{
				"style": style,
				"error": err.Error(),
			}).Error("enrichment import: attribute merge failed, continuing")
			continue
		}
		if !found {
			missing[style] = true
			continue
		}
		matched[style] = true
		result.ProductsPersisted++
	}

	// requested styles the file never mentioned are missing too
	for s := range wanted {
		if !seen[s] {
			missing[s] = true
		}
	}

	result.MatchedStyles = sortedKeys(matched)
	result.MissingStyles = sortedKeys(missing)
	return result, nil
}

// rowAttributes turns every populated non-key column into an attribute entry
// with best-effort numeric coercion
func rowAttributes(row []string, cols map[string]int, styleCol string) map[string]interface{} {
	attrs := make(map[string]interface{})
	for name, idx := range cols {
		if name == styleCol || idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		attrs[attributeKey(name)] = coerceAttribute(v)
	}
	return attrs
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
