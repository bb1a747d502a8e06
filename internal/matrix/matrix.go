package matrix

import (
	"sort"
	"strings"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/normalize"
)

// ViewMode selects what the pivot rows represent
type ViewMode string

const (
	ViewWarehouse ViewMode = "warehouse"
	ViewColor     ViewMode = "color"
)

// ColorScope selects whether one color or every color contributes
type ColorScope string

const (
	ScopeSingle ColorScope = "single"
	ScopeAll    ColorScope = "all"
)

// AllWarehouses is the warehouse filter wildcard
const AllWarehouses = "ALL"

// unspecifiedWarehouse buckets rows that carry a total but no warehouse
// breakdown, so warehouse view still accounts for every unit
const unspecifiedWarehouse = "UNSPECIFIED"

// Config is the view configuration for one matrix build
type Config struct {
	ViewMode        ViewMode   `json:"viewMode"`
	ColorScope      ColorScope `json:"colorScope"`
	SelectedColor   string     `json:"selectedColor,omitempty"`
	WarehouseFilter string     `json:"warehouseFilter,omitempty"`
}

// Matrix is a warehouse×size or color×size pivot with totals. The grand
// total always equals the sum of every cell.
type Matrix struct {
	ViewMode     ViewMode `json:"viewMode"`
	SizeCodes    []string `json:"sizeCodes"`
	Rows         []Row    `json:"rows"`
	ColumnTotals []int    `json:"columnTotals"`
	GrandTotal   int      `json:"grandTotal"`
}

// Row is one pivot row with a per-size cell slice and a row total
type Row struct {
	Label string `json:"label"`
	Cells []int  `json:"cells"`
	Total int    `json:"total"`
}

// Build pivots inventory rows for one product into the configured view.
// sizes and colors describe the product's canonical variants; sizes or
// colors present only in the inventory rows are still included so no
// quantity is dropped.
func Build(records []clients.InventoryRow, sizes []clients.SizeInfo, colors []clients.Colorway, warehouses []string, cfg Config) *Matrix {
	if cfg.ViewMode == "" {
		cfg.ViewMode = ViewWarehouse
	}
	if cfg.ColorScope == "" {
		cfg.ColorScope = ScopeAll
	}
	if cfg.WarehouseFilter == "" {
		cfg.WarehouseFilter = AllWarehouses
	}

	records = filterRecords(records, cfg)
	sizeCodes := orderedSizeCodes(sizes, records)

	var labels []string
	if cfg.ViewMode == ViewColor {
		labels = colorLabels(colors, records)
	} else {
		labels = warehouseLabels(warehouses, records, cfg)
	}

	m := &Matrix{
		ViewMode:     cfg.ViewMode,
		SizeCodes:    sizeCodes,
		ColumnTotals: make([]int, len(sizeCodes)),
	}

	colIndex := make(map[string]int, len(sizeCodes))
	for i, code := range sizeCodes {
		colIndex[code] = i
	}
	rowIndex := make(map[string]int, len(labels))
	for i, label := range labels {
		rowIndex[label] = i
		m.Rows = append(m.Rows, Row{Label: label, Cells: make([]int, len(sizeCodes))})
	}

	for _, rec := range records {
		col, ok := colIndex[rec.SizeCode]
		if !ok {
			continue
		}
		for label, qty := range contributions(rec, cfg) {
			row, ok := rowIndex[label]
			if !ok {
				continue
			}
			m.Rows[row].Cells[col] += qty
			m.Rows[row].Total += qty
			m.ColumnTotals[col] += qty
			m.GrandTotal += qty
		}
	}
	return m
}

// contributions maps one inventory record to row-label quantities under the
// configured view
func contributions(rec clients.InventoryRow, cfg Config) map[string]int {
	out := make(map[string]int)

	if cfg.ViewMode == ViewColor {
		if cfg.WarehouseFilter != AllWarehouses {
			for _, w := range rec.Warehouses {
				if w.WarehouseID == cfg.WarehouseFilter {
					out[rec.ColorCode] += w.Quantity
				}
			}
			return out
		}
		if len(rec.Warehouses) == 0 {
			// no breakdown, the total stands alone
			out[rec.ColorCode] = rec.TotalQty
			return out
		}
		for _, w := range rec.Warehouses {
			out[rec.ColorCode] += w.Quantity
		}
		return out
	}

	if len(rec.Warehouses) == 0 {
		out[unspecifiedWarehouse] = rec.TotalQty
		return out
	}
	for _, w := range rec.Warehouses {
		out[w.WarehouseID] += w.Quantity
	}
	return out
}

// filterRecords applies the color scope ahead of aggregation
func filterRecords(records []clients.InventoryRow, cfg Config) []clients.InventoryRow {
	if cfg.ColorScope != ScopeSingle || cfg.SelectedColor == "" {
		return records
	}
	selected := normalize.SanitizeCode(cfg.SelectedColor, clients.DefaultColorCode)
	out := make([]clients.InventoryRow, 0, len(records))
	for _, rec := range records {
		if rec.ColorCode == selected {
			out = append(out, rec)
		}
	}
	return out
}

// orderedSizeCodes returns size columns in canonical sort order, unioned
// with any sizes seen only in inventory rows
func orderedSizeCodes(sizes []clients.SizeInfo, records []clients.InventoryRow) []string {
	type ranked struct {
		code string
		rank int
	}
	seen := make(map[string]bool)
	var all []ranked

	for _, s := range sizes {
		if s.Code == "" || seen[s.Code] {
			continue
		}
		seen[s.Code] = true
		rank := normalize.UnknownSizeRank
		if s.SortRank != nil {
			rank = *s.SortRank
		}
		all = append(all, ranked{code: s.Code, rank: rank})
	}
	for _, rec := range records {
		if rec.SizeCode == "" || seen[rec.SizeCode] {
			continue
		}
		seen[rec.SizeCode] = true
		all = append(all, ranked{code: rec.SizeCode, rank: normalize.SizeSort(rec.SizeCode)})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].rank != all[j].rank {
			return all[i].rank < all[j].rank
		}
		return all[i].code < all[j].code
	})

	codes := make([]string, len(all))
	for i, r := range all {
		codes[i] = r.code
	}
	return codes
}

// colorLabels returns pivot rows for color view, canonical colors first
func colorLabels(colors []clients.Colorway, records []clients.InventoryRow) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, c := range colors {
		if c.Code != "" && !seen[c.Code] {
			seen[c.Code] = true
			labels = append(labels, c.Code)
		}
	}
	for _, rec := range records {
		if rec.ColorCode != "" && !seen[rec.ColorCode] {
			seen[rec.ColorCode] = true
			labels = append(labels, rec.ColorCode)
		}
	}
	return labels
}

// warehouseLabels returns pivot rows for warehouse view, honoring the
// warehouse filter
func warehouseLabels(warehouses []string, records []clients.InventoryRow, cfg Config) []string {
	if cfg.WarehouseFilter != AllWarehouses {
		return []string{cfg.WarehouseFilter}
	}

	seen := make(map[string]bool)
	var labels []string
	for _, w := range warehouses {
		w = strings.TrimSpace(w)
		if w != "" && !seen[w] {
			seen[w] = true
			labels = append(labels, w)
		}
	}
	needUnspecified := false
	for _, rec := range records {
		if len(rec.Warehouses) == 0 {
			needUnspecified = true
			continue
		}
		for _, w := range rec.Warehouses {
			if w.WarehouseID != "" && !seen[w.WarehouseID] {
				seen[w.WarehouseID] = true
				labels = append(labels, w.WarehouseID)
			}
		}
	}
	if needUnspecified {
		labels = append(labels, unspecifiedWarehouse)
	}
	return labels
}
