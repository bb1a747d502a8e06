package restapi

import (
	"strconv"
	"strings"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/normalize"
)

// parseProduct assembles the canonical record from a loose JSON object.
// Field names vary between suppliers, so every lookup goes through the alias
// helper, and every array-valued field goes through ToArray because the
// upstream XML-to-JSON conversion collapses single-element arrays into bare
// objects.
func parseProduct(payload map[string]interface{}) (*clients.ProductRecord, error) {
	partID := clients.ReadString(payload, "styleID", "styleId", "productId", "style", "id")
	if partID == "" {
		return nil, &clients.ParseError{Reason: "product payload carries no style identifier"}
	}

	record := &clients.ProductRecord{
		SupplierPartID: partID,
		Name:           clients.ReadString(payload, "title", "name", "productName", "styleName"),
		Brand:          clients.ReadString(payload, "brandName", "brand", "mill"),
	}

	if v, ok := clients.ReadField(payload, "description", "descriptions"); ok {
		for _, item := range clients.ToArray(v) {
			if s := clients.CoerceString(item); s != "" {
				record.Description = append(record.Description, s)
			}
		}
	}

	if v, ok := clients.ReadField(payload, "colors", "colorways", "products"); ok {
		for _, item := range clients.ToArray(v) {
			obj := clients.AsObject(item)
			if obj == nil {
				// a bare string is a color name with nothing else attached
				if name := clients.CoerceString(item); name != "" {
					record.AddColorway(clients.NewColorway(name))
				}
				continue
			}
			parseColorway(record, obj)
		}
	}

	if v, ok := clients.ReadField(payload, "sizes", "sizeList"); ok {
		for _, item := range clients.ToArray(v) {
			label := clients.CoerceString(item)
			if obj := clients.AsObject(item); obj != nil {
				label = clients.ReadString(obj, "sizeName", "label", "size")
			}
			if label != "" {
				record.AddSize(clients.NewSize(label))
			}
		}
	}

	if v, ok := clients.ReadField(payload, "keywords", "searchTerms"); ok {
		for _, item := range clients.ToArray(v) {
			record.AddKeywords(strings.Split(clients.CoerceString(item), ",")...)
		}
	}

	if v, ok := clients.ReadField(payload, "images", "media"); ok {
		for _, item := range clients.ToArray(v) {
			if u := clients.CoerceString(item); u != "" && clients.AsObject(item) == nil {
				record.AddMedia(clients.DefaultColorCode, u)
			}
		}
	}

	for _, key := range []string{"category", "subCategory", "fabric", "weight", "countryOfOrigin", "priceGroup"} {
		if v, ok := clients.ReadField(payload, key); ok {
			record.SetAttribute(key, clients.CoerceString(v))
		}
	}

	record.Finalize()
	return record, nil
}

// parseColorway reads one colorway object, including any nested size and sku
// details the supplier embeds per color
func parseColorway(record *clients.ProductRecord, obj map[string]interface{}) {
	name := clients.ReadString(obj, "colorName", "color", "name")
	if name == "" {
		return
	}

	colorway := clients.NewColorway(name)
	colorway.SupplierVariantID = clients.ReadString(obj, "colorCode", "variantId", "colorId")
	colorway.SwatchURL = clients.ReadString(obj, "swatchUrl", "swatchImg", "swatch")
	record.AddColorway(colorway)

	if v, ok := clients.ReadField(obj, "colorFrontImage", "frontImage", "image"); ok {
		record.AddMedia(colorway.Code, clients.CoerceString(v))
	}

	if v, ok := clients.ReadField(obj, "sizes", "skus"); ok {
		for _, item := range clients.ToArray(v) {
			sizeObj := clients.AsObject(item)
			if sizeObj == nil {
				continue
			}
			label := clients.ReadString(sizeObj, "sizeName", "label", "size")
			if label == "" {
				continue
			}
			size := clients.NewSize(label)
			record.AddSize(size)
			record.AddSku(colorway.Code, size.Code, clients.ReadString(sizeObj, "sku", "gtin", "upc"))
		}
	}
}

// parseInventory flattens a loose inventory payload into canonical rows
func parseInventory(productID string, payload map[string]interface{}) []clients.InventoryRow {
	partID := strings.ToUpper(strings.TrimSpace(clients.ReadString(payload, "styleID", "styleId", "productId")))
	if partID == "" {
		partID = strings.ToUpper(strings.TrimSpace(productID))
	}

	v, ok := clients.ReadField(payload, "inventory", "levels", "records", "skus")
	if !ok {
		return nil
	}

	var rows []clients.InventoryRow
	for _, item := range clients.ToArray(v) {
		obj := clients.AsObject(item)
		if obj == nil {
			continue
		}

		row := clients.InventoryRow{
			SupplierPartID: partID,
			SupplierSku:    clients.ReadString(obj, "sku", "gtin", "partId"),
			ColorCode:      normalize.SanitizeCode(clients.ReadString(obj, "colorName", "color"), clients.DefaultColorCode),
			SizeCode:       normalize.SanitizeCode(clients.ReadString(obj, "sizeName", "size", "label"), clients.DefaultSizeCode),
		}

		if wv, ok := clients.ReadField(obj, "warehouses", "locations"); ok {
			for _, w := range clients.ToArray(wv) {
				wObj := clients.AsObject(w)
				if wObj == nil {
					continue
				}
				row.Warehouses = append(row.Warehouses, clients.WarehouseQty{
					WarehouseID: clients.ReadString(wObj, "warehouseAbbr", "warehouseId", "locationId"),
					Quantity:    clients.CoerceInt(firstField(wObj, "qty", "quantity", "available")),
				})
			}
		}

		if qv, ok := clients.ReadField(obj, "qty", "quantity", "totalQty", "available"); ok {
			row.TotalQty = clients.CoerceInt(qv)
		} else {
			for _, w := range row.Warehouses {
				row.TotalQty += w.Quantity
			}
		}

		rows = append(rows, row)
	}
	return rows
}

// parseProductPage extracts one catalog page and the cursor for the next.
// An explicit next-page field wins; otherwise the page is derived from
// pageNumber against totalPages; with neither, pagination stops.
func parseProductPage(payload map[string]interface{}) (*clients.ProductPage, error) {
	page := &clients.ProductPage{}

	v, ok := clients.ReadField(payload, "products", "styles", "items", "data")
	if !ok {
		return nil, &clients.ParseError{Reason: "catalog payload carries no product list"}
	}
	for _, item := range clients.ToArray(v) {
		id := clients.CoerceString(item)
		if obj := clients.AsObject(item); obj != nil {
			id = clients.ReadString(obj, "styleID", "styleId", "productId", "style", "id")
		}
		if id != "" {
			page.StyleIDs = append(page.StyleIDs, strings.ToUpper(id))
		}
	}

	if next := clients.ReadString(payload, "nextPage", "next", "nextCursor"); next != "" {
		page.NextCursor = next
		page.HasMore = true
		return page, nil
	}

	pageNum := clients.CoerceInt(firstField(payload, "pageNumber", "page", "currentPage"))
	totalPages := clients.CoerceInt(firstField(payload, "totalPages", "pageCount"))
	if pageNum > 0 && pageNum < totalPages {
		page.NextCursor = strconv.Itoa(pageNum + 1)
		page.HasMore = true
	}
	return page, nil
}
