package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"supplier-sync-service/internal/clients"
)

const productJSON = `{
  "styleID": "pc54",
  "title": "Core Cotton Tee",
  "brandName": "Port & Company",
  "description": ["5.4-ounce, 100% cotton"],
  "colors": [
    {
      "colorName": "White",
      "colorCode": "WHT",
      "swatchUrl": "https://img.example.com/swatch_wht.png",
      "colorFrontImage": "https://img.example.com/pc54_white.jpg",
      "sizes": [
        {"sizeName": "S", "sku": "PC54-WHT-S"},
        {"sizeName": "M", "sku": "PC54-WHT-M"}
      ]
    },
    {
      "colorName": "Heather Grey",
      "sizes": [
        {"sizeName": "S", "sku": "PC54-HGY-S"}
      ]
    }
  ],
  "category": "T-Shirts"
}`

// same product with the single-element arrays collapsed to bare objects, the
// shape suppliers produce when converting XML to JSON
const collapsedProductJSON = `{
  "styleID": "PC54",
  "title": "Core Cotton Tee",
  "colors": {
    "colorName": "White",
    "sizes": {"sizeName": "S", "sku": "PC54-WHT-S"}
  },
  "description": "5.4-ounce, 100% cotton"
}`

const inventoryJSON = `{
  "styleID": "PC54",
  "inventory": [
    {
      "sku": "PC54-WHT-S",
      "colorName": "White",
      "sizeName": "S",
      "warehouses": [
        {"warehouseAbbr": "NJ", "qty": 100},
        {"warehouseAbbr": "TX", "qty": 50}
      ]
    }
  ]
}`

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		BaseURL:           serverURL,
		AccountID:         "ACCT01",
		APIKey:            "key123",
		RequestsPerSecond: 1000,
	}, nil)
}

func TestFetchProductParsesAndAuthenticates(t *testing.T) {
	var gotUser, gotPass string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(productJSON))
	}))
	defer server.Close()

	record, err := newTestClient(server.URL).FetchProduct(context.Background(), "PC54")
	assert.NoError(t, err)
	assert.Equal(t, "ACCT01", gotUser)
	assert.Equal(t, "key123", gotPass)
	assert.Equal(t, "/products/PC54", gotPath)

	assert.Equal(t, "PC54", record.SupplierPartID)
	assert.Equal(t, "Core Cotton Tee", record.Name)
	assert.Equal(t, "Port & Company", record.Brand)

	assert.Len(t, record.Colorways, 2)
	assert.Equal(t, "WHITE", record.Colorways[0].Code)
	assert.Equal(t, "WHT", record.Colorways[0].SupplierVariantID)
	assert.Equal(t, "HEATHER_GREY", record.Colorways[1].Code)

	assert.Len(t, record.Sizes, 2)
	assert.Len(t, record.SkuMap, 3)
	assert.Equal(t, "PC54-WHT-S", record.SkuMap[0].SupplierSku)

	assert.Equal(t, "T-Shirts", record.Attributes["category"])
	assert.Contains(t, record.Keywords, "port & company")
	assert.Contains(t, record.Keywords, "t-shirts")
	assert.Contains(t, record.Keywords, "white")
}

func TestFetchProductCollapsedArrays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(collapsedProductJSON))
	}))
	defer server.Close()

	record, err := newTestClient(server.URL).FetchProduct(context.Background(), "PC54")
	assert.NoError(t, err)

	// collapsed objects parse identically to one-element arrays
	if assert.Len(t, record.Colorways, 1) {
		assert.Equal(t, "WHITE", record.Colorways[0].Code)
	}
	if assert.Len(t, record.Sizes, 1) {
		assert.Equal(t, "S", record.Sizes[0].Code)
	}
	assert.Equal(t, []string{"5.4-ounce, 100% cotton"}, record.Description)
}

func TestFetchProductMissingIdentifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "No Style"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchProduct(context.Background(), "PC54")
	var parse *clients.ParseError
	assert.True(t, errors.As(err, &parse))
}

func TestFetchProductHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "bad credentials"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchProduct(context.Background(), "PC54")
	var transport *clients.TransportError
	assert.True(t, errors.As(err, &transport))
	assert.Equal(t, http.StatusUnauthorized, transport.StatusCode)
}

func TestFetchInventory(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(inventoryJSON))
	}))
	defer server.Close()

	rows, err := newTestClient(server.URL).FetchInventory(context.Background(), "PC54", &clients.InventoryFilter{
		ColorName:    "White",
		WarehouseIDs: []string{"NJ", "TX"},
	})
	assert.NoError(t, err)
	assert.Contains(t, gotQuery, "color=White")
	assert.Contains(t, gotQuery, "warehouse=NJ%2CTX")

	if assert.Len(t, rows, 1) {
		row := rows[0]
		assert.Equal(t, "PC54", row.SupplierPartID)
		assert.Equal(t, "PC54-WHT-S", row.SupplierSku)
		assert.Equal(t, "WHITE", row.ColorCode)
		assert.Equal(t, "S", row.SizeCode)
		// no explicit total, so it is the warehouse sum
		assert.Equal(t, 150, row.TotalQty)
		assert.Len(t, row.Warehouses, 2)
	}
}

func TestListProductsExplicitCursorWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"products": [{"styleID": "PC54"}, {"styleID": "PC61"}],
			"nextPage": "cursor-abc",
			"pageNumber": 1,
			"totalPages": 9
		}`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListProducts(context.Background(), &clients.ListOptions{Limit: 2})
	assert.NoError(t, err)
	assert.Equal(t, []string{"PC54", "PC61"}, page.StyleIDs)
	assert.True(t, page.HasMore)
	assert.Equal(t, "cursor-abc", page.NextCursor)
}

func TestListProductsPageArithmetic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"products": ["PC54"],
			"pageNumber": 2,
			"totalPages": 3
		}`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListProducts(context.Background(), nil)
	assert.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, "3", page.NextCursor)
}

func TestListProductsLastPageStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"products": ["PC54"],
			"pageNumber": 3,
			"totalPages": 3
		}`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListProducts(context.Background(), nil)
	assert.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestListProductsNoPaginationFieldsStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": ["PC54"]}`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListProducts(context.Background(), nil)
	assert.NoError(t, err)
	assert.False(t, page.HasMore)
}
