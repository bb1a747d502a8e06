package promostandards

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"supplier-sync-service/internal/clients"
)

const multiPartProductXML = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
  <SOAP-ENV:Body>
    <ns1:GetProductResponse xmlns:ns1="http://www.promostandards.org/WSDL/ProductDataService/2.0.0/">
      <Product>
        <productId>PC54</productId>
        <productName>Core Cotton Tee</productName>
        <productBrand>Port &amp; Company</productBrand>
        <description>5.4-ounce, 100% cotton</description>
        <description>Shoulder-to-shoulder taping</description>
        <ProductPartArray>
          <ProductPart>
            <partId>PC54-WHT-S</partId>
            <gtin>00190000000017</gtin>
            <primary>true</primary>
            <ColorArray>
              <Color><colorName>White</colorName></Color>
            </ColorArray>
            <ApparelSize><apparelStyle>Unisex</apparelStyle><labelSize>S</labelSize></ApparelSize>
            <ProductPartImageArray>
              <ProductPartImage><productPartImageURL>https://img.example.com/pc54_white.jpg</productPartImageURL></ProductPartImage>
            </ProductPartImageArray>
          </ProductPart>
          <ProductPart>
            <partId>PC54-WHT-M</partId>
            <gtin>00190000000024</gtin>
            <ColorArray>
              <Color><colorName>White</colorName></Color>
            </ColorArray>
            <ApparelSize><apparelStyle>Unisex</apparelStyle><labelSize>M</labelSize></ApparelSize>
          </ProductPart>
          <ProductPart>
            <partId>PC54-HGY-S</partId>
            <gtin>00190000000031</gtin>
            <ColorArray>
              <Color><colorName>Heather Grey</colorName></Color>
            </ColorArray>
            <ApparelSize><apparelStyle>Unisex</apparelStyle><labelSize>S</labelSize></ApparelSize>
          </ProductPart>
        </ProductPartArray>
        <ProductKeywordArray>
          <ProductKeyword><keyword>tee</keyword></ProductKeyword>
          <ProductKeyword><keyword>Cotton</keyword></ProductKeyword>
        </ProductKeywordArray>
      </Product>
    </ns1:GetProductResponse>
  </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

const singlePartProductXML = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
  <SOAP-ENV:Body>
    <ns1:GetProductResponse xmlns:ns1="http://www.promostandards.org/WSDL/ProductDataService/2.0.0/">
      <Product>
        <productId>MUG11</productId>
        <productName>Classic Mug</productName>
        <ProductPartArray>
          <ProductPart>
            <partId>MUG11-STD</partId>
          </ProductPart>
        </ProductPartArray>
      </Product>
    </ns1:GetProductResponse>
  </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

const faultXML = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
  <SOAP-ENV:Body>
    <SOAP-ENV:Fault>
      <faultcode>SOAP-ENV:Client</faultcode>
      <faultstring>Authentication failed</faultstring>
    </SOAP-ENV:Fault>
  </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

const inventoryXML = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
  <SOAP-ENV:Body>
    <ns1:GetInventoryLevelsResponse xmlns:ns1="http://www.promostandards.org/WSDL/Inventory/2.0.0/">
      <Inventory>
        <productId>PC54</productId>
        <PartInventoryArray>
          <PartInventory>
            <partId>PC54-WHT-S</partId>
            <partColor>White</partColor>
            <labelSize>S</labelSize>
            <quantityAvailable><Quantity><value>150</value></Quantity></quantityAvailable>
            <InventoryLocationArray>
              <InventoryLocation>
                <inventoryLocationId>NJ</inventoryLocationId>
                <inventoryLocationQuantity><Quantity><value>100</value></Quantity></inventoryLocationQuantity>
              </InventoryLocation>
              <InventoryLocation>
                <inventoryLocationId>TX</inventoryLocationId>
                <inventoryLocationQuantity><Quantity><value>50</value></Quantity></inventoryLocationQuantity>
              </InventoryLocation>
            </InventoryLocationArray>
          </PartInventory>
        </PartInventoryArray>
      </Inventory>
    </ns1:GetInventoryLevelsResponse>
  </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		ProductURL:   serverURL,
		InventoryURL: serverURL,
		AccountID:    "ACCT01",
		Password:     "secret",
	}, nil)
}

func TestFetchProductMultiPart(t *testing.T) {
	var capturedAction string
	var capturedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAction = r.Header.Get("SOAPAction")
		raw, _ := io.ReadAll(r.Body)
		capturedBody = string(raw)
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(multiPartProductXML))
	}))
	defer server.Close()

	record, err := newTestClient(server.URL).FetchProduct(context.Background(), "PC54")
	assert.NoError(t, err)
	assert.Equal(t, "getProduct", capturedAction)
	assert.Contains(t, capturedBody, "<ns:id>ACCT01</ns:id>")
	assert.Contains(t, capturedBody, "<ns:password>secret</ns:password>")
	assert.Contains(t, capturedBody, "<ns:productId>PC54</ns:productId>")
	assert.Contains(t, capturedBody, "http://www.promostandards.org/WSDL/ProductDataService/2.0.0/")

	assert.Equal(t, "PC54", record.SupplierPartID)
	assert.Equal(t, "Core Cotton Tee", record.Name)
	assert.Equal(t, "Port & Company", record.Brand)
	assert.Equal(t, []string{"5.4-ounce, 100% cotton", "Shoulder-to-shoulder taping"}, record.Description)

	// two colors and two sizes, deduplicated across three parts
	assert.Len(t, record.Colorways, 2)
	assert.Equal(t, "WHITE", record.Colorways[0].Code)
	assert.Equal(t, "HEATHER_GREY", record.Colorways[1].Code)
	assert.Len(t, record.Sizes, 2)

	assert.Len(t, record.SkuMap, 3)
	assert.Equal(t, "00190000000017", record.SkuMap[0].SupplierSku)

	assert.Equal(t, "WHITE", record.DefaultColor)
	// explicit keywords plus brand and color names
	assert.Contains(t, record.Keywords, "tee")
	assert.Contains(t, record.Keywords, "cotton")
	assert.Contains(t, record.Keywords, "port & company")
	assert.Contains(t, record.Keywords, "white")
	assert.Contains(t, record.Keywords, "heather grey")

	if assert.Len(t, record.Media, 1) {
		assert.Equal(t, "WHITE", record.Media[0].ColorCode)
		assert.Equal(t, []string{"https://img.example.com/pc54_white.jpg"}, record.Media[0].URLs)
	}
}

func TestFetchProductSinglePartDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(singlePartProductXML))
	}))
	defer server.Close()

	record, err := newTestClient(server.URL).FetchProduct(context.Background(), "MUG11")
	assert.NoError(t, err)
	assert.Equal(t, "MUG11", record.SupplierPartID)

	// no colors or sizes on the wire synthesizes the defaults
	if assert.Len(t, record.Colorways, 1) {
		assert.Equal(t, clients.DefaultColorCode, record.Colorways[0].Code)
	}
	if assert.Len(t, record.Sizes, 1) {
		assert.Equal(t, clients.DefaultSizeCode, record.Sizes[0].Code)
	}
	if assert.Len(t, record.SkuMap, 1) {
		assert.Equal(t, clients.DefaultColorCode, record.SkuMap[0].ColorCode)
	}
}

func TestFetchProductSOAPFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(faultXML))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchProduct(context.Background(), "PC54")
	var fault *clients.SOAPFaultError
	assert.True(t, errors.As(err, &fault))
	assert.Contains(t, fault.Message, "Authentication failed")
}

func TestFetchProductHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchProduct(context.Background(), "PC54")
	var transport *clients.TransportError
	assert.True(t, errors.As(err, &transport))
	assert.Equal(t, http.StatusBadGateway, transport.StatusCode)
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestFetchProductGarbagePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not soap</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchProduct(context.Background(), "PC54")
	var parse *clients.ParseError
	assert.True(t, errors.As(err, &parse))
}

func TestFetchInventory(t *testing.T) {
	var capturedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		capturedBody = string(raw)
		w.Write([]byte(inventoryXML))
	}))
	defer server.Close()

	rows, err := newTestClient(server.URL).FetchInventory(context.Background(), "PC54", &clients.InventoryFilter{
		ColorName:    "White",
		WarehouseIDs: []string{"NJ", "TX"},
	})
	assert.NoError(t, err)
	assert.True(t, strings.Contains(capturedBody, "<ns:partColor>White</ns:partColor>"))
	assert.True(t, strings.Contains(capturedBody, "<ns:inventoryLocationId>NJ</ns:inventoryLocationId>"))
	assert.True(t, strings.Contains(capturedBody, "<ns:inventoryLocationId>TX</ns:inventoryLocationId>"))
	// the Inventory service envelope carries its own namespace
	assert.True(t, strings.Contains(capturedBody, "http://www.promostandards.org/WSDL/Inventory/2.0.0/"))

	if assert.Len(t, rows, 1) {
		row := rows[0]
		assert.Equal(t, "PC54", row.SupplierPartID)
		assert.Equal(t, "PC54-WHT-S", row.SupplierSku)
		assert.Equal(t, "WHITE", row.ColorCode)
		assert.Equal(t, "S", row.SizeCode)
		assert.Equal(t, 150, row.TotalQty)
		assert.Equal(t, []clients.WarehouseQty{
			{WarehouseID: "NJ", Quantity: 100},
			{WarehouseID: "TX", Quantity: 50},
		}, row.Warehouses)
	}
}
