package promostandards

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/models"
)

const (
	wsVersion        = "2.0.0"
	productAction    = "getProduct"
	inventoryAction  = "getInventoryLevels"
	requestTimeout   = 30 * time.Second
	localizationLang = "en"
	localizationCtry = "US"
)

// Client speaks the PromoStandards SOAP services: ProductData for product
// detail and Inventory for stock levels. Credentials travel in the request
// body per the PromoStandards contract. Failed calls are not retried here;
// the fallback orchestrator owns the second attempt.
type Client struct {
	httpClient   *http.Client
	productURL   string
	inventoryURL string
	accountID    string
	password     string
	log          *logrus.Entry
}

// Config carries the per-supplier SOAP endpoints and credentials
type Config struct {
	ProductURL   string
	InventoryURL string
	AccountID    string
	Password     string
}

// NewClient creates a PromoStandards client for one supplier
func NewClient(cfg Config, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		httpClient:   &http.Client{Timeout: requestTimeout},
		productURL:   cfg.ProductURL,
		inventoryURL: cfg.InventoryURL,
		accountID:    cfg.AccountID,
		password:     cfg.Password,
		log:          log,
	}
}

// Protocol returns the transport variant
func (c *Client) Protocol() models.SupplierProtocol {
	return models.ProtocolPromoStandards
}

// FetchProduct fetches one product by supplier part id via ProductData
func (c *Client) FetchProduct(ctx context.Context, productID string) (*clients.ProductRecord, error) {
	req := getProductRequest{
		WsVersion:            wsVersion,
		ID:                   c.accountID,
		Password:             c.password,
		LocalizationCountry:  localizationCtry,
		LocalizationLanguage: localizationLang,
		ProductID:            productID,
	}

	body, err := c.call(ctx, c.productURL, productAction, envelopeFor(productDataNS, req))
	if err != nil {
		return nil, err
	}

	resp, err := decodeProductResponse(body)
	if err != nil {
		return nil, err
	}
	return convertProduct(resp)
}

// FetchInventory fetches inventory rows for one product via Inventory
func (c *Client) FetchInventory(ctx context.Context, productID string, filter *clients.InventoryFilter) ([]clients.InventoryRow, error) {
	req := getInventoryRequest{
		WsVersion: wsVersion,
		ID:        c.accountID,
		Password:  c.password,
		ProductID: productID,
	}
	if filter != nil {
		if filter.PartID != "" {
			req.Filter.PartIDs = []string{filter.PartID}
		}
		if filter.ColorName != "" {
			req.Filter.Colors = []string{filter.ColorName}
		}
		if filter.SizeLabel != "" {
			req.Filter.Sizes = []string{filter.SizeLabel}
		}
		req.Filter.Warehouses = filter.WarehouseIDs
	}

	body, err := c.call(ctx, c.inventoryURL, inventoryAction, envelopeFor(inventoryNS, req))
	if err != nil {
		return nil, err
	}

	resp, err := decodeInventoryResponse(body)
	if err != nil {
		return nil, err
	}
	return convertInventory(productID, resp), nil
}

// call posts a SOAP envelope and returns the raw response body
func (c *Client) call(ctx context.Context, endpoint, action string, envelope interface{}) ([]byte, error) {
	payload, err := xml.Marshal(envelope)
	if err != nil {
		return nil, &clients.TransportError{Op: action, Err: fmt.Errorf("encode request: %w", err)}
	}

	buf := bytes.NewBufferString(xml.Header)
	buf.Write(payload)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, buf)
	if err != nil {
		return nil, &clients.TransportError{Op: action, Err: err}
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", action)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &clients.TransportError{Op: action, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &clients.TransportError{Op: action, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &clients.TransportError{Op: action, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
