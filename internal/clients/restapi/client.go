package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/models"
)

const requestTimeout = 30 * time.Second

// Client speaks the supplier's proprietary REST/JSON API, the fallback
// transport when the PromoStandards endpoints are down. Requests authenticate
// with HTTP Basic auth using the account id and API key. Failed calls are not
// retried here; the fallback orchestrator owns the second attempt.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accountID   string
	apiKey      string
	rateLimiter *rate.Limiter
	log         *logrus.Entry
}

// Config carries the per-supplier REST endpoint and credentials
type Config struct {
	BaseURL   string
	AccountID string
	APIKey    string

	// RequestsPerSecond throttles outbound calls, 0 means 4 rps
	RequestsPerSecond float64
}

// NewClient creates a REST client for one supplier
func NewClient(cfg Config, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     cfg.BaseURL,
		accountID:   cfg.AccountID,
		apiKey:      cfg.APIKey,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:         log,
	}
}

// Protocol returns the transport variant
func (c *Client) Protocol() models.SupplierProtocol {
	return models.ProtocolREST
}

// FetchProduct fetches one product by supplier part id
func (c *Client) FetchProduct(ctx context.Context, productID string) (*clients.ProductRecord, error) {
	body, err := c.get(ctx, fmt.Sprintf("/products/%s", url.PathEscape(productID)), nil)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &clients.ParseError{Reason: err.Error()}
	}

	// some suppliers wrap the product in an envelope key
	if inner := clients.AsObject(firstField(payload, "product", "style", "data")); inner != nil {
		payload = inner
	}
	return parseProduct(payload)
}

// FetchInventory fetches inventory rows for one product, optionally filtered
func (c *Client) FetchInventory(ctx context.Context, productID string, filter *clients.InventoryFilter) ([]clients.InventoryRow, error) {
	params := url.Values{}
	if filter != nil {
		if filter.ColorName != "" {
			params.Set("color", filter.ColorName)
		}
		if filter.SizeLabel != "" {
			params.Set("size", filter.SizeLabel)
		}
		if filter.PartID != "" {
			params.Set("partId", filter.PartID)
		}
		if len(filter.WarehouseIDs) > 0 {
			params.Set("warehouse", strings.Join(filter.WarehouseIDs, ","))
		}
	}

	body, err := c.get(ctx, fmt.Sprintf("/products/%s/inventory", url.PathEscape(productID)), params)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &clients.ParseError{Reason: err.Error()}
	}
	return parseInventory(productID, payload), nil
}

// ListProducts enumerates the catalog one page at a time
func (c *Client) ListProducts(ctx context.Context, opts *clients.ListOptions) (*clients.ProductPage, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Limit > 0 {
			params.Set("pageSize", strconv.Itoa(opts.Limit))
		}
		if opts.Cursor != "" {
			params.Set("page", opts.Cursor)
		}
		if !opts.ModifiedSince.IsZero() {
			params.Set("modifiedSince", opts.ModifiedSince.Format(time.RFC3339))
		}
	}

	body, err := c.get(ctx, "/products", params)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &clients.ParseError{Reason: err.Error()}
	}
	return parseProductPage(payload)
}

// get performs a rate-limited authenticated GET and returns the raw body
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, &clients.TransportError{Op: "GET " + path, Err: err}
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, &clients.TransportError{Op: "GET " + path, Err: err}
	}
	req.SetBasicAuth(c.accountID, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &clients.TransportError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &clients.TransportError{Op: "GET " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &clients.TransportError{Op: "GET " + path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func firstField(record map[string]interface{}, aliases ...string) interface{} {
	v, _ := clients.ReadField(record, aliases...)
	return v
}
