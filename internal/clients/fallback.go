package clients

import (
	"context"

	"github.com/sirupsen/logrus"
)

// FetchSource identifies which client produced a fallback result
type FetchSource string

const (
	SourcePrimary   FetchSource = "primary"
	SourceSecondary FetchSource = "secondary"
)

// Fallback drives primary-then-secondary fetch attempts. The primary client
// (SOAP for most suppliers) is tried first; any error switches to the
// secondary. Errors are not retried within a single client.
type Fallback struct {
	primary   SupplierClient
	secondary SupplierClient
	log       *logrus.Entry
}

// NewFallback creates a fallback orchestrator. Either client may be nil when
// the supplier exposes only one transport.
func NewFallback(primary, secondary SupplierClient, log *logrus.Entry) *Fallback {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Fallback{primary: primary, secondary: secondary, log: log}
}

// ProductResult is a fallback product fetch outcome. Warnings carry the
// primary client's failure when the secondary succeeded; a successful
// fallback is not an error.
type ProductResult struct {
	Record   *ProductRecord `json:"record"`
	Source   FetchSource    `json:"source"`
	Warnings []string       `json:"warnings,omitempty"`
}

// InventoryResult is a fallback inventory fetch outcome
type InventoryResult struct {
	Rows     []InventoryRow `json:"rows"`
	Source   FetchSource    `json:"source"`
	Warnings []string       `json:"warnings,omitempty"`
}

// FetchProduct attempts the primary client, then the secondary. When both
// fail the returned error enumerates both causes.
func (f *Fallback) FetchProduct(ctx context.Context, productID string) (*ProductResult, error) {
	var primaryErr error

	if f.primary != nil {
		record, err := f.primary.FetchProduct(ctx, productID)
		if err == nil {
			return &ProductResult{Record: record, Source: SourcePrimary}, nil
		}
		primaryErr = err
		f.log.WithFields(logrus.Fields{
			"productId": productID,
			"error":     err.Error(),
		}).Warn("primary product fetch failed, trying secondary")
	}

	if f.secondary != nil {
		record, err := f.secondary.FetchProduct(ctx, productID)
		if err == nil {
			result := &ProductResult{Record: record, Source: SourceSecondary}
			if primaryErr != nil {
				result.Warnings = []string{primaryErr.Error()}
			}
			return result, nil
		}
		return nil, &FallbackError{Primary: primaryErr, Secondary: err}
	}

	return nil, &FallbackError{Primary: primaryErr}
}

// FetchInventory attempts the primary client, then the secondary
func (f *Fallback) FetchInventory(ctx context.Context, productID string, filter *InventoryFilter) (*InventoryResult, error) {
	var primaryErr error

	if f.primary != nil {
		rows, err := f.primary.FetchInventory(ctx, productID, filter)
		if err == nil {
			return &InventoryResult{Rows: rows, Source: SourcePrimary}, nil
		}
		primaryErr = err
		f.log.WithFields(logrus.Fields{
			"productId": productID,
			"error":     err.Error(),
		}).Warn("primary inventory fetch failed, trying secondary")
	}

	if f.secondary != nil {
		rows, err := f.secondary.FetchInventory(ctx, productID, filter)
		if err == nil {
			result := &InventoryResult{Rows: rows, Source: SourceSecondary}
			if primaryErr != nil {
				result.Warnings = []string{primaryErr.Error()}
			}
			return result, nil
		}
		return nil, &FallbackError{Primary: primaryErr, Secondary: err}
	}

	return nil, &FallbackError{Primary: primaryErr}
}
