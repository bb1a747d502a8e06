package clients

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"supplier-sync-service/internal/models"
)

type stubClient struct {
	record    *ProductRecord
	rows      []InventoryRow
	err       error
	calls     int
	invCalls  int
	lastID    string
	lastFiler *InventoryFilter
}

func (s *stubClient) Protocol() models.SupplierProtocol { return models.ProtocolPromoStandards }

func (s *stubClient) FetchProduct(ctx context.Context, productID string) (*ProductRecord, error) {
	s.calls++
	s.lastID = productID
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubClient) FetchInventory(ctx context.Context, productID string, filter *InventoryFilter) ([]InventoryRow, error) {
	s.invCalls++
	s.lastID = productID
	s.lastFiler = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func TestFallbackPrimarySuccess(t *testing.T) {
	primary := &stubClient{record: &ProductRecord{SupplierPartID: "PC54"}}
	secondary := &stubClient{record: &ProductRecord{SupplierPartID: "WRONG"}}
	fb := NewFallback(primary, secondary, nil)

	result, err := fb.FetchProduct(context.Background(), "PC54")
	assert.NoError(t, err)
	assert.Equal(t, SourcePrimary, result.Source)
	assert.Equal(t, "PC54", result.Record.SupplierPartID)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackSecondarySuccessCarriesWarning(t *testing.T) {
	primary := &stubClient{err: &TransportError{Op: "getProduct", StatusCode: 503, Body: "unavailable"}}
	secondary := &stubClient{record: &ProductRecord{SupplierPartID: "PC54"}}
	fb := NewFallback(primary, secondary, nil)

	result, err := fb.FetchProduct(context.Background(), "PC54")
	assert.NoError(t, err)
	assert.Equal(t, SourceSecondary, result.Source)
	assert.Equal(t, "PC54", result.Record.SupplierPartID)
	if assert.Len(t, result.Warnings, 1) {
		assert.Contains(t, result.Warnings[0], "503")
	}
}

func TestFallbackBothFailNamesBothCauses(t *testing.T) {
	primary := &stubClient{err: errors.New("soap timeout")}
	secondary := &stubClient{err: errors.New("rest 401")}
	fb := NewFallback(primary, secondary, nil)

	result, err := fb.FetchProduct(context.Background(), "PC54")
	assert.Nil(t, result)
	assert.Error(t, err)

	var fbErr *FallbackError
	assert.True(t, errors.As(err, &fbErr))
	assert.Contains(t, err.Error(), "primary: soap timeout")
	assert.Contains(t, err.Error(), "secondary: rest 401")
}

func TestFallbackPrimaryOnly(t *testing.T) {
	primary := &stubClient{err: errors.New("soap timeout")}
	fb := NewFallback(primary, nil, nil)

	result, err := fb.FetchProduct(context.Background(), "PC54")
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "primary: soap timeout")
	assert.NotContains(t, err.Error(), "secondary")
}

func TestFallbackInventorySecondary(t *testing.T) {
	primary := &stubClient{err: errors.New("connection refused")}
	secondary := &stubClient{rows: []InventoryRow{
		{SupplierPartID: "PC54", SupplierSku: "PC54-WHT-L", ColorCode: "WHITE", SizeCode: "L", TotalQty: 120},
	}}
	fb := NewFallback(primary, secondary, nil)

	filter := &InventoryFilter{ColorName: "White"}
	result, err := fb.FetchInventory(context.Background(), "PC54", filter)
	assert.NoError(t, err)
	assert.Equal(t, SourceSecondary, result.Source)
	assert.Len(t, result.Rows, 1)
	assert.Len(t, result.Warnings, 1)
	assert.Equal(t, filter, secondary.lastFiler)
}
