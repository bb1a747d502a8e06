package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-sync-service/internal/clients"
)

const enrichmentCSV = `STYLE,CATEGORY,CASE_QTY,RETAIL_PRICE
PC54,T-Shirts,72,9.99
ZZ999,Outerwear,12,49.99
`

func storeWithProduct(style string) *fakeStore {
	store := newFakeStore()
	store.products[style] = &clients.ProductRecord{SupplierPartID: style}
	return store
}

func TestEnrichmentMergesIntoExistingProduct(t *testing.T) {
	store := storeWithProduct("PC54")
	imp := NewEnrichmentImporter(store, nil)

	result, err := imp.Import(context.Background(), strings.NewReader(enrichmentCSV), Options{SupplierCode: "SANMAR"})
	require.NoError(t, err)

	assert.Equal(t, []string{"PC54"}, result.MatchedStyles)
	assert.Equal(t, []string{"ZZ999"}, result.MissingStyles)
	assert.Equal(t, 1, result.ProductsPersisted)

	pc54 := store.products["PC54"]
	assert.Equal(t, "T-Shirts", pc54.Attributes["category"])
	assert.Equal(t, 72, pc54.Attributes["case_qty"])
	assert.Equal(t, 9.99, pc54.Attributes["retail_price"])
}

func TestEnrichmentNeverCreates(t *testing.T) {
	store := newFakeStore()
	imp := NewEnrichmentImporter(store, nil)

	result, err := imp.Import(context.Background(), strings.NewReader(enrichmentCSV), Options{})
	require.NoError(t, err)

	assert.Empty(t, store.products)
	assert.Equal(t, 0, store.writes)
	assert.ElementsMatch(t, []string{"PC54", "ZZ999"}, result.MissingStyles)
}

func TestEnrichmentStylesFilter(t *testing.T) {
	store := storeWithProduct("PC54")
	imp := NewEnrichmentImporter(store, nil)

	result, err := imp.Import(context.Background(), strings.NewReader(enrichmentCSV), Options{
		Styles: []string{"pc54", "MISSING1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"PC54"}, result.MatchedStyles)
	// a requested style absent from the file is reported missing
	assert.Equal(t, []string{"MISSING1"}, result.MissingStyles)
	assert.Len(t, store.merges, 1)
}

func TestEnrichmentDryRun(t *testing.T) {
	store := storeWithProduct("PC54")
	imp := NewEnrichmentImporter(store, nil)

	result, err := imp.Import(context.Background(), strings.NewReader(enrichmentCSV), Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.ProductsParsed)
	assert.Equal(t, 0, store.writes)
}

func TestEnrichmentStyleKeyAliases(t *testing.T) {
	store := storeWithProduct("PC54")
	imp := NewEnrichmentImporter(store, nil)

	csv := "STYLE_NUMBER,CATEGORY\npc54,Tees\n"
	result, err := imp.Import(context.Background(), strings.NewReader(csv), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"PC54"}, result.MatchedStyles)
}

func TestEnrichmentAbortsOnStreamFailure(t *testing.T) {
	store := storeWithProduct("PC54")
	imp := NewEnrichmentImporter(store, nil)

	stream := &brokenStream{
		prefix: strings.NewReader("STYLE,CATEGORY\nPC54,T-Shirts\n"),
		err:    errors.New("read: connection reset by peer"),
	}
	result, err := imp.Import(context.Background(), stream, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Equal(t, 1, result.RowsScanned)
	assert.Equal(t, 0, result.RowsSkipped)
}

func TestEnrichmentMissingStyleKeyColumn(t *testing.T) {
	imp := NewEnrichmentImporter(newFakeStore(), nil)
	_, err := imp.Import(context.Background(), strings.NewReader("CATEGORY\nTees\n"), Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "style key")
}
