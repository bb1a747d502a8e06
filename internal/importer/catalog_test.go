package importer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-sync-service/internal/clients"
)

// fakeStore records ReplaceProduct calls; the latest record per style wins,
// mirroring the repository's replace semantics
type fakeStore struct {
	products   map[string]*clients.ProductRecord
	replaceErr map[string]error
	merges     []mergeCall
	writes     int
}

type mergeCall struct {
	style string
	attrs map[string]interface{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: make(map[string]*clients.ProductRecord)}
}

func (s *fakeStore) ReplaceProduct(ctx context.Context, supplierCode string, record *clients.ProductRecord) error {
	if err := s.replaceErr[record.SupplierPartID]; err != nil {
		return err
	}
	s.writes++
	s.products[record.SupplierPartID] = record
	return nil
}

func (s *fakeStore) MergeProductAttributes(ctx context.Context, supplierCode, supplierPartID string, attrs map[string]interface{}) (bool, error) {
	record, ok := s.products[supplierPartID]
	if !ok {
		return false, nil
	}
	s.writes++
	s.merges = append(s.merges, mergeCall{style: supplierPartID, attrs: attrs})
	if record.Attributes == nil {
		record.Attributes = make(map[string]interface{})
	}
	for k, v := range attrs {
		record.Attributes[k] = v
	}
	return true, nil
}

const catalogCSV = `STYLE#,PRODUCT_TITLE,PRODUCT_DESCRIPTION,MILL,COLOR_NAME,SIZE,SIZE_INDEX,GTIN,FRONT_MODEL_IMAGE_URL,PIECE_PRICE
PC54,Core Cotton Tee,100% cotton|Taped shoulders,Port & Company,White,S,3,00190000000017,https://img.example.com/pc54_wht.jpg,3.59
PC54,Core Cotton Tee,100% cotton|Taped shoulders,Port & Company,Black,M,5,00190000000024,https://img.example.com/pc54_blk.jpg,3.59
G200,Ultra Cotton Tee,6-ounce heavyweight,Gildan,Red,L,6,00190000000099,,4.10
`

func TestCatalogImportMergesRowsPerStyle(t *testing.T) {
	store := newFakeStore()
	imp := NewCatalogImporter(store, nil)

	result, err := imp.Import(context.Background(), strings.NewReader(catalogCSV), Options{SupplierCode: "SANMAR"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowsScanned)
	assert.Equal(t, 2, result.ProductsParsed)
	assert.Equal(t, 2, result.ProductsPersisted)
	assert.Equal(t, 0, result.ProductsFailed)

	pc54 := store.products["PC54"]
	require.NotNil(t, pc54)
	assert.Equal(t, "Core Cotton Tee", pc54.Name)
	assert.Equal(t, "Port & Company", pc54.Brand)
	assert.Equal(t, []string{"100% cotton", "Taped shoulders"}, pc54.Description)

	// two rows give 2 colorways, 2 sizes, and 2 sku entries, not a cross-product
	assert.Len(t, pc54.Colorways, 2)
	assert.Len(t, pc54.Sizes, 2)
	require.Len(t, pc54.SkuMap, 2)
	assert.Equal(t, clients.SkuEntry{ColorCode: "WHITE", SizeCode: "S", SupplierSku: "00190000000017"}, pc54.SkuMap[0])
	assert.Equal(t, clients.SkuEntry{ColorCode: "BLACK", SizeCode: "M", SupplierSku: "00190000000024"}, pc54.SkuMap[1])

	// SIZE_INDEX overrides the derived rank
	require.NotNil(t, pc54.Sizes[0].SortRank)
	assert.Equal(t, 3, *pc54.Sizes[0].SortRank)

	assert.Equal(t, 3.59, pc54.Attributes["piece_price"])
	assert.Contains(t, pc54.Keywords, "white")
	assert.Contains(t, pc54.Keywords, "port & company")
}

func TestCatalogImportDryRunWritesNothing(t *testing.T) {
	store := newFakeStore()
	imp := NewCatalogImporter(store, nil)

	result, err := imp.Import(context.Background(), strings.NewReader(catalogCSV), Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 3, result.RowsScanned)
	assert.Equal(t, 2, result.ProductsParsed)
	assert.Equal(t, 0, result.ProductsPersisted)
	assert.Equal(t, 0, store.writes)
}

func TestCatalogImportRowLimit(t *testing.T) {
	store := newFakeStore()
	imp := NewCatalogImporter(store, nil)

	result, err := imp.Import(context.Background(), strings.NewReader(catalogCSV), Options{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowsScanned)
	assert.Equal(t, 1, result.ProductsParsed)
	_, ok := store.products["G200"]
	assert.False(t, ok)
}

func TestCatalogImportReplaceNotMerge(t *testing.T) {
	store := newFakeStore()
	imp := NewCatalogImporter(store, nil)

	first := "STYLE#,COLOR_NAME,SIZE\nPC54,White,S\n"
	_, err := imp.Import(context.Background(), strings.NewReader(first), Options{})
	require.NoError(t, err)

	second := "STYLE#,COLOR_NAME,SIZE\nPC54,Black,S\n"
	_, err = imp.Import(context.Background(), strings.NewReader(second), Options{})
	require.NoError(t, err)

	pc54 := store.products["PC54"]
	require.NotNil(t, pc54)
	require.Len(t, pc54.Colorways, 1)
	assert.Equal(t, "BLACK", pc54.Colorways[0].Code)
}

func TestCatalogImportSkipsRowsWithoutStyle(t *testing.T) {
	store := newFakeStore()
	imp := NewCatalogImporter(store, nil)

	csv := "STYLE#,COLOR_NAME\nPC54,White\n,Orphan Row\nG200,Red\n"
	result, err := imp.Import(context.Background(), strings.NewReader(csv), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowsSkipped)
	assert.Equal(t, 2, result.ProductsPersisted)
}

func TestCatalogImportContinuesPastPersistFailure(t *testing.T) {
	store := newFakeStore()
	store.replaceErr = map[string]error{"PC54": errors.New("deadlock detected")}
	imp := NewCatalogImporter(store, nil)

	result, err := imp.Import(context.Background(), strings.NewReader(catalogCSV), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ProductsFailed)
	assert.Equal(t, 1, result.ProductsPersisted)
	_, ok := store.products["G200"]
	assert.True(t, ok)
}

// brokenStream serves its prefix, then fails every subsequent read the way a
// dropped connection does
type brokenStream struct {
	prefix io.Reader
	err    error
}

func (s *brokenStream) Read(p []byte) (int, error) {
	n, err := s.prefix.Read(p)
	if err == io.EOF {
		return n, s.err
	}
	return n, err
}

func TestCatalogImportAbortsOnStreamFailure(t *testing.T) {
	store := newFakeStore()
	imp := NewCatalogImporter(store, nil)

	stream := &brokenStream{
		prefix: strings.NewReader("STYLE#,COLOR_NAME\nPC54,White\n"),
		err:    errors.New("read: connection reset by peer"),
	}
	result, err := imp.Import(context.Background(), stream, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Equal(t, 1, result.RowsScanned)
	assert.Equal(t, 0, result.RowsSkipped)
	assert.Equal(t, 0, store.writes)
}

func TestCatalogImportMissingStyleColumn(t *testing.T) {
	imp := NewCatalogImporter(newFakeStore(), nil)
	_, err := imp.Import(context.Background(), strings.NewReader("COLOR_NAME,SIZE\nWhite,S\n"), Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "STYLE#")
}

func TestCatalogImportLatin1Transcoding(t *testing.T) {
	store := newFakeStore()
	imp := NewCatalogImporter(store, nil)

	// 0xC9 is E with acute accent in ISO 8859-1
	raw := "STYLE#,COLOR_NAME\nPC54,Caf\xc9\n"
	_, err := imp.Import(context.Background(), strings.NewReader(raw), Options{Latin1: true})
	require.NoError(t, err)

	pc54 := store.products["PC54"]
	require.NotNil(t, pc54)
	require.Len(t, pc54.Colorways, 1)
	assert.Equal(t, "CAFE", pc54.Colorways[0].Code)
}
