package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFieldAliasPriority(t *testing.T) {
	record := map[string]interface{}{
		"styleID":   "PC54",
		"productId": "SHOULD_LOSE",
	}

	v, ok := ReadField(record, "styleID", "productId")
	assert.True(t, ok)
	assert.Equal(t, "PC54", v)

	// exact match beats a case-insensitive match on an earlier alias
	v, ok = ReadField(record, "STYLEID", "productId")
	assert.True(t, ok)
	assert.Equal(t, "SHOULD_LOSE", v)

	v, ok = ReadField(record, "styleid")
	assert.True(t, ok)
	assert.Equal(t, "PC54", v)

	_, ok = ReadField(record, "missing")
	assert.False(t, ok)
}

func TestReadFieldSkipsNil(t *testing.T) {
	record := map[string]interface{}{
		"styleID": nil,
		"style":   "PC54",
	}
	v, ok := ReadField(record, "styleID", "style")
	assert.True(t, ok)
	assert.Equal(t, "PC54", v)
}

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "PC54", CoerceString(" PC54 "))
	assert.Equal(t, "42", CoerceString(float64(42)))
	assert.Equal(t, "42.5", CoerceString(42.5))
	assert.Equal(t, "true", CoerceString(true))
	assert.Equal(t, "", CoerceString(nil))
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, 42, CoerceInt(float64(42)))
	assert.Equal(t, 42, CoerceInt("42"))
	assert.Equal(t, 42, CoerceInt(" 42.0 "))
	assert.Equal(t, 0, CoerceInt("n/a"))
	assert.Equal(t, 0, CoerceInt(nil))
}

func TestToArrayCollapsedObject(t *testing.T) {
	// A single-element array collapsed to a bare object comes back as a
	// one-element slice
	obj := map[string]interface{}{"partId": "PC54-WHT-L"}
	arr := ToArray(obj)
	assert.Len(t, arr, 1)
	assert.Equal(t, obj, arr[0])
}

func TestToArrayPassthrough(t *testing.T) {
	in := []interface{}{"a", "b"}
	assert.Equal(t, in, ToArray(in))
	assert.Nil(t, ToArray(nil))
	assert.Equal(t, []interface{}{"x"}, ToArray("x"))
}

func TestToArrayTypedMapSlice(t *testing.T) {
	in := []map[string]interface{}{{"a": 1}, {"b": 2}}
	out := ToArray(in)
	assert.Len(t, out, 2)
	assert.Equal(t, map[string]interface{}{"a": 1}, out[0])
}

func TestAsObject(t *testing.T) {
	assert.NotNil(t, AsObject(map[string]interface{}{"k": "v"}))
	assert.Nil(t, AsObject("scalar"))
	assert.Nil(t, AsObject(nil))
}

func TestFinalizeCollectsKeywords(t *testing.T) {
	record := &ProductRecord{SupplierPartID: "pc54", Brand: "Port & Company"}
	record.AddColorway(NewColorway("White"))
	record.AddColorway(NewColorway("Heather Grey"))
	record.SetAttribute("category", "T-Shirts")
	record.Finalize()

	assert.Contains(t, record.Keywords, "port & company")
	assert.Contains(t, record.Keywords, "t-shirts")
	assert.Contains(t, record.Keywords, "white")
	assert.Contains(t, record.Keywords, "heather grey")
}

func TestFinalizeKeywordsSkipSynthesizedColor(t *testing.T) {
	record := &ProductRecord{SupplierPartID: "MUG11"}
	record.Finalize()

	require.Len(t, record.Colorways, 1)
	assert.Equal(t, DefaultColorCode, record.Colorways[0].Code)
	assert.Empty(t, record.Keywords)
}
