package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeSortTableOrder(t *testing.T) {
	assert.Less(t, SizeSort("S"), SizeSort("M"))
	assert.Less(t, SizeSort("M"), SizeSort("L"))
	assert.Less(t, SizeSort("L"), SizeSort("XL"))
	assert.Less(t, SizeSort("XL"), SizeSort("2XL"))
	assert.Less(t, SizeSort("2XL"), SizeSort("6XL"))
}

func TestSizeSortNormalizesLabel(t *testing.T) {
	assert.Equal(t, SizeSort("XL"), SizeSort(" x-l "))
	assert.Equal(t, SizeSort("2XL"), SizeSort("2xl"))
	assert.Equal(t, SizeSort("OSFA"), SizeSort("O.S.F.A."))
}

func TestSizeSortNumericLabels(t *testing.T) {
	// Numeric sizes rank after every table entry and preserve numeric order
	assert.Greater(t, SizeSort("Size 42"), SizeSort("OS"))
	assert.Less(t, SizeSort("Size 42"), SizeSort("Size 44"))
	assert.Less(t, SizeSort("7"), SizeSort("10"))
}

func TestSizeSortUnknownRanksLast(t *testing.T) {
	assert.Equal(t, UnknownSizeRank, SizeSort("Banana"))
	assert.Greater(t, SizeSort("Banana"), SizeSort("Size 9999"))
	assert.Greater(t, SizeSort("Banana"), SizeSort("6XL"))
}
