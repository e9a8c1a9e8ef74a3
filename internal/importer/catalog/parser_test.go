package catalog_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimelh/salespoint/internal/importer/catalog"
)

func TestParser_EnglishHeaders(t *testing.T) {
	csv := `barcode,name,price,quantity,category
6291041500213,Arabica Coffee 250g,12.50,40,beverages
6291041500220,Green Tea 100g,3.00,25,beverages
,Loose Dates,7.25,10,
`

	p := catalog.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 3)

	assert.Equal(t, "6291041500213", params[0].Barcode)
	assert.Equal(t, "Arabica Coffee 250g", params[0].Name)
	assert.True(t, params[0].Price.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, int64(40), params[0].Quantity)
	assert.Equal(t, "beverages", params[0].Category)

	assert.Empty(t, params[2].Barcode)
	assert.Equal(t, "Loose Dates", params[2].Name)
	assert.Equal(t, int64(10), params[2].Quantity)
}

func TestParser_ArabicHeadersSemicolon(t *testing.T) {
	csv := `تصدير المنتجات
التاريخ;2026-08-31

الباركود;الاسم;السعر;الكمية;التصنيف
100001;قهوة عربية;12,50;40;مشروبات
100002;شاي أخضر;3,00;25;مشروبات
`

	p := catalog.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "100001", params[0].Barcode)
	assert.Equal(t, "قهوة عربية", params[0].Name)
	assert.True(t, params[0].Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(40), params[0].Quantity)
	assert.Equal(t, "مشروبات", params[0].Category)
}

func TestParser_SkipsBlankAndFooterRows(t *testing.T) {
	csv := `name,price,quantity
Coffee,10.00,5

,,
Tea,2.00,3
`

	p := catalog.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "Coffee", params[0].Name)
	assert.Equal(t, "Tea", params[1].Name)
}

func TestParser_InvalidPrice(t *testing.T) {
	csv := `name,price
Coffee,abc
`

	p := catalog.NewParser()
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestParser_MissingQuantityDefaultsToZero(t *testing.T) {
	csv := `name,price
Coffee,10.00
`

	p := catalog.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, int64(0), params[0].Quantity)
}

func TestParser_NoMatchingLayout(t *testing.T) {
	csv := `foo,bar
1,2
`

	p := catalog.NewParser()
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching catalog layout")
}
