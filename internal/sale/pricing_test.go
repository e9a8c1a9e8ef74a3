package sale_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/karimelh/salespoint/internal/sale"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPrice(t *testing.T) {
	type testCase struct {
		name         string
		lines        []sale.PricedLine
		taxRate      string
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}

	tests := []testCase{
		{
			name: "SingleLineWithTax",
			lines: []sale.PricedLine{
				{ProductID: 1, Quantity: 3, Price: dec("10.00")},
			},
			taxRate:      "15",
			wantSubtotal: "30.00",
			wantTax:      "4.50",
			wantTotal:    "34.50",
		},
		{
			name: "MultipleLines",
			lines: []sale.PricedLine{
				{ProductID: 1, Quantity: 2, Price: dec("1.25")},
				{ProductID: 2, Quantity: 1, Price: dec("7.10")},
			},
			taxRate:      "10",
			wantSubtotal: "9.60",
			wantTax:      "0.96",
			wantTotal:    "10.56",
		},
		{
			name: "ZeroTaxRate",
			lines: []sale.PricedLine{
				{ProductID: 1, Quantity: 4, Price: dec("2.50")},
			},
			taxRate:      "0",
			wantSubtotal: "10.00",
			wantTax:      "0.00",
			wantTotal:    "10.00",
		},
		{
			name: "TaxRoundsHalfUp",
			lines: []sale.PricedLine{
				// subtotal 10.05, 10% tax = 1.005, rounds up to 1.01
				{ProductID: 1, Quantity: 1, Price: dec("10.05")},
			},
			taxRate:      "10",
			wantSubtotal: "10.05",
			wantTax:      "1.01",
			wantTotal:    "11.06",
		},
		{
			name: "TaxRoundsDown",
			lines: []sale.PricedLine{
				// subtotal 10.04, 10% tax = 1.004, rounds down to 1.00
				{ProductID: 1, Quantity: 1, Price: dec("10.04")},
			},
			taxRate:      "10",
			wantSubtotal: "10.04",
			wantTax:      "1.00",
			wantTotal:    "11.04",
		},
		{
			name: "FractionalRate",
			lines: []sale.PricedLine{
				{ProductID: 1, Quantity: 1, Price: dec("100.00")},
			},
			taxRate:      "7.5",
			wantSubtotal: "100.00",
			wantTax:      "7.50",
			wantTotal:    "107.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sale.Price(tt.lines, dec(tt.taxRate))

			assert.True(t, got.Subtotal.Equal(dec(tt.wantSubtotal)),
				"subtotal: got %s, want %s", got.Subtotal, tt.wantSubtotal)
			assert.True(t, got.Tax.Equal(dec(tt.wantTax)),
				"tax: got %s, want %s", got.Tax, tt.wantTax)
			assert.True(t, got.Total.Equal(dec(tt.wantTotal)),
				"total: got %s, want %s", got.Total, tt.wantTotal)
		})
	}
}

func TestPrice_ArithmeticInvariant(t *testing.T) {
	// total == subtotal + round(subtotal * rate / 100, 2) must hold for
	// every pricing, and subtotal == sum of line totals.
	lines := []sale.PricedLine{
		{ProductID: 1, Quantity: 3, Price: dec("19.99")},
		{ProductID: 2, Quantity: 7, Price: dec("0.33")},
		{ProductID: 3, Quantity: 1, Price: dec("149.95")},
	}
	rate := dec("16")

	got := sale.Price(lines, rate)

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}

	wantTax := subtotal.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)

	assert.True(t, got.Subtotal.Equal(subtotal))
	assert.True(t, got.Tax.Equal(wantTax))
	assert.True(t, got.Total.Equal(subtotal.Add(wantTax)))
}
