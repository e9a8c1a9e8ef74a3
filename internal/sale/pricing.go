package sale

import "github.com/shopspring/decimal"

// PricedLine is a basket line with its snapshotted unit price.
type PricedLine struct {
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
}

// Totals is the result of pricing a basket.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Price computes the totals for a basket given a tax rate percentage.
//
//	lineTotal = price * quantity
//	subtotal  = sum(lineTotal)
//	tax       = subtotal * taxRate / 100, rounded to 2 decimal places half-up
//	total     = subtotal + tax
func Price(lines []PricedLine, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero

	for _, line := range lines {
		lineTotal := line.Price.Mul(decimal.NewFromInt(line.Quantity))
		subtotal = subtotal.Add(lineTotal)
	}

	// decimal.Round rounds half away from zero, which is half-up on the
	// non-negative amounts a basket can produce.
	tax := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
