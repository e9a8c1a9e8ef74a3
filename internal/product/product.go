package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")

	// ErrBarcodeTaken means another product already carries the barcode.
	ErrBarcodeTaken = errors.New("barcode already in use")

	// ErrReferenced means the product appears on at least one sale item
	// and must be kept for the sale history.
	ErrReferenced = errors.New("product is referenced by sales")
)

// Product is a catalog entry. Quantity is mutated only by the sale
// engine's stock reservation and by explicit restock updates.
type Product struct {
	ID          int64
	Barcode     string
	Name        string
	Price       decimal.Decimal
	Quantity    int64
	Description string
	Category    string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
