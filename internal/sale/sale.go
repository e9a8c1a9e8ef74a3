package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// Method is the payment method recorded on a sale.
type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

// Valid reports whether m is one of the accepted payment methods.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	}

	return false
}

// Status is the payment lifecycle state of a sale. The lifecycle is a
// closed single-state machine today: every committed sale is paid.
// Refund or pending support would extend this enum.
type Status string

const StatusPaid Status = "paid"

// Sale is a committed sale header with its line items.
// Once committed a sale is immutable; nothing updates or deletes it.
type Sale struct {
	ID         int64
	CustomerID *int64
	Items      []Item
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Method     Method
	Status     Status
	CreatedAt  time.Time
}

// Item is one line of a sale. Price is the product's unit price
// snapshotted at the moment its stock was reserved; later price edits
// never alter historical sales.
type Item struct {
	ID        int64
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
}
