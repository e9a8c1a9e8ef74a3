package customer

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("customer not found")

// Customer is an optional party on a sale. Deleting a customer keeps
// their historical sales; the store nulls the link.
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
