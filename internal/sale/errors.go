package sale

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the read side when a sale does not exist.
var ErrNotFound = errors.New("sale not found")

// ValidationError rejects a commit request before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid sale request: " + e.Reason
}

// ProductNotFoundError reports a basket line referencing a product that
// does not exist. The whole commit is rolled back.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError reports a basket line asking for more units
// than the product has. The whole commit is rolled back.
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ConflictError means the unit of work lost the race for the writer
// within the lock budget. The caller may retry the whole commit.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return "sale commit lost the writer: " + e.Err.Error()
}

func (e *ConflictError) Unwrap() error { return e.Err }

// PersistenceError wraps store failures not otherwise classified
// (I/O errors, constraint violations). The commit was rolled back and
// may be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may retry the whole commit.
// Validation and stock failures are deterministic and not retryable.
func Retryable(err error) bool {
	var (
		conflict    *ConflictError
		persistence *PersistenceError
	)

	return errors.As(err, &conflict) || errors.As(err, &persistence)
}
