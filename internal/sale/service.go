package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sale
type Repository interface {
	// Begin opens the single unit of work a commit runs in.
	Begin(ctx context.Context) (Tx, error)

	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]*Sale, error)
	SummarizeDay(ctx context.Context, day time.Time) (*DaySummary, error)
}

// Tx is the unit of work a sale commit runs in. The store behind it
// never commits or rolls back on its own; only the coordinator decides.
type Tx interface {
	// Reserve atomically decrements stock for the product if enough is
	// available and returns the unit price at that instant.
	Reserve(ctx context.Context, productID, quantity int64) (decimal.Decimal, error)

	// TaxRate reads the current tax rate percentage from settings.
	TaxRate(ctx context.Context) (decimal.Decimal, error)

	// InsertSale writes the sale header and fills ID and CreatedAt.
	InsertSale(ctx context.Context, s *Sale) error

	// InsertItems writes the line items for the sale and fills their IDs.
	InsertItems(ctx context.Context, saleID int64, items []Item) error

	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Line is one requested basket entry.
type Line struct {
	ProductID int64
	Quantity  int64
}

type CommitParams struct {
	CustomerID *int64
	Method     Method
	Lines      []Line
}

type ListFilter struct {
	CustomerID *int64
	StartDate  *time.Time
	EndDate    *time.Time
}

type DaySummary struct {
	Revenue decimal.Decimal
	Count   int64
}

// Commit turns a requested basket into a committed sale: it reserves
// stock per line in order, snapshots prices, computes totals, and writes
// the header and items inside a single unit of work. Any failure rolls
// the store back to the state it held before the call.
func (s *Service) Commit(ctx context.Context, params CommitParams) (*Sale, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	priced := make([]PricedLine, len(params.Lines))

	for i, line := range params.Lines {
		price, err := tx.Reserve(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("reserve stock: %w", err)
		}

		priced[i] = PricedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     price,
		}
	}

	rate, err := tx.TaxRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tax rate: %w", err)
	}

	totals := Price(priced, rate)

	committed := &Sale{
		CustomerID: params.CustomerID,
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Total:      totals.Total,
		Method:     params.Method,
		Status:     StatusPaid,
	}

	if err := tx.InsertSale(ctx, committed); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	items := make([]Item, len(priced))
	for i, line := range priced {
		items[i] = Item{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
	}

	if err := tx.InsertItems(ctx, committed.ID, items); err != nil {
		return nil, fmt.Errorf("insert sale items: %w", err)
	}

	committed.Items = items

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}

	return committed, nil
}

// validate rejects malformed requests before any store access.
func validate(params CommitParams) error {
	if len(params.Lines) == 0 {
		return &ValidationError{Reason: "basket is empty"}
	}

	if !params.Method.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown payment method %q", params.Method)}
	}

	if params.CustomerID != nil && *params.CustomerID <= 0 {
		return &ValidationError{Reason: "customer id must be positive"}
	}

	for i, line := range params.Lines {
		if line.ProductID <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("line %d: product id must be positive", i+1)}
		}

		if line.Quantity <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("line %d: quantity must be positive", i+1)}
		}
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return s.repo.ListSales(ctx, filter)
}

// SummarizeDay aggregates revenue and sale count for one calendar day.
func (s *Service) SummarizeDay(ctx context.Context, day time.Time) (*DaySummary, error) {
	return s.repo.SummarizeDay(ctx, day)
}
