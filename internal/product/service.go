package product

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=product
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	UpdateImage(ctx context.Context, id int64, image string) error
	DeleteProduct(ctx context.Context, id int64) error

	CountProducts(ctx context.Context) (int64, error)
	LowStock(ctx context.Context, threshold int64) ([]*Product, error)

	BeginImport(ctx context.Context) (ImportTx, error)
}

// ImportTx scopes a catalog import to one unit of work.
type ImportTx interface {
	FindByBarcodes(ctx context.Context, barcodes []string) (map[string]*Product, error)
	CreateProducts(ctx context.Context, products []*Product) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Barcode     string
	Name        string
	Price       decimal.Decimal
	Quantity    int64
	Description string
	Category    string
}

type ListFilter struct {
	// Query matches against name and barcode.
	Query    string
	Category string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	p := &Product{
		Barcode:     params.Barcode,
		Name:        params.Name,
		Price:       params.Price,
		Quantity:    params.Quantity,
		Description: params.Description,
		Category:    params.Category,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func validate(params CreateParams) error {
	if params.Name == "" {
		return fmt.Errorf("product name is required")
	}

	if params.Price.IsNegative() {
		return fmt.Errorf("product price must not be negative")
	}

	if params.Quantity < 0 {
		return fmt.Errorf("product quantity must not be negative")
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.GetByBarcode(ctx, barcode)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) Update(ctx context.Context, p *Product) error {
	return s.repo.UpdateProduct(ctx, p)
}

func (s *Service) UpdateImage(ctx context.Context, id int64, image string) error {
	return s.repo.UpdateImage(ctx, id, image)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.CountProducts(ctx)
}

func (s *Service) LowStock(ctx context.Context, threshold int64) ([]*Product, error) {
	return s.repo.LowStock(ctx, threshold)
}

type ImportResult struct {
	Imported  []*Product
	Conflicts []Conflict
}

// Conflict pairs an incoming catalog row with the existing product
// that already owns its barcode.
type Conflict struct {
	Incoming CreateParams
	Existing *Product
}

// ImportBatch creates the given catalog rows in one unit of work.
// Rows whose barcode already exists are reported as conflicts and
// skipped; everything else is created.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i, p := range params {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	var barcodes []string

	for _, p := range params {
		if p.Barcode != "" {
			barcodes = append(barcodes, p.Barcode)
		}
	}

	existing, err := itx.FindByBarcodes(ctx, barcodes)
	if err != nil {
		return nil, fmt.Errorf("find existing barcodes: %w", err)
	}

	var (
		fresh     []*Product
		conflicts []Conflict
	)

	for _, p := range params {
		if owner, found := existing[p.Barcode]; found && p.Barcode != "" {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: owner})
			continue
		}

		fresh = append(fresh, &Product{
			Barcode:     p.Barcode,
			Name:        p.Name,
			Price:       p.Price,
			Quantity:    p.Quantity,
			Description: p.Description,
			Category:    p.Category,
		})
	}

	if err := itx.CreateProducts(ctx, fresh); err != nil {
		return nil, fmt.Errorf("create products: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: fresh, Conflicts: conflicts}, nil
}
