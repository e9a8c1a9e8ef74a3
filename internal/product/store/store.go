package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/karimelh/salespoint/internal/product"
)

const timeLayout = "2006-01-02 15:04:05"

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type productRow struct {
	ID          int64           `db:"id"`
	Barcode     *string         `db:"barcode"`
	Name        string          `db:"name"`
	Price       decimal.Decimal `db:"price"`
	Quantity    int64           `db:"quantity"`
	Description *string         `db:"description"`
	Category    *string         `db:"category"`
	Image       *string         `db:"image"`
	CreatedAt   string          `db:"created_at"`
	UpdatedAt   string          `db:"updated_at"`
}

func (r productRow) toProduct() *product.Product {
	return &product.Product{
		ID:          r.ID,
		Barcode:     deref(r.Barcode),
		Name:        r.Name,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: deref(r.Description),
		Category:    deref(r.Category),
		Image:       deref(r.Image),
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}

const selectColumns = `id, barcode, name, price, quantity, description, category, image, created_at, updated_at`

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	var createdAt string

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO products (barcode, name, price, quantity, description, category, image)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		nullIfEmpty(p.Barcode), p.Name, p.Price, p.Quantity,
		nullIfEmpty(p.Description), nullIfEmpty(p.Category), nullIfEmpty(p.Image),
	).Scan(&p.ID, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrBarcodeTaken
		}

		return fmt.Errorf("creating product: %w", err)
	}

	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = p.CreatedAt

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	var row productRow

	err := s.db.GetContext(ctx, &row, `SELECT `+selectColumns+` FROM products WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return row.toProduct(), nil
}

func (s *Store) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	var row productRow

	err := s.db.GetContext(ctx, &row, `SELECT `+selectColumns+` FROM products WHERE barcode = ?`, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("getting product by barcode: %w", err)
	}

	return row.toProduct(), nil
}

func (s *Store) ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	query := `SELECT ` + selectColumns + ` FROM products WHERE 1=1`

	var args []any

	if filter.Query != "" {
		query += " AND (name LIKE ? OR barcode LIKE ?)"
		like := "%" + filter.Query + "%"

		args = append(args, like, like)
	}

	if filter.Category != "" {
		query += " AND category = ?"

		args = append(args, filter.Category)
	}

	query += " ORDER BY name"

	var rows []productRow

	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return toProducts(rows), nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET barcode = ?, name = ?, price = ?, quantity = ?, description = ?, category = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		nullIfEmpty(p.Barcode), p.Name, p.Price, p.Quantity,
		nullIfEmpty(p.Description), nullIfEmpty(p.Category), p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrBarcodeTaken
		}

		return fmt.Errorf("updating product: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return product.ErrNotFound
	}

	return nil
}

func (s *Store) UpdateImage(ctx context.Context, id int64, image string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET image = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, id,
	)
	if err != nil {
		return fmt.Errorf("updating product image: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return product.ErrNotFound
	}

	return nil
}

// DeleteProduct removes a catalog entry. Products referenced by sale
// items are protected by the RESTRICT foreign key and stay.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return product.ErrReferenced
		}

		return fmt.Errorf("deleting product: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return product.ErrNotFound
	}

	return nil
}

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var count int64

	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}

	return count, nil
}

func (s *Store) LowStock(ctx context.Context, threshold int64) ([]*product.Product, error) {
	var rows []productRow

	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+selectColumns+` FROM products WHERE quantity <= ? ORDER BY quantity, name`,
		threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("listing low stock: %w", err)
	}

	return toProducts(rows), nil
}

type importTx struct {
	tx *sqlx.Tx
}

func (s *Store) BeginImport(ctx context.Context) (product.ImportTx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	return &importTx{tx: tx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindByBarcodes(ctx context.Context, barcodes []string) (map[string]*product.Product, error) {
	if len(barcodes) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+selectColumns+` FROM products WHERE barcode IN (?)`, barcodes)
	if err != nil {
		return nil, fmt.Errorf("preparing barcode lookup: %w", err)
	}

	var rows []productRow

	if err := itx.tx.SelectContext(ctx, &rows, itx.tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("finding barcodes: %w", err)
	}

	existing := make(map[string]*product.Product, len(rows))

	for _, row := range rows {
		p := row.toProduct()
		existing[p.Barcode] = p
	}

	return existing, nil
}

func (itx *importTx) CreateProducts(ctx context.Context, products []*product.Product) error {
	for _, p := range products {
		var createdAt string

		err := itx.tx.QueryRowxContext(ctx, `
			INSERT INTO products (barcode, name, price, quantity, description, category)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id, created_at`,
			nullIfEmpty(p.Barcode), p.Name, p.Price, p.Quantity,
			nullIfEmpty(p.Description), nullIfEmpty(p.Category),
		).Scan(&p.ID, &createdAt)
		if err != nil {
			return fmt.Errorf("creating product: %w", err)
		}

		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = p.CreatedAt
	}

	return nil
}

func toProducts(rows []productRow) []*product.Product {
	products := make([]*product.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toProduct()
	}

	return products
}

func isUniqueViolation(err error) bool {
	return hasCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return hasCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) ||
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func hasCode(err error, code int) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == code
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
