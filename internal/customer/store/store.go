package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/karimelh/salespoint/internal/customer"
)

const timeLayout = "2006-01-02 15:04:05"

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type customerRow struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	Phone     *string `db:"phone"`
	Email     *string `db:"email"`
	Address   *string `db:"address"`
	CreatedAt string  `db:"created_at"`
	UpdatedAt string  `db:"updated_at"`
}

func (r customerRow) toCustomer() *customer.Customer {
	return &customer.Customer{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     deref(r.Phone),
		Email:     deref(r.Email),
		Address:   deref(r.Address),
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	var createdAt string

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO customers (name, phone, email, address)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`,
		c.Name, nullIfEmpty(c.Phone), nullIfEmpty(c.Email), nullIfEmpty(c.Address),
	).Scan(&c.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = c.CreatedAt

	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	var row customerRow

	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, phone, email, address, created_at, updated_at
		FROM customers WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return row.toCustomer(), nil
}

func (s *Store) ListCustomers(ctx context.Context, query string) ([]*customer.Customer, error) {
	sqlQuery := `SELECT id, name, phone, email, address, created_at, updated_at FROM customers`

	var args []any

	if query != "" {
		sqlQuery += " WHERE name LIKE ? OR phone LIKE ?"
		like := "%" + query + "%"

		args = append(args, like, like)
	}

	sqlQuery += " ORDER BY name"

	var rows []customerRow

	if err := s.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}

	customers := make([]*customer.Customer, len(rows))
	for i, row := range rows {
		customers[i] = row.toCustomer()
	}

	return customers, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, phone = ?, email = ?, address = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Name, nullIfEmpty(c.Phone), nullIfEmpty(c.Email), nullIfEmpty(c.Address), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return customer.ErrNotFound
	}

	return nil
}

// DeleteCustomer removes a customer. Historical sales survive; the
// customer_id foreign key is declared ON DELETE SET NULL.
func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return customer.ErrNotFound
	}

	return nil
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	var count int64

	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM customers`); err != nil {
		return 0, fmt.Errorf("counting customers: %w", err)
	}

	return count, nil
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
