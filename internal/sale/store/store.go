package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/karimelh/salespoint/internal/sale"
)

// timeLayout matches SQLite's CURRENT_TIMESTAMP output.
const timeLayout = "2006-01-02 15:04:05"

type Store struct {
	db *sqlx.DB

	// lockBudget bounds how long a unit of work may wait for the writer.
	// With a single pooled connection that wait happens in-process, on
	// pool acquisition, where SQLite's busy_timeout never sees it.
	lockBudget time.Duration
}

func New(db *sqlx.DB, lockBudget time.Duration) *Store {
	return &Store{db: db, lockBudget: lockBudget}
}

func (s *Store) Begin(ctx context.Context) (sale.Tx, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lockBudget)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		cancel()

		return nil, classify("beginning unit of work", err)
	}

	return &saleTx{tx: tx, cancel: cancel}, nil
}

type saleTx struct {
	tx     *sqlx.Tx
	cancel context.CancelFunc
}

// Reserve is the conditional decrement: check and mutation are one
// atomic statement, so two concurrent reservations can never both read
// stale availability. An ineffective decrement is classified afterwards
// purely for error reporting.
func (t *saleTx) Reserve(ctx context.Context, productID, quantity int64) (decimal.Decimal, error) {
	var price decimal.Decimal

	err := t.tx.QueryRowxContext(ctx, `
		UPDATE products
		SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity >= ?
		RETURNING price`,
		quantity, productID, quantity,
	).Scan(&price)
	if err == nil {
		return price, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, classify("reserving stock", err)
	}

	// No row affected: the product is missing or short on stock.
	var available int64

	switch err := t.tx.GetContext(ctx, &available, `SELECT quantity FROM products WHERE id = ?`, productID); {
	case errors.Is(err, sql.ErrNoRows):
		return decimal.Decimal{}, &sale.ProductNotFoundError{ProductID: productID}
	case err != nil:
		return decimal.Decimal{}, classify("reserving stock", err)
	}

	return decimal.Decimal{}, &sale.InsufficientStockError{
		ProductID: productID,
		Requested: quantity,
		Available: available,
	}
}

func (t *saleTx) TaxRate(ctx context.Context) (decimal.Decimal, error) {
	var rate decimal.Decimal

	if err := t.tx.QueryRowxContext(ctx, `SELECT COALESCE(tax_rate, 0) FROM settings WHERE id = 1`).Scan(&rate); err != nil {
		return decimal.Decimal{}, classify("reading tax rate", err)
	}

	return rate, nil
}

func (t *saleTx) InsertSale(ctx context.Context, s *sale.Sale) error {
	var createdAt string

	err := t.tx.QueryRowxContext(ctx, `
		INSERT INTO sales (customer_id, total_amount, payment_method, payment_status)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`,
		s.CustomerID, s.Total, string(s.Method), string(s.Status),
	).Scan(&s.ID, &createdAt)
	if err != nil {
		return classify("inserting sale", err)
	}

	s.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return classify("inserting sale", err)
	}

	return nil
}

func (t *saleTx) InsertItems(ctx context.Context, saleID int64, items []sale.Item) error {
	for i := range items {
		err := t.tx.QueryRowxContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?)
			RETURNING id`,
			saleID, items[i].ProductID, items[i].Quantity, items[i].Price,
		).Scan(&items[i].ID)
		if err != nil {
			return classify("inserting sale item", err)
		}
	}

	return nil
}

func (t *saleTx) Commit() error {
	defer t.cancel()

	if err := t.tx.Commit(); err != nil {
		return classify("committing unit of work", err)
	}

	return nil
}

func (t *saleTx) Rollback() error {
	defer t.cancel()

	return t.tx.Rollback()
}

type saleRow struct {
	ID            int64           `db:"id"`
	CustomerID    *int64          `db:"customer_id"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	PaymentMethod string          `db:"payment_method"`
	PaymentStatus string          `db:"payment_status"`
	CreatedAt     string          `db:"created_at"`
}

type itemRow struct {
	ID        int64           `db:"id"`
	SaleID    int64           `db:"sale_id"`
	ProductID int64           `db:"product_id"`
	Quantity  int64           `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
}

func (r saleRow) toSale() (*sale.Sale, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("sale %d: %w", r.ID, err)
	}

	return &sale.Sale{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Total:      r.TotalAmount,
		Method:     sale.Method(r.PaymentMethod),
		Status:     sale.Status(r.PaymentStatus),
		CreatedAt:  createdAt,
	}, nil
}

// attachItems fills Items and derives Subtotal and Tax from the
// snapshotted line prices, so a read-back reproduces the committed
// arithmetic exactly.
func attachItems(s *sale.Sale, rows []itemRow) {
	subtotal := decimal.Zero
	s.Items = make([]sale.Item, 0, len(rows))

	for _, row := range rows {
		s.Items = append(s.Items, sale.Item{
			ID:        row.ID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			Price:     row.Price,
		})
		subtotal = subtotal.Add(row.Price.Mul(decimal.NewFromInt(row.Quantity)))
	}

	s.Subtotal = subtotal
	s.Tax = s.Total.Sub(subtotal)
}

func (s *Store) GetSale(ctx context.Context, id int64) (*sale.Sale, error) {
	var header saleRow

	err := s.db.GetContext(ctx, &header, `
		SELECT id, customer_id, total_amount, payment_method, payment_status, created_at
		FROM sales WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	var items []itemRow

	err = s.db.SelectContext(ctx, &items, `
		SELECT id, sale_id, product_id, quantity, price
		FROM sale_items WHERE sale_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale items: %w", err)
	}

	result, err := header.toSale()
	if err != nil {
		return nil, fmt.Errorf("getting sale: %w", err)
	}

	attachItems(result, items)

	return result, nil
}

func (s *Store) ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	query := `
		SELECT id, customer_id, total_amount, payment_method, payment_status, created_at
		FROM sales WHERE 1=1`

	var args []any

	if filter.CustomerID != nil {
		query += " AND customer_id = ?"

		args = append(args, *filter.CustomerID)
	}

	if filter.StartDate != nil {
		query += " AND DATE(created_at) >= DATE(?)"

		args = append(args, filter.StartDate.Format(time.DateOnly))
	}

	if filter.EndDate != nil {
		query += " AND DATE(created_at) <= DATE(?)"

		args = append(args, filter.EndDate.Format(time.DateOnly))
	}

	query += " ORDER BY created_at DESC, id DESC"

	var headers []saleRow

	if err := s.db.SelectContext(ctx, &headers, query, args...); err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	if len(headers) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}

	itemsQuery, itemsArgs, err := sqlx.In(`
		SELECT id, sale_id, product_id, quantity, price
		FROM sale_items WHERE sale_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("preparing sale items query: %w", err)
	}

	var items []itemRow

	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(itemsQuery), itemsArgs...); err != nil {
		return nil, fmt.Errorf("listing sale items: %w", err)
	}

	itemsBySale := make(map[int64][]itemRow)
	for _, row := range items {
		itemsBySale[row.SaleID] = append(itemsBySale[row.SaleID], row)
	}

	sales := make([]*sale.Sale, len(headers))
	for i, h := range headers {
		s, err := h.toSale()
		if err != nil {
			return nil, fmt.Errorf("listing sales: %w", err)
		}

		sales[i] = s
		attachItems(sales[i], itemsBySale[h.ID])
	}

	return sales, nil
}

func (s *Store) SummarizeDay(ctx context.Context, day time.Time) (*sale.DaySummary, error) {
	var summary sale.DaySummary

	err := s.db.QueryRowxContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM sales WHERE DATE(created_at) = DATE(?)`,
		day.Format(time.DateOnly),
	).Scan(&summary.Revenue, &summary.Count)
	if err != nil {
		return nil, fmt.Errorf("summarizing sales: %w", err)
	}

	return &summary, nil
}

// classify maps driver errors onto the sale error taxonomy. A wait that
// outlived the lock budget is a retryable conflict, whether it spent the
// budget on the file lock or queueing for the pooled connection;
// everything else is a persistence failure.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &sale.ConflictError{Err: err}
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return &sale.ConflictError{Err: err}
		}
	}

	return &sale.PersistenceError{Op: op, Err: err}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}

	return t, nil
}
