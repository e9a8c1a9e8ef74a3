package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimelh/salespoint/internal/database"
	"github.com/karimelh/salespoint/internal/sale"
	"github.com/karimelh/salespoint/internal/sale/store"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		filepath.Join(t.TempDir(), "test.db"),
	)

	db, err := database.New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	return db
}

func seedProduct(t *testing.T, db *sqlx.DB, name string, price string, quantity int64) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowx(
		`INSERT INTO products (name, price, quantity) VALUES (?, ?, ?) RETURNING id`,
		name, price, quantity,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

func setTaxRate(t *testing.T, db *sqlx.DB, rate string) {
	t.Helper()

	_, err := db.Exec(`UPDATE settings SET tax_rate = ? WHERE id = 1`, rate)
	require.NoError(t, err)
}

func stockOf(t *testing.T, db *sqlx.DB, productID int64) int64 {
	t.Helper()

	var quantity int64
	require.NoError(t, db.Get(&quantity, `SELECT quantity FROM products WHERE id = ?`, productID))

	return quantity
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStore_CommitAndReadBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	setTaxRate(t, db, "15")

	coffeeID := seedProduct(t, db, "Coffee", "10.00", 10)

	svc := sale.NewService(store.New(db, 5*time.Second))

	committed, err := svc.Commit(ctx, sale.CommitParams{
		Method: sale.MethodCash,
		Lines:  []sale.Line{{ProductID: coffeeID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.True(t, committed.Subtotal.Equal(dec("30.00")), "subtotal: got %s", committed.Subtotal)
	assert.True(t, committed.Tax.Equal(dec("4.50")), "tax: got %s", committed.Tax)
	assert.True(t, committed.Total.Equal(dec("34.50")), "total: got %s", committed.Total)
	assert.NotZero(t, committed.ID)
	assert.False(t, committed.CreatedAt.IsZero())

	assert.Equal(t, int64(7), stockOf(t, db, coffeeID))

	// A read-back must reproduce the committed arithmetic from the
	// snapshotted line prices.
	got, err := svc.Get(ctx, committed.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, coffeeID, got.Items[0].ProductID)
	assert.True(t, got.Items[0].Price.Equal(dec("10.00")))
	assert.True(t, got.Subtotal.Equal(dec("30.00")))
	assert.True(t, got.Tax.Equal(dec("4.50")))
	assert.True(t, got.Total.Equal(dec("34.50")))
	assert.Equal(t, sale.MethodCash, got.Method)
	assert.Equal(t, sale.StatusPaid, got.Status)
}

func TestStore_CommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	teaID := seedProduct(t, db, "Tea", "4.00", 8)
	sugarID := seedProduct(t, db, "Sugar", "2.00", 1)

	svc := sale.NewService(store.New(db, 5*time.Second))

	_, err := svc.Commit(ctx, sale.CommitParams{
		Method: sale.MethodCash,
		Lines: []sale.Line{
			{ProductID: teaID, Quantity: 2},
			{ProductID: sugarID, Quantity: 5},
		},
	})

	var stockErr *sale.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, sugarID, stockErr.ProductID)
	assert.Equal(t, int64(5), stockErr.Requested)
	assert.Equal(t, int64(1), stockErr.Available)

	// The first line's decrement must have rolled back with the rest.
	assert.Equal(t, int64(8), stockOf(t, db, teaID))
	assert.Equal(t, int64(1), stockOf(t, db, sugarID))

	var count int64
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM sales`))
	assert.Zero(t, count)
}

func TestStore_ReserveUnknownProduct(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	svc := sale.NewService(store.New(db, 5*time.Second))

	_, err := svc.Commit(ctx, sale.CommitParams{
		Method: sale.MethodCard,
		Lines:  []sale.Line{{ProductID: 12345, Quantity: 1}},
	})

	var notFound *sale.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(12345), notFound.ProductID)
}

func TestStore_ConcurrentCommitsNeverOversell(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	const stock = 5
	const buyers = 12

	productID := seedProduct(t, db, "Limited", "9.99", stock)

	svc := sale.NewService(store.New(db, 5*time.Second))

	var wg sync.WaitGroup
	errs := make([]error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, errs[i] = svc.Commit(ctx, sale.CommitParams{
				Method: sale.MethodCash,
				Lines:  []sale.Line{{ProductID: productID, Quantity: 1}},
			})
		}(i)
	}

	wg.Wait()

	var succeeded, short int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			var stockErr *sale.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			short++
		}
	}

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, buyers-stock, short)
	assert.Equal(t, int64(0), stockOf(t, db, productID))

	var count int64
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM sales`))
	assert.Equal(t, int64(stock), count)
}

func TestStore_CommitFailsRetryableWhenWriterIsHeld(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	productID := seedProduct(t, db, "Contested", "5.00", 10)

	const budget = 150 * time.Millisecond

	svc := sale.NewService(store.New(db, budget))

	// Park a transaction on the single pooled connection so the commit
	// has to queue for the writer.
	holder, err := db.Beginx()
	require.NoError(t, err)
	defer holder.Rollback()

	start := time.Now()

	_, err = svc.Commit(ctx, sale.CommitParams{
		Method: sale.MethodCash,
		Lines:  []sale.Line{{ProductID: productID, Quantity: 1}},
	})

	var conflict *sale.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, sale.Retryable(err))
	assert.Less(t, time.Since(start), 10*budget, "the wait for the writer must be bounded")

	// Releasing the writer lets a retry of the same commit through.
	require.NoError(t, holder.Rollback())

	committed, err := svc.Commit(ctx, sale.CommitParams{
		Method: sale.MethodCash,
		Lines:  []sale.Line{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), stockOf(t, db, productID))
	assert.NotZero(t, committed.ID)
}

func TestStore_GetSaleRejectsMalformedTimestamp(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	var id int64
	require.NoError(t, db.QueryRowx(`
		INSERT INTO sales (total_amount, payment_method, payment_status, created_at)
		VALUES (1.00, 'cash', 'paid', 'not-a-timestamp')
		RETURNING id`,
	).Scan(&id))

	svc := sale.NewService(store.New(db, 5*time.Second))

	_, err := svc.Get(ctx, id)
	require.Error(t, err)
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestStore_SoldProductCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	productID := seedProduct(t, db, "Keeper", "3.00", 4)

	svc := sale.NewService(store.New(db, 5*time.Second))

	_, err := svc.Commit(ctx, sale.CommitParams{
		Method: sale.MethodCash,
		Lines:  []sale.Line{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM products WHERE id = ?`, productID)
	assert.Error(t, err, "sale history references the product")
}

func TestStore_ListSales(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	productID := seedProduct(t, db, "Soap", "1.50", 100)

	var customerID int64
	require.NoError(t, db.QueryRowx(
		`INSERT INTO customers (name) VALUES (?) RETURNING id`, "Layla",
	).Scan(&customerID))

	svc := sale.NewService(store.New(db, 5*time.Second))

	_, err := svc.Commit(ctx, sale.CommitParams{
		Method: sale.MethodCash,
		Lines:  []sale.Line{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = svc.Commit(ctx, sale.CommitParams{
		CustomerID: &customerID,
		Method:     sale.MethodCard,
		Lines:      []sale.Line{{ProductID: productID, Quantity: 4}},
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, sale.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	for _, s := range all {
		assert.NotEmpty(t, s.Items, "listed sales carry their items")
	}

	byCustomer, err := svc.List(ctx, sale.ListFilter{CustomerID: &customerID})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, sale.MethodCard, byCustomer[0].Method)
	require.NotNil(t, byCustomer[0].CustomerID)
	assert.Equal(t, customerID, *byCustomer[0].CustomerID)
	assert.True(t, byCustomer[0].Total.Equal(dec("6.00")))
}

func TestStore_SummarizeDay(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	productID := seedProduct(t, db, "Bread", "2.00", 50)

	svc := sale.NewService(store.New(db, 5*time.Second))

	for i := 0; i < 3; i++ {
		_, err := svc.Commit(ctx, sale.CommitParams{
			Method: sale.MethodCash,
			Lines:  []sale.Line{{ProductID: productID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	// CURRENT_TIMESTAMP writes UTC, so summarize against UTC today.
	var today string
	require.NoError(t, db.Get(&today, `SELECT DATE(CURRENT_TIMESTAMP)`))

	summary, err := svc.SummarizeDay(ctx, mustDate(t, today))
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Count)
	assert.True(t, summary.Revenue.Equal(dec("6.00")), "revenue: got %s", summary.Revenue)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()

	day, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)

	return day
}
