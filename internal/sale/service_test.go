package sale_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/karimelh/salespoint/internal/sale"
)

func TestService_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("commits a valid basket", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := sale.NewMockRepository(ctrl)
		tx := sale.NewMockTx(ctrl)

		params := sale.CommitParams{
			Method: sale.MethodCash,
			Lines: []sale.Line{
				{ProductID: 1, Quantity: 3},
				{ProductID: 2, Quantity: 1},
			},
		}

		repo.EXPECT().Begin(ctx).Return(tx, nil)

		// Lines are reserved in basket order; prices come back from the
		// store, not from the request.
		first := tx.EXPECT().Reserve(ctx, int64(1), int64(3)).Return(dec("10.00"), nil)
		tx.EXPECT().Reserve(ctx, int64(2), int64(1)).Return(dec("5.50"), nil).After(first)

		tx.EXPECT().TaxRate(ctx).Return(dec("15"), nil)

		tx.EXPECT().InsertSale(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, s *sale.Sale) error {
			assert.True(t, s.Subtotal.Equal(dec("35.50")), "subtotal: got %s", s.Subtotal)
			assert.True(t, s.Tax.Equal(dec("5.33")), "tax: got %s", s.Tax)
			assert.True(t, s.Total.Equal(dec("40.83")), "total: got %s", s.Total)
			assert.Equal(t, sale.MethodCash, s.Method)
			assert.Equal(t, sale.StatusPaid, s.Status)
			s.ID = 42
			return nil
		})

		tx.EXPECT().InsertItems(ctx, int64(42), gomock.Any()).DoAndReturn(func(_ context.Context, _ int64, items []sale.Item) error {
			require.Len(t, items, 2)
			assert.Equal(t, int64(1), items[0].ProductID)
			assert.True(t, items[0].Price.Equal(dec("10.00")))
			assert.Equal(t, int64(2), items[1].ProductID)
			assert.True(t, items[1].Price.Equal(dec("5.50")))
			return nil
		})

		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		svc := sale.NewService(repo)
		got, err := svc.Commit(ctx, params)

		require.NoError(t, err)
		assert.Equal(t, int64(42), got.ID)
		assert.Len(t, got.Items, 2)
	})

	t.Run("rejects invalid baskets before touching the store", func(t *testing.T) {
		tests := []struct {
			name   string
			params sale.CommitParams
		}{
			{
				name:   "empty basket",
				params: sale.CommitParams{Method: sale.MethodCash},
			},
			{
				name: "unknown payment method",
				params: sale.CommitParams{
					Method: "credit",
					Lines:  []sale.Line{{ProductID: 1, Quantity: 1}},
				},
			},
			{
				name: "zero quantity",
				params: sale.CommitParams{
					Method: sale.MethodCash,
					Lines:  []sale.Line{{ProductID: 1, Quantity: 0}},
				},
			},
			{
				name: "negative quantity",
				params: sale.CommitParams{
					Method: sale.MethodCard,
					Lines:  []sale.Line{{ProductID: 1, Quantity: -2}},
				},
			},
			{
				name: "missing product id",
				params: sale.CommitParams{
					Method: sale.MethodCash,
					Lines:  []sale.Line{{ProductID: 0, Quantity: 1}},
				},
			},
			{
				name: "non-positive customer id",
				params: sale.CommitParams{
					CustomerID: ptr(int64(0)),
					Method:     sale.MethodCash,
					Lines:      []sale.Line{{ProductID: 1, Quantity: 1}},
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				// No Begin expectation: validation failures must never
				// open a unit of work.
				repo := sale.NewMockRepository(ctrl)

				svc := sale.NewService(repo)
				got, err := svc.Commit(ctx, tt.params)

				assert.Nil(t, got)
				var verr *sale.ValidationError
				assert.ErrorAs(t, err, &verr)
			})
		}
	})

	t.Run("rolls back when stock runs short", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := sale.NewMockRepository(ctrl)
		tx := sale.NewMockTx(ctrl)

		params := sale.CommitParams{
			Method: sale.MethodCash,
			Lines: []sale.Line{
				{ProductID: 1, Quantity: 1},
				{ProductID: 2, Quantity: 5},
			},
		}

		shortage := &sale.InsufficientStockError{ProductID: 2, Requested: 5, Available: 3}

		repo.EXPECT().Begin(ctx).Return(tx, nil)
		tx.EXPECT().Reserve(ctx, int64(1), int64(1)).Return(dec("4.00"), nil)
		tx.EXPECT().Reserve(ctx, int64(2), int64(5)).Return(decimal.Decimal{}, shortage)
		// Nothing gets written after a failed reserve; the rollback is
		// the only remaining call.
		tx.EXPECT().Rollback().Return(nil)

		svc := sale.NewService(repo)
		got, err := svc.Commit(ctx, params)

		assert.Nil(t, got)
		var stockErr *sale.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, int64(2), stockErr.ProductID)
		assert.Equal(t, int64(5), stockErr.Requested)
		assert.Equal(t, int64(3), stockErr.Available)
	})

	t.Run("rolls back on unknown product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := sale.NewMockRepository(ctrl)
		tx := sale.NewMockTx(ctrl)

		params := sale.CommitParams{
			Method: sale.MethodTransfer,
			Lines:  []sale.Line{{ProductID: 99, Quantity: 1}},
		}

		repo.EXPECT().Begin(ctx).Return(tx, nil)
		tx.EXPECT().Reserve(ctx, int64(99), int64(1)).
			Return(decimal.Decimal{}, &sale.ProductNotFoundError{ProductID: 99})
		tx.EXPECT().Rollback().Return(nil)

		svc := sale.NewService(repo)
		got, err := svc.Commit(ctx, params)

		assert.Nil(t, got)
		var notFound *sale.ProductNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(99), notFound.ProductID)
	})

	t.Run("rolls back when the header insert fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := sale.NewMockRepository(ctrl)
		tx := sale.NewMockTx(ctrl)

		params := sale.CommitParams{
			Method: sale.MethodCash,
			Lines:  []sale.Line{{ProductID: 1, Quantity: 2}},
		}

		persistErr := &sale.PersistenceError{Op: "insert sale", Err: errors.New("disk I/O error")}

		repo.EXPECT().Begin(ctx).Return(tx, nil)
		tx.EXPECT().Reserve(ctx, int64(1), int64(2)).Return(dec("3.00"), nil)
		tx.EXPECT().TaxRate(ctx).Return(dec("0"), nil)
		tx.EXPECT().InsertSale(ctx, gomock.Any()).Return(persistErr)
		tx.EXPECT().Rollback().Return(nil)

		svc := sale.NewService(repo)
		got, err := svc.Commit(ctx, params)

		assert.Nil(t, got)
		var pe *sale.PersistenceError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("fails when the store cannot begin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := sale.NewMockRepository(ctrl)

		repo.EXPECT().Begin(ctx).Return(nil, errors.New("database is locked"))

		svc := sale.NewService(repo)
		got, err := svc.Commit(ctx, sale.CommitParams{
			Method: sale.MethodCash,
			Lines:  []sale.Line{{ProductID: 1, Quantity: 1}},
		})

		assert.Nil(t, got)
		assert.Error(t, err)
	})
}

func TestRetryable(t *testing.T) {
	assert.True(t, sale.Retryable(&sale.ConflictError{Err: errors.New("database is locked")}))
	assert.True(t, sale.Retryable(&sale.PersistenceError{Op: "reserve", Err: errors.New("busy")}))
	assert.False(t, sale.Retryable(&sale.InsufficientStockError{ProductID: 1, Requested: 2, Available: 0}))
	assert.False(t, sale.Retryable(&sale.ValidationError{Reason: "basket is empty"}))
	assert.False(t, sale.Retryable(nil))
}

func ptr[T any](v T) *T { return &v }
