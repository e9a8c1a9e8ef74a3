package product_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/karimelh/salespoint/internal/product"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a valid product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := product.NewMockRepository(ctrl)

		repo.EXPECT().CreateProduct(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, p *product.Product) error {
			assert.Equal(t, "Coffee", p.Name)
			assert.True(t, p.Price.Equal(dec("12.50")))
			p.ID = 7
			return nil
		})

		svc := product.NewService(repo)
		got, err := svc.Create(ctx, product.CreateParams{
			Barcode:  "100001",
			Name:     "Coffee",
			Price:    dec("12.50"),
			Quantity: 40,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
	})

	t.Run("rejects bad params", func(t *testing.T) {
		tests := []struct {
			name   string
			params product.CreateParams
		}{
			{name: "missing name", params: product.CreateParams{Price: dec("1.00")}},
			{name: "negative price", params: product.CreateParams{Name: "Tea", Price: dec("-1.00")}},
			{name: "negative quantity", params: product.CreateParams{Name: "Tea", Price: dec("1.00"), Quantity: -5}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				repo := product.NewMockRepository(ctrl)

				svc := product.NewService(repo)
				got, err := svc.Create(ctx, tt.params)

				assert.Nil(t, got)
				assert.Error(t, err)
			})
		}
	})
}

func TestService_ImportBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("creates fresh rows and reports barcode conflicts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := product.NewMockRepository(ctrl)
		itx := product.NewMockImportTx(ctrl)

		params := []product.CreateParams{
			{Barcode: "100001", Name: "Coffee", Price: dec("12.50"), Quantity: 40},
			{Barcode: "100002", Name: "Tea", Price: dec("8.00"), Quantity: 25},
			{Name: "Loose candy", Price: dec("0.50"), Quantity: 100},
		}

		existing := &product.Product{ID: 3, Barcode: "100002", Name: "Green Tea"}

		repo.EXPECT().BeginImport(ctx).Return(itx, nil)
		itx.EXPECT().FindByBarcodes(ctx, []string{"100001", "100002"}).
			Return(map[string]*product.Product{"100002": existing}, nil)
		itx.EXPECT().CreateProducts(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, products []*product.Product) error {
			require.Len(t, products, 2)
			assert.Equal(t, "Coffee", products[0].Name)
			assert.Equal(t, "Loose candy", products[1].Name)
			return nil
		})
		itx.EXPECT().Commit().Return(nil)
		itx.EXPECT().Rollback().Return(nil)

		svc := product.NewService(repo)
		result, err := svc.ImportBatch(ctx, params)

		require.NoError(t, err)
		assert.Len(t, result.Imported, 2)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, "100002", result.Conflicts[0].Incoming.Barcode)
		assert.Equal(t, existing, result.Conflicts[0].Existing)
	})

	t.Run("rejects an invalid row with its number", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := product.NewMockRepository(ctrl)

		svc := product.NewService(repo)
		result, err := svc.ImportBatch(ctx, []product.CreateParams{
			{Name: "Good", Price: dec("1.00")},
			{Name: "", Price: dec("2.00")},
		})

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := product.NewMockRepository(ctrl)

		svc := product.NewService(repo)
		result, err := svc.ImportBatch(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, result.Imported)
		assert.Empty(t, result.Conflicts)
	})
}
