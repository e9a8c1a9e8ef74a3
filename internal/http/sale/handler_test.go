package sale_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/karimelh/salespoint/internal/http/sale"
	salesvc "github.com/karimelh/salespoint/internal/sale"
)

func newRouter(svc *salesvc.Service) http.Handler {
	r := chi.NewRouter()
	r.Route("/sales", sale.NewHandler(svc).Routes)

	return r
}

func postSale(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Create(t *testing.T) {
	t.Run("created sale returns 201 with totals", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := salesvc.NewMockRepository(ctrl)
		tx := salesvc.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().Reserve(gomock.Any(), int64(1), int64(3)).Return(decimal.RequireFromString("10.00"), nil)
		tx.EXPECT().TaxRate(gomock.Any()).Return(decimal.RequireFromString("15"), nil)
		tx.EXPECT().InsertSale(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, s *salesvc.Sale) error {
			s.ID = 1
			return nil
		})
		tx.EXPECT().InsertItems(gomock.Any(), int64(1), gomock.Any()).Return(nil)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		rec := postSale(t, newRouter(salesvc.NewService(repo)),
			`{"payment_method":"cash","items":[{"product_id":1,"quantity":3}]}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"sale_id":1`)
		assert.Contains(t, rec.Body.String(), `"total_amount":"34.50"`)
	})

	t.Run("maps the commit error taxonomy onto statuses", func(t *testing.T) {
		tests := []struct {
			name       string
			reserveErr error
			wantStatus int
			wantBody   string
		}{
			{
				name:       "unknown product",
				reserveErr: &salesvc.ProductNotFoundError{ProductID: 7},
				wantStatus: http.StatusNotFound,
				wantBody:   `"product_id":7`,
			},
			{
				name:       "insufficient stock",
				reserveErr: &salesvc.InsufficientStockError{ProductID: 7, Requested: 3, Available: 1},
				wantStatus: http.StatusConflict,
				wantBody:   `"available":1`,
			},
			{
				name:       "writer conflict",
				reserveErr: &salesvc.ConflictError{Err: errors.New("database is locked")},
				wantStatus: http.StatusServiceUnavailable,
				wantBody:   `"error"`,
			},
			{
				name:       "persistence failure",
				reserveErr: &salesvc.PersistenceError{Op: "reserving stock", Err: errors.New("disk I/O error")},
				wantStatus: http.StatusInternalServerError,
				wantBody:   `"error"`,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				repo := salesvc.NewMockRepository(ctrl)
				tx := salesvc.NewMockTx(ctrl)

				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Reserve(gomock.Any(), int64(7), int64(3)).Return(decimal.Decimal{}, tt.reserveErr)
				tx.EXPECT().Rollback().Return(nil)

				rec := postSale(t, newRouter(salesvc.NewService(repo)),
					`{"payment_method":"cash","items":[{"product_id":7,"quantity":3}]}`)

				assert.Equal(t, tt.wantStatus, rec.Code)
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			})
		}
	})

	t.Run("invalid basket returns 400 without a unit of work", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := salesvc.NewMockRepository(ctrl)

		rec := postSale(t, newRouter(salesvc.NewService(repo)),
			`{"payment_method":"cash","items":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
