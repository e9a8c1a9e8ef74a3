package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/karimelh/salespoint/internal/customer"
	"github.com/karimelh/salespoint/internal/product"
	"github.com/karimelh/salespoint/internal/sale"
)

// lowStockThreshold matches the storefront's restock alert level.
const lowStockThreshold = 10

type Handler struct {
	saleSvc     *sale.Service
	productSvc  *product.Service
	customerSvc *customer.Service
}

func NewHandler(saleSvc *sale.Service, productSvc *product.Service, customerSvc *customer.Service) *Handler {
	return &Handler{
		saleSvc:     saleSvc,
		productSvc:  productSvc,
		customerSvc: customerSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
}

type summaryResponse struct {
	TodayRevenue  decimal.Decimal      `json:"today_revenue"`
	TodaySales    int64                `json:"today_sales"`
	ProductCount  int64                `json:"product_count"`
	CustomerCount int64                `json:"customer_count"`
	LowStock      []lowStockResponse   `json:"low_stock"`
	RecentSales   []recentSaleResponse `json:"recent_sales"`
}

type lowStockResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type recentSaleResponse struct {
	ID        int64           `json:"id"`
	Total     decimal.Decimal `json:"total"`
	Method    sale.Method     `json:"payment_method"`
	CreatedAt time.Time       `json:"created_at"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Sales are stamped in UTC by the store.
	today, err := h.saleSvc.SummarizeDay(ctx, time.Now().UTC())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	productCount, err := h.productSvc.Count(ctx)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	customerCount, err := h.customerSvc.Count(ctx)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	lowStock, err := h.productSvc.LowStock(ctx, lowStockThreshold)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	recent, err := h.saleSvc.List(ctx, sale.ListFilter{})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if len(recent) > 5 {
		recent = recent[:5]
	}

	resp := summaryResponse{
		TodayRevenue:  today.Revenue,
		TodaySales:    today.Count,
		ProductCount:  productCount,
		CustomerCount: customerCount,
		LowStock:      make([]lowStockResponse, 0, len(lowStock)),
		RecentSales:   make([]recentSaleResponse, 0, len(recent)),
	}

	for _, p := range lowStock {
		resp.LowStock = append(resp.LowStock, lowStockResponse{ID: p.ID, Name: p.Name, Quantity: p.Quantity})
	}

	for _, s := range recent {
		resp.RecentSales = append(resp.RecentSales, recentSaleResponse{
			ID:        s.ID,
			Total:     s.Total,
			Method:    s.Method,
			CreatedAt: s.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
