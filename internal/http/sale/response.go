package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/karimelh/salespoint/internal/sale"
)

type saleResponse struct {
	ID         int64           `json:"sale_id"`
	CustomerID *int64          `json:"customer_id,omitempty"`
	Items      []itemResponse  `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total_amount"`
	Method     sale.Method     `json:"payment_method"`
	Status     sale.Status     `json:"payment_status"`
	CreatedAt  time.Time       `json:"created_at"`
}

type itemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func toResponse(s *sale.Sale) saleResponse {
	items := make([]itemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = itemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	return saleResponse{
		ID:         s.ID,
		CustomerID: s.CustomerID,
		Items:      items,
		Subtotal:   s.Subtotal,
		Tax:        s.Tax,
		Total:      s.Total,
		Method:     s.Method,
		Status:     s.Status,
		CreatedAt:  s.CreatedAt,
	}
}

func toResponseList(sales []*sale.Sale) []saleResponse {
	resp := make([]saleResponse, len(sales))
	for i, s := range sales {
		resp[i] = toResponse(s)
	}

	return resp
}
