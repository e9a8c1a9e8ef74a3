package sale

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/karimelh/salespoint/internal/sale"
)

type Handler struct {
	svc *sale.Service
}

func NewHandler(svc *sale.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type createSaleRequest struct {
	CustomerID *int64            `json:"customer_id,omitempty"`
	Method     sale.Method       `json:"payment_method"`
	Items      []saleItemRequest `json:"items"`
}

type saleItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"product_id,omitempty"`
	Requested int64  `json:"requested,omitempty"`
	Available int64  `json:"available,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lines := make([]sale.Line, len(req.Items))
	for i, item := range req.Items {
		lines[i] = sale.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	committed, err := h.svc.Commit(r.Context(), sale.CommitParams{
		CustomerID: req.CustomerID,
		Method:     req.Method,
		Lines:      lines,
	})
	if err != nil {
		writeCommitError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(committed)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeCommitError maps the commit error taxonomy onto HTTP statuses.
// Stock shortages carry enough structure for the client to adjust the
// basket without another round trip.
func writeCommitError(w http.ResponseWriter, err error) {
	var (
		validationErr *sale.ValidationError
		notFoundErr   *sale.ProductNotFoundError
		stockErr      *sale.InsufficientStockError
		conflictErr   *sale.ConflictError
	)

	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.As(err, &validationErr):
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, errorResponse{Error: validationErr.Error()})
	case errors.As(err, &notFoundErr):
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, errorResponse{Error: notFoundErr.Error(), ProductID: notFoundErr.ProductID})
	case errors.As(err, &stockErr):
		w.WriteHeader(http.StatusConflict)
		writeJSON(w, errorResponse{
			Error:     stockErr.Error(),
			ProductID: stockErr.ProductID,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		})
	case errors.As(err, &conflictErr):
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, errorResponse{Error: "store is busy, retry the sale"})
	default:
		slog.Error("sale commit failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := sale.ListFilter{}

	if s := r.URL.Query().Get("customer_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			filter.CustomerID = &id
		}
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	sales, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(sales)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			http.Error(w, "sale not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(s)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
